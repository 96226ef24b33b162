package uuidv47

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultKey, when set, is the key Masked values use to present and
// accept v4 facades at external boundaries (String, JSON, text) while
// keeping internal and stored values raw v7. Set it once at startup.
var DefaultKey *Key

// SetKey sets the DefaultKey. Call once at startup before exchanging
// Masked values.
func SetKey(k Key) {
	DefaultKey = &k
}

// ErrNoKey is returned when a v4 facade arrives and no DefaultKey is
// configured to decode it.
var ErrNoKey = errors.New("uuidv47: no key configured")

// Masked is a UUID that stays a raw version 7 value in memory and in
// the database but renders as its v4 facade in every textual form.
// Parsing accepts both: v7 input passes through, v4 input is decoded
// with the DefaultKey.
type Masked UUID

// Compile-time interface checks for Masked
var (
	_ fmt.Stringer             = Masked{}
	_ driver.Valuer            = Masked{}
	_ sql.Scanner              = (*Masked)(nil)
	_ encoding.TextMarshaler   = Masked{}
	_ encoding.TextUnmarshaler = (*Masked)(nil)
	_ json.Marshaler           = Masked{}
	_ json.Unmarshaler         = (*Masked)(nil)
)

// NewMasked returns a fresh Masked v7 value from the DefaultGenerator.
func NewMasked() Masked {
	return Masked(New())
}

// UUID returns the raw version 7 value.
func (m Masked) UUID() UUID {
	return UUID(m)
}

// Facade returns the v4 facade under the DefaultKey, or the raw value
// when no key is configured.
func (m Masked) Facade() UUID {
	u := UUID(m)
	if DefaultKey == nil || u.Version() != 7 {
		return u
	}
	return Encode(u, *DefaultKey)
}

// String returns the canonical text of the facade.
func (m Masked) String() string {
	return m.Facade().String()
}

// MarshalText implements encoding.TextMarshaler
func (m Masked) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Masked) UnmarshalText(b []byte) error {
	u, err := Parse(string(b))
	if err != nil {
		return err
	}
	switch u.Version() {
	case 7:
		*m = Masked(u)
		return nil
	case 4:
		if DefaultKey == nil {
			return ErrNoKey
		}
		*m = Masked(Decode(u, *DefaultKey))
		return nil
	default:
		return fmt.Errorf("uuidv47: version %d not accepted, want 4 or 7", u.Version())
	}
}

// MarshalJSON implements json.Marshaler
func (m Masked) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Masked) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Masked(Nil)
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("uuidv47: invalid JSON string")
	}
	return m.UnmarshalText(b[1 : len(b)-1])
}

// Value implements driver.Valuer, storing the raw v7 form.
func (m Masked) Value() (driver.Value, error) {
	return UUID(m).Value()
}

// Scan implements sql.Scanner, reading the raw stored form.
func (m *Masked) Scan(src interface{}) error {
	return (*UUID)(m).Scan(src)
}
