package uuidv47

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
)

// NullUUID can be used with the standard sql package to represent a
// UUID value that can be NULL in the database.
type NullUUID struct {
	UUID  UUID
	Valid bool
}

// Compile-time interface checks for NullUUID
var (
	_ driver.Valuer            = NullUUID{}
	_ sql.Scanner              = (*NullUUID)(nil)
	_ json.Marshaler           = NullUUID{}
	_ json.Unmarshaler         = (*NullUUID)(nil)
	_ encoding.TextMarshaler   = NullUUID{}
	_ encoding.TextUnmarshaler = (*NullUUID)(nil)
)

// Value implements the driver.Valuer interface.
func (n NullUUID) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.UUID.Value()
}

// Scan implements the sql.Scanner interface.
func (n *NullUUID) Scan(src interface{}) error {
	if src == nil {
		n.UUID, n.Valid = Nil, false
		return nil
	}

	n.Valid = true
	return n.UUID.Scan(src)
}

var nullJSON = []byte("null")

// MarshalJSON marshals the NullUUID as null or the nested UUID as a string.
func (n NullUUID) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return nullJSON, nil
	}
	return n.UUID.MarshalJSON()
}

// UnmarshalJSON unmarshals a NullUUID.
func (n *NullUUID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		n.UUID, n.Valid = Nil, false
		return nil
	}
	err := n.UUID.UnmarshalJSON(b)
	n.Valid = (err == nil)
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (n NullUUID) MarshalText() ([]byte, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.UUID.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NullUUID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		n.UUID, n.Valid = Nil, false
		return nil
	}
	err := n.UUID.UnmarshalText(b)
	n.Valid = (err == nil)
	return err
}
