package uuidv47

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stateless-me/uuidv47/siphash"
)

// Compile-time interface checks for UUID
var (
	_ fmt.Stringer               = UUID{}
	_ driver.Valuer              = UUID{}
	_ sql.Scanner                = (*UUID)(nil)
	_ encoding.TextMarshaler     = UUID{}
	_ encoding.TextUnmarshaler   = (*UUID)(nil)
	_ encoding.BinaryMarshaler   = UUID{}
	_ encoding.BinaryUnmarshaler = (*UUID)(nil)
	_ json.Marshaler             = UUID{}
	_ json.Unmarshaler           = (*UUID)(nil)
	_ gob.GobEncoder             = UUID{}
	_ gob.GobDecoder             = (*UUID)(nil)
)

// UUID is a 128-bit RFC 4122 identifier stored as 16 big-endian bytes
type UUID [16]byte

// Nil is the zero UUID, all 128 bits zero.
var Nil UUID

// Version returns the version nibble from byte 6.
func (u UUID) Version() byte {
	return u[6] >> 4
}

func (u UUID) IsNil() bool {
	return u == Nil
}

func (u UUID) Equal(v UUID) bool {
	return u == v
}

// Bytes returns the UUID as a 16-byte big-endian slice.
func (u UUID) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, u[:])
	return b
}

// Timestamp returns the millisecond Unix timestamp carried in the
// first 48 bits. It is meaningful only for version 7 values; for a v4
// facade, decode first.
func (u UUID) Timestamp() time.Time {
	return time.UnixMilli(int64(uint48(u[:6])))
}

// Payload returns the 74 random bits of a version 7 value packed into
// 10 bytes, with the version and variant fields masked out. A v7 value
// and its facade produce the same payload.
func (u UUID) Payload() [10]byte {
	var p [10]byte
	p[0] = u[6] & 0x0f
	p[1] = u[7]
	p[2] = u[8] & 0x3f
	copy(p[3:], u[9:16])
	return p
}

// uint48 reads a big-endian 48-bit value from the first 6 bytes of b.
func uint48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

// putUint48 writes the low 48 bits of v big-endian into the first 6 bytes of b.
func putUint48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

// mask derives the 48-bit timestamp mask for u under k. Only the
// random payload feeds the hash, so a v7 value and its facade yield
// the same mask.
func mask(u UUID, k Key) uint64 {
	p := u.Payload()
	return siphash.Hash(k.K0, k.K1, p[:]) & 0x0000ffffffffffff
}

// Encode disguises a version 7 UUID as a v4-looking facade by XORing
// its timestamp with a keyed mask of the random payload. The payload
// bits pass through untouched, so sort order within one key is not
// preserved but equality is.
func Encode(id UUID, k Key) UUID {
	out := id
	putUint48(out[:6], uint48(id[:6])^mask(id, k))
	out[6] = (out[6] & 0x0f) | 0x40
	out[8] = (out[8] & 0x3f) | 0x80
	return out
}

// Decode restores the original version 7 UUID from a facade produced
// by Encode under the same key.
func Decode(facade UUID, k Key) UUID {
	out := facade
	putUint48(out[:6], uint48(facade[:6])^mask(facade, k))
	out[6] = (out[6] & 0x0f) | 0x70
	out[8] = (out[8] & 0x3f) | 0x80
	return out
}

// MarshalText implements encoding.TextMarshaler
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *UUID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (u UUID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (u *UUID) UnmarshalJSON(b []byte) error {
	// Handle null
	if string(b) == "null" {
		*u = Nil
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("uuidv47: invalid JSON string")
	}
	return u.UnmarshalText(b[1 : len(b)-1])
}

// Value implements driver.Valuer for database storage
func (u UUID) Value() (driver.Value, error) {
	return u.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (u *UUID) Scan(src interface{}) error {
	if src == nil {
		*u = Nil
		return nil
	}
	switch v := src.(type) {
	case UUID:
		*u = v
		return nil
	case []byte:
		if len(v) == 16 {
			return u.UnmarshalBinary(v)
		}
		return u.UnmarshalText(v)
	case string:
		return u.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("uuidv47: cannot scan %T", src)
	}
}

// FromBytes returns a UUID from a 16-byte big-endian slice.
func FromBytes(b []byte) (UUID, error) {
	if len(b) != 16 {
		return Nil, fmt.Errorf("uuidv47: UUID must be exactly 16 bytes, got %d", len(b))
	}
	var u UUID
	copy(u[:], b)
	return u, nil
}

// FromBytesOrNil returns a UUID from a 16-byte slice.
// Returns Nil on error.
func FromBytesOrNil(b []byte) UUID {
	u, err := FromBytes(b)
	if err != nil {
		return Nil
	}
	return u
}

// FromGoogle converts a github.com/google/uuid value.
func FromGoogle(id uuid.UUID) UUID {
	return UUID(id)
}

// Google converts u for use with github.com/google/uuid.
func (u UUID) Google() uuid.UUID {
	return uuid.UUID(u)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (u UUID) MarshalBinary() ([]byte, error) {
	return u.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (u *UUID) UnmarshalBinary(data []byte) error {
	parsed, err := FromBytes(data)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// GobEncode implements gob.GobEncoder.
func (u UUID) GobEncode() ([]byte, error) {
	return u.MarshalBinary()
}

// GobDecode implements gob.GobDecoder.
func (u *UUID) GobDecode(data []byte) error {
	return u.UnmarshalBinary(data)
}

// Must panics if err is not nil
func Must(u UUID, err error) UUID {
	if err != nil {
		panic(err)
	}
	return u
}
