package uuidv47

import "errors"

// ErrInvalidUUID is returned when parsing text that is not in the
// canonical 8-4-4-4-12 form.
var ErrInvalidUUID = errors.New("uuidv47: invalid UUID string")

const hexdigits = "0123456789abcdef"

// byteIndex holds the string offset of the high nibble of each of the
// 16 bytes in canonical form, skipping the hyphens.
var byteIndex = [16]int{0, 2, 4, 6, 9, 11, 14, 16, 19, 21, 24, 26, 28, 30, 32, 34}

// Parse parses a UUID in canonical 8-4-4-4-12 form. Hex digits may be
// upper or lower case. No other forms are accepted: the input must be
// exactly 36 characters with hyphens at positions 8, 13, 18 and 23.
func Parse(s string) (UUID, error) {
	if len(s) != 36 {
		return Nil, ErrInvalidUUID
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return Nil, ErrInvalidUUID
	}
	var u UUID
	for i, x := range byteIndex {
		hi := hexVal(s[x])
		lo := hexVal(s[x+1])
		if hi == 0xff || lo == 0xff {
			return Nil, ErrInvalidUUID
		}
		u[i] = hi<<4 | lo
	}
	return u, nil
}

// Parse parses a string into the UUID receiver.
func (u *UUID) Parse(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// String returns the canonical lowercase 8-4-4-4-12 form.
func (u UUID) String() string {
	var buf [36]byte
	j := 0
	for i, b := range u {
		switch i {
		case 4, 6, 8, 10:
			buf[j] = '-'
			j++
		}
		buf[j] = hexdigits[b>>4]
		buf[j+1] = hexdigits[b&0x0f]
		j += 2
	}
	return string(buf[:])
}

// FromString returns a UUID parsed from the input string.
// Alias for Parse.
func FromString(s string) (UUID, error) {
	return Parse(s)
}

// FromStringOrNil returns a UUID parsed from the input string.
// Returns Nil on error.
func FromStringOrNil(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		return Nil
	}
	return u
}

// hexVal returns the value of hex digit c, or 0xff if c is not one.
func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0xff
}
