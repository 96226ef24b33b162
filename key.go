package uuidv47

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Key is the 128-bit secret that derives timestamp masks. The words
// carry the little-endian interpretation of the key bytes, matching
// the SipHash key schedule. Keep it stable for the lifetime of the
// data: values encoded under one key only decode under the same key.
type Key struct {
	K0 uint64
	K1 uint64
}

// ErrInvalidKey is returned when parsing malformed key material.
var ErrInvalidKey = errors.New("uuidv47: invalid key")

// NewKey returns a random Key drawn from crypto/rand.
func NewKey() Key {
	var b [16]byte
	_, _ = rand.Read(b[:])
	k, _ := KeyFromBytes(b[:])
	return k
}

// KeyFromBytes builds a Key from 16 bytes of key material. The first
// 8 bytes become K0 and the last 8 become K1, little-endian.
func KeyFromBytes(b []byte) (Key, error) {
	if len(b) != 16 {
		return Key{}, fmt.Errorf("uuidv47: key must be exactly 16 bytes, got %d", len(b))
	}
	return Key{
		K0: binary.LittleEndian.Uint64(b[0:8]),
		K1: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

// ParseKey parses key material in "k0:k1" form, each side 16 hex
// digits with an optional 0x prefix, or as 32 contiguous hex digits.
// The digits are read as bytes, so each word is the little-endian
// interpretation of its 8 bytes. Whitespace is ignored.
func ParseKey(s string) (Key, error) {
	s = strings.Join(strings.Fields(s), "")
	if i := strings.IndexByte(s, ':'); i >= 0 {
		k0, err := parseKeyWord(s[:i])
		if err != nil {
			return Key{}, err
		}
		k1, err := parseKeyWord(s[i+1:])
		if err != nil {
			return Key{}, err
		}
		return Key{K0: k0, K1: k1}, nil
	}
	s = trimHexPrefix(s)
	if len(s) != 32 {
		return Key{}, ErrInvalidKey
	}
	k0, err := parseKeyWord(s[:16])
	if err != nil {
		return Key{}, err
	}
	k1, err := parseKeyWord(s[16:])
	if err != nil {
		return Key{}, err
	}
	return Key{K0: k0, K1: k1}, nil
}

// Bytes returns the 16 bytes of key material, K0 first, little-endian.
// Inverse of KeyFromBytes.
func (k Key) Bytes() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:8], k.K0)
	binary.LittleEndian.PutUint64(b[8:16], k.K1)
	return b
}

// Fingerprint returns a short key identifier in the form "v1-xxxxxxxx",
// an FNV-1a hash over the key words. It is stable across processes and
// safe to store or log for mismatch detection; it does not reveal the
// key.
func (k Key) Fingerprint() string {
	const prime32 = 16777619
	h := uint32(2166136261)
	for _, w := range [4]uint32{
		uint32(k.K0), uint32(k.K0 >> 32),
		uint32(k.K1), uint32(k.K1 >> 32),
	} {
		h ^= w
		h *= prime32
	}
	return fmt.Sprintf("v1-%08x", h)
}

// parseKeyWord decodes 16 hex digits into the little-endian uint64 of
// their byte sequence. An optional 0x prefix is allowed.
func parseKeyWord(s string) (uint64, error) {
	s = trimHexPrefix(s)
	if len(s) != 16 {
		return 0, ErrInvalidKey
	}
	var b [8]byte
	for i := range b {
		hi := hexVal(s[2*i])
		lo := hexVal(s[2*i+1])
		if hi == 0xff || lo == 0xff {
			return 0, ErrInvalidKey
		}
		b[i] = hi<<4 | lo
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
