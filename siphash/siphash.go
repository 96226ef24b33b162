// Package siphash implements the SipHash-2-4 keyed hash function for short
// messages. It follows the reference construction by Aumasson and Bernstein
// and reproduces its published test vectors bit for bit.
package siphash

import (
	"encoding/binary"
	"math/bits"
)

// Hash returns the 64-bit SipHash-2-4 digest of p under the 128-bit key
// (k0, k1). The key words carry the little-endian interpretation of the
// first and second 8 bytes of key material.
func Hash(k0, k1 uint64, p []byte) uint64 {
	v0 := k0 ^ 0x736f6d6570736575
	v1 := k1 ^ 0x646f72616e646f6d
	v2 := k0 ^ 0x6c7967656e657261
	v3 := k1 ^ 0x7465646279746573

	// Length byte sits in the top 8 bits of the final block.
	b := uint64(len(p)) << 56

	for len(p) >= 8 {
		m := binary.LittleEndian.Uint64(p)
		v3 ^= m
		v0, v1, v2, v3 = round(v0, v1, v2, v3)
		v0, v1, v2, v3 = round(v0, v1, v2, v3)
		v0 ^= m
		p = p[8:]
	}

	// Remaining 0..7 tail bytes, little-endian.
	for i := len(p) - 1; i >= 0; i-- {
		b |= uint64(p[i]) << (8 * uint(i))
	}

	v3 ^= b
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0 ^= b

	v2 ^= 0xff
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)

	return v0 ^ v1 ^ v2 ^ v3
}

// round performs one SipRound over the four state words.
func round(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v1 = bits.RotateLeft64(v1, 13)
	v1 ^= v0
	v0 = bits.RotateLeft64(v0, 32)

	v2 += v3
	v3 = bits.RotateLeft64(v3, 16)
	v3 ^= v2

	v0 += v3
	v3 = bits.RotateLeft64(v3, 21)
	v3 ^= v0

	v2 += v1
	v1 = bits.RotateLeft64(v1, 17)
	v1 ^= v2
	v2 = bits.RotateLeft64(v2, 32)

	return v0, v1, v2, v3
}
