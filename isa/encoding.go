// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

// EncodeImmediate returns the 5-byte encoding of an immediate operand: a
// sign tag followed by the big-endian magnitude truncated to 32 bits.
func EncodeImmediate(n int64) []byte {
	tag, mag := SignPositive, uint64(n)
	if n < 0 {
		tag, mag = SignNegative, uint64(-n)
	}
	return []byte{tag, byte(mag >> 24), byte(mag >> 16), byte(mag >> 8), byte(mag)}
}

// DecodeImmediate is the inverse of EncodeImmediate. The boolean result is
// false if b is too short or carries an unknown sign tag.
func DecodeImmediate(b []byte) (int64, bool) {
	if len(b) < ImmediateSize {
		return 0, false
	}
	mag := int64(DecodeOffset(b[1:]))
	switch b[0] {
	case SignPositive:
		return mag, true
	case SignNegative:
		return -mag, true
	default:
		return 0, false
	}
}

// EncodeOffset returns the plain big-endian 4-byte encoding of an absolute
// program offset.
func EncodeOffset(offset int) []byte {
	v := uint32(offset)
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// DecodeOffset reads a big-endian 4-byte offset.
func DecodeOffset(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
