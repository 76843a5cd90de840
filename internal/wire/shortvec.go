// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package wire

import "fmt"

// MaxCompactU16 is the largest length a compact-u16 prefix can carry.
const MaxCompactU16 = 0xffff

// appendCompactU16 appends v as a compact-u16: 7 bits per byte, low bits
// first, high bit set on every byte but the last.
func appendCompactU16(dst []byte, v int) ([]byte, error) {
	if v < 0 || v > MaxCompactU16 {
		return dst, fmt.Errorf("%w: length %d does not fit compact-u16", ErrMalformed, v)
	}
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b), nil
		}
		dst = append(dst, b|0x80)
	}
}

// decodeCompactU16 reads a compact-u16 from the start of b and returns the
// value and the number of bytes consumed. Only the minimal encoding of a
// value is accepted.
func decodeCompactU16(b []byte) (int, int, error) {
	var v int
	for i := 0; i < 3; i++ {
		if i >= len(b) {
			return 0, 0, fmt.Errorf("%w compact-u16", ErrTruncated)
		}
		c := b[i]
		// The third byte only carries bits 14 and 15.
		if i == 2 && c > 0x03 {
			return 0, 0, fmt.Errorf("%w: compact-u16 overflows 16 bits", ErrMalformed)
		}
		v |= int(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			if i > 0 && c == 0 {
				return 0, 0, fmt.Errorf("%w: non-canonical compact-u16", ErrMalformed)
			}
			return v, i + 1, nil
		}
	}
	// unreachable: the third byte never has the continuation bit
	return 0, 0, fmt.Errorf("%w: compact-u16 longer than 3 bytes", ErrMalformed)
}
