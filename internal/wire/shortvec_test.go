// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompactU16_Encoding(t *testing.T) {
	tests := []struct {
		value   int
		encoded []byte
	}{
		{0x0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0xff, []byte{0xff, 0x01}},
		{0x100, []byte{0x80, 0x02}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	}
	for _, tt := range tests {
		got, err := appendCompactU16(nil, tt.value)
		if err != nil {
			t.Fatalf("appendCompactU16(%#x): %v", tt.value, err)
		}
		if !bytes.Equal(got, tt.encoded) {
			t.Errorf("appendCompactU16(%#x) = %x, want %x", tt.value, got, tt.encoded)
		}

		v, n, err := decodeCompactU16(append(tt.encoded, 0xEE))
		if err != nil {
			t.Fatalf("decodeCompactU16(%x): %v", tt.encoded, err)
		}
		if v != tt.value || n != len(tt.encoded) {
			t.Errorf("decodeCompactU16(%x) = %#x/%d, want %#x/%d", tt.encoded, v, n, tt.value, len(tt.encoded))
		}
	}
}

func TestCompactU16_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		encoded []byte
	}{
		{"empty", nil},
		{"truncated continuation", []byte{0x80}},
		{"truncated two bytes", []byte{0x80, 0x80}},
		{"alias of zero", []byte{0x80, 0x00}},
		{"alias of 0x7f", []byte{0xff, 0x00}},
		{"three byte alias", []byte{0x80, 0x80, 0x00}},
		{"overflow", []byte{0xff, 0xff, 0x04}},
		{"fourth byte", []byte{0x80, 0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := decodeCompactU16(tt.encoded); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}

	if _, err := appendCompactU16(nil, 0x10000); !errors.Is(err, ErrMalformed) {
		t.Errorf("encoding 0x10000: expected ErrMalformed, got %v", err)
	}
}
