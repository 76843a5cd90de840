// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package mnemonic

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/solsign-dev/solsign/internal/crypto"
)

// SLIP-0010 ed25519 derivation. Only hardened children exist for ed25519.

const (
	hardenedOffset = 0x80000000
	masterHMACKey  = "ed25519 seed"
)

// ParsePath parses a path like m/44'/501'/0'/0' into hardened indexes.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: path must start with m: %q", ErrDerivation, path)
	}
	indexes := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if !strings.HasSuffix(p, "'") && !strings.HasSuffix(p, "h") {
			return nil, fmt.Errorf("%w: ed25519 paths must be fully hardened: %q", ErrDerivation, path)
		}
		n, err := strconv.ParseUint(p[:len(p)-1], 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid path component %q", ErrDerivation, p)
		}
		indexes = append(indexes, uint32(n)+hardenedOffset)
	}
	return indexes, nil
}

// DerivePath derives the 32-byte private key and chain code at path. Both
// returned slices are secret and must be zeroed by the caller.
func DerivePath(seed []byte, path string) (key, chainCode []byte, err error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, nil, err
	}

	key, chainCode = masterKey(seed)
	for _, index := range indexes {
		childKey, childChain := childKey(key, chainCode, index)
		crypto.ZeroBytes(key)
		crypto.ZeroBytes(chainCode)
		key, chainCode = childKey, childChain
	}
	return key, chainCode, nil
}

func masterKey(seed []byte) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, []byte(masterHMACKey))
	mac.Write(seed)
	return split(mac.Sum(nil))
}

func childKey(key, chainCode []byte, index uint32) ([]byte, []byte) {
	data := make([]byte, 0, 1+len(key)+4)
	data = append(data, 0x00)
	data = append(data, key...)
	data = binary.BigEndian.AppendUint32(data, index)
	defer crypto.ZeroBytes(data)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	return split(mac.Sum(nil))
}

// split copies the two halves of an HMAC output and zeros the original.
func split(sum []byte) ([]byte, []byte) {
	defer crypto.ZeroBytes(sum)
	left := make([]byte, 32)
	right := make([]byte, 32)
	copy(left, sum[:32])
	copy(right, sum[32:])
	return left, right
}
