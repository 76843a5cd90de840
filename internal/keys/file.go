// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package keys

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/solsign-dev/solsign/internal/crypto"
	"github.com/solsign-dev/solsign/internal/util"
	"github.com/solsign-dev/solsign/internal/wire"
)

// ErrKeyFile indicates an unreadable or malformed key file
var ErrKeyFile = errors.New("invalid key file")

// keyFileSize is the length of a solana-keygen key file: the 32-byte seed
// followed by the 32-byte public key.
const keyFileSize = ed25519.PrivateKeySize

// LoadFile reads a solana-keygen JSON key file (an array of 64 byte values).
// Error messages name the path but never include file content.
func LoadFile(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKeyFile, path, err)
	}
	defer crypto.ZeroBytes(data)

	kp, err := ParseKeyFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	util.Debug("loaded key file", "path", path, "public_key", kp.PublicKey().String())
	return kp, nil
}

// ParseKeyFile parses key file content. The stored public key must be a valid
// curve point and must match the one derived from the seed.
// SECURITY: intermediate copies of the secret are zeroed before returning
func ParseKeyFile(data []byte) (*KeyPair, error) {
	var values []int
	defer func() {
		for i := range values {
			values[i] = 0
		}
	}()
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of bytes", ErrKeyFile)
	}
	if len(values) != keyFileSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrKeyFile, keyFileSize, len(values))
	}

	raw := make([]byte, keyFileSize)
	defer crypto.ZeroBytes(raw)
	for i, v := range values {
		if v < 0 || v > 0xff {
			return nil, fmt.Errorf("%w: value at index %d out of byte range", ErrKeyFile, i)
		}
		raw[i] = byte(v)
	}

	var stored wire.PublicKey
	copy(stored[:], raw[ed25519.SeedSize:])
	if !stored.IsOnCurve() {
		return nil, fmt.Errorf("%w: public key is not a valid curve point", ErrKeyFile)
	}

	kp, err := FromSeed(raw[:ed25519.SeedSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFile, err)
	}
	if kp.PublicKey() != stored {
		kp.Wipe()
		return nil, fmt.Errorf("%w: public key does not match secret key", ErrKeyFile)
	}
	return kp, nil
}
