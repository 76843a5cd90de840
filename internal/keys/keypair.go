// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

// Package keys holds the ed25519 signing keys owned by a session and loads
// them from solana-keygen compatible key files.
package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/solsign-dev/solsign/internal/crypto"
	"github.com/solsign-dev/solsign/internal/wire"
)

// ErrWiped is returned when a wiped key pair is asked to sign.
var ErrWiped = errors.New("key pair has been wiped")

// KeyPair owns one ed25519 seed and exposes its public key. The seed lives in
// a crypto.Secret; the expanded private key only exists for the duration of
// a Sign call.
type KeyPair struct {
	seed   *crypto.Secret
	public wire.PublicKey
}

// FromSeed builds a key pair from a 32-byte ed25519 seed. The seed is copied;
// the caller remains responsible for zeroing its own buffer.
func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed size for ed25519: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	defer crypto.ZeroBytes(priv)

	kp := &KeyPair{seed: crypto.NewSecret(seed)}
	copy(kp.public[:], priv[ed25519.SeedSize:])
	return kp, nil
}

// PublicKey returns the public half of the pair.
func (k *KeyPair) PublicKey() wire.PublicKey {
	return k.public
}

// Sign signs message with the pair's private key.
func (k *KeyPair) Sign(message []byte) (wire.Signature, error) {
	var sig wire.Signature
	err := k.seed.WithBytes(func(seed []byte) error {
		if len(seed) != ed25519.SeedSize {
			return ErrWiped
		}
		priv := ed25519.NewKeyFromSeed(seed)
		defer crypto.ZeroBytes(priv)
		copy(sig[:], ed25519.Sign(priv, message))
		return nil
	})
	return sig, err
}

// Verify checks sig against the pair's public key.
func (k *KeyPair) Verify(message []byte, sig wire.Signature) bool {
	return ed25519.Verify(k.public[:], message, sig[:])
}

// Wipe zeros the private material. The public key stays readable so a wiped
// pair can still be identified in reports.
func (k *KeyPair) Wipe() {
	if k == nil {
		return
	}
	k.seed.Destroy()
}

// Wiped reports whether the private material has been destroyed.
func (k *KeyPair) Wiped() bool {
	return k.seed.IsEmpty()
}

// WipeAll wipes every pair in the slice.
func WipeAll(pairs []*KeyPair) {
	for _, kp := range pairs {
		kp.Wipe()
	}
}
