// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package mnemonic

import (
	"crypto/ed25519"
	"fmt"

	"github.com/solsign-dev/solsign/internal/crypto"
	"github.com/solsign-dev/solsign/internal/keys"
)

const (
	// CandidateCount is the number of keys offered per mnemonic: the direct
	// key plus one derived key per account index.
	CandidateCount = 10

	// NoSelection discards every candidate.
	NoSelection = -1
)

// Candidate is one key an operator may choose for a mnemonic. Path is empty
// for the direct key.
type Candidate struct {
	Index int
	Path  string
	Key   *keys.KeyPair
}

// PathForAccount returns the derivation path solana-keygen uses for account.
func PathForAccount(account int) string {
	return fmt.Sprintf("m/44'/501'/%d'/0'", account)
}

// DeriveCandidates returns the CandidateCount keys for seed, in a fixed order.
// Candidate 0 is the direct key built from the first 32 seed bytes with no
// derivation path. Candidates 1..9 use PathForAccount(0..8).
func DeriveCandidates(seed []byte) ([]Candidate, error) {
	if len(seed) < ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed too short: %d bytes", ErrDerivation, len(seed))
	}

	candidates := make([]Candidate, 0, CandidateCount)
	fail := func(err error) ([]Candidate, error) {
		wipeCandidates(candidates)
		return nil, err
	}

	direct, err := keys.FromSeed(seed[:ed25519.SeedSize])
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrDerivation, err))
	}
	candidates = append(candidates, Candidate{Index: 0, Key: direct})

	for account := 0; account < CandidateCount-1; account++ {
		path := PathForAccount(account)
		key, chain, err := DerivePath(seed, path)
		if err != nil {
			return fail(err)
		}
		kp, err := keys.FromSeed(key)
		crypto.ZeroBytes(key)
		crypto.ZeroBytes(chain)
		if err != nil {
			return fail(fmt.Errorf("%w: %v", ErrDerivation, err))
		}
		candidates = append(candidates, Candidate{Index: account + 1, Path: path, Key: kp})
	}
	return candidates, nil
}

// Select keeps the candidate at choice and wipes every other one. It returns
// nil when choice is NoSelection. An out-of-range choice wipes nothing so the
// caller can ask again.
func Select(candidates []Candidate, choice int) (*keys.KeyPair, error) {
	if choice != NoSelection && (choice < 0 || choice >= len(candidates)) {
		return nil, fmt.Errorf("%w: selection %d out of range 0-%d", ErrDerivation, choice, len(candidates)-1)
	}
	var chosen *keys.KeyPair
	for i := range candidates {
		if candidates[i].Index == choice {
			chosen = candidates[i].Key
			continue
		}
		candidates[i].Key.Wipe()
	}
	return chosen, nil
}

func wipeCandidates(candidates []Candidate) {
	for i := range candidates {
		candidates[i].Key.Wipe()
	}
}
