// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

// Package mnemonic turns a BIP-39 phrase and passphrase into the candidate
// signing keys an operator picks from: the direct seed key used by
// solana-keygen and the SLIP-0010 keys under m/44'/501'.
package mnemonic

import (
	"bytes"
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"

	"github.com/solsign-dev/solsign/internal/crypto"
)

var (
	// ErrDerivation indicates empty or invalid mnemonic input
	ErrDerivation = errors.New("key derivation failed")
)

const (
	// SeedSize is the length of a BIP-39 seed.
	SeedSize = 64

	seedIterations = 2048
	saltPrefix     = "mnemonic"
)

// validWordCounts are the BIP-39 phrase lengths.
var validWordCounts = map[int]bool{12: true, 15: true, 18: true, 21: true, 24: true}

// NormalizeWords lowercases ASCII letters of phrase in place and splits it on
// any whitespace. The returned words alias phrase, so zeroing phrase wipes them.
func NormalizeWords(phrase []byte) [][]byte {
	for i, c := range phrase {
		if 'A' <= c && c <= 'Z' {
			phrase[i] = c + ('a' - 'A')
		}
	}
	return bytes.Fields(phrase)
}

// ValidateWordCount checks if the word count is a valid BIP-39 length
func ValidateWordCount(wordCount int) error {
	if !validWordCounts[wordCount] {
		return fmt.Errorf("%w: mnemonic must have 12, 15, 18, 21 or 24 words, got %d", ErrDerivation, wordCount)
	}
	return nil
}

// SeedFrom stretches the mnemonic and passphrase into a 64-byte seed
// (PBKDF2-HMAC-SHA512, 2048 rounds, salt "mnemonic"+passphrase). The phrase
// checksum is validated first. The returned seed must be zeroed by the caller.
func SeedFrom(words [][]byte, passphrase []byte) ([]byte, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty mnemonic", ErrDerivation)
	}
	if err := ValidateWordCount(len(words)); err != nil {
		return nil, err
	}
	phrase := bytes.Join(words, []byte{' '})
	defer crypto.ZeroBytes(phrase)

	// go-bip39 only takes strings; this copy cannot be wiped.
	if !bip39.IsMnemonicValid(string(phrase)) {
		return nil, fmt.Errorf("%w: invalid mnemonic words or checksum", ErrDerivation)
	}

	salt := make([]byte, 0, len(saltPrefix)+len(passphrase))
	salt = append(salt, saltPrefix...)
	salt = append(salt, passphrase...)
	defer crypto.ZeroBytes(salt)

	return pbkdf2.Key(phrase, salt, seedIterations, SeedSize, sha512.New), nil
}
