// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2KeyLen  = 32
	saltLen       = 16
)

// ErrEmptyChallenge is returned when a challenge digest is requested for an empty secret.
var ErrEmptyChallenge = errors.New("challenge secret is empty")

// ChallengeDigest is a salted Argon2id digest of a challenge secret. The clear
// text secret is never stored; only Matches can tell whether a candidate is
// the same secret.
type ChallengeDigest struct {
	salt   []byte
	digest []byte
	lock   sync.RWMutex
}

// NewChallengeDigest hashes secret under a fresh random salt.
func NewChallengeDigest(secret []byte) (*ChallengeDigest, error) {
	if len(secret) == 0 {
		return nil, ErrEmptyChallenge
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &ChallengeDigest{
		salt:   salt,
		digest: argon2.IDKey(secret, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen),
	}, nil
}

// Matches reports whether candidate hashes to the stored digest. The
// comparison is constant time.
func (c *ChallengeDigest) Matches(candidate []byte) bool {
	if c == nil {
		return false
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	if len(c.digest) == 0 {
		return false
	}
	derived := argon2.IDKey(candidate, c.salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	defer ZeroBytes(derived)
	return subtle.ConstantTimeCompare(derived, c.digest) == 1
}

// Destroy zeros the digest and salt. It waits for a running Matches and is
// safe to call from another goroutine.
func (c *ChallengeDigest) Destroy() {
	if c == nil {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	ZeroBytes(c.digest)
	ZeroBytes(c.salt)
	c.digest = nil
	c.salt = nil
}
