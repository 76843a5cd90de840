// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package crypto

import (
	"crypto/subtle"
	"runtime"
	"sync"
)

// ZeroBytes securely overwrites a byte slice with zeros
// Uses constant-time operation to prevent compiler optimization
func ZeroBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
	runtime.KeepAlive(b)
}

// Secret owns a buffer of sensitive bytes (key seeds, passphrases, challenge
// secrets). The buffer is only reachable through WithBytes and is zeroed by
// Destroy. Callers pair every constructor with a deferred Destroy.
type Secret struct {
	data []byte
	lock sync.RWMutex
}

// NewSecret copies b into a new Secret. The caller keeps ownership of b and
// should zero it once the copy is no longer needed.
func NewSecret(b []byte) *Secret {
	if b == nil {
		return &Secret{}
	}
	data := make([]byte, len(b))
	copy(data, b)
	return &Secret{data: data}
}

// WithBytes provides scoped access to the underlying bytes without copying.
// The slice is only valid during the callback and must not be retained.
//
//	err := secret.WithBytes(func(p []byte) error {
//	    return use(p)
//	})
func (s *Secret) WithBytes(fn func([]byte) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return fn(s.data)
}

// Len returns the size of the secret, or 0 once destroyed.
func (s *Secret) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.data)
}

// IsEmpty returns true if the secret is empty or destroyed.
func (s *Secret) IsEmpty() bool {
	return s.Len() == 0
}

// Destroy zeros the secret. It is safe to call more than once and on a nil
// receiver.
func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	ZeroBytes(s.data)
	s.data = nil
}
