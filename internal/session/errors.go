// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package session

import "errors"

var (
	// ErrChallenge indicates the challenge secret was not confirmed within the attempt budget
	ErrChallenge = errors.New("challenge secret not confirmed")

	// ErrState indicates an operation that the session's current state does not allow
	ErrState = errors.New("operation not allowed in current session state")

	// ErrNilKey indicates a nil key pair was offered to the session
	ErrNilKey = errors.New("nil key pair")
)
