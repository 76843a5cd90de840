// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package session

import (
	"github.com/solsign-dev/solsign/internal/wire"
)

// Status is the outcome of one processing cycle.
type Status int

const (
	// StatusFailed means the transaction was not signed; Err says why.
	StatusFailed Status = iota
	// StatusIncomplete means signers are still missing after this cycle.
	StatusIncomplete
	// StatusComplete means every slot is filled.
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusIncomplete:
		return "incomplete"
	default:
		return "failed"
	}
}

// Result reports one processed transaction.
type Result struct {
	Status Status

	// Transaction is the re-encoded Base64 transaction (Complete and Incomplete).
	Transaction string

	// Signature is the fee payer's signature (Complete only).
	Signature wire.Signature

	// Missing lists required signers whose slot is still empty (Incomplete only).
	Missing []wire.PublicKey

	// Signed lists the owned keys that filled a slot during this cycle.
	Signed []wire.PublicKey

	// Err is set when Status is StatusFailed.
	Err error
}
