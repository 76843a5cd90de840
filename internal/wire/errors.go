// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed indicates bad transport encoding or an inconsistent wire structure
	ErrMalformed = errors.New("malformed transaction")

	// ErrSlotNotFound indicates a signature was offered for a key that is not a required signer
	ErrSlotNotFound = errors.New("public key is not a required signer")

	// ErrTruncated indicates the input ended early; more input may complete it
	ErrTruncated = fmt.Errorf("%w: truncated", ErrMalformed)
)
