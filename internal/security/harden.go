// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

// Package security applies process-level protections for key material.
package security

import "github.com/solsign-dev/solsign/internal/util"

// DisableMemoryLockEnv skips LockMemory, for debugging under tools that
// cannot run with locked memory.
const DisableMemoryLockEnv = "SOLSIGN_DISABLE_MEMORY_LOCK"

// Harden disables core dumps and locks memory. Failures are logged as
// warnings and reported back; the signer still runs without them.
func Harden(lockMemory bool) []error {
	var errs []error
	if err := DisableCoreDumps(); err != nil {
		util.Warn("core dumps remain enabled", "error", err)
		errs = append(errs, err)
	}
	if !lockMemory {
		util.Debug("memory locking disabled")
		return errs
	}
	if err := LockMemory(); err != nil {
		util.Warn("memory is not locked; keys may be swapped to disk", "error", err)
		errs = append(errs, err)
	}
	return errs
}
