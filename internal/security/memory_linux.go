// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

//go:build linux

package security

import (
	"fmt"
	"os"
	"syscall"
)

// LockMemory locks current and future pages so seeds and signing keys are
// never written to swap.
func LockMemory() error {
	if err := syscall.Mlockall(syscall.MCL_CURRENT | syscall.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall failed: %w (grant it with: sudo setcap cap_ipc_lock+ep %s)", err, os.Args[0])
	}
	return nil
}

// DisableCoreDumps sets the core size limit to zero so a crash cannot dump
// key material to disk.
func DisableCoreDumps() error {
	rlimit := syscall.Rlimit{Cur: 0, Max: 0}
	if err := syscall.Setrlimit(syscall.RLIMIT_CORE, &rlimit); err != nil {
		return fmt.Errorf("failed to disable core dumps: %w", err)
	}
	return nil
}
