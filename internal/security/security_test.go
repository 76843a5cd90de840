// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

//go:build linux

package security

import (
	"syscall"
	"testing"
)

func TestHarden_WithoutMemoryLock(t *testing.T) {
	if errs := Harden(false); len(errs) != 0 {
		t.Fatalf("Harden(false) = %v", errs)
	}
	var rlimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_CORE, &rlimit); err != nil {
		t.Fatal(err)
	}
	if rlimit.Cur != 0 {
		t.Errorf("core limit = %d, want 0", rlimit.Cur)
	}
}
