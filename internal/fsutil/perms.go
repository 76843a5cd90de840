// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

// Package fsutil holds filesystem checks for key files and the private
// directories solsign writes to.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// PrivateDirPerm is the mode for directories solsign creates (history file
// parent, config directory).
const PrivateDirPerm os.FileMode = 0700

// exposedBits are the permission bits that let other users read a file.
const exposedBits os.FileMode = 0077

// IsExposed reports whether a key file at path can be accessed by the group
// or by other users. Platforms without POSIX modes always report false.
func IsExposed(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("%s is not a regular file", path)
	}
	return info.Mode().Perm()&exposedBits != 0, nil
}

// EnsureParentDir creates the parent directory of path with private
// permissions if it does not exist. Existing directories are left alone.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, PrivateDirPerm); err != nil {
		return err
	}
	// MkdirAll is subject to umask; set the mode explicitly.
	return os.Chmod(dir, PrivateDirPerm)
}
