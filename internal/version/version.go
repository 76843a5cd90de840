// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

// Package version carries the solsign build version, set via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Example: go build -ldflags "-X github.com/solsign-dev/solsign/internal/version.Version=0.3.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the --version line.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s/%s)",
		Version, GitCommit, BuildTime, runtime.GOOS, runtime.GOARCH)
}
