// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package util

import (
	"io"
	"log/slog"
	"os"
)

// Logger discards output until InitLogger is called, so library packages can
// log from tests without setup.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// InitLogger initializes the global logger with appropriate log level
// Set SOLSIGN_DEBUG=1 environment variable to enable debug logging
func InitLogger() {
	InitLoggerTo(os.Stderr, os.Getenv("SOLSIGN_DEBUG") != "")
}

// InitLoggerTo initializes the global logger on w. Output goes to stderr in
// the binary so stdout carries only transactions and signatures.
func InitLoggerTo(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time and level for cleaner CLI output
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})

	Logger = slog.New(handler)
}

// Debug logs a debug message (only shown when SOLSIGN_DEBUG is set)
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
