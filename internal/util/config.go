// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultChallengeAttempts is the number of tries an operator gets to
// re-enter the challenge secret before a transaction is abandoned.
const DefaultChallengeAttempts = 5

// Config holds solsign configuration settings. It never holds secrets: key
// files are referenced by path and mnemonics are only ever typed in.
type Config struct {
	KeyFiles          []string `yaml:"key_files" description:"Key files loaded at startup in addition to those on the command line"`
	HistoryFile       string   `yaml:"history_file" description:"Readline history for pasted transactions (empty disables history)"`
	Color             string   `yaml:"color" description:"Colored output: auto, always, never" default:"auto"`
	ChallengeAttempts int      `yaml:"challenge_attempts" description:"Attempts allowed to re-enter the challenge secret" default:"5"`
	PromptMnemonics   bool     `yaml:"prompt_mnemonics" description:"Prompt for mnemonic keys at startup in interactive mode" default:"true"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		KeyFiles:          []string{},
		Color:             "auto",
		ChallengeAttempts: DefaultChallengeAttempts,
		PromptMnemonics:   true,
	}
}

// DefaultConfigDir is the default solsign configuration directory
const DefaultConfigDir = "~/.solsign"

// GetConfigPath resolves the config file path.
// Resolution order: --config flag > SOLSIGN_CONFIG env var > ~/.solsign/config.yaml
func GetConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("SOLSIGN_CONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".solsign", "config.yaml")
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
// Relative key file paths are resolved against the config file's directory.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			Debug("config file not found, using defaults", "path", path)
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	switch config.Color {
	case "auto", "always", "never":
	case "":
		config.Color = "auto"
	default:
		return Config{}, fmt.Errorf("invalid color '%s' in config (must be auto, always, or never)", config.Color)
	}

	if config.ChallengeAttempts < 1 {
		return Config{}, fmt.Errorf("challenge_attempts must be at least 1, got %d", config.ChallengeAttempts)
	}

	baseDir := filepath.Dir(path)
	for i, f := range config.KeyFiles {
		config.KeyFiles[i] = ResolvePath(f, baseDir)
	}
	if config.HistoryFile != "" {
		config.HistoryFile = ResolvePath(config.HistoryFile, baseDir)
	}

	Debug("loaded config", "path", path, "key_files", len(config.KeyFiles))
	return config, nil
}

// ResolvePath expands a leading ~ and resolves relative paths against baseDir.
func ResolvePath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
