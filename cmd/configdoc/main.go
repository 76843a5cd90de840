// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

// configdoc generates markdown documentation from the config struct tags.
// Usage: go run ./cmd/configdoc > CONFIG_REFERENCE.md
package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/solsign-dev/solsign/internal/security"
	"github.com/solsign-dev/solsign/internal/util"
)

// envVar is an environment variable read by solsign.
type envVar struct {
	Name        string
	Description string
}

var envVars = []envVar{
	{"SOLSIGN_CONFIG", "Config file path, used when --config is not given"},
	{"SOLSIGN_DEBUG", "Set to any value to enable debug logging on stderr"},
	{security.DisableMemoryLockEnv, "Set to any value to skip memory locking (for debugging)"},
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		fmt.Println("Usage: go run ./cmd/configdoc > CONFIG_REFERENCE.md")
		fmt.Println()
		fmt.Println("Generates markdown documentation from Go struct tags.")
		return
	}
	writeReference(os.Stdout)
}

func writeReference(w io.Writer) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("# Configuration Reference\n\n")
	p("Auto-generated from Go struct tags. Do not edit manually.\n\n")
	p("---\n\n")

	p("## solsign Configuration\n\n")
	p("File: `--config <path>`, `SOLSIGN_CONFIG`, or `%s/config.yaml`. ", util.DefaultConfigDir)
	p("A missing file means defaults. Relative paths resolve against the file's directory.\n\n")
	writeStructTable(w, reflect.TypeOf(util.Config{}))
	p("\n")

	p("Secrets never appear in the config file: keys come from solana-keygen\n")
	p("JSON files or are typed in as mnemonics.\n\n")

	p("## Environment Variables\n\n")
	p("| Variable | Description |\n")
	p("|----------|-------------|\n")
	for _, env := range envVars {
		p("| `%s` | %s |\n", env.Name, env.Description)
	}
}

func writeStructTable(w io.Writer, t reflect.Type) {
	_, _ = fmt.Fprintln(w, "| Field | Type | Default | Description |")
	_, _ = fmt.Fprintln(w, "|-------|------|---------|-------------|")

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]

		desc := field.Tag.Get("description")
		if desc == "" {
			desc = "(no description)"
		}
		def := field.Tag.Get("default")
		if def == "" {
			def = "(none)"
		}
		_, _ = fmt.Fprintf(w, "| `%s` | %s | `%s` | %s |\n", name, formatType(field.Type), def, desc)
	}
}

func formatType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	default:
		return t.String()
	}
}
