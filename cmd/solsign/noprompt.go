// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/solsign-dev/solsign/internal/session"
)

// Exit codes for --no-prompt.
const (
	exitOK         = 0
	exitError      = 1
	exitIncomplete = 2
)

// maxTransactionLine bounds a single Base64 line read from stdin.
const maxTransactionLine = 1 << 20

// scannerSource yields one transaction per input line.
type scannerSource struct {
	sc *bufio.Scanner
}

func newScannerSource(r io.Reader) *scannerSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxTransactionLine)
	return &scannerSource{sc: sc}
}

func (s *scannerSource) Next() (string, bool, error) {
	if s.sc.Scan() {
		return s.sc.Text(), true, nil
	}
	if err := s.sc.Err(); err != nil {
		return "", false, fmt.Errorf("failed to read transaction: %w", err)
	}
	return "", false, nil
}

// noPromptSink writes the fee payer signature of a complete transaction, or
// the partially signed transaction and its missing signers otherwise.
type noPromptSink struct {
	out      io.Writer
	errOut   io.Writer
	reported bool
	code     int
}

func (s *noPromptSink) Report(res session.Result) error {
	s.reported = true
	switch res.Status {
	case session.StatusComplete:
		s.code = exitOK
		_, err := fmt.Fprintln(s.out, res.Signature)
		return err
	case session.StatusIncomplete:
		s.code = exitIncomplete
		if _, err := fmt.Fprintln(s.out, res.Transaction); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(s.errOut, "Error: transaction is missing %d signature(s):\n", len(res.Missing))
		for _, pk := range res.Missing {
			_, _ = fmt.Fprintf(s.errOut, "  %s\n", pk)
		}
		return nil
	default:
		s.code = exitError
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", res.Err)
		return nil
	}
}

// runNoPrompt signs a single transaction read from in with the keys already
// held by sess. It never prompts and sets no challenge.
func runNoPrompt(sess *session.Session, in io.Reader, out, errOut io.Writer) int {
	if err := sess.FinishKeyEntry(); err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return exitError
	}
	if err := sess.SetChallenge(nil); err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return exitError
	}

	sink := &noPromptSink{out: out, errOut: errOut}
	if err := sess.Run(newScannerSource(in), sink); err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return exitError
	}
	if !sink.reported {
		_, _ = fmt.Fprintln(errOut, "Error: no transaction on standard input")
		return exitError
	}
	return sink.code
}
