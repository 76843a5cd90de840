// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/solsign-dev/solsign/internal/wire"
)

const usageText = `
Usage: solsign [--help] [--version]
       solsign [--config FILE] [--no-prompt] [KEY_FILE]...

solsign reads Solana transactions in Base64 encoded format from stdin,
displays them, signs them, and writes signed transactions and signatures to
stdout.

On start-up, solsign reads any private key files listed in the config file or
on the command line. It then prompts for mnemonic and passphrase combinations.
Collectively these keys are available to sign transactions. An optional
challenge password can be set; it must be re-entered before each transaction
is signed.

After reading in keys, solsign waits for base64-encoded transactions on
standard input. After each transaction is read in, type one of these actions:

  (,) Repeat a display of the base64-encoded transaction.
  (.) Display a decoded version of the transaction.
  (-) Sign the transaction and display the Base64 encoded version of the
      signed transaction. The transaction may still be incomplete if not all
      private keys were available for signing.
  (=) Sign the transaction and display the base-58 encoded fee payer
      signature. Only available if the transaction can be completely signed
      using available keys.
  (/) Clear any partially read transaction from memory.

These actions may be repeated for the current transaction until a new
transaction is input.

With --no-prompt, solsign only uses key files, reads a single transaction from
standard input, signs it and writes the fee payer signature to stdout. If the
transaction is still missing signatures, the partially signed transaction is
written instead and solsign exits with status 2.

Input transactions must be fully formed, with signatures not yet provided
supplied as all zero bytes. Each empty slot owned by an available key is filled
with that key's signature, so a transaction can be passed from signer to signer
until it is complete.
`

// ui renders operator-facing output with optional color.
type ui struct {
	out   io.Writer
	title lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	dim   lipgloss.Style
}

// newUI builds styles for w. mode is the configured color setting: auto
// follows the terminal, always forces ANSI colors, never disables them.
func newUI(w io.Writer, mode string) *ui {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	}
	return &ui{
		out:   w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		good:  r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (u *ui) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(u.out, format, args...)
}

func (u *ui) errorf(format string, args ...any) {
	u.printf("%s\n", u.bad.Render("Error: "+fmt.Sprintf(format, args...)))
}

// summary lists every signature slot with its signer and whether it is
// provided, signable with an owned key, or missing.
func (u *ui) summary(tx *wire.Transaction, owned []wire.PublicKey) {
	have := map[wire.PublicKey]bool{}
	for _, pk := range owned {
		have[pk] = true
	}
	signers := wire.RequiredSigners(tx)
	provided := wire.SignedSlots(tx).Count()

	u.printf("%s\n", u.title.Render(fmt.Sprintf("Signatures: %d of %d provided", provided, len(tx.Signatures))))
	for i, pk := range signers {
		var status string
		switch {
		case !tx.Signatures[i].IsZero():
			status = u.good.Render("provided")
		case have[pk]:
			status = u.warn.Render("missing, can sign")
		default:
			status = u.dim.Render("missing")
		}
		u.printf("  [%d] %s %s\n", i, pk, status)
	}
}

func (u *ui) describe(tx *wire.Transaction) {
	var b strings.Builder
	if err := wire.Describe(&b, tx); err != nil {
		u.errorf("%v", err)
		return
	}
	u.printf("%s", b.String())
}

func (u *ui) actions(complete bool) {
	sign := "(=) sign, show signature"
	if !complete {
		sign = u.dim.Render(sign + " [unavailable]")
	}
	u.printf("%s\n", u.dim.Render("(,) base64  (.) decode  (-) sign, show base64  ")+sign+u.dim.Render("  (/) clear"))
}

func (u *ui) missing(keys []wire.PublicKey) {
	if len(keys) == 0 {
		return
	}
	u.printf("%s\n", u.warn.Render(fmt.Sprintf("Still missing %d signature(s):", len(keys))))
	for _, pk := range keys {
		u.printf("  %s\n", pk)
	}
}

// payloadLine prints a transaction or signature on its own line so it can be
// copied without decoration.
func (u *ui) payloadLine(s string) {
	u.printf("%s\n", s)
}
