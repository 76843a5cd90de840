// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/solsign-dev/solsign/internal/crypto"
	"github.com/solsign-dev/solsign/internal/mnemonic"
)

// EnterMnemonicKeys repeatedly asks for a mnemonic and passphrase, shows the
// candidate keys and adds the one the operator selects. An empty mnemonic or
// end of input ends key entry; derivation errors are reported to w and the
// operator is asked again. The session stays in CollectingKeys.
func (s *Session) EnterMnemonicKeys(p Prompter, w io.Writer) error {
	if s.state != StateCollectingKeys {
		return fmt.Errorf("%w: cannot enter keys while %s", ErrState, s.state)
	}
	for {
		done, err := s.enterOneMnemonic(p, w)
		if err != nil || done {
			return err
		}
	}
}

func (s *Session) enterOneMnemonic(p Prompter, w io.Writer) (bool, error) {
	phrase, ok, err := p.PromptSecret("Mnemonic (empty to finish): ")
	defer crypto.ZeroBytes(phrase)
	if err != nil {
		return true, err
	}
	if !ok || len(bytes.TrimSpace(phrase)) == 0 {
		return true, nil
	}

	passphrase, _, err := p.PromptSecret("Passphrase (empty for none): ")
	defer crypto.ZeroBytes(passphrase)
	if err != nil {
		return true, err
	}

	seed, err := mnemonic.SeedFrom(mnemonic.NormalizeWords(phrase), passphrase)
	if err != nil {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
		return false, nil
	}
	candidates, err := mnemonic.DeriveCandidates(seed)
	crypto.ZeroBytes(seed)
	if err != nil {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
		return false, nil
	}

	_, _ = fmt.Fprintln(w, "Candidate keys:")
	for _, c := range candidates {
		label := c.Path
		if label == "" {
			label = "(no derivation path)"
		}
		_, _ = fmt.Fprintf(w, "  [%d] %s %s\n", c.Index, c.Key.PublicKey(), label)
	}

	for {
		choice, err := s.promptSelection(p, w)
		if err != nil {
			_, _ = mnemonic.Select(candidates, mnemonic.NoSelection)
			return true, err
		}
		kp, err := mnemonic.Select(candidates, choice)
		if err != nil {
			_, _ = fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		if kp == nil {
			_, _ = fmt.Fprintln(w, "No key selected")
			return false, nil
		}
		added, err := s.AddKey(kp)
		if err != nil {
			kp.Wipe()
			return true, err
		}
		if added {
			_, _ = fmt.Fprintf(w, "Added key %s\n", kp.PublicKey())
		} else {
			_, _ = fmt.Fprintf(w, "Key %s is already loaded\n", kp.PublicKey())
		}
		return false, nil
	}
}

// errBadSelection is reported for unparseable selections and asked again.
var errBadSelection = errors.New("enter a candidate number or 'none'")

// promptSelection returns a candidate index or NoSelection. End of input
// counts as none.
func (s *Session) promptSelection(p Prompter, w io.Writer) (int, error) {
	for {
		value, ok, err := p.PromptSecret(fmt.Sprintf("Select key [0-%d] or 'none': ", mnemonic.CandidateCount-1))
		if err != nil {
			return mnemonic.NoSelection, err
		}
		if !ok {
			return mnemonic.NoSelection, nil
		}
		choice, err := parseSelection(string(value))
		crypto.ZeroBytes(value)
		if err == nil {
			return choice, nil
		}
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func parseSelection(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "n":
		return mnemonic.NoSelection, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errBadSelection
	}
	return n, nil
}
