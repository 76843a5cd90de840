// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package wire

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Describe writes a human-readable view of tx. Slots that fail verification
// are marked invalid rather than treated as an error.
func Describe(w io.Writer, tx *Transaction) error {
	m := &tx.Message
	invalid := map[int]bool{}
	if bad, err := VerifySlots(tx); err == nil {
		for _, i := range bad {
			invalid[i] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Version: %s\n", m.Version)
	fmt.Fprintf(&b, "Header: %d required signatures, %d read-only signed, %d read-only unsigned\n",
		m.Header.NumRequiredSignatures, m.Header.NumReadonlySignedAccounts, m.Header.NumReadonlyUnsignedAccounts)

	if payer, ok := tx.FeePayer(); ok {
		fmt.Fprintf(&b, "Fee payer: %s\n", payer)
	}
	fmt.Fprintf(&b, "Accounts (%d):\n", len(m.AccountKeys))
	for i, pk := range m.AccountKeys {
		fmt.Fprintf(&b, "  [%d] %s %s\n", i, pk, accountFlags(m, i))
	}
	fmt.Fprintf(&b, "Recent blockhash: %s\n", m.RecentBlockhash)

	fmt.Fprintf(&b, "Instructions (%d):\n", len(m.Instructions))
	for i, ix := range m.Instructions {
		fmt.Fprintf(&b, "  [%d] program %s\n", i, accountLabel(m, int(ix.ProgramIDIndex)))
		for _, a := range ix.Accounts {
			fmt.Fprintf(&b, "      account %s\n", accountLabel(m, int(a)))
		}
		fmt.Fprintf(&b, "      data (%d bytes) %s\n", len(ix.Data), hex.EncodeToString(ix.Data))
	}

	if len(m.AddressTableLookups) > 0 {
		fmt.Fprintf(&b, "Address table lookups (%d):\n", len(m.AddressTableLookups))
		for i, l := range m.AddressTableLookups {
			fmt.Fprintf(&b, "  [%d] table %s writable %v read-only %v\n", i, l.AccountKey, l.WritableIndexes, l.ReadonlyIndexes)
		}
	}

	signers := RequiredSigners(tx)
	fmt.Fprintf(&b, "Signatures (%d):\n", len(tx.Signatures))
	for i, sig := range tx.Signatures {
		var who string
		if i < len(signers) {
			who = signers[i].String()
		}
		switch {
		case sig.IsZero():
			fmt.Fprintf(&b, "  [%d] %s: missing\n", i, who)
		case invalid[i]:
			fmt.Fprintf(&b, "  [%d] %s: INVALID %s\n", i, who, sig)
		default:
			fmt.Fprintf(&b, "  [%d] %s: %s\n", i, who, sig)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func accountFlags(m *Message, i int) string {
	var flags []string
	if i == 0 {
		flags = append(flags, "fee-payer")
	}
	if m.IsSigner(i) {
		flags = append(flags, "signer")
	}
	if !m.AccountKeys[i].IsOnCurve() {
		flags = append(flags, "off-curve")
	}
	if m.IsWritable(i) {
		flags = append(flags, "writable")
	} else {
		flags = append(flags, "read-only")
	}
	return "(" + strings.Join(flags, ", ") + ")"
}

// accountLabel resolves an index to a static key; indexes past the static
// keys point into address table lookups.
func accountLabel(m *Message, i int) string {
	if i < len(m.AccountKeys) {
		return fmt.Sprintf("#%d %s", i, m.AccountKeys[i])
	}
	return fmt.Sprintf("#%d (lookup table)", i)
}
