// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package wire

import (
	"crypto/ed25519"
	"fmt"

	"github.com/willf/bitset"
)

// Signer identity is positional: slot i belongs to AccountKeys[i]. Slots are
// never reordered.

// RequiredSigners returns the first NumRequiredSignatures account keys in
// order. Index 0 is the fee payer.
func RequiredSigners(tx *Transaction) []PublicKey {
	n := int(tx.Message.Header.NumRequiredSignatures)
	if n > len(tx.Message.AccountKeys) {
		n = len(tx.Message.AccountKeys)
	}
	out := make([]PublicKey, n)
	copy(out, tx.Message.AccountKeys[:n])
	return out
}

// SignedSlots returns a bitset with bit i set when slot i holds a signature.
func SignedSlots(tx *Transaction) *bitset.BitSet {
	b := bitset.New(uint(len(tx.Signatures)))
	for i, sig := range tx.Signatures {
		if !sig.IsZero() {
			b.Set(uint(i))
		}
	}
	return b
}

// MissingSigners returns the required signers whose slot is still empty, in
// slot order.
func MissingSigners(tx *Transaction) []PublicKey {
	signed := SignedSlots(tx)
	var missing []PublicKey
	for i, pk := range RequiredSigners(tx) {
		if !signed.Test(uint(i)) {
			missing = append(missing, pk)
		}
	}
	return missing
}

// IsComplete reports whether every slot is filled.
func IsComplete(tx *Transaction) bool {
	return SignedSlots(tx).Count() == uint(len(tx.Signatures))
}

// SlotIndex returns the slot owned by pk.
func SlotIndex(tx *Transaction, pk PublicKey) (int, error) {
	for i, signer := range RequiredSigners(tx) {
		if signer == pk {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrSlotNotFound, pk)
}

// ApplySignature writes sig into pk's slot if the slot is empty. A filled slot
// is left untouched, so re-applying is a no-op. The returned bool reports
// whether the slot was written.
func ApplySignature(tx *Transaction, pk PublicKey, sig Signature) (bool, error) {
	i, err := SlotIndex(tx, pk)
	if err != nil {
		return false, err
	}
	if i >= len(tx.Signatures) {
		return false, fmt.Errorf("%w: slot %d beyond %d signatures", ErrMalformed, i, len(tx.Signatures))
	}
	if !tx.Signatures[i].IsZero() {
		return false, nil
	}
	tx.Signatures[i] = sig
	return true, nil
}

// VerifySlots checks every filled slot against its signer over the message
// bytes and returns the indexes that fail verification.
func VerifySlots(tx *Transaction) ([]int, error) {
	msg, err := MessageBytes(tx)
	if err != nil {
		return nil, err
	}
	signers := RequiredSigners(tx)
	var bad []int
	for i, sig := range tx.Signatures {
		if sig.IsZero() || i >= len(signers) {
			continue
		}
		if !ed25519.Verify(signers[i][:], msg, sig[:]) {
			bad = append(bad, i)
		}
	}
	return bad, nil
}
