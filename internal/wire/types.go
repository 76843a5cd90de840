// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

// Package wire implements the binary transaction format: decoding and
// encoding of transactions, the signed message section, and the accounting
// of signature slots.
package wire

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const (
	// PublicKeySize is the size of an account key in bytes.
	PublicKeySize = 32
	// SignatureSize is the size of an ed25519 signature in bytes.
	SignatureSize = 64
	// HashSize is the size of a blockhash in bytes.
	HashSize = 32
)

// PublicKey identifies an account. It is a plain value and never secret.
type PublicKey [PublicKeySize]byte

// String renders the key in base58.
func (p PublicKey) String() string {
	return base58.Encode(p[:])
}

// IsOnCurve reports whether the key decodes to a valid edwards25519 point.
// Program-derived addresses are off the curve and can never sign.
func (p PublicKey) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(p[:])
	return err == nil
}

// Signature is one ed25519 signature slot. The all-zero value marks an empty slot.
type Signature [SignatureSize]byte

// IsZero reports whether the slot is empty.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// String renders the signature in base58.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

// Hash is an opaque 32-byte recent blockhash.
type Hash [HashSize]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

// MessageVersion distinguishes legacy messages from versioned ones.
type MessageVersion uint8

const (
	// MessageLegacy has no version prefix and no address table lookups.
	MessageLegacy MessageVersion = iota
	// MessageV0 carries a 0x80 prefix and trailing address table lookups.
	MessageV0
)

func (v MessageVersion) String() string {
	switch v {
	case MessageLegacy:
		return "legacy"
	case MessageV0:
		return "v0"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// Header counts the signing and read-only accounts of a message.
type Header struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// Instruction references its program and accounts by index into the
// message's account keys.
type Instruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// AddressTableLookup loads additional accounts from an on-chain table (v0 only).
type AddressTableLookup struct {
	AccountKey      PublicKey
	WritableIndexes []uint8
	ReadonlyIndexes []uint8
}

// Message is the signed portion of a transaction.
type Message struct {
	Version             MessageVersion
	Header              Header
	AccountKeys         []PublicKey
	RecentBlockhash     Hash
	Instructions        []Instruction
	AddressTableLookups []AddressTableLookup
}

// IsSigner reports whether the static account at index i must sign.
func (m *Message) IsSigner(i int) bool {
	return i >= 0 && i < int(m.Header.NumRequiredSignatures)
}

// IsWritable reports whether the static account at index i is writable.
func (m *Message) IsWritable(i int) bool {
	if i < 0 || i >= len(m.AccountKeys) {
		return false
	}
	required := int(m.Header.NumRequiredSignatures)
	if i < required {
		return i < required-int(m.Header.NumReadonlySignedAccounts)
	}
	return i < len(m.AccountKeys)-int(m.Header.NumReadonlyUnsignedAccounts)
}

// Transaction is a message plus one signature slot per required signer.
type Transaction struct {
	Signatures []Signature
	Message    Message
}

// FeePayer returns the account at index 0.
func (tx *Transaction) FeePayer() (PublicKey, bool) {
	if len(tx.Message.AccountKeys) == 0 {
		return PublicKey{}, false
	}
	return tx.Message.AccountKeys[0], true
}
