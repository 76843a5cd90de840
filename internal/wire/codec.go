// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package wire

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/solsign-dev/solsign/internal/util"
)

// versionPrefixMask marks a versioned message. Legacy messages start with
// NumRequiredSignatures, which never has the high bit set.
const versionPrefixMask = 0x80

// Decode parses a standard Base64 transaction.
func Decode(text string) (*Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrMalformed, err)
	}
	return Unmarshal(raw)
}

// Encode serializes tx and returns it as standard Base64.
func Encode(tx *Transaction) (string, error) {
	raw, err := Marshal(tx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Unmarshal parses the wire layout: a compact array of signatures followed
// by the message section. The whole input must be consumed.
func Unmarshal(raw []byte) (*Transaction, error) {
	r := &reader{buf: raw}

	numSigs, err := r.compact("signature count")
	if err != nil {
		return nil, err
	}
	tx := &Transaction{Signatures: makeSlice[Signature](numSigs)}
	for i := range tx.Signatures {
		b, err := r.take(SignatureSize, "signature")
		if err != nil {
			return nil, err
		}
		copy(tx.Signatures[i][:], b)
	}

	messageStart := r.off
	if err := r.message(&tx.Message); err != nil {
		return nil, err
	}
	if r.off != len(raw) {
		return nil, fmt.Errorf("%w: %d trailing bytes after message", ErrMalformed, len(raw)-r.off)
	}
	if err := validate(tx); err != nil {
		return nil, err
	}

	util.Debug("decoded transaction",
		"bytes", len(raw),
		"message_bytes", len(raw)-messageStart,
		"version", tx.Message.Version.String(),
		"signatures", len(tx.Signatures),
		"accounts", len(tx.Message.AccountKeys),
		"instructions", len(tx.Message.Instructions))
	return tx, nil
}

// Marshal serializes tx into the wire layout.
func Marshal(tx *Transaction) ([]byte, error) {
	if err := validate(tx); err != nil {
		return nil, err
	}
	out, err := appendCompactU16(nil, len(tx.Signatures))
	if err != nil {
		return nil, err
	}
	for i := range tx.Signatures {
		out = append(out, tx.Signatures[i][:]...)
	}
	return appendMessage(out, &tx.Message)
}

// MessageBytes returns the message section: everything after the signature
// array. Signatures are computed and verified over these bytes.
func MessageBytes(tx *Transaction) ([]byte, error) {
	return appendMessage(nil, &tx.Message)
}

// validate checks the structural invariants shared by the decoder and encoder.
func validate(tx *Transaction) error {
	h := tx.Message.Header
	if int(h.NumRequiredSignatures) != len(tx.Signatures) {
		return fmt.Errorf("%w: %d signatures but header requires %d",
			ErrMalformed, len(tx.Signatures), h.NumRequiredSignatures)
	}
	if int(h.NumRequiredSignatures) > len(tx.Message.AccountKeys) {
		return fmt.Errorf("%w: header requires %d signers but only %d account keys",
			ErrMalformed, h.NumRequiredSignatures, len(tx.Message.AccountKeys))
	}
	if h.NumRequiredSignatures > 0 && h.NumReadonlySignedAccounts >= h.NumRequiredSignatures {
		return fmt.Errorf("%w: fee payer cannot be read-only", ErrMalformed)
	}
	if int(h.NumReadonlyUnsignedAccounts) > len(tx.Message.AccountKeys)-int(h.NumRequiredSignatures) {
		return fmt.Errorf("%w: more read-only unsigned accounts than unsigned keys", ErrMalformed)
	}
	seen := make(map[PublicKey]struct{}, len(tx.Message.AccountKeys))
	for i, pk := range tx.Message.AccountKeys {
		if _, dup := seen[pk]; dup {
			return fmt.Errorf("%w: account key %d duplicates %s", ErrMalformed, i, pk)
		}
		seen[pk] = struct{}{}
	}
	switch tx.Message.Version {
	case MessageLegacy:
		if len(tx.Message.AddressTableLookups) != 0 {
			return fmt.Errorf("%w: legacy message cannot carry address table lookups", ErrMalformed)
		}
	case MessageV0:
	default:
		return fmt.Errorf("%w: unsupported message version %s", ErrMalformed, tx.Message.Version)
	}
	return nil
}

func appendMessage(out []byte, m *Message) ([]byte, error) {
	var err error
	if m.Version != MessageLegacy {
		out = append(out, versionPrefixMask|byte(m.Version-1))
	}
	out = append(out, m.Header.NumRequiredSignatures, m.Header.NumReadonlySignedAccounts, m.Header.NumReadonlyUnsignedAccounts)

	if out, err = appendCompactU16(out, len(m.AccountKeys)); err != nil {
		return nil, err
	}
	for i := range m.AccountKeys {
		out = append(out, m.AccountKeys[i][:]...)
	}
	out = append(out, m.RecentBlockhash[:]...)

	if out, err = appendCompactU16(out, len(m.Instructions)); err != nil {
		return nil, err
	}
	for _, ix := range m.Instructions {
		out = append(out, ix.ProgramIDIndex)
		if out, err = appendBytes(out, ix.Accounts); err != nil {
			return nil, err
		}
		if out, err = appendBytes(out, ix.Data); err != nil {
			return nil, err
		}
	}

	if m.Version == MessageLegacy {
		return out, nil
	}
	if out, err = appendCompactU16(out, len(m.AddressTableLookups)); err != nil {
		return nil, err
	}
	for _, l := range m.AddressTableLookups {
		out = append(out, l.AccountKey[:]...)
		if out, err = appendBytes(out, l.WritableIndexes); err != nil {
			return nil, err
		}
		if out, err = appendBytes(out, l.ReadonlyIndexes); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendBytes(out []byte, b []byte) ([]byte, error) {
	out, err := appendCompactU16(out, len(b))
	if err != nil {
		return nil, err
	}
	return append(out, b...), nil
}

// reader walks the raw transaction; every failure wraps ErrMalformed and
// names the field and offset.
type reader struct {
	buf []byte
	off int
}

func (r *reader) take(n int, what string) ([]byte, error) {
	if n > len(r.buf)-r.off {
		return nil, fmt.Errorf("%w %s at offset %d", ErrTruncated, what, r.off)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) byte(what string) (byte, error) {
	b, err := r.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) compact(what string) (int, error) {
	v, n, err := decodeCompactU16(r.buf[r.off:])
	if err != nil {
		return 0, fmt.Errorf("%s at offset %d: %w", what, r.off, err)
	}
	r.off += n
	return v, nil
}

// makeSlice leaves zero-length arrays nil so that an encoded transaction
// decodes back to the value it was built from.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, n)
}

// bytes reads a compact-length-prefixed byte array into a fresh slice.
func (r *reader) bytes(what string) ([]byte, error) {
	n, err := r.compact(what + " length")
	if err != nil {
		return nil, err
	}
	b, err := r.take(n, what)
	if err != nil {
		return nil, err
	}
	out := makeSlice[byte](n)
	copy(out, b)
	return out, nil
}

func (r *reader) publicKey(what string) (PublicKey, error) {
	var pk PublicKey
	b, err := r.take(PublicKeySize, what)
	if err != nil {
		return pk, err
	}
	copy(pk[:], b)
	return pk, nil
}

func (r *reader) message(m *Message) error {
	first, err := r.byte("message header")
	if err != nil {
		return err
	}
	if first&versionPrefixMask != 0 {
		version := first &^ versionPrefixMask
		if version != 0 {
			return fmt.Errorf("%w: unsupported message version %d", ErrMalformed, version)
		}
		m.Version = MessageV0
		if first, err = r.byte("message header"); err != nil {
			return err
		}
	}

	m.Header.NumRequiredSignatures = first
	if m.Header.NumReadonlySignedAccounts, err = r.byte("message header"); err != nil {
		return err
	}
	if m.Header.NumReadonlyUnsignedAccounts, err = r.byte("message header"); err != nil {
		return err
	}

	numKeys, err := r.compact("account key count")
	if err != nil {
		return err
	}
	m.AccountKeys = makeSlice[PublicKey](numKeys)
	for i := range m.AccountKeys {
		if m.AccountKeys[i], err = r.publicKey("account key"); err != nil {
			return err
		}
	}

	b, err := r.take(HashSize, "recent blockhash")
	if err != nil {
		return err
	}
	copy(m.RecentBlockhash[:], b)

	numIx, err := r.compact("instruction count")
	if err != nil {
		return err
	}
	m.Instructions = makeSlice[Instruction](numIx)
	for i := range m.Instructions {
		ix := &m.Instructions[i]
		if ix.ProgramIDIndex, err = r.byte("program index"); err != nil {
			return err
		}
		if ix.Accounts, err = r.bytes("instruction accounts"); err != nil {
			return err
		}
		if ix.Data, err = r.bytes("instruction data"); err != nil {
			return err
		}
	}

	if m.Version == MessageLegacy {
		return nil
	}

	numLookups, err := r.compact("address table lookup count")
	if err != nil {
		return err
	}
	m.AddressTableLookups = makeSlice[AddressTableLookup](numLookups)
	for i := range m.AddressTableLookups {
		l := &m.AddressTableLookups[i]
		if l.AccountKey, err = r.publicKey("address table key"); err != nil {
			return err
		}
		if l.WritableIndexes, err = r.bytes("writable indexes"); err != nil {
			return err
		}
		if l.ReadonlyIndexes, err = r.bytes("read-only indexes"); err != nil {
			return err
		}
	}
	return nil
}
