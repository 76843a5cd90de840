// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

// Package session drives the signing workflow: it owns the loaded key pairs
// and the optional challenge secret, and turns each submitted transaction
// into a complete or partially signed result.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/solsign-dev/solsign/internal/crypto"
	"github.com/solsign-dev/solsign/internal/keys"
	"github.com/solsign-dev/solsign/internal/util"
	"github.com/solsign-dev/solsign/internal/wire"
)

// State is a step of the session lifecycle:
// CollectingKeys -> ChallengeSetup -> AwaitingInput -> (Processing -> AwaitingInput)* -> Terminated
type State int

const (
	StateCollectingKeys State = iota
	StateChallengeSetup
	StateAwaitingInput
	StateProcessing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateCollectingKeys:
		return "collecting-keys"
	case StateChallengeSetup:
		return "challenge-setup"
	case StateAwaitingInput:
		return "awaiting-input"
	case StateProcessing:
		return "processing"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Prompter reads operator input without echo. ok is false at end of input.
// The returned bytes belong to the caller, who zeroes them after use.
type Prompter interface {
	PromptSecret(label string) (value []byte, ok bool, err error)
}

// Source yields encoded transactions, one per call. ok is false at end of input.
type Source interface {
	Next() (text string, ok bool, err error)
}

// Sink receives the result of each processing cycle.
type Sink interface {
	Report(Result) error
}

// Option configures a Session.
type Option func(*Session)

// WithPrompter sets the collaborator used for the challenge secret and for
// mnemonic key entry.
func WithPrompter(p Prompter) Option {
	return func(s *Session) { s.prompter = p }
}

// WithSingleShot terminates the session after one processing cycle.
func WithSingleShot() Option {
	return func(s *Session) { s.singleShot = true }
}

// WithChallengeAttempts sets how many tries the operator gets per transaction.
func WithChallengeAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// Session is the single owner of every key pair and of the challenge digest.
// It is not safe for concurrent use, except for Wipe; the key set is frozen
// once key entry finishes.
type Session struct {
	mu         sync.Mutex // guards keys and challenge against Wipe
	state      State
	keys       []*keys.KeyPair
	challenge  *crypto.ChallengeDigest
	prompter   Prompter
	attempts   int
	singleShot bool
}

// New creates a session in CollectingKeys holding the initial key pairs.
// The session takes ownership of the pairs and wipes them on Close.
func New(initial []*keys.KeyPair, opts ...Option) *Session {
	s := &Session{
		state:    StateCollectingKeys,
		attempts: util.DefaultChallengeAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, kp := range initial {
		if _, err := s.AddKey(kp); err != nil {
			util.Debug("skipping initial key", "error", err)
		}
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// PublicKeys lists the owned keys in the order they were added.
func (s *Session) PublicKeys() []wire.PublicKey {
	out := make([]wire.PublicKey, len(s.keys))
	for i, kp := range s.keys {
		out[i] = kp.PublicKey()
	}
	return out
}

// HasChallenge reports whether a challenge secret is set.
func (s *Session) HasChallenge() bool {
	return s.challenge != nil
}

// AddKey hands kp to the session. A key whose public key is already loaded
// is wiped and reported as not added.
func (s *Session) AddKey(kp *keys.KeyPair) (bool, error) {
	if kp == nil {
		return false, ErrNilKey
	}
	if s.state != StateCollectingKeys {
		return false, fmt.Errorf("%w: cannot add keys while %s", ErrState, s.state)
	}
	pk := kp.PublicKey()
	for _, existing := range s.keys {
		if existing == kp {
			return false, nil
		}
		if existing.PublicKey() == pk {
			kp.Wipe()
			return false, nil
		}
	}
	s.mu.Lock()
	s.keys = append(s.keys, kp)
	s.mu.Unlock()
	util.Debug("added key", "public_key", pk.String(), "keys", len(s.keys))
	return true, nil
}

// FinishKeyEntry freezes the key set and moves to ChallengeSetup.
func (s *Session) FinishKeyEntry() error {
	if s.state != StateCollectingKeys {
		return fmt.Errorf("%w: key entry already finished", ErrState)
	}
	s.state = StateChallengeSetup
	return nil
}

// SetChallenge records the challenge secret as a digest, or none when secret
// is empty, and moves to AwaitingInput. The caller zeroes secret afterwards.
func (s *Session) SetChallenge(secret []byte) error {
	if s.state != StateChallengeSetup {
		return fmt.Errorf("%w: cannot set challenge while %s", ErrState, s.state)
	}
	if len(secret) > 0 {
		digest, err := crypto.NewChallengeDigest(secret)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.challenge = digest
		s.mu.Unlock()
	}
	s.state = StateAwaitingInput
	return nil
}

// Submit runs one processing cycle on a Base64 transaction. Failures are
// reported in the Result and never change the key set; the session returns
// to AwaitingInput, or terminates in single-shot mode.
func (s *Session) Submit(text string) Result {
	if s.state != StateAwaitingInput {
		return Result{Status: StatusFailed, Err: fmt.Errorf("%w: cannot process transactions while %s", ErrState, s.state)}
	}
	s.state = StateProcessing
	defer s.endCycle()

	return s.process(text)
}

func (s *Session) endCycle() {
	if s.singleShot {
		s.Close()
		return
	}
	s.state = StateAwaitingInput
}

func (s *Session) process(text string) Result {
	tx, err := wire.Decode(text)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}
	if bad, err := wire.VerifySlots(tx); err == nil && len(bad) > 0 {
		util.Warn("transaction carries signatures that do not verify", "slots", bad)
	}

	message, err := wire.MessageBytes(tx)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}

	signers := s.pendingSigners(tx)
	if len(signers) > 0 && s.challenge != nil {
		if err := s.confirmChallenge(); err != nil {
			return Result{Status: StatusFailed, Err: err}
		}
	}

	var signed []wire.PublicKey
	for _, kp := range signers {
		sig, err := kp.Sign(message)
		if err != nil {
			return Result{Status: StatusFailed, Err: fmt.Errorf("signing with %s: %w", kp.PublicKey(), err)}
		}
		wrote, err := wire.ApplySignature(tx, kp.PublicKey(), sig)
		if errors.Is(err, wire.ErrSlotNotFound) {
			// pendingSigners only returns required signers
			panic(fmt.Sprintf("signature slot assertion failed: %v", err))
		}
		if err != nil {
			return Result{Status: StatusFailed, Err: err}
		}
		if wrote {
			signed = append(signed, kp.PublicKey())
		}
	}

	encoded, err := wire.Encode(tx)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}

	if wire.IsComplete(tx) {
		res := Result{Status: StatusComplete, Transaction: encoded, Signed: signed}
		if len(tx.Signatures) > 0 {
			res.Signature = tx.Signatures[0]
		}
		return res
	}
	return Result{
		Status:      StatusIncomplete,
		Transaction: encoded,
		Missing:     wire.MissingSigners(tx),
		Signed:      signed,
	}
}

// pendingSigners returns the owned keys that are required signers of tx and
// whose slot is still empty, in slot order.
func (s *Session) pendingSigners(tx *wire.Transaction) []*keys.KeyPair {
	var out []*keys.KeyPair
	for i, pk := range wire.RequiredSigners(tx) {
		if !tx.Signatures[i].IsZero() {
			continue
		}
		for _, kp := range s.keys {
			if kp.PublicKey() == pk {
				out = append(out, kp)
				break
			}
		}
	}
	return out
}

// confirmChallenge asks for the challenge secret up to the attempt budget.
func (s *Session) confirmChallenge() error {
	if s.prompter == nil {
		return fmt.Errorf("%w: no prompter available", ErrChallenge)
	}
	for attempt := 1; attempt <= s.attempts; attempt++ {
		label := "Challenge password: "
		if attempt > 1 {
			label = fmt.Sprintf("Challenge password (attempt %d of %d): ", attempt, s.attempts)
		}
		value, ok, err := s.prompter.PromptSecret(label)
		if err != nil {
			crypto.ZeroBytes(value)
			return fmt.Errorf("%w: %v", ErrChallenge, err)
		}
		if !ok {
			return fmt.Errorf("%w: end of input", ErrChallenge)
		}
		matched := s.challenge.Matches(value)
		crypto.ZeroBytes(value)
		if matched {
			return nil
		}
		util.Debug("challenge mismatch", "attempt", attempt)
	}
	return fmt.Errorf("%w: %d failed attempts", ErrChallenge, s.attempts)
}

// Run reads transactions from src until end of input, reporting each result
// to sink. It returns after one cycle in single-shot mode.
func (s *Session) Run(src Source, sink Sink) error {
	if s.state != StateAwaitingInput {
		return fmt.Errorf("%w: cannot read transactions while %s", ErrState, s.state)
	}
	for {
		text, ok, err := src.Next()
		if err != nil {
			s.Close()
			return err
		}
		if !ok {
			s.Close()
			return nil
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := sink.Report(s.Submit(text)); err != nil {
			s.Close()
			return err
		}
		if s.state == StateTerminated {
			return nil
		}
	}
}

// Wipe destroys every private key and the challenge digest without changing
// the session state. It may run concurrently with Submit or key entry; a
// signature attempted afterwards fails with keys.ErrWiped.
func (s *Session) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys.WipeAll(s.keys)
	s.challenge.Destroy()
}

// Close wipes every key and the challenge digest and terminates the session.
func (s *Session) Close() {
	s.Wipe()
	s.mu.Lock()
	s.challenge = nil
	s.mu.Unlock()
	s.state = StateTerminated
}
