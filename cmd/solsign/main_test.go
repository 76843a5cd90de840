// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package main

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr-tron/base58"

	"github.com/solsign-dev/solsign/internal/keys"
	"github.com/solsign-dev/solsign/internal/session"
	"github.com/solsign-dev/solsign/internal/wire"
)

type scriptedPrompter struct {
	answers []string
}

func (p *scriptedPrompter) PromptSecret(string) ([]byte, bool, error) {
	if len(p.answers) == 0 {
		return nil, false, nil
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return []byte(a), true, nil
}

func testKey(t *testing.T, b byte) *keys.KeyPair {
	t.Helper()
	kp, err := keys.FromSeed(bytes.Repeat([]byte{b}, 32))
	if err != nil {
		t.Fatal(err)
	}
	return kp
}

// keyFileJSON renders the solana-keygen file for seed: a JSON array of the
// 32 seed bytes followed by the 32 public key bytes.
func keyFileJSON(t *testing.T, seed []byte) []byte {
	t.Helper()
	priv := ed25519.NewKeyFromSeed(seed)
	values := make([]int, len(priv))
	for i, b := range priv {
		values[i] = int(b)
	}
	data, err := json.Marshal(values)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func testTx(t *testing.T, signers ...wire.PublicKey) string {
	t.Helper()
	program := wire.PublicKey{0xAA}
	accounts := append(append([]wire.PublicKey{}, signers...), program)
	tx := &wire.Transaction{
		Signatures: make([]wire.Signature, len(signers)),
		Message: wire.Message{
			Header:          wire.Header{NumRequiredSignatures: uint8(len(signers)), NumReadonlyUnsignedAccounts: 1},
			AccountKeys:     accounts,
			RecentBlockhash: wire.Hash{4, 5, 6},
			Instructions: []wire.Instruction{{
				ProgramIDIndex: uint8(len(accounts) - 1),
				Accounts:       []uint8{0},
				Data:           []byte{1, 2, 3},
			}},
		},
	}
	text, err := wire.Encode(tx)
	if err != nil {
		t.Fatal(err)
	}
	return text
}

func readySession(t *testing.T, pairs []*keys.KeyPair, opts ...session.Option) *session.Session {
	t.Helper()
	sess := session.New(pairs, opts...)
	if err := sess.FinishKeyEntry(); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetChallenge(nil); err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestIsAction(t *testing.T) {
	for _, a := range []string{",", ".", "-", "=", "/"} {
		if !isAction(a) {
			t.Errorf("isAction(%q) = false", a)
		}
	}
	for _, s := range []string{"", "x", "//", "AQID", "+"} {
		if isAction(s) {
			t.Errorf("isAction(%q) = true", s)
		}
	}
}

func TestRunNoPrompt(t *testing.T) {
	a, b := testKey(t, 1), testKey(t, 2)
	complete := testTx(t, a.PublicKey())
	partial := testTx(t, a.PublicKey(), b.PublicKey())

	tests := []struct {
		name       string
		input      string
		wantCode   int
		wantStderr string
	}{
		{"complete", "\n" + complete + "\n", exitOK, ""},
		{"incomplete", partial + "\n", exitIncomplete, b.PublicKey().String()},
		{"malformed", "AAAA\n", exitError, "malformed transaction"},
		{"empty input", "", exitError, "no transaction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp := testKey(t, 1)
			sess := session.New([]*keys.KeyPair{kp}, session.WithSingleShot())
			var out, errOut bytes.Buffer

			code := runNoPrompt(sess, strings.NewReader(tt.input), &out, &errOut)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, errOut.String())
			}
			if !strings.Contains(errOut.String(), tt.wantStderr) {
				t.Errorf("stderr %q does not mention %q", errOut.String(), tt.wantStderr)
			}
			if sess.State() != session.StateTerminated || !kp.Wiped() {
				t.Error("session not terminated with keys wiped")
			}
		})
	}
}

func TestRunNoPrompt_SignatureVerifies(t *testing.T) {
	a := testKey(t, 1)
	pub := a.PublicKey()
	text := testTx(t, pub)
	sess := session.New([]*keys.KeyPair{a}, session.WithSingleShot())

	var out, errOut bytes.Buffer
	if code := runNoPrompt(sess, strings.NewReader(text), &out, &errOut); code != exitOK {
		t.Fatalf("exit code = %d: %s", code, errOut.String())
	}

	sig, err := base58.Decode(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("output is not base58: %v", err)
	}
	tx, err := wire.Decode(text)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := wire.MessageBytes(tx)
	if err != nil {
		t.Fatal(err)
	}
	if !ed25519.Verify(pub[:], msg, sig) {
		t.Error("printed signature does not verify over the message")
	}
}

func TestConsole_Flow(t *testing.T) {
	a, b := testKey(t, 1), testKey(t, 2)
	defer b.Wipe()
	sess := readySession(t, []*keys.KeyPair{a})
	defer sess.Close()

	var out bytes.Buffer
	c := newConsole(sess, newUI(&out, "never"))
	text := testTx(t, a.PublicKey(), b.PublicKey())

	// transaction pasted over two lines
	c.handleLine(text[:8])
	if c.cur != nil || c.partial == "" {
		t.Fatal("first fragment should be held as partial input")
	}
	c.handleLine(text[8:])
	if c.cur == nil || c.partial != "" {
		t.Fatalf("transaction not decoded after second fragment:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Signatures: 0 of 2 provided") {
		t.Errorf("missing signature summary:\n%s", out.String())
	}

	out.Reset()
	c.handleLine("=")
	if !strings.Contains(out.String(), "cannot be completely signed") || !strings.Contains(out.String(), b.PublicKey().String()) {
		t.Errorf("'=' on an incompletable transaction:\n%s", out.String())
	}

	out.Reset()
	c.handleLine("-")
	signed := c.cur.text
	if signed == text {
		t.Fatal("current transaction not replaced by the signed one")
	}
	if !strings.Contains(out.String(), signed) || !strings.Contains(out.String(), "Still missing 1 signature") {
		t.Errorf("'-' output:\n%s", out.String())
	}

	out.Reset()
	c.handleLine(",")
	if strings.TrimSpace(out.String()) != signed {
		t.Errorf("',' printed %q", out.String())
	}

	out.Reset()
	c.handleLine("/")
	c.handleLine(".")
	if c.cur != nil || !strings.Contains(out.String(), "no transaction") {
		t.Errorf("after clear:\n%s", out.String())
	}
}

func TestConsole_FinishPrintsSignature(t *testing.T) {
	a := testKey(t, 1)
	sess := readySession(t, []*keys.KeyPair{a})
	defer sess.Close()

	var out bytes.Buffer
	c := newConsole(sess, newUI(&out, "never"))
	c.handleLine(testTx(t, a.PublicKey()))
	out.Reset()
	c.handleLine("=")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	last := lines[len(lines)-1]
	if raw, err := base58.Decode(last); err != nil || len(raw) != wire.SignatureSize {
		t.Errorf("last line %q is not a base58 signature", last)
	}
}

func TestConsole_RejectsMalformed(t *testing.T) {
	sess := readySession(t, nil)
	defer sess.Close()
	var out bytes.Buffer
	c := newConsole(sess, newUI(&out, "never"))

	c.handleLine("!!!!")
	if c.cur != nil || c.partial != "" {
		t.Error("malformed input kept")
	}
	if !strings.Contains(out.String(), "Error:") {
		t.Errorf("no error printed:\n%s", out.String())
	}
}

func TestConsole_RejectsNonBase64Partial(t *testing.T) {
	a := testKey(t, 1)
	sess := readySession(t, []*keys.KeyPair{a})
	defer sess.Close()
	var out bytes.Buffer
	c := newConsole(sess, newUI(&out, "never"))

	c.handleLine("hello")
	if c.partial != "" {
		t.Fatalf("non-base64 input kept as partial %q", c.partial)
	}
	if !strings.Contains(out.String(), "Error:") || strings.Contains(out.String(), "partial transaction") {
		t.Errorf("expected an immediate error:\n%s", out.String())
	}

	// a following paste starts clean
	c.handleLine(testTx(t, a.PublicKey()))
	if c.cur == nil {
		t.Errorf("valid transaction after rejected input not decoded:\n%s", out.String())
	}
}

func TestSetupChallenge(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    bool
	}{
		{"none", []string{""}, false},
		{"end of input", nil, false},
		{"confirmed", []string{"s3cret", "s3cret"}, true},
		{"retry after mismatch", []string{"s3cret", "typo", "s3cret", "s3cret"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New(nil)
			defer sess.Close()
			if err := sess.FinishKeyEntry(); err != nil {
				t.Fatal(err)
			}
			var out bytes.Buffer
			if err := setupChallenge(sess, &scriptedPrompter{answers: tt.answers}, newUI(&out, "never")); err != nil {
				t.Fatal(err)
			}
			if sess.HasChallenge() != tt.want {
				t.Errorf("HasChallenge = %v, want %v", sess.HasChallenge(), tt.want)
			}
			if sess.State() != session.StateAwaitingInput {
				t.Errorf("state = %s", sess.State())
			}
		})
	}
}

func TestLoadKeyFiles(t *testing.T) {
	dir := t.TempDir()
	kp := testKey(t, 7)
	data := keyFileJSON(t, bytes.Repeat([]byte{7}, ed25519.SeedSize))
	good := filepath.Join(dir, "id.json")
	if err := os.WriteFile(good, data, 0600); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("[1,2,3]"), 0600); err != nil {
		t.Fatal(err)
	}

	loaded, err := loadKeyFiles([]string{good})
	if err != nil || len(loaded) != 1 || loaded[0].PublicKey() != kp.PublicKey() {
		t.Fatalf("loadKeyFiles(good) = %v, %v", loaded, err)
	}
	keys.WipeAll(loaded)

	if _, err := loadKeyFiles([]string{good, bad}); err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("expected error naming bad.json, got %v", err)
	}
}

func TestBasicInput_Piped(t *testing.T) {
	var out bytes.Buffer
	in := newBasicInput(strings.NewReader("first\r\nsecret\nlast"), &out)

	line, err := in.ReadLine("tx> ")
	if err != nil || line != "first" {
		t.Fatalf("ReadLine = %q, %v", line, err)
	}
	value, ok, err := in.PromptSecret("Password: ")
	if err != nil || !ok || string(value) != "secret" {
		t.Fatalf("PromptSecret = %q, %v, %v", value, ok, err)
	}
	line, err = in.ReadLine("tx> ")
	if err != nil || line != "last" {
		t.Fatalf("final unterminated line = %q, %v", line, err)
	}
	if _, ok, err := in.PromptSecret("Password: "); ok || err != nil {
		t.Errorf("PromptSecret at end of input = %v, %v", ok, err)
	}
	if !strings.Contains(out.String(), "tx> Password: ") {
		t.Errorf("prompts not written: %q", out.String())
	}
}
