// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/solsign-dev/solsign/internal/crypto"
)

// lineInput is the operator's line source: readline when available, plain
// stdin otherwise. Both also serve as the session's hidden-input prompter.
type lineInput interface {
	ReadLine(prompt string) (string, error)
	PromptSecret(label string) ([]byte, bool, error)
	Close() error
}

// readlineInput reads lines with history and hidden secrets through the same
// readline instance, which owns the terminal while the loop runs.
type readlineInput struct {
	rl *readline.Instance
}

func newReadlineInput(historyFile string) (*readlineInput, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		HistoryLimit:    200,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{rl: rl}, nil
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	return r.rl.Readline()
}

func (r *readlineInput) PromptSecret(label string) ([]byte, bool, error) {
	value, err := r.rl.ReadPassword(label)
	if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
		crypto.ZeroBytes(value)
		return nil, false, nil
	}
	if err != nil {
		crypto.ZeroBytes(value)
		return nil, false, err
	}
	return value, true, nil
}

func (r *readlineInput) Close() error {
	return r.rl.Close()
}

// basicInput reads from a plain reader. Secrets are read without echo when
// stdin is a terminal and as ordinary lines otherwise (piped input).
type basicInput struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func newBasicInput(in io.Reader, out io.Writer) *basicInput {
	b := &basicInput{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok {
		b.fd = int(f.Fd())
		b.tty = term.IsTerminal(b.fd)
	}
	return b
}

func (b *basicInput) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(b.out, prompt)
	line, err := b.readLine()
	if err != nil {
		return "", err
	}
	return string(line), nil
}

func (b *basicInput) PromptSecret(label string) ([]byte, bool, error) {
	_, _ = fmt.Fprint(b.out, label)
	if b.tty {
		value, err := term.ReadPassword(b.fd)
		_, _ = fmt.Fprintln(b.out)
		if err != nil {
			crypto.ZeroBytes(value)
			return nil, false, fmt.Errorf("failed to read input: %w", err)
		}
		return value, true, nil
	}
	value, err := b.readLine()
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned; io.EOF only when nothing was read.
func (b *basicInput) readLine() ([]byte, error) {
	line, err := b.in.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		crypto.ZeroBytes(line)
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

func (b *basicInput) Close() error {
	return nil
}
