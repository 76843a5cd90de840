// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package main

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/solsign-dev/solsign/internal/session"
	"github.com/solsign-dev/solsign/internal/util"
	"github.com/solsign-dev/solsign/internal/wire"
)

// Actions available once a transaction has been read.
const (
	actionRepeat = ','
	actionDecode = '.'
	actionSign   = '-'
	actionFinish = '='
	actionClear  = '/'
)

func isAction(line string) bool {
	return len(line) == 1 && strings.ContainsRune(",.-=/", rune(line[0]))
}

// current is the transaction the actions apply to.
type current struct {
	text string
	tx   *wire.Transaction
}

// console is the interactive loop: it accumulates pasted Base64 until a
// transaction decodes, then applies the operator's actions to it.
type console struct {
	sess    *session.Session
	ui      *ui
	partial string
	cur     *current
}

func newConsole(sess *session.Session, u *ui) *console {
	return &console{sess: sess, ui: u}
}

func (c *console) prompt() string {
	switch {
	case c.partial != "":
		return "... "
	case c.cur != nil:
		return "[,.-=/]> "
	default:
		return "tx> "
	}
}

// run reads lines until end of input or until the session terminates.
func (c *console) run(in lineInput) error {
	for c.sess.State() != session.StateTerminated {
		line, err := in.ReadLine(c.prompt())
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					c.ui.printf("Press Ctrl-D to exit\n")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		c.handleLine(line)
	}
	return nil
}

func (c *console) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if isAction(line) {
		c.action(line[0])
		return
	}
	c.feed(line)
}

// feed appends a line of Base64. Input that ends early is kept so a
// transaction wrapped over several lines can be pasted.
func (c *console) feed(line string) {
	if i := strings.IndexFunc(line, notBase64); i >= 0 {
		c.partial = ""
		c.ui.errorf("%v: invalid base64 character %q", wire.ErrMalformed, line[i])
		return
	}
	c.partial += line
	if len(c.partial)%4 != 0 {
		c.ui.printf("%s\n", c.ui.dim.Render("(partial transaction; (/) clears)"))
		return
	}
	tx, err := wire.Decode(c.partial)
	if errors.Is(err, wire.ErrTruncated) {
		c.ui.printf("%s\n", c.ui.dim.Render("(partial transaction; (/) clears)"))
		return
	}
	text := c.partial
	c.partial = ""
	if err != nil {
		c.ui.errorf("%v", err)
		return
	}

	c.cur = &current{text: text, tx: tx}
	c.ui.summary(tx, c.sess.PublicKeys())
	c.ui.describe(tx)
	c.ui.actions(c.completable())
}

func notBase64(r rune) bool {
	switch {
	case 'A' <= r && r <= 'Z', 'a' <= r && r <= 'z', '0' <= r && r <= '9':
		return false
	}
	return r != '+' && r != '/' && r != '='
}

func (c *console) action(a byte) {
	if a == actionClear {
		c.partial = ""
		c.cur = nil
		c.ui.printf("Cleared\n")
		return
	}
	if c.cur == nil {
		c.ui.errorf("no transaction; paste a base64 transaction first")
		return
	}
	switch a {
	case actionRepeat:
		c.ui.payloadLine(c.cur.text)
	case actionDecode:
		c.ui.summary(c.cur.tx, c.sess.PublicKeys())
		c.ui.describe(c.cur.tx)
	case actionSign:
		c.sign(false)
	case actionFinish:
		if !c.completable() {
			c.ui.errorf("transaction cannot be completely signed with the available keys")
			c.ui.missing(c.unsignable())
			return
		}
		c.sign(true)
	}
}

// sign submits the current transaction and makes the signed result current.
func (c *console) sign(showSignature bool) {
	res := c.sess.Submit(c.cur.text)
	if res.Status == session.StatusFailed {
		c.ui.errorf("%v", res.Err)
		return
	}
	tx, err := wire.Decode(res.Transaction)
	if err != nil {
		c.ui.errorf("%v", err)
		return
	}
	c.cur = &current{text: res.Transaction, tx: tx}

	if len(res.Signed) == 0 {
		c.ui.printf("%s\n", c.ui.dim.Render("No available key had a signature to add"))
	} else {
		c.ui.printf("%s\n", c.ui.good.Render("Signed with:"))
		for _, pk := range res.Signed {
			c.ui.printf("  %s\n", pk)
		}
	}
	c.ui.describe(tx)

	if showSignature && res.Status == session.StatusComplete {
		c.ui.payloadLine(res.Signature.String())
		return
	}
	c.ui.payloadLine(res.Transaction)
	c.ui.missing(res.Missing)
}

// unsignable returns the missing signers no owned key can provide.
func (c *console) unsignable() []wire.PublicKey {
	owned := map[wire.PublicKey]bool{}
	for _, pk := range c.sess.PublicKeys() {
		owned[pk] = true
	}
	var out []wire.PublicKey
	for _, pk := range wire.MissingSigners(c.cur.tx) {
		if !owned[pk] {
			out = append(out, pk)
		}
	}
	return out
}

func (c *console) completable() bool {
	if c.cur == nil {
		return false
	}
	missing := c.unsignable()
	util.Debug("completion check", "unsignable", len(missing))
	return len(missing) == 0
}
