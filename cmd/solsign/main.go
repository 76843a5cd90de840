// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 solsign Authors

package main

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/solsign-dev/solsign/internal/crypto"
	"github.com/solsign-dev/solsign/internal/fsutil"
	"github.com/solsign-dev/solsign/internal/keys"
	"github.com/solsign-dev/solsign/internal/security"
	"github.com/solsign-dev/solsign/internal/session"
	"github.com/solsign-dev/solsign/internal/util"
	"github.com/solsign-dev/solsign/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("solsign", pflag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() { _, _ = fmt.Fprint(os.Stderr, usageText) }
	showHelp := flags.BoolP("help", "h", false, "Print usage and exit")
	showVersion := flags.Bool("version", false, "Print version and exit")
	noPrompt := flags.Bool("no-prompt", false, "Sign a single transaction from stdin using key files only")
	configFlag := flags.String("config", "", "Config file (default: $SOLSIGN_CONFIG or ~/.solsign/config.yaml)")
	if err := flags.Parse(args); err != nil {
		return exitError
	}

	if *showHelp {
		fmt.Print(usageText)
		return exitOK
	}
	if *showVersion {
		fmt.Printf("solsign %s\n", version.String())
		return exitOK
	}

	// Initialize logger (supports SOLSIGN_DEBUG environment variable)
	util.InitLogger()

	// Protect key material before any of it is read
	security.Harden(os.Getenv(security.DisableMemoryLockEnv) == "")

	config, err := util.LoadConfigFromPath(util.GetConfigPath(*configFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		return exitError
	}

	paths := append(append([]string{}, config.KeyFiles...), flags.Args()...)
	loaded, err := loadKeyFiles(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	opts := []session.Option{session.WithChallengeAttempts(config.ChallengeAttempts)}
	if *noPrompt {
		sess := session.New(loaded, append(opts, session.WithSingleShot())...)
		defer sess.Close()
		stop := wipeOnSignal(sess)
		defer stop()
		return runNoPrompt(sess, os.Stdin, os.Stdout, os.Stderr)
	}
	return runInteractive(config, loaded, opts)
}

// loadKeyFiles reads every key file. On failure the keys already read are
// wiped and the error names the offending path. Files readable by other
// users are loaded with a warning.
func loadKeyFiles(paths []string) ([]*keys.KeyPair, error) {
	var out []*keys.KeyPair
	for _, p := range paths {
		if exposed, err := fsutil.IsExposed(p); err == nil && exposed {
			util.Warn("key file is accessible by other users", "path", p)
		}
		kp, err := keys.LoadFile(p)
		if err != nil {
			keys.WipeAll(out)
			return nil, err
		}
		out = append(out, kp)
	}
	return out, nil
}

func runInteractive(config util.Config, loaded []*keys.KeyPair, opts []session.Option) int {
	if config.HistoryFile != "" {
		if err := fsutil.EnsureParentDir(config.HistoryFile); err != nil {
			util.Warn("cannot create history directory", "error", err)
		}
	}

	var in lineInput
	rl, err := newReadlineInput(config.HistoryFile)
	if err != nil {
		util.Debug("readline unavailable, using basic input", "error", err)
		in = newBasicInput(os.Stdin, os.Stdout)
	} else {
		in = rl
	}
	defer func() {
		_ = in.Close() // Best-effort close, errors during shutdown not critical
	}()

	u := newUI(os.Stdout, config.Color)
	sess := session.New(loaded, append(opts, session.WithPrompter(in))...)
	defer sess.Close()
	stop := wipeOnSignal(sess)
	defer stop()

	u.printf("%s\n", u.title.Render("solsign - offline transaction signer"))
	if config.PromptMnemonics {
		if err := sess.EnterMnemonicKeys(in, os.Stdout); err != nil {
			u.errorf("%v", err)
			return exitError
		}
	}
	if err := sess.FinishKeyEntry(); err != nil {
		u.errorf("%v", err)
		return exitError
	}

	owned := sess.PublicKeys()
	if len(owned) == 0 {
		u.printf("%s\n", u.warn.Render("No signing keys loaded; transactions can be displayed but not signed"))
	} else {
		u.printf("Loaded %d key(s):\n", len(owned))
		for _, pk := range owned {
			u.printf("  %s\n", pk)
		}
	}

	if err := setupChallenge(sess, in, u); err != nil {
		u.errorf("%v", err)
		return exitError
	}

	if err := newConsole(sess, u).run(in); err != nil {
		u.errorf("%v", err)
		return exitError
	}
	return exitOK
}

// setupChallenge asks for an optional challenge password, entered twice.
// An empty entry or end of input means no challenge.
func setupChallenge(sess *session.Session, p session.Prompter, u *ui) error {
	for {
		first, ok, err := p.PromptSecret("Challenge password (empty for none): ")
		if err != nil {
			return err
		}
		if !ok || len(first) == 0 {
			crypto.ZeroBytes(first)
			return sess.SetChallenge(nil)
		}

		second, ok, err := p.PromptSecret("Repeat challenge password: ")
		match := ok && err == nil && bytes.Equal(first, second)
		crypto.ZeroBytes(second)
		if err != nil {
			crypto.ZeroBytes(first)
			return err
		}
		if !match {
			crypto.ZeroBytes(first)
			u.errorf("passwords do not match")
			continue
		}

		err = sess.SetChallenge(first)
		crypto.ZeroBytes(first)
		if err == nil {
			u.printf("Challenge set; it is asked before each transaction is signed\n")
		}
		return err
	}
}

// wipeOnSignal wipes the session's keys and exits on SIGINT or SIGTERM. The
// returned function stops watching.
func wipeOnSignal(sess *session.Session) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			util.Debug("received signal, wiping keys", "signal", sig.String())
			// The main goroutine may be inside Submit; Wipe leaves the
			// state alone and the process exits below.
			sess.Wipe()
			fmt.Fprintln(os.Stderr, "\nInterrupted; keys wiped")
			os.Exit(130)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
