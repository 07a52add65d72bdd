package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/itckit/tfinvite/internal/config"
)

// errMissingPassword means no password could be obtained from the
// environment or the terminal.
var errMissingPassword = errors.New("missing password")

// readPassword returns the account password, preferring the environment
// and falling back to an interactive no-echo prompt.
func readPassword() (string, error) {
	if pw := config.PasswordFromEnv(); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "iTunes Connect password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errMissingPassword
	}
	return string(b), nil
}
