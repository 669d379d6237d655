package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/mrz1836/tyche/internal/securemem"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// minPassphraseLen is the shortest passphrase accepted for new seed files.
const minPassphraseLen = 8

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // Swappable for tests
var (
	promptPasswordFn      = promptPassword
	promptNewPassphraseFn = promptNewPassphrase
)

// promptPassword prompts for a password with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // G115: Fd() returns uintptr, safe conversion for term.ReadPassword
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassphrase prompts for a seed file passphrase with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassphrase() ([]byte, error) {
	passphrase, err := promptPasswordFn("Enter seed file passphrase: ")
	if err != nil {
		return nil, err
	}

	if len(passphrase) < minPassphraseLen {
		securemem.Zero(passphrase)
		return nil, tycheerr.WithSuggestion(
			tycheerr.ErrInvalidInput,
			fmt.Sprintf("passphrase must be at least %d characters", minPassphraseLen),
		)
	}

	confirm, err := promptPasswordFn("Confirm passphrase: ")
	if err != nil {
		securemem.Zero(passphrase)
		return nil, err
	}
	defer securemem.Zero(confirm)

	if string(passphrase) != string(confirm) {
		securemem.Zero(passphrase)
		return nil, tycheerr.WithSuggestion(
			tycheerr.ErrInvalidInput,
			"passphrases do not match",
		)
	}

	return passphrase, nil
}
