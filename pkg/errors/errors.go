// Package errors provides structured error handling for Tyche.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the tyche binary.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitAuth     = 3 // Wrong passphrase
	ExitNotFound = 4 // Resource not found
	ExitEntropy  = 6 // Entropy source could not supply bytes
)

// TycheError is the structured error type for Tyche.
type TycheError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *TycheError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TycheError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for TycheError. Two errors match when their codes match.
func (e *TycheError) Is(target error) bool {
	var t *TycheError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &TycheError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &TycheError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &TycheError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Generator errors.
	ErrInvalidSeed = &TycheError{
		Code:     "INVALID_SEED",
		Message:  "seed must not be empty",
		ExitCode: ExitInput,
	}

	ErrInvalidRange = &TycheError{
		Code:     "INVALID_RANGE",
		Message:  "low must be less than high",
		ExitCode: ExitInput,
	}

	ErrInvalidBound = &TycheError{
		Code:     "INVALID_BOUND",
		Message:  "bound must be greater than zero",
		ExitCode: ExitInput,
	}

	ErrInvalidLength = &TycheError{
		Code:     "INVALID_LENGTH",
		Message:  "byte count must not be negative",
		ExitCode: ExitInput,
	}

	ErrNotInitialized = &TycheError{
		Code:     "NOT_INITIALIZED",
		Message:  "generator is not initialized",
		ExitCode: ExitGeneral,
	}

	ErrUnknownHash = &TycheError{
		Code:     "UNKNOWN_HASH",
		Message:  "unknown mixing hash",
		ExitCode: ExitInput,
	}

	// Entropy errors.
	ErrEntropyUnavailable = &TycheError{
		Code:     "ENTROPY_UNAVAILABLE",
		Message:  "entropy source could not supply bytes",
		ExitCode: ExitEntropy,
	}

	// Encoding errors.
	ErrUnknownEncoding = &TycheError{
		Code:     "UNKNOWN_ENCODING",
		Message:  "unknown output encoding",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &TycheError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	// Seed file errors.
	ErrSeedFileNotFound = &TycheError{
		Code:     "SEED_FILE_NOT_FOUND",
		Message:  "seed file not found",
		ExitCode: ExitNotFound,
	}

	ErrDecryptionFailed = &TycheError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted file",
		ExitCode: ExitAuth,
	}

	// Share errors.
	ErrInvalidShare = &TycheError{
		Code:     "INVALID_SHARE",
		Message:  "invalid seed share",
		ExitCode: ExitInput,
	}

	ErrNotEnoughShares = &TycheError{
		Code:     "NOT_ENOUGH_SHARES",
		Message:  "not enough distinct shares to recover the seed",
		ExitCode: ExitInput,
	}

	// Config errors.
	ErrConfigInvalid = &TycheError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &TycheError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}

	ErrInvalidFormat = &TycheError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid format",
		ExitCode: ExitInput,
	}
)

// New creates a new TycheError with the given code and message.
func New(code, message string) *TycheError {
	return &TycheError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var te *TycheError
	if errors.As(err, &te) {
		return &TycheError{
			Code:       te.Code,
			Message:    fmt.Sprintf("%s: %s", msg, te.Message),
			Details:    te.Details,
			Suggestion: te.Suggestion,
			Cause:      te.Cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TycheError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a coded error.
// The result still matches the coded error with errors.Is.
func WithCause(err, cause error) error {
	if err == nil {
		return nil
	}

	var te *TycheError
	if errors.As(err, &te) {
		return &TycheError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    te.Details,
			Suggestion: te.Suggestion,
			Cause:      cause,
			ExitCode:   te.ExitCode,
		}
	}

	return fmt.Errorf("%w: %w", err, cause)
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var te *TycheError
	if errors.As(err, &te) {
		return &TycheError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    details,
			Suggestion: te.Suggestion,
			Cause:      te.Cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TycheError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var te *TycheError
	if errors.As(err, &te) {
		return &TycheError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    te.Details,
			Suggestion: suggestion,
			Cause:      te.Cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TycheError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var te *TycheError
	if errors.As(err, &te) {
		return te.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var te *TycheError
	if errors.As(err, &te) {
		return te.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
