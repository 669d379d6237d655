package cli

import (
	"log/slog"

	"github.com/mrz1836/tyche/internal/config"
	"github.com/mrz1836/tyche/internal/output"
)

// Compile-time interface checks.
var (
	_ LogWriter      = (*config.Logger)(nil)
	_ FormatProvider = (*output.Formatter)(nil)
)

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	// DebugAttrs logs a structured debug record.
	DebugAttrs(msg string, attrs ...slog.Attr)

	// ErrorAttrs logs a structured error record.
	ErrorAttrs(msg string, attrs ...slog.Attr)
}

// FormatProvider provides output format information.
// This interface enables mocking output formatting in tests.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format
}
