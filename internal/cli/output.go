package cli

import (
	"fmt"
	"io"

	"github.com/mrz1836/tyche/internal/output"
)

// out is a helper for CLI output that ignores write errors.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

// writeResult writes v as JSON, or lines as plain text one per line.
func writeResult(w io.Writer, cc *CommandContext, v any, lines []string) error {
	if cc.isJSON() {
		return output.WriteJSON(w, v)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
