package output

import (
	"fmt"
	"io"
)

// ANSI color codes used for notices.
const (
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorReset  = "\033[0m"
)

// Notifier writes human-facing notices, usually to stderr, so they never
// mix with machine-readable results on stdout.
type Notifier struct {
	w     io.Writer
	color bool
}

// NewNotifier creates a Notifier. Color wraps warnings and successes in ANSI codes.
func NewNotifier(w io.Writer, color bool) *Notifier {
	return &Notifier{w: w, color: color}
}

// Info prints an informational message.
func (n *Notifier) Info(msg string) {
	_, _ = fmt.Fprintln(n.w, "ℹ️  "+msg)
}

// Infof prints a formatted informational message.
func (n *Notifier) Infof(format string, args ...any) {
	n.Info(fmt.Sprintf(format, args...))
}

// Warn prints a warning message.
func (n *Notifier) Warn(msg string) {
	_, _ = fmt.Fprintln(n.w, n.paint(colorYellow, "⚠️  "+msg))
}

// Warnf prints a formatted warning message.
func (n *Notifier) Warnf(format string, args ...any) {
	n.Warn(fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (n *Notifier) Success(msg string) {
	_, _ = fmt.Fprintln(n.w, n.paint(colorGreen, "✅ "+msg))
}

// Successf prints a formatted success message.
func (n *Notifier) Successf(format string, args ...any) {
	n.Success(fmt.Sprintf(format, args...))
}

func (n *Notifier) paint(color, s string) string {
	if !n.color {
		return s
	}
	return color + s + colorReset
}
