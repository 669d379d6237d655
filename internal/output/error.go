package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// NewErrorDetail flattens err into its display fields.
func NewErrorDetail(err error) ErrorDetail {
	var te *tycheerr.TycheError
	if !errors.As(err, &te) {
		return ErrorDetail{
			Code:     "GENERAL_ERROR",
			Message:  err.Error(),
			ExitCode: tycheerr.ExitGeneral,
		}
	}

	detail := ErrorDetail{
		Code:       te.Code,
		Message:    te.Message,
		Details:    te.Details,
		Suggestion: te.Suggestion,
		ExitCode:   te.ExitCode,
	}
	if te.Cause != nil {
		detail.Cause = te.Cause.Error()
	}
	return detail
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	detail := NewErrorDetail(err)
	if format == FormatJSON {
		return WriteJSON(w, ErrorOutput{Error: detail})
	}
	return formatErrorText(w, detail)
}

// formatErrorText outputs error in text format. Details are sorted by key.
func formatErrorText(w io.Writer, d ErrorDetail) error {
	var sb strings.Builder

	sb.WriteString("Error: " + d.Message)
	if d.Cause != "" {
		sb.WriteString(": " + d.Cause)
	}
	sb.WriteString("\n")

	if len(d.Details) > 0 {
		keys := make([]string, 0, len(d.Details))
		for k := range d.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, d.Details[k])
		}
	}

	if d.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", d.Suggestion)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		return WriteJSON(w, map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
