package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/salesdesk/salesdesk/cli/tui/models"
	"github.com/salesdesk/salesdesk/cli/tui/styles"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Category  Category       `json:"-"`
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Field     string         `json:"field,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	cause     error
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error {
	return e.cause
}

// NewCliError creates a new CLI error with context
func NewCliError(category Category, message string, details ...string) *CliError {
	err := &CliError{
		Category:  category,
		Code:      category.Code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WrapError converts any command failure into a CliError carrying the
// user-facing message and the raw cause as details.
func WrapError(err error) *CliError {
	if err == nil {
		return nil
	}
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	cat := Categorize(err)
	message := crm.DisplayMessage(err)
	if cat == CategoryNoSession || cat == CategoryInternal || cat == CategoryCanceled {
		message = err.Error()
	}
	out := NewCliError(cat, message)
	out.cause = err
	if detail := err.Error(); detail != message {
		out.Details = detail
	}
	var verr *crm.ValidationError
	if errors.As(err, &verr) {
		out.Field = verr.Field
	}
	var rerr *crm.RemoteError
	if errors.As(err, &rerr) {
		out.WithContext("operation", rerr.Op)
		if rerr.Status != 0 {
			out.WithContext("status", rerr.Status)
		}
	}
	return out
}

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// FormatError formats errors based on output mode
func FormatError(err error, mode models.Mode) string {
	if err == nil {
		return ""
	}
	switch mode {
	case models.ModeJSON:
		return formatErrorJSON(err)
	case models.ModeTUI:
		return formatErrorTUI(err)
	default:
		return err.Error()
	}
}

func formatErrorJSON(err error) string {
	body := map[string]any{"error": WrapError(err)}
	out, merr := json.MarshalIndent(body, "", "  ")
	if merr != nil {
		return `{"error": {"code": "INTERNAL_ERROR", "message": "JSON marshaling failed"}}`
	}
	return string(out)
}

func formatErrorTUI(err error) string {
	cliErr := WrapError(err)
	result := fmt.Sprintf("%s %s", errorIcon(cliErr.Category), styles.ErrorStyle.Render(cliErr.Message))
	if cliErr.Details != "" {
		detailStyle := lipgloss.NewStyle().Foreground(styles.Muted).Italic(true)
		result += "\n" + detailStyle.Render("Details: "+cliErr.Details)
	}
	return result
}

func errorIcon(cat Category) string {
	switch cat {
	case CategoryNetwork:
		return "🌐"
	case CategoryForbidden, CategoryNoSession:
		return "🔐"
	case CategoryTimeout:
		return "⏰"
	case CategoryValidation:
		return "✏️"
	default:
		return "❌"
	}
}

// OutputError writes err to w in the format of mode.
func OutputError(w io.Writer, err error, mode models.Mode) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err, mode))
}

// ValidateEnum validates that a value is in a set of allowed values
func ValidateEnum(value string, allowed []string, fieldName string) error {
	if value == "" {
		return nil
	}
	if slices.Contains(allowed, value) {
		return nil
	}
	err := NewCliError(CategoryValidation,
		fmt.Sprintf("%s must be one of: %s", fieldName, strings.Join(allowed, ", ")),
		fmt.Sprintf("provided: %s", value))
	err.Field = fieldName
	return err
}

// Truncate shortens s to maxLength runes, ending with "..." when there is room.
func Truncate(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// LogOperation logs the start and completion of an operation
func LogOperation(ctx context.Context, operation string, fn func() error) error {
	log := logger.FromContext(ctx)
	start := time.Now()
	log.Debug("starting operation", "operation", operation)
	err := fn()
	duration := time.Since(start)
	if err != nil {
		log.Error("operation failed", "operation", operation, "duration", duration, "error", err)
	} else {
		log.Debug("operation completed", "operation", operation, "duration", duration)
	}
	return err
}
