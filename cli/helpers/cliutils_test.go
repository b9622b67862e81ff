package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/salesdesk/salesdesk/cli/tui/models"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCliError(t *testing.T) {
	t.Run("Should create error with category and message", func(t *testing.T) {
		err := NewCliError(CategoryValidation, "Test message")
		assert.Equal(t, "VALIDATION_ERROR", err.Code)
		assert.Equal(t, "Test message", err.Message)
		assert.Empty(t, err.Details)
		assert.NotNil(t, err.Context)
	})

	t.Run("Should implement error interface", func(t *testing.T) {
		err := NewCliError(CategoryInternal, "Test message")
		assert.Equal(t, "INTERNAL_ERROR: Test message", err.Error())

		withDetails := NewCliError(CategoryInternal, "Test message", "Details")
		assert.Equal(t, "INTERNAL_ERROR: Test message (Details)", withDetails.Error())
	})

	t.Run("Should add context to error", func(t *testing.T) {
		err := NewCliError(CategoryInternal, "Test message")
		err.WithContext("user_id", "123").WithContext("action", "test")
		assert.Equal(t, "123", err.Context["user_id"])
		assert.Equal(t, "test", err.Context["action"])
	})
}

func TestWrapError(t *testing.T) {
	t.Run("Should carry the display message and remote context", func(t *testing.T) {
		err := WrapError(crm.NewRemoteError("quote estimate", http.StatusConflict, "estimate already quoted", nil))
		assert.Equal(t, CategoryConflict, err.Category)
		assert.Equal(t, "estimate already quoted", err.Message)
		assert.Equal(t, "quote estimate", err.Context["operation"])
		assert.Equal(t, http.StatusConflict, err.Context["status"])
		assert.True(t, errors.Is(err, crm.ErrConflict))
	})

	t.Run("Should keep the field of validation failures", func(t *testing.T) {
		err := WrapError(crm.NewValidationError("email", "is required"))
		assert.Equal(t, CategoryValidation, err.Category)
		assert.Equal(t, "email", err.Field)
	})

	t.Run("Should return an existing CliError unchanged", func(t *testing.T) {
		orig := NewCliError(CategoryNotFound, "no such customer")
		assert.Same(t, orig, WrapError(fmt.Errorf("lookup: %w", orig)))
		assert.Nil(t, WrapError(nil))
	})
}

func TestFormatError(t *testing.T) {
	t.Run("Should format error for JSON mode", func(t *testing.T) {
		err := NewCliError(CategoryServer, "Test message", "Test details")
		formatted := FormatError(err, models.ModeJSON)
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
				Details string `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(formatted), &body))
		assert.Equal(t, "SERVER_ERROR", body.Error.Code)
		assert.Equal(t, "Test message", body.Error.Message)
		assert.Equal(t, "Test details", body.Error.Details)
	})

	t.Run("Should format error for TUI mode", func(t *testing.T) {
		formatted := FormatError(NewCliError(CategoryInternal, "Test message"), models.ModeTUI)
		assert.Contains(t, formatted, "❌")
		assert.Contains(t, formatted, "Test message")

		offline := FormatError(crm.NewRemoteError("list customers", 0, "", errors.New("dial tcp")), models.ModeTUI)
		assert.Contains(t, offline, "🌐")
		assert.Contains(t, offline, "Cannot reach the server")
	})

	t.Run("Should handle nil error", func(t *testing.T) {
		assert.Empty(t, FormatError(nil, models.ModeJSON))
	})

	t.Run("Should write to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		OutputError(&buf, session.ErrNoSession, models.ModeJSON)
		assert.Contains(t, buf.String(), "NO_SESSION")
		assert.Contains(t, buf.String(), "salesdesk login")
	})
}

func TestValidateEnum(t *testing.T) {
	t.Run("Should validate enum values", func(t *testing.T) {
		allowed := []string{"json", "yaml", "table"}
		assert.NoError(t, ValidateEnum("json", allowed, "format"))
		assert.NoError(t, ValidateEnum("", allowed, "format"))

		err := ValidateEnum("xml", allowed, "format")
		require.Error(t, err)
		assert.Equal(t, ExitValidation, ExitCode(err))
	})
}

func TestTruncate(t *testing.T) {
	t.Run("Should truncate strings correctly", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello", 10))
		assert.Equal(t, "hello", Truncate("hello", 5))
		assert.Equal(t, "hel...", Truncate("hello world", 6))
		assert.Equal(t, "he", Truncate("hello", 2))
		assert.Equal(t, "株式会...", Truncate("株式会社サンプル", 6))
	})
}

func TestPluralize(t *testing.T) {
	t.Run("Should return correct singular/plural forms", func(t *testing.T) {
		assert.Equal(t, "customer", Pluralize(1, "customer", "customers"))
		assert.Equal(t, "customers", Pluralize(0, "customer", "customers"))
		assert.Equal(t, "customers", Pluralize(2, "customer", "customers"))
	})
}

func TestLogOperation(t *testing.T) {
	t.Run("Should return the operation result", func(t *testing.T) {
		ctx := context.Background()
		assert.NoError(t, LogOperation(ctx, "list customers", func() error { return nil }))

		expected := NewCliError(CategoryInternal, "Test failure")
		err := LogOperation(ctx, "list customers", func() error { return expected })
		assert.Equal(t, expected, err)
	})
}
