package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/salesdesk/salesdesk/cli/helpers"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/export"
	"github.com/salesdesk/salesdesk/engine/session"
	"github.com/salesdesk/salesdesk/pkg/config"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

// newCommand builds a command whose context carries a config pointing the
// session file into a temp dir.
func newCommand(t *testing.T, output string) (*cobra.Command, *bytes.Buffer, string) {
	t.Helper()
	sessionFile := filepath.Join(t.TempDir(), "session.yaml")
	manager := config.NewManager(config.NewService())
	_, err := manager.Load(t.Context(), config.NewCLIProvider(map[string]any{
		"session-file": sessionFile,
		"format":       "json",
	}))
	require.NoError(t, err)
	ctx := logger.ContextWithLogger(t.Context(), logger.NewForTests())
	ctx = config.ContextWithManager(ctx, manager)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String(OutputFlag, output, "")
	cmd.SetContext(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, &out, sessionFile
}

func TestNewCommandExecutor(t *testing.T) {
	t.Run("Should require a session when asked", func(t *testing.T) {
		cmd, _, _ := newCommand(t, "json")
		_, err := NewCommandExecutor(cmd, ExecutorOptions{RequireSession: true})
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("Should refuse actions outside the role", func(t *testing.T) {
		cmd, _, file := newCommand(t, "json")
		require.NoError(t, session.NewFileStore(file).Save(session.Session{UserID: "c1", RoleID: crm.RoleCustomer}))
		_, err := NewCommandExecutor(cmd, ExecutorOptions{Action: session.ActionManageStaff})
		assert.ErrorIs(t, err, crm.ErrForbidden)
	})

	t.Run("Should expose the loaded session", func(t *testing.T) {
		cmd, _, file := newCommand(t, "json")
		require.NoError(t, session.NewFileStore(file).Save(session.Session{UserID: "s1", RoleID: crm.RoleStaff}))
		e, err := NewCommandExecutor(cmd, ExecutorOptions{Action: session.ActionQuoteEstimate})
		require.NoError(t, err)
		assert.Equal(t, "s1", e.Session().UserID)
		assert.Nil(t, e.Client())
	})

	t.Run("Should reject an unknown output format", func(t *testing.T) {
		cmd, _, _ := newCommand(t, "xml")
		_, err := NewCommandExecutor(cmd, ExecutorOptions{})
		require.Error(t, err)
		assert.Equal(t, helpers.ExitValidation, helpers.ExitCode(err))
	})
}

func TestExecuteCommand(t *testing.T) {
	t.Run("Should write data in the selected format", func(t *testing.T) {
		cmd, out, _ := newCommand(t, "json")
		err := ExecuteCommand(cmd, ExecutorOptions{}, ModeHandlers{
			JSON: func(_ context.Context, _ *cobra.Command, e *CommandExecutor, _ []string) error {
				return e.Write(map[string]any{"name": "Acme"}, export.Table{})
			},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Acme", gjson.Get(out.String(), "name").String())
	})

	t.Run("Should return errors as categorized CLI errors", func(t *testing.T) {
		cmd, _, _ := newCommand(t, "json")
		err := ExecuteCommand(cmd, ExecutorOptions{RequireSession: true}, ModeHandlers{
			JSON: func(context.Context, *cobra.Command, *CommandExecutor, []string) error { return nil },
		}, nil)
		require.Error(t, err)
		assert.Equal(t, helpers.CategoryNoSession.Exit, helpers.ExitCode(err))
	})
}
