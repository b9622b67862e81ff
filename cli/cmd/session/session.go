package session

import (
	"context"
	"time"

	"github.com/salesdesk/salesdesk/cli/cmd"
	"github.com/salesdesk/salesdesk/cli/tui/components"
	"github.com/salesdesk/salesdesk/cli/tui/forms"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/export"
	"github.com/salesdesk/salesdesk/engine/session"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

// NewSessionCommands returns the top-level login, logout and whoami commands.
func NewSessionCommands() []*cobra.Command {
	return []*cobra.Command{newLoginCommand(), newLogoutCommand(), newWhoamiCommand()}
}

func sessionTable(s session.Session) export.Table {
	return export.Table{
		Headers: []string{"User ID", "Role", "Since"},
		Rows:    [][]string{{s.UserID, s.RoleID.String(), s.CreatedAt.Format(time.RFC3339)}},
	}
}

func newLoginCommand() *cobra.Command {
	var userID, role string
	command := &cobra.Command{
		Use:   "login",
		Short: "Start a dashboard session as admin, staff or customer",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			login := func(ctx context.Context, e *cmd.CommandExecutor, d forms.LoginDraft) error {
				s := session.Session{UserID: d.UserID, RoleID: d.Role, CreatedAt: time.Now().UTC()}
				if err := e.SessionStore().Save(s); err != nil {
					return err
				}
				logger.FromContext(ctx).Info("session started", "user_id", s.UserID, "role", s.RoleID)
				return e.Write(s, sessionTable(s))
			}
			draft := func() (forms.LoginDraft, error) {
				d := forms.LoginDraft{UserID: userID}
				if role == "" {
					return d, nil
				}
				r, err := crm.ParseRole(role)
				d.Role = r
				return d, err
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					if err := cmd.ValidateRequiredFlags(cobraCmd, []string{"user-id", "role"}); err != nil {
						return err
					}
					d, err := draft()
					if err != nil {
						return err
					}
					return login(ctx, e, d)
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					d, err := draft()
					if err != nil {
						return err
					}
					if d.UserID == "" || !d.Role.Valid() {
						if err := components.RunForm(ctx, forms.LoginForm(&d)); err != nil {
							return err
						}
					}
					return login(ctx, e, d)
				},
			}, args)
		},
	}
	command.Flags().StringVar(&userID, "user-id", "", "User identifier")
	command.Flags().StringVar(&role, "role", "", "Role: admin, staff, customer or 1-3")
	return command
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					if err := e.SessionStore().Clear(); err != nil {
						return err
					}
					logger.FromContext(ctx).Info("session cleared")
					return e.Write(map[string]any{"loggedOut": true}, export.Table{
						Headers: []string{"Logged out"},
						Rows:    [][]string{{"true"}},
					})
				},
			}, args)
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireSession: true}, cmd.ModeHandlers{
				JSON: func(_ context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					s := e.Session()
					return e.Write(s, sessionTable(s))
				},
			}, args)
		},
	}
}
