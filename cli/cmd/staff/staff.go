package staff

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
	"github.com/salesdesk/salesdesk/cli/api"
	"github.com/salesdesk/salesdesk/cli/cmd"
	"github.com/salesdesk/salesdesk/cli/tui/components"
	"github.com/salesdesk/salesdesk/cli/tui/forms"
	"github.com/salesdesk/salesdesk/cli/tui/listview"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/export"
	"github.com/salesdesk/salesdesk/engine/session"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

// adminOnly gates every staff command; staff management belongs to admins.
var adminOnly = cmd.ExecutorOptions{RequireAPI: true, Action: session.ActionManageStaff}

func NewStaffCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "staff",
		Short: "Browse and manage staff members (admin only)",
	}
	command.AddCommand(
		newListCommand(),
		newShowCommand(),
		newAddCommand(),
		newEditCommand(),
		newDeleteCommand(),
	)
	return command
}

func newListCommand() *cobra.Command {
	var flags cmd.ListFlags
	command := &cobra.Command{
		Use:   "list",
		Short: "List staff members",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, adminOnly, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					svc := e.Client().Staff()
					return cmd.RunList(ctx, e, svc, svc.Strategy(), nil, flags, export.Staff)
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					return runScreen(ctx, e, flags)
				},
			}, args)
		},
	}
	cmd.AddListFlags(command, &flags)
	return command
}

func runScreen(ctx context.Context, e *cmd.CommandExecutor, flags cmd.ListFlags) error {
	svc := e.Client().Staff()
	s := e.Session()
	dialog := func(title, done string, in *crm.StaffInput, submit func(context.Context) error) *listview.Dialog {
		return &listview.Dialog{
			Title:  title,
			Build:  func() *huh.Form { return forms.StaffForm(in) },
			Submit: submit,
			Done:   done,
		}
	}
	cfg, err := cmd.ScreenConfig(ctx, e, flags, listview.Config[crm.Staff]{
		Title:    "Staff",
		Source:   svc,
		Strategy: svc.Strategy(),
		Columns: []listview.Column[crm.Staff]{
			{Title: "Name", Width: 20, Value: func(m crm.Staff) string { return m.Name }},
			{Title: "Department", Width: 16, Value: func(m crm.Staff) string { return m.Department }},
			{Title: "Position", Width: 16, Value: func(m crm.Staff) string { return m.Position }},
			{Title: "Email", Width: 26, Value: func(m crm.Staff) string { return m.Email }},
			{Title: "Phone", Width: 14, Value: func(m crm.Staff) string { return m.Phone }},
		},
		Detail: func(ctx context.Context, m crm.Staff) (string, error) {
			full, err := svc.Get(ctx, m.UserID)
			if err != nil {
				return "", err
			}
			return describe(full), nil
		},
		Add: func() *listview.Dialog {
			in := &crm.StaffInput{}
			return dialog("New staff member", "Staff member added.", in, func(ctx context.Context) error {
				_, err := svc.Create(ctx, *in)
				return err
			})
		},
		Actions: []listview.Action[crm.Staff]{
			{
				Key: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
				Dialog: func(m crm.Staff) *listview.Dialog {
					in := inputFrom(m)
					return dialog("Edit "+m.Name, "Staff member updated.", in, func(ctx context.Context) error {
						_, err := svc.Update(ctx, m.UserID, *in)
						return err
					})
				},
			},
			{
				Key:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
				Allowed: func(m crm.Staff) bool { return s.CanDelete(m.UserID, crm.RoleStaff) },
				Confirm: func(m crm.Staff) string { return fmt.Sprintf("Delete staff member %s?", m.Name) },
				Run: func(ctx context.Context, m crm.Staff) error {
					return svc.Delete(ctx, m.UserID)
				},
				Done: "Staff member deleted.",
			},
		},
	}, api.ResourceStaff)
	if err != nil {
		return err
	}
	return listview.Run(ctx, cfg)
}

func describe(m crm.Staff) string {
	return cmd.Detail(
		"ID", m.UserID,
		"Name", m.Name,
		"Department", m.Department,
		"Position", m.Position,
		"Email", m.Email,
		"Phone", m.Phone,
		"Joined", m.CreatedAt.Format("2006-01-02"),
	)
}

func inputFrom(m crm.Staff) *crm.StaffInput {
	return &crm.StaffInput{
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Department: m.Department,
		Position:   m.Position,
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <userID>",
		Short: "Show one staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, adminOnly, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					m, err := e.Client().Staff().Get(ctx, args[0])
					if err != nil {
						return err
					}
					return e.Write(m, export.Staff([]crm.Staff{m}))
				},
				TUI: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					m, err := e.Client().Staff().Get(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(cobraCmd.OutOrStdout(), describe(m))
					return nil
				},
			}, args)
		},
	}
}

type inputFlags struct {
	name       string
	email      string
	phone      string
	department string
	position   string
}

func (f *inputFlags) register(command *cobra.Command) {
	command.Flags().StringVar(&f.name, "name", "", "Full name")
	command.Flags().StringVar(&f.email, "email", "", "Email address")
	command.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	command.Flags().StringVar(&f.department, "department", "", "Department")
	command.Flags().StringVar(&f.position, "position", "", "Position")
}

func (f *inputFlags) apply(command *cobra.Command, in *crm.StaffInput) {
	set := func(name string, dst *string, v string) {
		if command.Flags().Changed(name) {
			*dst = v
		}
	}
	set("name", &in.Name, f.name)
	set("email", &in.Email, f.email)
	set("phone", &in.Phone, f.phone)
	set("department", &in.Department, f.department)
	set("position", &in.Position, f.position)
}

func newAddCommand() *cobra.Command {
	var flags inputFlags
	command := &cobra.Command{
		Use:   "add",
		Short: "Add a staff member",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			add := func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, prompt bool) error {
				var in crm.StaffInput
				flags.apply(cobraCmd, &in)
				if prompt {
					if err := components.RunForm(ctx, forms.StaffForm(&in)); err != nil {
						return err
					}
				}
				m, err := e.Client().Staff().Create(ctx, in)
				if err != nil {
					return err
				}
				logger.FromContext(ctx).Info("staff member added", "user_id", m.UserID)
				return e.Write(m, export.Staff([]crm.Staff{m}))
			}
			return cmd.ExecuteCommand(cobraCmd, adminOnly, cmd.ModeHandlers{
				JSON: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					return add(ctx, cobraCmd, e, false)
				},
				TUI: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					return add(ctx, cobraCmd, e, true)
				},
			}, args)
		},
	}
	flags.register(command)
	return command
}

func newEditCommand() *cobra.Command {
	var flags inputFlags
	command := &cobra.Command{
		Use:   "edit <userID>",
		Short: "Edit a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			edit := func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, userID string, prompt bool) error {
				svc := e.Client().Staff()
				current, err := svc.Get(ctx, userID)
				if err != nil {
					return err
				}
				in := inputFrom(current)
				flags.apply(cobraCmd, in)
				if prompt {
					if err := components.RunForm(ctx, forms.StaffForm(in)); err != nil {
						return err
					}
				}
				m, err := svc.Update(ctx, userID, *in)
				if err != nil {
					return err
				}
				return e.Write(m, export.Staff([]crm.Staff{m}))
			}
			return cmd.ExecuteCommand(cobraCmd, adminOnly, cmd.ModeHandlers{
				JSON: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					return edit(ctx, cobraCmd, e, args[0], false)
				},
				TUI: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					return edit(ctx, cobraCmd, e, args[0], true)
				},
			}, args)
		},
	}
	flags.register(command)
	return command
}

func newDeleteCommand() *cobra.Command {
	var yes bool
	command := &cobra.Command{
		Use:   "delete <userID>",
		Short: "Delete a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			remove := func(ctx context.Context, e *cmd.CommandExecutor, userID string) error {
				if err := e.Session().RequireDelete(userID, crm.RoleStaff); err != nil {
					return err
				}
				if err := e.Client().Staff().Delete(ctx, userID); err != nil {
					return err
				}
				return e.Write(map[string]any{"deleted": userID}, export.Table{
					Headers: []string{"Deleted"},
					Rows:    [][]string{{userID}},
				})
			}
			return cmd.ExecuteCommand(cobraCmd, adminOnly, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					return remove(ctx, e, args[0])
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					if !yes {
						if err := cmd.Confirm(ctx, fmt.Sprintf("Delete staff member %s?", args[0])); err != nil {
							return err
						}
					}
					return remove(ctx, e, args[0])
				},
			}, args)
		},
	}
	command.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return command
}
