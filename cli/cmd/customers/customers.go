package customers

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

// NewCustomersCommand creates the customers command group.
func NewCustomersCommand() *cobra.Command {
	command := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer"},
		Short:   "Browse and manage customers",
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
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI: true,
				Action:     session.ActionManageCustomers,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					svc := e.Client().Customers()
					return cmd.RunList(ctx, e, svc, svc.Strategy(), nil, flags, export.Customers)
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
	svc := e.Client().Customers()
	s := e.Session()
	cfg, err := cmd.ScreenConfig(ctx, e, flags, listview.Config[crm.Customer]{
		Title:    "Customers",
		Source:   svc,
		Strategy: svc.Strategy(),
		Columns:  Columns(),
		Detail: func(ctx context.Context, c crm.Customer) (string, error) {
			full, err := svc.Get(ctx, c.UserID)
			if err != nil {
				return "", err
			}
			return Describe(full), nil
		},
		Add: func() *listview.Dialog {
			in := &crm.CustomerInput{}
			return &listview.Dialog{
				Title: "New customer",
				Build: func() *huh.Form { return forms.CustomerForm(in) },
				Submit: func(ctx context.Context) error {
					_, err := svc.Create(ctx, *in)
					return err
				},
				Done: "Customer added.",
			}
		},
		Actions: []listview.Action[crm.Customer]{
			{
				Key: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
				Dialog: func(c crm.Customer) *listview.Dialog {
					in := inputFrom(c)
					return &listview.Dialog{
						Title: "Edit " + c.CompanyName,
						Build: func() *huh.Form { return forms.CustomerForm(in) },
						Submit: func(ctx context.Context) error {
							_, err := svc.Update(ctx, c.UserID, *in)
							return err
						},
						Done: "Customer updated.",
					}
				},
			},
			{
				Key:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
				Allowed: func(c crm.Customer) bool { return s.CanDelete(c.UserID, crm.RoleCustomer) },
				Confirm: func(c crm.Customer) string { return fmt.Sprintf("Delete customer %s?", c.CompanyName) },
				Run: func(ctx context.Context, c crm.Customer) error {
					return svc.Delete(ctx, c.UserID)
				},
				Done: "Customer deleted.",
			},
		},
	}, api.ResourceCustomers)
	if err != nil {
		return err
	}
	return listview.Run(ctx, cfg)
}

// Columns are the customer table columns.
func Columns() []listview.Column[crm.Customer] {
	return []listview.Column[crm.Customer]{
		{Title: "Company", Width: 24, Value: func(c crm.Customer) string { return c.CompanyName }},
		{Title: "Contact", Width: 18, Value: func(c crm.Customer) string { return c.ContactName }},
		{Title: "Email", Width: 26, Value: func(c crm.Customer) string { return c.Email }},
		{Title: "Phone", Width: 14, Value: func(c crm.Customer) string { return c.Phone }},
		{Title: "Since", Width: 10, Value: func(c crm.Customer) string { return c.CreatedAt.Format("2006-01-02") }},
	}
}

// Describe renders one customer for the detail view.
func Describe(c crm.Customer) string {
	return cmd.Detail(
		"ID", c.UserID,
		"Company", c.CompanyName,
		"Contact", c.ContactName,
		"Email", c.Email,
		"Phone", c.Phone,
		"Address", c.Address,
		"Created", c.CreatedAt.Format("2006-01-02 15:04"),
	)
}

func inputFrom(c crm.Customer) *crm.CustomerInput {
	return &crm.CustomerInput{
		CompanyName: c.CompanyName,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <userID>",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI:     true,
				RequireSession: true,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					c, err := get(ctx, e, args[0])
					if err != nil {
						return err
					}
					return e.Write(c, export.Customers([]crm.Customer{c}))
				},
				TUI: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					c, err := get(ctx, e, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(cobraCmd.OutOrStdout(), Describe(c))
					return nil
				},
			}, args)
		},
	}
}

// get enforces that customers only look at their own account.
func get(ctx context.Context, e *cmd.CommandExecutor, userID string) (crm.Customer, error) {
	s := e.Session()
	if !s.Can(session.ActionManageCustomers) && s.UserID != userID {
		return crm.Customer{}, fmt.Errorf("%w: %s cannot view customer %s", crm.ErrForbidden, s.RoleID, userID)
	}
	return e.Client().Customers().Get(ctx, userID)
}

type inputFlags struct {
	company string
	contact string
	email   string
	phone   string
	address string
}

func (f *inputFlags) register(command *cobra.Command) {
	command.Flags().StringVar(&f.company, "company", "", "Company name")
	command.Flags().StringVar(&f.contact, "contact", "", "Contact person")
	command.Flags().StringVar(&f.email, "email", "", "Email address")
	command.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	command.Flags().StringVar(&f.address, "address", "", "Postal address")
}

// apply copies the flags the user actually set onto in.
func (f *inputFlags) apply(command *cobra.Command, in *crm.CustomerInput) {
	set := func(name string, dst *string, v string) {
		if command.Flags().Changed(name) {
			*dst = v
		}
	}
	set("company", &in.CompanyName, f.company)
	set("contact", &in.ContactName, f.contact)
	set("email", &in.Email, f.email)
	set("phone", &in.Phone, f.phone)
	set("address", &in.Address, f.address)
}

func newAddCommand() *cobra.Command {
	var flags inputFlags
	command := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			save := func(ctx context.Context, e *cmd.CommandExecutor, in crm.CustomerInput) error {
				c, err := e.Client().Customers().Create(ctx, in)
				if err != nil {
					return err
				}
				logger.FromContext(ctx).Info("customer added", "user_id", c.UserID)
				return e.Write(c, export.Customers([]crm.Customer{c}))
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI: true,
				Action:     session.ActionManageCustomers,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					var in crm.CustomerInput
					flags.apply(cobraCmd, &in)
					return save(ctx, e, in)
				},
				TUI: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					var in crm.CustomerInput
					flags.apply(cobraCmd, &in)
					if err := components.RunForm(ctx, forms.CustomerForm(&in)); err != nil {
						return err
					}
					return save(ctx, e, in)
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
		Short: "Edit a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			edit := func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, userID string, prompt bool) error {
				svc := e.Client().Customers()
				current, err := svc.Get(ctx, userID)
				if err != nil {
					return err
				}
				in := inputFrom(current)
				flags.apply(cobraCmd, in)
				if prompt {
					if err := components.RunForm(ctx, forms.CustomerForm(in)); err != nil {
						return err
					}
				}
				c, err := svc.Update(ctx, userID, *in)
				if err != nil {
					return err
				}
				return e.Write(c, export.Customers([]crm.Customer{c}))
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI: true,
				Action:     session.ActionManageCustomers,
			}, cmd.ModeHandlers{
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
		Short: "Delete a customer account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			remove := func(ctx context.Context, e *cmd.CommandExecutor, userID string) error {
				if err := e.Session().RequireDelete(userID, crm.RoleCustomer); err != nil {
					return err
				}
				if err := e.Client().Customers().Delete(ctx, userID); err != nil {
					return err
				}
				return e.Write(map[string]any{"deleted": userID}, export.Table{
					Headers: []string{"Deleted"},
					Rows:    [][]string{{userID}},
				})
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI:     true,
				RequireSession: true,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					return remove(ctx, e, args[0])
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					if !yes {
						if err := cmd.Confirm(ctx, fmt.Sprintf("Delete customer %s?", args[0])); err != nil {
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
