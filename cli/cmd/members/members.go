package members

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
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

var reviewers = cmd.ExecutorOptions{RequireAPI: true, Action: session.ActionReviewMembership}

// NewMembersCommand creates the membership request command group.
func NewMembersCommand() *cobra.Command {
	command := &cobra.Command{
		Use:     "members",
		Aliases: []string{"membership"},
		Short:   "Review membership requests",
	}
	command.AddCommand(
		newListCommand(),
		newRequestCommand(),
		newDecisionCommand("approve", "Approve a pending request; the applicant becomes a customer", true),
		newDecisionCommand("reject", "Reject a pending request", false),
	)
	return command
}

func parseStatus(s string) (int, error) {
	st, err := crm.ParseMembershipStatus(s)
	return int(st), err
}

func statusOptions() []listview.StatusOption {
	value := func(s crm.MembershipStatus) *int {
		n := int(s)
		return &n
	}
	return []listview.StatusOption{
		{Label: "Pending", Value: value(crm.MembershipPending)},
		{Label: "Approved", Value: value(crm.MembershipApproved)},
		{Label: "Rejected", Value: value(crm.MembershipRejected)},
		{Label: "All"},
	}
}

func newListCommand() *cobra.Command {
	var flags cmd.ListFlags
	var status string
	command := &cobra.Command{
		Use:   "list",
		Short: "List membership requests",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, reviewers, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					filter, err := cmd.StatusFilter(status, parseStatus)
					if err != nil {
						return err
					}
					svc := e.Client().Memberships()
					return cmd.RunList(ctx, e, svc, svc.Strategy(), filter, flags, export.Memberships)
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					filter, err := cmd.StatusFilter(status, parseStatus)
					if err != nil {
						return err
					}
					return runScreen(ctx, e, flags, filter)
				},
			}, args)
		},
	}
	cmd.AddListFlags(command, &flags)
	command.Flags().StringVar(&status, "status", "pending", "Filter by status (pending, approved, rejected, all)")
	return command
}

func runScreen(ctx context.Context, e *cmd.CommandExecutor, flags cmd.ListFlags, status *int) error {
	svc := e.Client().Memberships()
	pending := func(m crm.MembershipRequest) bool { return m.Status == crm.MembershipPending }
	cfg, err := cmd.ScreenConfig(ctx, e, flags, listview.Config[crm.MembershipRequest]{
		Title:    "Membership requests",
		Source:   svc,
		Strategy: svc.Strategy(),
		Statuses: cmd.RotateStatuses(statusOptions(), status),
		Columns: []listview.Column[crm.MembershipRequest]{
			{Title: "Name", Width: 18, Value: func(m crm.MembershipRequest) string { return m.Name }},
			{Title: "Company", Width: 22, Value: func(m crm.MembershipRequest) string { return m.Company }},
			{Title: "Email", Width: 26, Value: func(m crm.MembershipRequest) string { return m.Email }},
			{Title: "Status", Width: 10, Value: func(m crm.MembershipRequest) string { return m.Status.String() }},
			{Title: "Requested", Width: 10, Value: func(m crm.MembershipRequest) string {
				return m.RequestedAt.Format("2006-01-02")
			}},
		},
		Detail: func(ctx context.Context, m crm.MembershipRequest) (string, error) {
			full, err := svc.Get(ctx, m.UserID)
			if err != nil {
				return "", err
			}
			return describe(full), nil
		},
		Actions: []listview.Action[crm.MembershipRequest]{
			{
				Key:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "approve")),
				Allowed: pending,
				Confirm: func(m crm.MembershipRequest) string {
					return fmt.Sprintf("Approve %s from %s?", m.Name, m.Company)
				},
				Run: func(ctx context.Context, m crm.MembershipRequest) error {
					_, err := svc.Approve(ctx, m.UserID)
					return err
				},
				Done: "Request approved.",
			},
			{
				Key:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
				Allowed: pending,
				Confirm: func(m crm.MembershipRequest) string {
					return fmt.Sprintf("Reject %s from %s?", m.Name, m.Company)
				},
				Run: func(ctx context.Context, m crm.MembershipRequest) error {
					_, err := svc.Reject(ctx, m.UserID)
					return err
				},
				Done: "Request rejected.",
			},
		},
	}, api.ResourceMemberships)
	if err != nil {
		return err
	}
	return listview.Run(ctx, cfg)
}

func describe(m crm.MembershipRequest) string {
	return cmd.Detail(
		"ID", m.UserID,
		"Name", m.Name,
		"Company", m.Company,
		"Email", m.Email,
		"Phone", m.Phone,
		"Status", m.Status.String(),
		"Requested", m.RequestedAt.Format("2006-01-02 15:04"),
	)
}

func newRequestCommand() *cobra.Command {
	var in crm.MembershipInput
	command := &cobra.Command{
		Use:   "request",
		Short: "Submit a membership request (no login required)",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			submit := func(ctx context.Context, e *cmd.CommandExecutor) error {
				m, err := e.Client().Memberships().Request(ctx, in)
				if err != nil {
					return err
				}
				logger.FromContext(ctx).Info("membership requested", "user_id", m.UserID)
				return e.Write(m, export.Memberships([]crm.MembershipRequest{m}))
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAPI: true}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					return submit(ctx, e)
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					if err := components.RunForm(ctx, forms.MembershipForm(&in)); err != nil {
						return err
					}
					return submit(ctx, e)
				},
			}, args)
		},
	}
	command.Flags().StringVar(&in.Name, "name", "", "Your name")
	command.Flags().StringVar(&in.Company, "company", "", "Company name")
	command.Flags().StringVar(&in.Email, "email", "", "Email address")
	command.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	return command
}

func newDecisionCommand(verb, short string, approve bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <userID>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			handler := func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
				svc := e.Client().Memberships()
				decide := svc.Reject
				if approve {
					decide = svc.Approve
				}
				m, err := decide(ctx, args[0])
				if err != nil {
					return err
				}
				logger.FromContext(ctx).Info("membership reviewed", "user_id", m.UserID, "status", m.Status)
				return e.Write(m, export.Memberships([]crm.MembershipRequest{m}))
			}
			return cmd.ExecuteCommand(cobraCmd, reviewers, cmd.ModeHandlers{JSON: handler}, args)
		},
	}
}
