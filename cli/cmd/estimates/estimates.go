package estimates

import (
	"context"
	"fmt"
	"strings"

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

// NewEstimatesCommand creates the estimate workflow command group.
func NewEstimatesCommand() *cobra.Command {
	command := &cobra.Command{
		Use:     "estimates",
		Aliases: []string{"estimate"},
		Short:   "Request, quote and decide on estimates",
	}
	command.AddCommand(
		newListCommand(),
		newShowCommand(),
		newRequestCommand(),
		newQuoteCommand(),
		newDecisionCommand("accept", "Accept a quoted estimate", true),
		newDecisionCommand("reject", "Reject a quoted estimate", false),
		newDeleteCommand(),
	)
	return command
}

func parseStatus(s string) (int, error) {
	st, err := crm.ParseEstimateStatus(s)
	return int(st), err
}

func statusOptions() []listview.StatusOption {
	value := func(s crm.EstimateStatus) *int {
		n := int(s)
		return &n
	}
	return []listview.StatusOption{
		{Label: "All"},
		{Label: "Requested", Value: value(crm.EstimateRequested)},
		{Label: "Quoted", Value: value(crm.EstimateQuoted)},
		{Label: "Accepted", Value: value(crm.EstimateAccepted)},
		{Label: "Rejected", Value: value(crm.EstimateRejected)},
	}
}

// source scopes the listing to the caller when the caller is a customer.
func source(e *cmd.CommandExecutor) *api.EstimateService {
	svc := e.Client().Estimates()
	if s := e.Session(); s.RoleID == crm.RoleCustomer {
		return svc.ForCustomer(s.UserID)
	}
	return svc
}

// get loads an estimate and hides other customers' estimates from customers.
func get(ctx context.Context, e *cmd.CommandExecutor, tempNo string) (crm.Estimate, error) {
	est, err := e.Client().Estimates().Get(ctx, tempNo)
	if err != nil {
		return crm.Estimate{}, err
	}
	if s := e.Session(); s.RoleID == crm.RoleCustomer && est.CustomerID != s.UserID {
		return crm.Estimate{}, fmt.Errorf("%w: estimate %s", crm.ErrNotFound, tempNo)
	}
	return est, nil
}

func newListCommand() *cobra.Command {
	var flags cmd.ListFlags
	var status string
	command := &cobra.Command{
		Use:   "list",
		Short: "List estimates; customers see only their own",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI:     true,
				RequireSession: true,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					filter, err := cmd.StatusFilter(status, parseStatus)
					if err != nil {
						return err
					}
					svc := source(e)
					return cmd.RunList(ctx, e, svc, svc.Strategy(), filter, flags, export.Estimates)
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
	command.Flags().StringVar(&status, "status", "all", "Filter by status (requested, quoted, accepted, rejected, all)")
	return command
}

func runScreen(ctx context.Context, e *cmd.CommandExecutor, flags cmd.ListFlags, status *int) error {
	svc := source(e)
	s := e.Session()
	cfg := listview.Config[crm.Estimate]{
		Title:    "Estimates",
		Source:   svc,
		Strategy: svc.Strategy(),
		Statuses: cmd.RotateStatuses(statusOptions(), status),
		Columns: []listview.Column[crm.Estimate]{
			{Title: "No", Width: 14, Value: number},
			{Title: "Company", Width: 20, Value: func(est crm.Estimate) string { return est.CompanyName }},
			{Title: "Title", Width: 24, Value: func(est crm.Estimate) string { return est.Title }},
			{Title: "Status", Width: 10, Value: func(est crm.Estimate) string { return est.Status.String() }},
			{Title: "Amount", Width: 12, Value: amount},
			{Title: "Created", Width: 10, Value: func(est crm.Estimate) string { return est.CreatedAt.Format("2006-01-02") }},
		},
		Detail: func(ctx context.Context, est crm.Estimate) (string, error) {
			full, err := get(ctx, e, est.TempEstimateNo)
			if err != nil {
				return "", err
			}
			return describe(full), nil
		},
		Actions: []listview.Action[crm.Estimate]{
			{
				Key: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "quote")),
				Allowed: func(est crm.Estimate) bool {
					return s.Can(session.ActionQuoteEstimate) && est.Status == crm.EstimateRequested
				},
				Dialog: func(est crm.Estimate) *listview.Dialog {
					d := &forms.QuoteDraft{Amount: est.RequestedTotal().StringFixed(2)}
					return &listview.Dialog{
						Title: "Quote " + est.Title,
						Build: func() *huh.Form { return forms.QuoteForm(d) },
						Submit: func(ctx context.Context) error {
							in, err := d.Input()
							if err != nil {
								return err
							}
							_, err = svc.Quote(ctx, est.TempEstimateNo, in)
							return err
						},
						Done: "Estimate quoted.",
					}
				},
			},
			decisionAction(s, svc, "y", "accept", true),
			decisionAction(s, svc, "x", "reject", false),
			{
				Key:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
				Allowed: func(crm.Estimate) bool { return s.Can(session.ActionDeleteEstimate) },
				Confirm: func(est crm.Estimate) string { return fmt.Sprintf("Delete estimate %s?", number(est)) },
				Run: func(ctx context.Context, est crm.Estimate) error {
					return svc.Delete(ctx, est.TempEstimateNo)
				},
				Done: "Estimate deleted.",
			},
		},
	}
	if s.Can(session.ActionRequestEstimate) {
		cfg.Add = func() *listview.Dialog {
			d := &forms.EstimateDraft{CustomerID: s.UserID}
			return &listview.Dialog{
				Title: "Request an estimate",
				Build: func() *huh.Form { return forms.EstimateForm(d, false) },
				Submit: func(ctx context.Context) error {
					in, err := d.Input()
					if err != nil {
						return err
					}
					_, err = svc.Request(ctx, in)
					return err
				},
				Done: "Estimate requested.",
			}
		}
	}
	cfg, err := cmd.ScreenConfig(ctx, e, flags, cfg, api.ResourceEstimates)
	if err != nil {
		return err
	}
	return listview.Run(ctx, cfg)
}

func decisionAction(s session.Session, svc *api.EstimateService, k, verb string, accept bool) listview.Action[crm.Estimate] {
	return listview.Action[crm.Estimate]{
		Key: key.NewBinding(key.WithKeys(k), key.WithHelp(k, verb)),
		Allowed: func(est crm.Estimate) bool {
			return s.Can(session.ActionDecideEstimate) && est.Status == crm.EstimateQuoted
		},
		Confirm: func(est crm.Estimate) string {
			return fmt.Sprintf("%s the quote of %s for %s?", strings.ToUpper(verb[:1])+verb[1:], amount(est), est.Title)
		},
		Run: func(ctx context.Context, est crm.Estimate) error {
			decide := svc.Reject
			if accept {
				decide = svc.Accept
			}
			_, err := decide(ctx, est.TempEstimateNo)
			return err
		},
		Done: "Estimate " + verb + "ed.",
	}
}

// number prefers the issued estimate number over the temporary one.
func number(est crm.Estimate) string {
	if est.EstimateNo != "" {
		return est.EstimateNo
	}
	return est.TempEstimateNo
}

func amount(est crm.Estimate) string {
	if est.Status == crm.EstimateRequested {
		return "-"
	}
	return est.Amount.StringFixed(2)
}

func describe(est crm.Estimate) string {
	var lines strings.Builder
	for _, item := range est.Items {
		fmt.Fprintf(&lines, "\n  %s × %d @ %s = %s",
			item.Product, item.Quantity, item.UnitPrice.StringFixed(2), item.Subtotal().StringFixed(2))
	}
	quoted := "-"
	if est.QuotedAt != nil {
		quoted = est.QuotedAt.Format("2006-01-02 15:04")
	}
	return cmd.Detail(
		"Temp No", est.TempEstimateNo,
		"Estimate No", est.EstimateNo,
		"Company", est.CompanyName,
		"Title", est.Title,
		"Status", est.Status.String(),
		"Requested", est.RequestedTotal().StringFixed(2),
		"Quoted", amount(est),
		"Note", est.Note,
		"Created", est.CreatedAt.Format("2006-01-02 15:04"),
		"Quoted at", quoted,
		"Items", lines.String(),
	)
}

func writeOne(e *cmd.CommandExecutor, est crm.Estimate) error {
	return e.Write(est, export.Estimates([]crm.Estimate{est}))
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tempEstimateNo>",
		Short: "Show one estimate with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI:     true,
				RequireSession: true,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					est, err := get(ctx, e, args[0])
					if err != nil {
						return err
					}
					return writeOne(e, est)
				},
				TUI: func(ctx context.Context, cobraCmd *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					est, err := get(ctx, e, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(cobraCmd.OutOrStdout(), describe(est))
					return nil
				},
			}, args)
		},
	}
}

func newRequestCommand() *cobra.Command {
	var title string
	var lines []string
	command := &cobra.Command{
		Use:   "request",
		Short: "Request an estimate (customers only)",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			request := func(ctx context.Context, e *cmd.CommandExecutor, prompt bool) error {
				d := &forms.EstimateDraft{
					CustomerID: e.Session().UserID,
					Title:      title,
					Items:      strings.Join(lines, "\n"),
				}
				if prompt {
					if err := components.RunForm(ctx, forms.EstimateForm(d, false)); err != nil {
						return err
					}
				}
				in, err := d.Input()
				if err != nil {
					return err
				}
				est, err := e.Client().Estimates().Request(ctx, in)
				if err != nil {
					return err
				}
				logger.FromContext(ctx).Info("estimate requested", "temp_estimate_no", est.TempEstimateNo)
				return writeOne(e, est)
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI: true,
				Action:     session.ActionRequestEstimate,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					return request(ctx, e, false)
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					return request(ctx, e, true)
				},
			}, args)
		},
	}
	command.Flags().StringVar(&title, "title", "", "Estimate title")
	command.Flags().StringArrayVar(&lines, "item", nil, `Line item as "product, quantity, unit price"; repeatable`)
	return command
}

func newQuoteCommand() *cobra.Command {
	var draft forms.QuoteDraft
	command := &cobra.Command{
		Use:   "quote <tempEstimateNo>",
		Short: "Quote a requested estimate (staff)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			quote := func(ctx context.Context, e *cmd.CommandExecutor, tempNo string, prompt bool) error {
				if prompt {
					if err := components.RunForm(ctx, forms.QuoteForm(&draft)); err != nil {
						return err
					}
				}
				in, err := draft.Input()
				if err != nil {
					return err
				}
				est, err := e.Client().Estimates().Quote(ctx, tempNo, in)
				if err != nil {
					return err
				}
				logger.FromContext(ctx).Info("estimate quoted", "estimate_no", est.EstimateNo, "amount", est.Amount)
				return writeOne(e, est)
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI: true,
				Action:     session.ActionQuoteEstimate,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					return quote(ctx, e, args[0], false)
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					return quote(ctx, e, args[0], true)
				},
			}, args)
		},
	}
	command.Flags().StringVar(&draft.Amount, "amount", "", "Quoted amount")
	command.Flags().StringVar(&draft.Note, "note", "", "Note for the customer")
	return command
}

func newDecisionCommand(verb, short string, accept bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <tempEstimateNo>",
		Short: short + " (customers only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			handler := func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
				if _, err := get(ctx, e, args[0]); err != nil {
					return err
				}
				svc := e.Client().Estimates()
				decide := svc.Reject
				if accept {
					decide = svc.Accept
				}
				est, err := decide(ctx, args[0])
				if err != nil {
					return err
				}
				return writeOne(e, est)
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI: true,
				Action:     session.ActionDecideEstimate,
			}, cmd.ModeHandlers{JSON: handler}, args)
		},
	}
}

func newDeleteCommand() *cobra.Command {
	var yes bool
	command := &cobra.Command{
		Use:   "delete <tempEstimateNo>",
		Short: "Delete an estimate (staff)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			remove := func(ctx context.Context, e *cmd.CommandExecutor, tempNo string) error {
				if err := e.Client().Estimates().Delete(ctx, tempNo); err != nil {
					return err
				}
				return e.Write(map[string]any{"deleted": tempNo}, export.Table{
					Headers: []string{"Deleted"},
					Rows:    [][]string{{tempNo}},
				})
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireAPI: true,
				Action:     session.ActionDeleteEstimate,
			}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					return remove(ctx, e, args[0])
				},
				TUI: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, args []string) error {
					if !yes {
						if err := cmd.Confirm(ctx, fmt.Sprintf("Delete estimate %s?", args[0])); err != nil {
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
