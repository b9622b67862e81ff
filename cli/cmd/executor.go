package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/salesdesk/salesdesk/cli/api"
	"github.com/salesdesk/salesdesk/cli/helpers"
	"github.com/salesdesk/salesdesk/cli/tui/models"
	"github.com/salesdesk/salesdesk/engine/export"
	"github.com/salesdesk/salesdesk/engine/session"
	"github.com/salesdesk/salesdesk/pkg/config"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

// OutputFlag selects how JSON-mode results are printed.
const OutputFlag = "output"

// CommandExecutor handles common setup and execution patterns for CLI commands.
// It gives every command one place for:
// - API client creation
// - Session loading and role checks
// - Mode detection
// - Error handling
type CommandExecutor struct {
	mode   models.Mode
	output helpers.OutputFormat
	cfg    *config.Config
	out    io.Writer

	// Only populated as needed
	client  *api.Client
	store   *session.FileStore
	session *session.Session
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// ModeHandlers contains handlers for different execution modes.
// A nil TUI handler falls back to JSON.
type ModeHandlers struct {
	JSON HandlerFunc
	TUI  HandlerFunc
}

// ExecutorOptions allows customization of the command executor
type ExecutorOptions struct {
	RequireAPI     bool
	RequireSession bool
	// Action, when set, must be granted to the session's role.
	Action session.Action
}

func NewCommandExecutor(cmd *cobra.Command, opts ExecutorOptions) (*CommandExecutor, error) {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	cfg := config.FromContext(ctx)
	mode := helpers.DetectMode(cmd)
	output, err := outputFormat(cmd)
	if err != nil {
		return nil, err
	}
	log.Debug("detected execution mode", "mode", mode, "output", output)
	executor := &CommandExecutor{
		mode:   mode,
		output: output,
		cfg:    cfg,
		out:    cmd.OutOrStdout(),
		store:  session.NewFileStore(cfg.CLI.SessionFile),
	}
	if opts.RequireSession || opts.Action != "" {
		s, err := executor.store.Load()
		if err != nil {
			return nil, err
		}
		if opts.Action != "" {
			if err := s.Require(opts.Action); err != nil {
				return nil, err
			}
		}
		executor.session = &s
		log.Debug("loaded session", "user_id", s.UserID, "role", s.RoleID)
	}
	if opts.RequireAPI {
		client, err := api.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create API client: %w", err)
		}
		executor.client = client
	}
	return executor, nil
}

func outputFormat(cmd *cobra.Command) (helpers.OutputFormat, error) {
	value, err := cmd.Flags().GetString(OutputFlag)
	if err != nil || value == "" {
		return helpers.OutputFormatJSON, nil
	}
	allowed := []string{
		string(helpers.OutputFormatJSON),
		string(helpers.OutputFormatYAML),
		string(helpers.OutputFormatTable),
	}
	if err := helpers.ValidateEnum(value, allowed, OutputFlag); err != nil {
		return "", err
	}
	return helpers.OutputFormat(value), nil
}

// Execute runs the appropriate handler based on the detected mode.
func (e *CommandExecutor) Execute(ctx context.Context, cmd *cobra.Command, handlers ModeHandlers, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	switch e.mode {
	case models.ModeJSON:
		if handlers.JSON == nil {
			return fmt.Errorf("JSON mode handler not implemented")
		}
		return handlers.JSON(ctx, cmd, e, args)
	case models.ModeTUI:
		if handlers.TUI == nil {
			if handlers.JSON == nil {
				return fmt.Errorf("TUI mode handler not implemented")
			}
			return handlers.JSON(ctx, cmd, e, args)
		}
		return handlers.TUI(ctx, cmd, e, args)
	default:
		return fmt.Errorf("unsupported mode: %s", e.mode)
	}
}

func (e *CommandExecutor) Client() *api.Client              { return e.client }
func (e *CommandExecutor) Config() *config.Config           { return e.cfg }
func (e *CommandExecutor) Mode() models.Mode                { return e.mode }
func (e *CommandExecutor) SessionStore() *session.FileStore { return e.store }

// Session returns the loaded session. It is the zero value unless the
// executor was built with RequireSession or an Action.
func (e *CommandExecutor) Session() session.Session {
	if e.session == nil {
		return session.Session{}
	}
	return *e.session
}

// Write prints data in the selected output format; tbl is used for table output.
func (e *CommandExecutor) Write(data any, tbl export.Table) error {
	return helpers.NewOutputWriter(e.out, e.output).WriteData(data, tbl)
}

// ExecuteCommand is a convenience function that combines executor creation and execution.
func ExecuteCommand(cmd *cobra.Command, opts ExecutorOptions, handlers ModeHandlers, args []string) error {
	executor, err := NewCommandExecutor(cmd, opts)
	if err != nil {
		return HandleCommonErrors(cmd, err, helpers.DetectMode(cmd))
	}
	return HandleCommonErrors(cmd, executor.Execute(cmd.Context(), cmd, handlers, args), executor.Mode())
}

// ValidateRequiredFlags checks that all required flags are present and valid.
func ValidateRequiredFlags(cmd *cobra.Command, required []string) error {
	for _, flag := range required {
		if !cmd.Flags().Changed(flag) {
			return helpers.NewCliError(helpers.CategoryValidation, fmt.Sprintf("required flag '%s' not specified", flag))
		}
		if value, err := cmd.Flags().GetString(flag); err == nil && value == "" {
			return helpers.NewCliError(helpers.CategoryValidation, fmt.Sprintf("required flag '%s' cannot be empty", flag))
		}
	}
	return nil
}

// HandleCommonErrors prints err once in the format of mode and returns it as
// a CliError so the caller can derive the exit status.
func HandleCommonErrors(cmd *cobra.Command, err error, mode models.Mode) error {
	if err == nil {
		return nil
	}
	cliErr := helpers.WrapError(err)
	logger.FromContext(cmd.Context()).Debug("command failed", "code", cliErr.Code, "error", err)
	helpers.OutputError(cmd.ErrOrStderr(), cliErr, mode)
	return cliErr
}
