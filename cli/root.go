package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/salesdesk/salesdesk/cli/cmd"
	configcmd "github.com/salesdesk/salesdesk/cli/cmd/config"
	"github.com/salesdesk/salesdesk/cli/cmd/customers"
	"github.com/salesdesk/salesdesk/cli/cmd/estimates"
	"github.com/salesdesk/salesdesk/cli/cmd/members"
	"github.com/salesdesk/salesdesk/cli/cmd/serve"
	sessioncmd "github.com/salesdesk/salesdesk/cli/cmd/session"
	"github.com/salesdesk/salesdesk/cli/cmd/staff"
	versioncmd "github.com/salesdesk/salesdesk/cli/cmd/version"
	"github.com/salesdesk/salesdesk/cli/helpers"
	"github.com/salesdesk/salesdesk/cli/tui/models"
	"github.com/salesdesk/salesdesk/pkg/config"
	"github.com/salesdesk/salesdesk/pkg/config/definition"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "salesdesk.yaml"
	defaultEnvFile    = ".env"
)

func RootCmd() *cobra.Command {
	var closeLog func() error
	root := &cobra.Command{
		Use:   "salesdesk",
		Short: "Sales dashboard for customers, staff, membership requests and estimates",
		Long: `salesdesk browses and manages the CRM dashboard pages from the terminal.
Lists open as interactive screens on a terminal and print JSON, YAML or a
table otherwise.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			closer, err := SetupGlobalConfig(cmd)
			closeLog = closer
			return err
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if closeLog == nil {
				return nil
			}
			return closeLog()
		},
	}
	registry := definition.CreateRegistry()
	addConfigFlags(root, registry)
	flags := root.PersistentFlags()
	flags.String("config", defaultConfigFile, "Path to the configuration file")
	flags.String("env-file", defaultEnvFile, "Path to the environment file")
	flags.StringP(cmd.OutputFlag, "o", "json", "Non-interactive output format (json, yaml, table)")
	flags.Bool("log-source", false, "Include caller locations in log lines")

	root.AddCommand(
		customers.NewCustomersCommand(),
		staff.NewStaffCommand(),
		members.NewMembersCommand(),
		estimates.NewEstimatesCommand(),
		serve.NewServeCommand(),
		configcmd.NewConfigCommand(),
		versioncmd.NewVersionCommand(),
	)
	root.AddCommand(sessioncmd.NewSessionCommands()...)
	return root
}

// SetupGlobalConfig resolves configuration (defaults < yaml < env < flags),
// builds the logger and stores both in the command context. The returned
// function closes the log file, if one was opened.
func SetupGlobalConfig(cmd *cobra.Command) (func() error, error) {
	if err := loadEnvFile(cmd); err != nil {
		return nil, fmt.Errorf("failed to load environment file: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sources := make([]config.Source, 0, 2)
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config file: %w", err)
	}
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	if cliFlags := extractCLIFlags(cmd, definition.CreateRegistry()); len(cliFlags) > 0 {
		sources = append(sources, config.NewCLIProvider(cliFlags))
	}
	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx, sources...)
	if err != nil {
		return nil, err
	}
	ctx = config.ContextWithManager(ctx, manager)
	cmd.SetContext(ctx)
	if !helpers.ShouldUseColor(cmd) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	addSource, _ := cmd.Flags().GetBool("log-source")
	out, closer, err := logOutput(cfg, helpers.DetectMode(cmd))
	if err != nil {
		return nil, err
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, addSource, out)
	cmd.SetContext(logger.ContextWithLogger(ctx, log))
	return closer, nil
}

// logOutput keeps logs off the screen while a TUI owns the terminal.
func logOutput(cfg *config.Config, mode models.Mode) (io.Writer, func() error, error) {
	if cfg.Runtime.LogFile != "" {
		f, err := os.OpenFile(cfg.Runtime.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, f.Close, nil
	}
	if mode == models.ModeTUI {
		return io.Discard, nil, nil
	}
	return os.Stderr, nil, nil
}
