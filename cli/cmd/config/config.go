package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sort"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/salesdesk/salesdesk/cli/cmd"
	"github.com/salesdesk/salesdesk/engine/export"
	"github.com/salesdesk/salesdesk/pkg/config"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

// Entry is one resolved configuration key.
type Entry struct {
	Key    string            `json:"key"              yaml:"key"`
	Value  string            `json:"value"            yaml:"value"`
	Source config.SourceType `json:"source,omitempty" yaml:"source,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Configuration management and diagnostics",
	}
	command.AddCommand(
		NewConfigShowCommand(),
		NewConfigValidateCommand(),
		NewConfigDiagnosticsCommand(),
	)
	return command
}

// NewConfigShowCommand creates the config show subcommand
func NewConfigShowCommand() *cobra.Command {
	var showSources bool
	command := &cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration values",
		Long: `Display the resolved configuration. With --sources each key also shows
which layer (default, yaml, env or cli) supplied it.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					logger.FromContext(ctx).Debug("executing config show")
					entries, err := Entries(ctx, e.Config(), showSources)
					if err != nil {
						return err
					}
					return e.Write(entries, entryTable(entries, showSources))
				},
			}, args)
		},
	}
	command.Flags().BoolVar(&showSources, "sources", false, "Show configuration sources")
	return command
}

// NewConfigValidateCommand creates the config validate subcommand
func NewConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					if err := validate(ctx, e.Config()); err != nil {
						return fmt.Errorf("configuration validation failed: %w", err)
					}
					return e.Write(map[string]any{"valid": true}, export.Table{
						Headers: []string{"Valid"},
						Rows:    [][]string{{"true"}},
					})
				},
			}, args)
		},
	}
}

// NewConfigDiagnosticsCommand reports the working directory, validation result
// and source of every key.
func NewConfigDiagnosticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnostics",
		Short: "Run configuration diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: func(ctx context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					d, err := diagnose(ctx, e.Config())
					if err != nil {
						return err
					}
					rows := [][]string{
						{"working_directory", d.WorkingDirectory},
						{"valid", fmt.Sprint(d.Valid)},
						{"error", d.Error},
						{"precedence", "cli > env > yaml > default"},
					}
					for _, entry := range d.Entries {
						rows = append(rows, []string{entry.Key, string(entry.Source)})
					}
					return e.Write(d, export.Table{Headers: []string{"Check", "Result"}, Rows: rows})
				},
			}, args)
		},
	}
}

// Diagnostics is the config diagnostics report.
type Diagnostics struct {
	WorkingDirectory string  `json:"working_directory" yaml:"working_directory"`
	Valid            bool    `json:"valid"             yaml:"valid"`
	Error            string  `json:"error,omitempty"   yaml:"error,omitempty"`
	Entries          []Entry `json:"sources"           yaml:"sources"`
}

func diagnose(ctx context.Context, cfg *config.Config) (Diagnostics, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Diagnostics{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	entries, err := Entries(ctx, cfg, true)
	if err != nil {
		return Diagnostics{}, err
	}
	d := Diagnostics{WorkingDirectory: cwd, Valid: true, Entries: entries}
	if err := validate(ctx, cfg); err != nil {
		d.Valid = false
		d.Error = err.Error()
	}
	return d, nil
}

func validate(ctx context.Context, cfg *config.Config) error {
	service := config.NewService()
	if m := config.ManagerFromContext(ctx); m != nil {
		service = m.Service
	}
	return service.Validate(cfg)
}

// Entries flattens cfg into sorted dotted keys with sensitive values redacted.
func Entries(ctx context.Context, cfg *config.Config, withSources bool) ([]Entry, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to flatten configuration: %w", err)
	}
	flat := k.All()
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	manager := config.ManagerFromContext(ctx)
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entry := Entry{Key: key, Value: display(key, flat[key])}
		if withSources {
			entry.Source = config.SourceDefault
			if manager != nil {
				if src := manager.SourceOf(key); src != "" {
					entry.Source = src
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func display(key string, value any) string {
	if config.IsSensitiveConfigPath(key) {
		return config.SensitiveString(fmt.Sprint(value)).String()
	}
	s := fmt.Sprint(value)
	if key == "cli.base_url" {
		return redactURL(s)
	}
	return s
}

// redactURL hides credentials embedded in a URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.User("[REDACTED]")
	return u.String()
}

func entryTable(entries []Entry, withSources bool) export.Table {
	t := export.Table{Headers: []string{"Key", "Value"}}
	if withSources {
		t.Headers = append(t.Headers, "Source")
	}
	for _, entry := range entries {
		row := []string{entry.Key, entry.Value}
		if withSources {
			row = append(row, string(entry.Source))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
