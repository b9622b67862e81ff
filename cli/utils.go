package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/salesdesk/salesdesk/pkg/config"
	"github.com/salesdesk/salesdesk/pkg/config/definition"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addConfigFlags registers one persistent flag per registry field that has a
// CLI flag name. Defaults come from the registry so --help shows them.
func addConfigFlags(cmd *cobra.Command, registry *definition.Registry) {
	flags := cmd.PersistentFlags()
	for _, field := range registry.FlagFields() {
		switch field.Type {
		case reflect.TypeOf(0):
			def, _ := field.Default.(int)
			flags.IntP(field.CLIFlag, field.Shorthand, def, field.Help)
		case reflect.TypeOf(false):
			def, _ := field.Default.(bool)
			flags.BoolP(field.CLIFlag, field.Shorthand, def, field.Help)
		case reflect.TypeOf(time.Duration(0)):
			def, _ := field.Default.(time.Duration)
			flags.DurationP(field.CLIFlag, field.Shorthand, def, field.Help)
		default:
			def, _ := field.Default.(string)
			flags.StringP(field.CLIFlag, field.Shorthand, def, field.Help)
		}
	}
}

// extractCLIFlags collects registry-backed flags the user explicitly changed.
// Unchanged flags are left out so lower layers keep their values.
func extractCLIFlags(cmd *cobra.Command, registry *definition.Registry) map[string]any {
	known := make(map[string]definition.FieldDef)
	for _, field := range registry.FlagFields() {
		known[field.CLIFlag] = field
	}
	out := make(map[string]any)
	fs := cmd.Flags()
	fs.Visit(func(flag *pflag.Flag) {
		field, ok := known[flag.Name]
		if !ok {
			return
		}
		if value, err := flagValue(fs, field); err == nil {
			out[flag.Name] = value
		}
	})
	return out
}

func flagValue(fs *pflag.FlagSet, field definition.FieldDef) (any, error) {
	switch field.Type {
	case reflect.TypeOf(0):
		return fs.GetInt(field.CLIFlag)
	case reflect.TypeOf(false):
		return fs.GetBool(field.CLIFlag)
	case reflect.TypeOf(time.Duration(0)):
		return fs.GetDuration(field.CLIFlag)
	default:
		return fs.GetString(field.CLIFlag)
	}
}

// resolveEnvFile returns the absolute env file path, refusing paths that
// escape the working directory.
func resolveEnvFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(pwd, path)
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve env file path: %w", err)
	}
	if !isPathWithinDirectory(absPath, pwd) {
		return "", fmt.Errorf("env file path '%s' is outside the project directory", path)
	}
	if info, err := os.Stat(absPath); err == nil && !info.Mode().IsRegular() {
		return "", fmt.Errorf("env file path '%s' is not a regular file", path)
	}
	return absPath, nil
}

func loadEnvFile(cmd *cobra.Command) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	path, err := resolveEnvFile(envFile)
	if err != nil {
		return err
	}
	return config.LoadEnvFile(path)
}

// isPathWithinDirectory checks if a given path is within the specified directory
func isPathWithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return false
	}
	if !strings.HasSuffix(absDir, string(filepath.Separator)) {
		absDir += string(filepath.Separator)
	}
	return strings.HasPrefix(absPath, absDir) || absPath == strings.TrimSuffix(absDir, string(filepath.Separator))
}
