package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := RootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	base := []string{"--env-file", "", "--format", "json", "--log-level", "disabled"}
	root.SetArgs(append(base, args...))
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestSetupGlobalConfig(t *testing.T) {
	t.Run("Should let YAML override defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "salesdesk.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 6000\n"), 0o600))
		out, err := runRoot(t, "--config", cfgPath, "config", "show", "--sources")
		require.NoError(t, err)
		assert.Equal(t, "6000", gjson.Get(out, `#(key=="server.port").value`).String())
		assert.Equal(t, "yaml", gjson.Get(out, `#(key=="server.port").source`).String())
	})

	t.Run("Should let flags override YAML", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "salesdesk.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 6000\n"), 0o600))
		out, err := runRoot(t, "--config", cfgPath, "--port", "7000", "config", "show", "--sources")
		require.NoError(t, err)
		assert.Equal(t, "7000", gjson.Get(out, `#(key=="server.port").value`).String())
		assert.Equal(t, "cli", gjson.Get(out, `#(key=="server.port").source`).String())
	})

	t.Run("Should fail on an invalid configuration value", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "salesdesk.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("cli:\n  page_size: 15\n"), 0o600))
		_, err := runRoot(t, "--config", cfgPath, "config", "show")
		require.Error(t, err)
	})
}

func TestIsPathWithinDirectory(t *testing.T) {
	t.Run("Should accept nested paths and reject escapes", func(t *testing.T) {
		dir := t.TempDir()
		assert.True(t, isPathWithinDirectory(filepath.Join(dir, "a", ".env"), dir))
		assert.True(t, isPathWithinDirectory(dir, dir))
		assert.False(t, isPathWithinDirectory(filepath.Join(dir, "..", "other", ".env"), dir))
	})
}

func TestResolveEnvFile(t *testing.T) {
	t.Run("Should reject env files outside the working directory", func(t *testing.T) {
		_, err := resolveEnvFile("../../outside.env")
		require.Error(t, err)
	})

	t.Run("Should treat an empty path as no env file", func(t *testing.T) {
		path, err := resolveEnvFile("")
		require.NoError(t, err)
		assert.Empty(t, path)
	})
}

func TestVersionCommand(t *testing.T) {
	t.Run("Should print build information", func(t *testing.T) {
		out, err := runRoot(t, "version")
		require.NoError(t, err)
		assert.Equal(t, "dev", gjson.Get(out, "version").String())
	})
}
