package config

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/salesdesk/salesdesk/pkg/config/definition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("Should mirror every registry default", func(t *testing.T) {
		cfg := Default()
		registry := definition.CreateRegistry()
		assert.Equal(t, registry.GetDefault("cli.page_size"), cfg.CLI.PageSize)
		assert.Equal(t, registry.GetDefault("cli.default_format"), cfg.CLI.DefaultFormat)
		assert.Equal(t, registry.GetDefault("database.path"), cfg.Database.Path)
		assert.Equal(t, registry.GetDefault("runtime.log_level"), cfg.Runtime.LogLevel)
	})

	t.Run("Should pass validation", func(t *testing.T) {
		assert.NoError(t, NewService().Validate(Default()))
	})
}

func TestEnvMappings(t *testing.T) {
	t.Run("Should map env tags to config paths", func(t *testing.T) {
		m := GenerateEnvToConfigMap()
		assert.Equal(t, "cli.page_size", m["SALESDESK_PAGE_SIZE"])
		assert.Equal(t, "server.port", m["SERVER_PORT"])
		assert.Equal(t, "SALESDESK_API_KEY", GetEnvVarForConfigPath("cli.api_key"))
		assert.Equal(t, "", GetEnvVarForConfigPath("cli.nope"))
	})

	t.Run("Should agree with registry env names", func(t *testing.T) {
		registry := definition.CreateRegistry()
		for _, mapping := range GenerateEnvMappings() {
			field, ok := registry.GetField(mapping.ConfigPath)
			require.True(t, ok, mapping.ConfigPath)
			assert.Equal(t, field.EnvVar, mapping.EnvVar, mapping.ConfigPath)
		}
	})

	t.Run("Should flag sensitive paths", func(t *testing.T) {
		assert.True(t, IsSensitiveConfigPath("cli.api_key"))
		assert.False(t, IsSensitiveConfigPath("cli.base_url"))
		assert.False(t, IsSensitiveConfigPath("cli"))
	})
}

func TestSensitiveString(t *testing.T) {
	t.Run("Should redact non-empty values", func(t *testing.T) {
		assert.Equal(t, "[REDACTED]", SensitiveString("x").String())
		assert.Equal(t, "", SensitiveString("").String())
	})

	t.Run("Should marshal as redacted", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Key SensitiveString `json:"key"`
		}{Key: "secret"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"key":"[REDACTED]"}`, string(data))
	})
}

func TestContext(t *testing.T) {
	t.Run("Should fall back to defaults without a manager", func(t *testing.T) {
		cfg := FromContext(context.Background())
		require.NotNil(t, cfg)
		assert.Equal(t, 10, cfg.CLI.PageSize)
	})

	t.Run("Should return the manager configuration", func(t *testing.T) {
		m := NewManager(nil)
		_, err := m.Load(context.Background(), NewCLIProvider(map[string]any{"format": "json"}))
		require.NoError(t, err)
		ctx := ContextWithManager(context.Background(), m)
		assert.Same(t, m, ManagerFromContext(ctx))
		assert.Equal(t, "json", FromContext(ctx).CLI.DefaultFormat)
		assert.Equal(t, SourceCLI, m.SourceOf("cli.default_format"))
	})
}
