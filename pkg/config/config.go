package config

import (
	"context"
	"time"

	"github.com/salesdesk/salesdesk/pkg/config/definition"
)

// Config is the full salesdesk configuration tree.
type Config struct {
	Server   ServerConfig   `koanf:"server"   json:"server"   yaml:"server"`
	Database DatabaseConfig `koanf:"database" json:"database" yaml:"database"`
	Runtime  RuntimeConfig  `koanf:"runtime"  json:"runtime"  yaml:"runtime"`
	CLI      CLIConfig      `koanf:"cli"      json:"cli"      yaml:"cli"`
}

// ServerConfig configures the development backend started by `salesdesk serve`.
type ServerConfig struct {
	Host        string        `koanf:"host"         json:"host"         yaml:"host"         env:"SERVER_HOST"         validate:"required"`
	Port        int           `koanf:"port"         json:"port"         yaml:"port"         env:"SERVER_PORT"         validate:"min=1,max=65535"`
	Timeout     time.Duration `koanf:"timeout"      json:"timeout"      yaml:"timeout"      env:"SERVER_TIMEOUT"`
	CORSEnabled bool          `koanf:"cors_enabled" json:"cors_enabled" yaml:"cors_enabled" env:"SERVER_CORS_ENABLED"`
}

type DatabaseConfig struct {
	Path         string        `koanf:"path"           json:"path"           yaml:"path"           env:"DB_PATH"           validate:"required"`
	BusyTimeout  time.Duration `koanf:"busy_timeout"   json:"busy_timeout"   yaml:"busy_timeout"   env:"DB_BUSY_TIMEOUT"`
	MaxOpenConns int           `koanf:"max_open_conns" json:"max_open_conns" yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" validate:"min=1"`
}

type RuntimeConfig struct {
	Environment string `koanf:"environment" json:"environment" yaml:"environment" env:"RUNTIME_ENVIRONMENT" validate:"oneof=development staging production"`
	LogLevel    string `koanf:"log_level"   json:"log_level"   yaml:"log_level"   env:"RUNTIME_LOG_LEVEL"   validate:"oneof=debug info warn error disabled"`
	LogJSON     bool   `koanf:"log_json"    json:"log_json"    yaml:"log_json"    env:"RUNTIME_LOG_JSON"`
	LogFile     string `koanf:"log_file"    json:"log_file"    yaml:"log_file"    env:"RUNTIME_LOG_FILE"`
}

// CLIConfig holds client-side settings for the dashboard commands.
type CLIConfig struct {
	BaseURL        string          `koanf:"base_url"        json:"base_url"        yaml:"base_url"        env:"SALESDESK_BASE_URL"        validate:"required,url"`
	APIKey         SensitiveString `koanf:"api_key"         json:"api_key"         yaml:"api_key"         env:"SALESDESK_API_KEY"         sensitive:"true"`
	Timeout        time.Duration   `koanf:"timeout"         json:"timeout"         yaml:"timeout"         env:"SALESDESK_TIMEOUT"`
	RetryCount     int             `koanf:"retry_count"     json:"retry_count"     yaml:"retry_count"     env:"SALESDESK_RETRY_COUNT"     validate:"min=0,max=10"`
	DefaultFormat  string          `koanf:"default_format"  json:"default_format"  yaml:"default_format"  env:"SALESDESK_FORMAT"          validate:"oneof=auto json tui"`
	Interactive    bool            `koanf:"interactive"     json:"interactive"     yaml:"interactive"     env:"SALESDESK_INTERACTIVE"`
	NoColor        bool            `koanf:"no_color"        json:"no_color"        yaml:"no_color"        env:"SALESDESK_NO_COLOR"`
	SessionFile    string          `koanf:"session_file"    json:"session_file"    yaml:"session_file"    env:"SALESDESK_SESSION_FILE"    validate:"required"`
	PageSize       int             `koanf:"page_size"       json:"page_size"       yaml:"page_size"       env:"SALESDESK_PAGE_SIZE"       validate:"oneof=10 20 30 40 50"`
	SearchDebounce time.Duration   `koanf:"search_debounce" json:"search_debounce" yaml:"search_debounce" env:"SALESDESK_SEARCH_DEBOUNCE"`
}

// Service loads and validates configuration from a list of sources.
type Service interface {
	Load(ctx context.Context, sources ...Source) (*Config, error)
	Validate(config *Config) error
	GetSource(key string) SourceType
}

// Source is one layer of configuration data.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceCLI     SourceType = "cli"
)

// Metadata records where each resolved key came from.
type Metadata struct {
	Sources  map[string]SourceType
	LoadedAt time.Time
}

// Default returns the configuration built from the field registry defaults.
func Default() *Config {
	registry := definition.CreateRegistry()
	return &Config{
		Server: ServerConfig{
			Host:        getString(registry, "server.host"),
			Port:        getInt(registry, "server.port"),
			Timeout:     getDuration(registry, "server.timeout"),
			CORSEnabled: getBool(registry, "server.cors_enabled"),
		},
		Database: DatabaseConfig{
			Path:         getString(registry, "database.path"),
			BusyTimeout:  getDuration(registry, "database.busy_timeout"),
			MaxOpenConns: getInt(registry, "database.max_open_conns"),
		},
		Runtime: RuntimeConfig{
			Environment: getString(registry, "runtime.environment"),
			LogLevel:    getString(registry, "runtime.log_level"),
			LogJSON:     getBool(registry, "runtime.log_json"),
			LogFile:     getString(registry, "runtime.log_file"),
		},
		CLI: CLIConfig{
			BaseURL:        getString(registry, "cli.base_url"),
			APIKey:         SensitiveString(getString(registry, "cli.api_key")),
			Timeout:        getDuration(registry, "cli.timeout"),
			RetryCount:     getInt(registry, "cli.retry_count"),
			DefaultFormat:  getString(registry, "cli.default_format"),
			Interactive:    getBool(registry, "cli.interactive"),
			NoColor:        getBool(registry, "cli.no_color"),
			SessionFile:    getString(registry, "cli.session_file"),
			PageSize:       getInt(registry, "cli.page_size"),
			SearchDebounce: getDuration(registry, "cli.search_debounce"),
		},
	}
}

func getString(registry *definition.Registry, path string) string {
	if val := registry.GetDefault(path); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(registry *definition.Registry, path string) int {
	if val := registry.GetDefault(path); val != nil {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return 0
}

func getBool(registry *definition.Registry, path string) bool {
	if val := registry.GetDefault(path); val != nil {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getDuration(registry *definition.Registry, path string) time.Duration {
	if val := registry.GetDefault(path); val != nil {
		if d, ok := val.(time.Duration); ok {
			return d
		}
	}
	return 0
}
