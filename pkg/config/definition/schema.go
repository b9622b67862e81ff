package definition

import (
	"reflect"
	"time"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	stringType   = reflect.TypeOf("")
	intType      = reflect.TypeOf(0)
	boolType     = reflect.TypeOf(false)
)

// CreateRegistry creates and populates the configuration registry.
// It is the single source of truth for defaults, flag names and env names.
func CreateRegistry() *Registry {
	registry := NewRegistry()
	registerServerFields(registry)
	registerDatabaseFields(registry)
	registerRuntimeFields(registry)
	registerCLIFields(registry)
	return registry
}

func registerServerFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "server.host",
		Default: "localhost",
		CLIFlag: "host",
		EnvVar:  "SERVER_HOST",
		Type:    stringType,
		Help:    "Host the development backend binds to",
	})
	registry.Register(&FieldDef{
		Path:    "server.port",
		Default: 5080,
		CLIFlag: "port",
		EnvVar:  "SERVER_PORT",
		Type:    intType,
		Help:    "Port the development backend listens on",
	})
	registry.Register(&FieldDef{
		Path:    "server.timeout",
		Default: 15 * time.Second,
		EnvVar:  "SERVER_TIMEOUT",
		Type:    durationType,
		Help:    "Read/write timeout for backend requests",
	})
	registry.Register(&FieldDef{
		Path:    "server.cors_enabled",
		Default: true,
		EnvVar:  "SERVER_CORS_ENABLED",
		Type:    boolType,
		Help:    "Enable permissive CORS headers on the development backend",
	})
}

func registerDatabaseFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "database.path",
		Default: "salesdesk.db",
		CLIFlag: "db",
		EnvVar:  "DB_PATH",
		Type:    stringType,
		Help:    "SQLite database path, or :memory:",
	})
	registry.Register(&FieldDef{
		Path:    "database.busy_timeout",
		Default: 5 * time.Second,
		EnvVar:  "DB_BUSY_TIMEOUT",
		Type:    durationType,
		Help:    "SQLite busy timeout",
	})
	registry.Register(&FieldDef{
		Path:    "database.max_open_conns",
		Default: 4,
		EnvVar:  "DB_MAX_OPEN_CONNS",
		Type:    intType,
		Help:    "Maximum open SQLite connections",
	})
}

func registerRuntimeFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "runtime.environment",
		Default: "development",
		EnvVar:  "RUNTIME_ENVIRONMENT",
		Type:    stringType,
		Help:    "Runtime environment (development, staging, production)",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_level",
		Default: "info",
		CLIFlag: "log-level",
		EnvVar:  "RUNTIME_LOG_LEVEL",
		Type:    stringType,
		Help:    "Log level (debug, info, warn, error)",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_json",
		Default: false,
		CLIFlag: "log-json",
		EnvVar:  "RUNTIME_LOG_JSON",
		Type:    boolType,
		Help:    "Emit logs as JSON",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_file",
		Default: "",
		CLIFlag: "log-file",
		EnvVar:  "RUNTIME_LOG_FILE",
		Type:    stringType,
		Help:    "Write logs to this file instead of stderr (TUI sessions discard logs otherwise)",
	})
}

func registerCLIFields(registry *Registry) {
	registerCLIConnectionFields(registry)
	registerCLIOutputFields(registry)
	registerCLIListingFields(registry)
}

func registerCLIConnectionFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "cli.base_url",
		Default: "http://localhost:5080/api",
		CLIFlag: "base-url",
		EnvVar:  "SALESDESK_BASE_URL",
		Type:    stringType,
		Help:    "Base URL of the CRM backend API",
	})
	registry.Register(&FieldDef{
		Path:    "cli.api_key",
		Default: "",
		CLIFlag: "api-key",
		EnvVar:  "SALESDESK_API_KEY",
		Type:    stringType,
		Help:    "Bearer token sent to the backend",
	})
	registry.Register(&FieldDef{
		Path:    "cli.timeout",
		Default: 30 * time.Second,
		CLIFlag: "timeout",
		EnvVar:  "SALESDESK_TIMEOUT",
		Type:    durationType,
		Help:    "Request timeout",
	})
	registry.Register(&FieldDef{
		Path:    "cli.retry_count",
		Default: 2,
		EnvVar:  "SALESDESK_RETRY_COUNT",
		Type:    intType,
		Help:    "Automatic retries for transient backend failures",
	})
}

func registerCLIOutputFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "cli.default_format",
		Default: "auto",
		CLIFlag: "format",
		EnvVar:  "SALESDESK_FORMAT",
		Type:    stringType,
		Help:    "Output format: auto, json or tui",
	})
	registry.Register(&FieldDef{
		Path:    "cli.interactive",
		Default: false,
		CLIFlag: "interactive",
		EnvVar:  "SALESDESK_INTERACTIVE",
		Type:    boolType,
		Help:    "Force interactive mode even when auto-detection says otherwise",
	})
	registry.Register(&FieldDef{
		Path:    "cli.no_color",
		Default: false,
		CLIFlag: "no-color",
		EnvVar:  "SALESDESK_NO_COLOR",
		Type:    boolType,
		Help:    "Disable colored output",
	})
}

func registerCLIListingFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "cli.session_file",
		Default: ".salesdesk/session.yaml",
		CLIFlag: "session-file",
		EnvVar:  "SALESDESK_SESSION_FILE",
		Type:    stringType,
		Help:    "Path of the persisted session file",
	})
	registry.Register(&FieldDef{
		Path:    "cli.page_size",
		Default: 10,
		EnvVar:  "SALESDESK_PAGE_SIZE",
		Type:    intType,
		Help:    "Default listing page size (10, 20, 30, 40 or 50)",
	})
	registry.Register(&FieldDef{
		Path:    "cli.search_debounce",
		Default: 500 * time.Millisecond,
		EnvVar:  "SALESDESK_SEARCH_DEBOUNCE",
		Type:    durationType,
		Help:    "Quiescence window before a server-side search is issued",
	})
}
