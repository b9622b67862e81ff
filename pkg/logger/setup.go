package logger

import (
	"io"
)

// SetupLogger builds a logger from CLI-level settings and installs it as the default.
func SetupLogger(logLevel string, logJSON, logSource bool, out io.Writer) Logger {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(logLevel)
	cfg.JSON = logJSON
	cfg.AddSource = logSource
	if out != nil {
		cfg.Output = out
	}
	Init(cfg)
	return GetDefault()
}
