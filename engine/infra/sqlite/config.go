package sqlite

import "time"

// Config captures SQLite store configuration derived from application settings.
type Config struct {
	// Path is the database location or ":memory:" for a private in-memory database.
	Path string

	MaxOpenConns int

	// BusyTimeout configures PRAGMA busy_timeout.
	BusyTimeout time.Duration
}

const defaultBusyTimeout = 5 * time.Second

func (c *Config) busyTimeout() time.Duration {
	if c.BusyTimeout <= 0 {
		return defaultBusyTimeout
	}
	return c.BusyTimeout
}
