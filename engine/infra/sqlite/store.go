package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/segmentio/ksuid"
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Store owns the *sql.DB handle.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the database, applies pragmas, and runs migrations.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}
	dsn := buildDSN(cfg)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	switch {
	case cfg.Path == memoryPath:
		// shared-cache connections lock whole tables against each other
		db.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.FromContext(ctx).Debug("sqlite store ready", "path", cfg.Path)
	return &Store{db: db, path: cfg.Path}, nil
}

// buildDSN turns a path into a modernc DSN with pragmas applied on every
// connection. ":memory:" becomes a uniquely named shared-cache database so
// pooled connections see the same data while separate stores stay isolated.
func buildDSN(cfg *Config) string {
	pragmas := []string{
		"foreign_keys(ON)",
		fmt.Sprintf("busy_timeout(%d)", cfg.busyTimeout().Milliseconds()),
	}
	q := url.Values{}
	var base string
	if cfg.Path == memoryPath {
		base = "file:memdb-" + ksuid.New().String()
		q.Set("mode", "memory")
		q.Set("cache", "shared")
	} else {
		base = "file:" + cfg.Path
		pragmas = append(pragmas, "journal_mode(WAL)")
	}
	parts := make([]string, 0, len(pragmas)+2)
	for k := range q {
		parts = append(parts, k+"="+q.Get(k))
	}
	for _, p := range pragmas {
		parts = append(parts, "_pragma="+p)
	}
	return base + "?" + strings.Join(parts, "&")
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
