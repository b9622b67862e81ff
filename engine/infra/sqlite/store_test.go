package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), &Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBuildDSN(t *testing.T) {
	t.Run("Should build DSN for file path with pragmas", func(t *testing.T) {
		d := buildDSN(&Config{Path: "/tmp/test.db"})
		assert.Contains(t, d, "file:/tmp/test.db?")
		assert.Contains(t, d, "_pragma=journal_mode(WAL)")
		assert.Contains(t, d, "_pragma=foreign_keys(ON)")
		assert.Contains(t, d, "_pragma=busy_timeout(5000)")
	})

	t.Run("Should give each in-memory store its own shared-cache name", func(t *testing.T) {
		a := buildDSN(&Config{Path: ":memory:"})
		b := buildDSN(&Config{Path: ":memory:"})
		assert.Contains(t, a, "mode=memory")
		assert.Contains(t, a, "cache=shared")
		assert.NotContains(t, a, "journal_mode")
		assert.NotEqual(t, a, b)
	})
}

func TestNewStore(t *testing.T) {
	t.Run("Should require a path", func(t *testing.T) {
		_, err := NewStore(context.Background(), &Config{})
		assert.Error(t, err)
	})

	t.Run("Should create tables on a file database", func(t *testing.T) {
		ctx := context.Background()
		s, err := NewStore(ctx, &Config{Path: filepath.Join(t.TempDir(), "crm.db"), MaxOpenConns: 2})
		require.NoError(t, err)
		defer s.Close()
		expected := map[string]bool{"users": true, "estimates": true, "estimate_items": true}
		rows, err := s.DB().QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
		require.NoError(t, err)
		defer rows.Close()
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			delete(expected, name)
		}
		require.NoError(t, rows.Err())
		assert.Empty(t, expected)
	})

	t.Run("Should be idempotent when migrating twice", func(t *testing.T) {
		s := newTestStore(t)
		assert.NoError(t, ApplyMigrations(context.Background(), s.DB()))
	})

	t.Run("Should isolate separate in-memory stores", func(t *testing.T) {
		ctx := context.Background()
		a := newTestStore(t)
		b := newTestStore(t)
		_, err := NewUserRepo(a.DB()).CreateAdmin(ctx, "Root", "root@a.test")
		require.NoError(t, err)
		var n int
		require.NoError(t, b.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n))
		assert.Zero(t, n)
	})
}
