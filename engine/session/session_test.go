package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Run("Should round-trip a session", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "nested", "session.yaml"))
		require.NoError(t, store.Save(Session{UserID: "u1", RoleID: crm.RoleStaff}))
		s, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "u1", s.UserID)
		assert.Equal(t, crm.RoleStaff, s.RoleID)
		assert.False(t, s.CreatedAt.IsZero())
	})

	t.Run("Should report a missing session", func(t *testing.T) {
		_, err := NewFileStore(filepath.Join(t.TempDir(), "none.yaml")).Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("Should reject a session with an unknown role", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.yaml")
		require.NoError(t, os.WriteFile(path, []byte("user_id: u1\nrole_id: 7\n"), 0o600))
		_, err := NewFileStore(path).Load()
		assert.ErrorIs(t, err, crm.ErrValidation)
	})

	t.Run("Should refuse to save an empty user", func(t *testing.T) {
		err := NewFileStore(filepath.Join(t.TempDir(), "s.yaml")).Save(Session{RoleID: crm.RoleAdmin})
		assert.ErrorIs(t, err, crm.ErrValidation)
	})

	t.Run("Should clear idempotently", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "s.yaml"))
		require.NoError(t, store.Save(Session{UserID: "u1", RoleID: crm.RoleAdmin}))
		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())
		_, err := store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestPermissions(t *testing.T) {
	admin := Session{UserID: "a1", RoleID: crm.RoleAdmin}
	staff := Session{UserID: "s1", RoleID: crm.RoleStaff}
	customer := Session{UserID: "c1", RoleID: crm.RoleCustomer}

	t.Run("Should let only admins manage staff", func(t *testing.T) {
		assert.True(t, admin.Can(ActionManageStaff))
		assert.False(t, staff.Can(ActionManageStaff))
		assert.ErrorIs(t, customer.Require(ActionManageStaff), crm.ErrForbidden)
	})

	t.Run("Should let staff review memberships and quote", func(t *testing.T) {
		assert.True(t, staff.Can(ActionReviewMembership))
		assert.True(t, staff.Can(ActionQuoteEstimate))
		assert.False(t, customer.Can(ActionQuoteEstimate))
	})

	t.Run("Should let customers request and decide estimates", func(t *testing.T) {
		assert.True(t, customer.Can(ActionRequestEstimate))
		assert.True(t, customer.Can(ActionDecideEstimate))
		assert.False(t, staff.Can(ActionDecideEstimate))
	})

	t.Run("Should stop admins deleting themselves", func(t *testing.T) {
		assert.False(t, admin.CanDelete("a1", crm.RoleAdmin))
		assert.True(t, admin.CanDelete("s1", crm.RoleStaff))
	})

	t.Run("Should let customers delete only their own account", func(t *testing.T) {
		assert.True(t, customer.CanDelete("c1", crm.RoleCustomer))
		assert.ErrorIs(t, customer.RequireDelete("c2", crm.RoleCustomer), crm.ErrForbidden)
	})
}
