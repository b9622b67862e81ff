package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	return NewUserRepo(newTestStore(t).DB())
}

func TestUserRepo_Customers(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create get update and delete a customer", func(t *testing.T) {
		repo := newUserRepo(t)
		c, err := repo.CreateCustomer(ctx, crm.CustomerInput{
			CompanyName: "Acme Corp", ContactName: "Jane", Email: "jane@acme.test",
		})
		require.NoError(t, err)
		require.NotEmpty(t, c.UserID)

		got, err := repo.GetCustomer(ctx, c.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", got.CompanyName)
		assert.False(t, got.CreatedAt.IsZero())

		updated, err := repo.UpdateCustomer(ctx, c.UserID, crm.CustomerInput{
			CompanyName: "Acme Inc", ContactName: "Jane", Email: "jane@acme.test", Phone: "555",
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme Inc", updated.CompanyName)
		assert.Equal(t, "555", updated.Phone)

		require.NoError(t, repo.DeleteCustomer(ctx, c.UserID))
		_, err = repo.GetCustomer(ctx, c.UserID)
		assert.ErrorIs(t, err, crm.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteCustomer(ctx, c.UserID), crm.ErrNotFound)
	})

	t.Run("Should reject invalid input before touching the database", func(t *testing.T) {
		repo := newUserRepo(t)
		_, err := repo.CreateCustomer(ctx, crm.CustomerInput{ContactName: "Jane"})
		assert.ErrorIs(t, err, crm.ErrValidation)
	})

	t.Run("Should reject duplicate emails case-insensitively", func(t *testing.T) {
		repo := newUserRepo(t)
		_, err := repo.CreateCustomer(ctx, crm.CustomerInput{CompanyName: "A", ContactName: "A", Email: "dup@x.test"})
		require.NoError(t, err)
		_, err = repo.CreateStaff(ctx, crm.StaffInput{Name: "B", Email: "DUP@x.test", Department: "Ops"})
		assert.ErrorIs(t, err, crm.ErrConflict)
	})

	t.Run("Should list only active customers", func(t *testing.T) {
		repo := newUserRepo(t)
		_, err := repo.CreateCustomer(ctx, crm.CustomerInput{CompanyName: "A", ContactName: "A", Email: "a@x.test"})
		require.NoError(t, err)
		_, err = repo.CreateMembership(ctx, crm.MembershipInput{Name: "P", Company: "Pending", Email: "p@x.test"})
		require.NoError(t, err)
		_, err = repo.CreateStaff(ctx, crm.StaffInput{Name: "S", Email: "s@x.test", Department: "Sales"})
		require.NoError(t, err)
		list, err := repo.ListCustomers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "A", list[0].CompanyName)
	})
}

func TestUserRepo_Staff(t *testing.T) {
	ctx := context.Background()

	t.Run("Should manage staff separately from customers", func(t *testing.T) {
		repo := newUserRepo(t)
		s, err := repo.CreateStaff(ctx, crm.StaffInput{Name: "Hank", Email: "hank@x.test", Department: "Ops"})
		require.NoError(t, err)
		_, err = repo.GetCustomer(ctx, s.UserID)
		assert.ErrorIs(t, err, crm.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteCustomer(ctx, s.UserID), crm.ErrNotFound)

		updated, err := repo.UpdateStaff(ctx, s.UserID, crm.StaffInput{
			Name: "Hank", Email: "hank@x.test", Department: "Sales", Position: "Lead",
		})
		require.NoError(t, err)
		assert.Equal(t, "Sales", updated.Department)

		list, err := repo.ListStaff(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Lead", list[0].Position)

		role, err := repo.RoleOf(ctx, s.UserID)
		require.NoError(t, err)
		assert.Equal(t, crm.RoleStaff, role)
		require.NoError(t, repo.DeleteStaff(ctx, s.UserID))
		_, err = repo.RoleOf(ctx, s.UserID)
		assert.ErrorIs(t, err, crm.ErrNotFound)
	})
}

func TestUserRepo_Memberships(t *testing.T) {
	ctx := context.Background()
	pending := int(crm.MembershipPending)

	t.Run("Should drop an approved request from the next pending load", func(t *testing.T) {
		repo := newUserRepo(t)
		a, err := repo.CreateMembership(ctx, crm.MembershipInput{Name: "Ann", Company: "Globex", Email: "ann@g.test"})
		require.NoError(t, err)
		_, err = repo.CreateMembership(ctx, crm.MembershipInput{Name: "Bob", Company: "Initech", Email: "bob@i.test"})
		require.NoError(t, err)

		list, total, err := repo.ListMemberships(ctx, MembershipFilter{Status: &pending})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, list, 2)

		approved, err := repo.ReviewMembership(ctx, a.UserID, crm.MembershipApproved)
		require.NoError(t, err)
		assert.Equal(t, crm.MembershipApproved, approved.Status)

		list, total, err = repo.ListMemberships(ctx, MembershipFilter{Status: &pending})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, list, 1)
		assert.Equal(t, "Bob", list[0].Name)

		customer, err := repo.GetCustomer(ctx, a.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Globex", customer.CompanyName)
	})

	t.Run("Should refuse to review a request twice", func(t *testing.T) {
		repo := newUserRepo(t)
		m, err := repo.CreateMembership(ctx, crm.MembershipInput{Name: "Ann", Company: "Globex", Email: "ann@g.test"})
		require.NoError(t, err)
		_, err = repo.ReviewMembership(ctx, m.UserID, crm.MembershipRejected)
		require.NoError(t, err)
		_, err = repo.ReviewMembership(ctx, m.UserID, crm.MembershipApproved)
		assert.ErrorIs(t, err, crm.ErrConflict)
		_, err = repo.ReviewMembership(ctx, "missing", crm.MembershipApproved)
		assert.ErrorIs(t, err, crm.ErrNotFound)
	})

	t.Run("Should search and page on the server", func(t *testing.T) {
		repo := newUserRepo(t)
		for i := 1; i <= 12; i++ {
			_, err := repo.CreateMembership(ctx, crm.MembershipInput{
				Name: fmt.Sprintf("Person %02d", i), Company: "Acme Corp", Email: fmt.Sprintf("p%02d@acme.test", i),
			})
			require.NoError(t, err)
		}
		_, err := repo.CreateMembership(ctx, crm.MembershipInput{Name: "Gus", Company: "Globex", Email: "gus@g.test"})
		require.NoError(t, err)

		list, total, err := repo.ListMemberships(ctx, MembershipFilter{Search: "ACME", Page: Page{Number: 2, Size: 10}})
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		assert.Len(t, list, 2)
		for _, m := range list {
			assert.Equal(t, "Acme Corp", m.Company)
		}
	})

	t.Run("Should treat wildcard characters in the query literally", func(t *testing.T) {
		repo := newUserRepo(t)
		for _, in := range []crm.MembershipInput{
			{Name: "Ann", Company: "Acme Corp", Email: "ann@acme.test"},
			{Name: "Gus", Company: "Globex", Email: "gus@globex.test"},
			{Name: "Pat", Company: "100% Solar", Email: "pat@solar.test"},
			{Name: "Émile", Company: "École Normale", Email: "emile@ecole.test"},
		} {
			_, err := repo.CreateMembership(ctx, in)
			require.NoError(t, err)
		}
		cases := map[string][]string{
			"%":     {"100% Solar"},
			"_":     {},
			"A_me":  {},
			"0% s":  {"100% Solar"},
			"école": {"École Normale"},
			"ÉMILE": {"École Normale"},
		}
		for query, want := range cases {
			list, total, err := repo.ListMemberships(ctx, MembershipFilter{Search: query})
			require.NoError(t, err)
			got := make([]string, 0, len(list))
			for _, m := range list {
				got = append(got, m.Company)
				assert.True(t, listing.Matches(m.SearchFields(), query), "query %q returned %q", query, m.Company)
			}
			assert.ElementsMatch(t, want, got, "query %q", query)
			assert.Equal(t, len(want), total, "query %q", query)
		}
	})
}
