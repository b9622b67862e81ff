package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type estimateFixture struct {
	users     *UserRepo
	estimates *EstimateRepo
	customer  crm.Customer
}

func newEstimateFixture(t *testing.T) *estimateFixture {
	t.Helper()
	store := newTestStore(t)
	users := NewUserRepo(store.DB())
	customer, err := users.CreateCustomer(context.Background(), crm.CustomerInput{
		CompanyName: "Acme Corp", ContactName: "Jane", Email: "jane@acme.test",
	})
	require.NoError(t, err)
	estimates := NewEstimateRepo(store.DB())
	estimates.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return &estimateFixture{users: users, estimates: estimates, customer: customer}
}

func (f *estimateFixture) request(t *testing.T, title string) crm.Estimate {
	t.Helper()
	e, err := f.estimates.Create(context.Background(), crm.EstimateRequestInput{
		CustomerID: f.customer.UserID,
		Title:      title,
		Items: []crm.EstimateItem{
			{Product: "Widget", Quantity: 3, UnitPrice: decimal.RequireFromString("12.50")},
			{Product: "Gadget", Quantity: 1, UnitPrice: decimal.RequireFromString("4")},
		},
	})
	require.NoError(t, err)
	return e
}

func TestEstimateRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store the request with its line items", func(t *testing.T) {
		f := newEstimateFixture(t)
		e := f.request(t, "Spring order")
		assert.Contains(t, e.TempEstimateNo, "T-")
		assert.Equal(t, "Acme Corp", e.CompanyName)
		assert.Equal(t, crm.EstimateRequested, e.Status)

		got, err := f.estimates.Get(ctx, e.TempEstimateNo)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "Widget", got.Items[0].Product)
		assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
		assert.True(t, got.RequestedTotal().Equal(decimal.RequireFromString("41.5")))
		assert.Empty(t, got.EstimateNo)
		assert.Nil(t, got.QuotedAt)
	})

	t.Run("Should refuse requests for unknown or pending customers", func(t *testing.T) {
		f := newEstimateFixture(t)
		pending, err := f.users.CreateMembership(ctx, crm.MembershipInput{Name: "P", Company: "P", Email: "p@x.test"})
		require.NoError(t, err)
		for _, id := range []string{"missing", pending.UserID} {
			_, err := f.estimates.Create(ctx, crm.EstimateRequestInput{
				CustomerID: id,
				Title:      "Order",
				Items:      []crm.EstimateItem{{Product: "Widget", Quantity: 1}},
			})
			assert.ErrorIs(t, err, crm.ErrNotFound)
		}
		_, total, err := f.estimates.List(ctx, EstimateFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("Should reject a request without items", func(t *testing.T) {
		f := newEstimateFixture(t)
		_, err := f.estimates.Create(ctx, crm.EstimateRequestInput{CustomerID: f.customer.UserID, Title: "Empty"})
		assert.ErrorIs(t, err, crm.ErrValidation)
	})
}

func TestEstimateRepo_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Should order by creation and page on the server", func(t *testing.T) {
		f := newEstimateFixture(t)
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range 12 {
			at := base.Add(time.Duration(i) * time.Hour)
			f.estimates.now = func() time.Time { return at }
			f.request(t, fmt.Sprintf("Order %02d", i+1))
		}

		page, total, err := f.estimates.List(ctx, EstimateFilter{Descending: true, Page: Page{Number: 1, Size: 5}})
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		require.Len(t, page, 5)
		assert.Equal(t, "Order 12", page[0].Title)

		page, _, err = f.estimates.List(ctx, EstimateFilter{Page: Page{Number: 3, Size: 5}})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "Order 11", page[0].Title)
		assert.Equal(t, "Order 12", page[1].Title)
	})

	t.Run("Should filter by status customer and keyword", func(t *testing.T) {
		f := newEstimateFixture(t)
		a := f.request(t, "Roof repair")
		f.request(t, "Window cleaning")
		_, err := f.estimates.Quote(ctx, a.TempEstimateNo, crm.QuoteInput{Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)

		quoted := int(crm.EstimateQuoted)
		list, total, err := f.estimates.List(ctx, EstimateFilter{Status: &quoted})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "Roof repair", list[0].Title)

		_, total, err = f.estimates.List(ctx, EstimateFilter{Search: "WINDOW"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = f.estimates.List(ctx, EstimateFilter{Search: "est-2026"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = f.estimates.List(ctx, EstimateFilter{CustomerID: "someone-else"})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestEstimateRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Should number quotes per year and only quote once", func(t *testing.T) {
		f := newEstimateFixture(t)
		a := f.request(t, "First")
		b := f.request(t, "Second")

		qa, err := f.estimates.Quote(ctx, a.TempEstimateNo, crm.QuoteInput{Amount: decimal.NewFromInt(250), Note: "net 30"})
		require.NoError(t, err)
		assert.Equal(t, "EST-2026-0001", qa.EstimateNo)
		assert.Equal(t, crm.EstimateQuoted, qa.Status)
		require.NotNil(t, qa.QuotedAt)

		qb, err := f.estimates.Quote(ctx, b.TempEstimateNo, crm.QuoteInput{Amount: decimal.NewFromInt(10)})
		require.NoError(t, err)
		assert.Equal(t, "EST-2026-0002", qb.EstimateNo)

		_, err = f.estimates.Quote(ctx, a.TempEstimateNo, crm.QuoteInput{Amount: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, crm.ErrConflict)

		got, err := f.estimates.Get(ctx, a.TempEstimateNo)
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, "net 30", got.Note)
	})

	t.Run("Should reject a non-positive quote", func(t *testing.T) {
		f := newEstimateFixture(t)
		a := f.request(t, "First")
		_, err := f.estimates.Quote(ctx, a.TempEstimateNo, crm.QuoteInput{Amount: decimal.Zero})
		assert.ErrorIs(t, err, crm.ErrValidation)
	})

	t.Run("Should only decide quoted estimates", func(t *testing.T) {
		f := newEstimateFixture(t)
		a := f.request(t, "First")

		_, err := f.estimates.Decide(ctx, a.TempEstimateNo, true)
		assert.ErrorIs(t, err, crm.ErrConflict)
		_, err = f.estimates.Decide(ctx, "T-missing", true)
		assert.ErrorIs(t, err, crm.ErrNotFound)

		_, err = f.estimates.Quote(ctx, a.TempEstimateNo, crm.QuoteInput{Amount: decimal.NewFromInt(5)})
		require.NoError(t, err)
		accepted, err := f.estimates.Decide(ctx, a.TempEstimateNo, true)
		require.NoError(t, err)
		assert.Equal(t, crm.EstimateAccepted, accepted.Status)

		_, err = f.estimates.Decide(ctx, a.TempEstimateNo, false)
		assert.ErrorIs(t, err, crm.ErrConflict)
	})

	t.Run("Should delete an estimate with its items", func(t *testing.T) {
		f := newEstimateFixture(t)
		a := f.request(t, "First")
		require.NoError(t, f.estimates.Delete(ctx, a.TempEstimateNo))
		_, err := f.estimates.Get(ctx, a.TempEstimateNo)
		assert.ErrorIs(t, err, crm.ErrNotFound)
		assert.ErrorIs(t, f.estimates.Delete(ctx, a.TempEstimateNo), crm.ErrNotFound)

		var n int
		require.NoError(t, f.users.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM estimate_items").Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("Should drop estimates when the customer is deleted", func(t *testing.T) {
		f := newEstimateFixture(t)
		f.request(t, "First")
		require.NoError(t, f.users.DeleteCustomer(ctx, f.customer.UserID))
		_, total, err := f.estimates.List(ctx, EstimateFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
