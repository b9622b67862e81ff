package api

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/infra/server"
	"github.com/salesdesk/salesdesk/engine/infra/sqlite"
	"github.com/salesdesk/salesdesk/engine/listing"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) (context.Context, *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := logger.ContextWithLogger(context.Background(), logger.NewForTests())
	store, err := sqlite.NewStore(ctx, &sqlite.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	srv, err := server.NewServer(ctx, store)
	require.NoError(t, err)
	h, err := srv.Handler()
	require.NoError(t, err)
	httpSrv := httptest.NewServer(h)
	t.Cleanup(httpSrv.Close)
	return ctx, newTestClient(t, httpSrv.URL, 1)
}

// load runs one full fetch cycle of vm against src.
func load[T listing.Record](ctx context.Context, t *testing.T, vm *listing.ViewModel[T], src listing.Source[T]) bool {
	t.Helper()
	accepted, refetch := vm.Resolve(listing.Fetch(ctx, src, vm.BeginLoad()))
	require.True(t, accepted)
	return refetch
}

func TestServices_Customers(t *testing.T) {
	t.Run("Should filter and page a client-side listing", func(t *testing.T) {
		ctx, c := newBackend(t)
		for i := range 12 {
			_, err := c.Customers().Create(ctx, crm.CustomerInput{
				CompanyName: fmt.Sprintf("Company %02d", i),
				ContactName: "Contact",
				Email:       fmt.Sprintf("c%d@example.test", i),
			})
			require.NoError(t, err)
		}
		src := c.Customers()
		vm := listing.New[crm.Customer](listing.Options{Strategy: src.Strategy(), PageSize: 10})
		load(ctx, t, vm, src)
		assert.Equal(t, 2, vm.TotalPages())
		assert.Len(t, vm.PageItems(), 10)

		assert.False(t, vm.SetPage(2))
		assert.Len(t, vm.PageItems(), 2)

		assert.False(t, vm.SetQuery("company 1"))
		assert.Equal(t, 1, vm.Page())
		assert.Equal(t, 2, vm.TotalCount())

		first := vm.PageItems()[0]
		got, err := c.Customers().Get(ctx, first.UserID)
		require.NoError(t, err)
		assert.Equal(t, first.CompanyName, got.CompanyName)

		require.NoError(t, c.Customers().Delete(ctx, first.UserID))
		_, err = c.Customers().Get(ctx, first.UserID)
		assert.ErrorIs(t, err, crm.ErrNotFound)
	})
}

func TestServices_Memberships(t *testing.T) {
	t.Run("Should remove an approved request from the pending page", func(t *testing.T) {
		ctx, c := newBackend(t)
		for i := range 11 {
			_, err := c.Memberships().Request(ctx, crm.MembershipInput{
				Name: "Applicant", Company: "Initech", Email: fmt.Sprintf("a%d@initech.test", i),
			})
			require.NoError(t, err)
		}
		pending := int(crm.MembershipPending)
		src := c.Memberships()
		vm := listing.New[crm.MembershipRequest](listing.Options{
			Strategy: src.Strategy(), PageSize: 10, Status: &pending,
		})
		load(ctx, t, vm, src)
		assert.Equal(t, 2, vm.TotalPages())
		assert.Equal(t, 11, vm.TotalCount())

		require.True(t, vm.SetPage(2))
		load(ctx, t, vm, src)
		require.Len(t, vm.PageItems(), 1)
		last := vm.PageItems()[0]

		approved, err := c.Memberships().Approve(ctx, last.UserID)
		require.NoError(t, err)
		assert.Equal(t, crm.MembershipApproved, approved.Status)

		// page 2 is now empty on the server; the model clamps back to page 1
		refetch := load(ctx, t, vm, src)
		assert.True(t, refetch)
		assert.Equal(t, 1, vm.Page())
		load(ctx, t, vm, src)
		assert.Len(t, vm.PageItems(), 10)
		assert.Equal(t, 10, vm.TotalCount())

		_, err = c.Memberships().Reject(ctx, last.UserID)
		assert.ErrorIs(t, err, crm.ErrConflict)

		customers, err := c.Customers().FetchList(ctx, listing.Params{})
		require.NoError(t, err)
		assert.Len(t, customers.Items, 1)
	})
}

func TestServices_Estimates(t *testing.T) {
	t.Run("Should page on the server and scope by customer", func(t *testing.T) {
		ctx, c := newBackend(t)
		acme, err := c.Customers().Create(ctx, crm.CustomerInput{
			CompanyName: "Acme", ContactName: "Jane", Email: "jane@acme.test",
		})
		require.NoError(t, err)
		globex, err := c.Customers().Create(ctx, crm.CustomerInput{
			CompanyName: "Globex", ContactName: "Hank", Email: "hank@globex.test",
		})
		require.NoError(t, err)
		items := []crm.EstimateItem{{Product: "Widget", Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")}}
		for i := range 12 {
			_, err := c.Estimates().Request(ctx, crm.EstimateRequestInput{
				CustomerID: acme.UserID, Title: fmt.Sprintf("Order %d", i), Items: items,
			})
			require.NoError(t, err)
		}
		other, err := c.Estimates().Request(ctx, crm.EstimateRequestInput{
			CustomerID: globex.UserID, Title: "Globex order", Items: items,
		})
		require.NoError(t, err)

		src := c.Estimates()
		vm := listing.New[crm.Estimate](listing.Options{Strategy: src.Strategy(), PageSize: 10, Descending: true})
		load(ctx, t, vm, src)
		assert.Equal(t, 13, vm.TotalCount())
		assert.Equal(t, 2, vm.TotalPages())
		assert.Len(t, vm.PageItems(), 10)

		assert.True(t, vm.SetQuery("globex"))
		load(ctx, t, vm, src)
		require.Len(t, vm.PageItems(), 1)
		assert.Equal(t, other.TempEstimateNo, vm.PageItems()[0].TempEstimateNo)

		scoped, err := c.Estimates().ForCustomer(acme.UserID).FetchList(ctx, listing.Params{Page: 2, PageSize: 10})
		require.NoError(t, err)
		assert.True(t, scoped.Paged)
		assert.Equal(t, 12, scoped.TotalCount)
		assert.Len(t, scoped.Items, 2)
	})

	t.Run("Should run quote and accept", func(t *testing.T) {
		ctx, c := newBackend(t)
		acme, err := c.Customers().Create(ctx, crm.CustomerInput{
			CompanyName: "Acme", ContactName: "Jane", Email: "jane@acme.test",
		})
		require.NoError(t, err)
		e, err := c.Estimates().Request(ctx, crm.EstimateRequestInput{
			CustomerID: acme.UserID,
			Title:      "Spring",
			Items:      []crm.EstimateItem{{Product: "Bolt", Quantity: 10, UnitPrice: decimal.NewFromInt(1)}},
		})
		require.NoError(t, err)

		_, err = c.Estimates().Quote(ctx, e.TempEstimateNo, crm.QuoteInput{})
		assert.ErrorIs(t, err, crm.ErrValidation)

		quoted, err := c.Estimates().Quote(ctx, e.TempEstimateNo, crm.QuoteInput{Amount: decimal.NewFromInt(9)})
		require.NoError(t, err)
		assert.Equal(t, crm.EstimateQuoted, quoted.Status)

		accepted, err := c.Estimates().Accept(ctx, e.TempEstimateNo)
		require.NoError(t, err)
		assert.Equal(t, crm.EstimateAccepted, accepted.Status)
		assert.True(t, accepted.Amount.Equal(decimal.NewFromInt(9)))

		require.NoError(t, c.Estimates().Delete(ctx, e.TempEstimateNo))
		_, err = c.Estimates().Get(ctx, e.TempEstimateNo)
		assert.ErrorIs(t, err, crm.ErrNotFound)
	})
}

func TestClient_Subscribe(t *testing.T) {
	t.Run("Should deliver change events until cancelled", func(t *testing.T) {
		ctx, c := newBackend(t)
		subCtx, cancel := context.WithCancel(ctx)
		feed, err := c.Subscribe(subCtx)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			// the hub registers the client asynchronously; keep mutating until an event arrives
			_, err := c.Staff().Create(ctx, crm.StaffInput{
				Name: "Hank", Email: fmt.Sprintf("hank%d@x.test", time.Now().UnixNano()), Department: "Ops",
			})
			if err != nil {
				return false
			}
			select {
			case evt := <-feed:
				return evt.Matches("staff") && evt.Action == "created"
			case <-time.After(100 * time.Millisecond):
				return false
			}
		}, 3*time.Second, 10*time.Millisecond)

		cancel()
		require.Eventually(t, func() bool {
			for {
				select {
				case _, ok := <-feed:
					if !ok {
						return true
					}
				default:
					return false
				}
			}
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestEvent_Matches(t *testing.T) {
	t.Run("Should match by resource type", func(t *testing.T) {
		evt := Event{Type: "estimates", ID: "T-1", Action: "quoted"}
		assert.True(t, evt.Matches("customers", "estimates"))
		assert.False(t, evt.Matches("staff"))
		assert.False(t, evt.Matches())
	})
}
