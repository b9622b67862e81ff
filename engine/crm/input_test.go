package crm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("Should accept a complete customer", func(t *testing.T) {
		in := CustomerInput{CompanyName: "Acme Corp", ContactName: "Jane", Email: "jane@acme.test"}
		assert.NoError(t, in.Validate())
	})

	t.Run("Should name the first missing field by its JSON name", func(t *testing.T) {
		err := CustomerInput{ContactName: "Jane", Email: "jane@acme.test"}.Validate()
		require.Error(t, err)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "companyName", verr.Field)
		assert.Equal(t, "is required", verr.Message)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Should reject malformed emails", func(t *testing.T) {
		err := StaffInput{Name: "Hank", Email: "nope", Department: "Sales"}.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "email", verr.Field)
	})

	t.Run("Should require at least one estimate line", func(t *testing.T) {
		err := EstimateRequestInput{CustomerID: "u1", Title: "Racks"}.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "items", verr.Field)
	})

	t.Run("Should validate estimate lines", func(t *testing.T) {
		in := EstimateRequestInput{CustomerID: "u1", Title: "Racks", Items: []EstimateItem{{Product: "Rack", Quantity: 0}}}
		var verr *ValidationError
		require.ErrorAs(t, in.Validate(), &verr)
		assert.Equal(t, "items[0].quantity", verr.Field)

		in.Items[0].Quantity = 2
		in.Items[0].UnitPrice = decimal.NewFromInt(-1)
		require.ErrorAs(t, in.Validate(), &verr)
		assert.Equal(t, "items.unitPrice", verr.Field)
	})

	t.Run("Should require a positive quote amount", func(t *testing.T) {
		assert.Error(t, QuoteInput{}.Validate())
		assert.NoError(t, QuoteInput{Amount: decimal.RequireFromString("1200.50")}.Validate())
	})
}

func TestRecords(t *testing.T) {
	t.Run("Should expose the documented search fields", func(t *testing.T) {
		assert.Equal(t, []string{"Acme", "Jane"}, Customer{CompanyName: "Acme", ContactName: "Jane"}.SearchFields())
		assert.Equal(t, []string{"Hank", "h@x", "Ops"}, Staff{Name: "Hank", Email: "h@x", Department: "Ops"}.SearchFields())
		assert.Equal(t, []string{"Ann", "Globex"}, MembershipRequest{Name: "Ann", Company: "Globex"}.SearchFields())
		assert.Contains(t, Estimate{EstimateNo: "E-1"}.SearchFields(), "E-1")
	})

	t.Run("Should total requested lines", func(t *testing.T) {
		e := Estimate{Items: []EstimateItem{
			{Product: "a", Quantity: 2, UnitPrice: decimal.RequireFromString("10.25")},
			{Product: "b", Quantity: 1, UnitPrice: decimal.RequireFromString("0.50")},
		}}
		assert.True(t, decimal.RequireFromString("21.00").Equal(e.RequestedTotal()))
	})

	t.Run("Should parse roles by name or id", func(t *testing.T) {
		r, err := ParseRole("staff")
		require.NoError(t, err)
		assert.Equal(t, RoleStaff, r)
		r, err = ParseRole("1")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, r)
		_, err = ParseRole("9")
		assert.ErrorIs(t, err, ErrValidation)
	})
}
