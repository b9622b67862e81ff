package forms

import (
	"testing"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	t.Run("Should parse one item per line", func(t *testing.T) {
		items, err := ParseItems("Widget, 2, 9.50\n\n  Bolt,10,0.25  \n")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Widget", items[0].Product)
		assert.Equal(t, 2, items[0].Quantity)
		assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("9.5")))
		assert.Equal(t, 10, items[1].Quantity)
	})

	t.Run("Should name the failing line", func(t *testing.T) {
		_, err := ParseItems("Widget, 2, 9.50\nBolt, zero, 1")
		require.Error(t, err)
		assert.ErrorIs(t, err, crm.ErrValidation)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("Should reject empty or malformed input", func(t *testing.T) {
		for _, text := range []string{"", "\n \n", "Widget, 2", ", 1, 1", "Widget, 1, -3", "Widget, -1, 3"} {
			_, err := ParseItems(text)
			assert.ErrorIs(t, err, crm.ErrValidation, text)
		}
	})
}

func TestEstimateDraft(t *testing.T) {
	t.Run("Should build a valid request", func(t *testing.T) {
		d := &EstimateDraft{CustomerID: " c1 ", Title: "Spring", Items: "Widget, 1, 3"}
		in, err := d.Input()
		require.NoError(t, err)
		assert.Equal(t, "c1", in.CustomerID)
		assert.Len(t, in.Items, 1)
	})

	t.Run("Should require a customer", func(t *testing.T) {
		_, err := (&EstimateDraft{Title: "Spring", Items: "Widget, 1, 3"}).Input()
		assert.ErrorIs(t, err, crm.ErrValidation)
	})
}

func TestQuoteDraft(t *testing.T) {
	t.Run("Should accept a positive amount", func(t *testing.T) {
		in, err := (&QuoteDraft{Amount: "18.00", Note: " rush "}).Input()
		require.NoError(t, err)
		assert.True(t, in.Amount.Equal(decimal.NewFromInt(18)))
		assert.Equal(t, "rush", in.Note)
	})

	t.Run("Should reject zero and non-numbers", func(t *testing.T) {
		for _, amount := range []string{"0", "abc", ""} {
			_, err := (&QuoteDraft{Amount: amount}).Input()
			assert.ErrorIs(t, err, crm.ErrValidation, amount)
		}
	})
}

func TestLoginForm(t *testing.T) {
	t.Run("Should default to the staff role", func(t *testing.T) {
		d := &LoginDraft{}
		assert.NotNil(t, LoginForm(d))
		assert.Equal(t, crm.RoleStaff, d.Role)
	})
}
