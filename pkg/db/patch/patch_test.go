package patch

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestApply(t *testing.T) {
	cols := Allow("product_name", "price", "tags").With("hsn_code", "hsn")
	out := cols.Apply(map[string]any{
		"product_name": "  RO Filter ",
		"price":        float64(1200),
		"hsn":          "   ",
		"tags":         []any{"a", "b"},
		"company_id":   "999",
	})

	assert.Equal(t, "RO Filter", out["product_name"])
	assert.Equal(t, float64(1200), out["price"])
	assert.Nil(t, out["hsn_code"])
	assert.Contains(t, out, "hsn_code")
	assert.Equal(t, datatypes.JSON(`["a","b"]`), out["tags"])
	assert.NotContains(t, out, "company_id")
}

func TestString(t *testing.T) {
	in := map[string]any{"a": " x ", "b": 1}
	v, ok := String(in, "a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = String(in, "b")
	assert.False(t, ok)
}

func TestTimes(t *testing.T) {
	updates := Allow("due_date", "completed_date").Apply(map[string]any{
		"due_date":       "2025-02-01",
		"completed_date": "",
	})
	require.NoError(t, Times(updates, "due_date", "completed_date"))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), updates["due_date"])
	assert.Nil(t, updates["completed_date"])

	bad := map[string]any{"due_date": "tomorrow"}
	assert.ErrorIs(t, Times(bad, "due_date"), timeutil.ErrInvalidTime)
}

func TestDecimals(t *testing.T) {
	updates := map[string]any{"price": float64(10.456), "tax_rate": "18", "missing": nil}
	require.NoError(t, Decimals(updates, "price", "tax_rate", "missing"))
	assert.Equal(t, "10.46", updates["price"].(decimal.Decimal).String())
	assert.Equal(t, "18", updates["tax_rate"].(decimal.Decimal).String())

	assert.ErrorIs(t, Decimals(map[string]any{"price": float64(-1)}, "price"), ErrInvalidDecimal)
	assert.ErrorIs(t, Decimals(map[string]any{"price": "abc"}, "price"), ErrInvalidDecimal)
	assert.ErrorIs(t, Decimals(map[string]any{"price": true}, "price"), ErrInvalidDecimal)
}
