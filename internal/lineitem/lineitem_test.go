package lineitem

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func sampleItem() LineItem {
	return LineItem{
		Product:   "Water purifier",
		Quantity:  dec("2"),
		UnitPrice: dec("1000"),
		Discount:  dec("10"),
		TaxRate:   dec("18"),
	}
}

func TestComputeSingleLine(t *testing.T) {
	line := Compute(sampleItem())
	assert.True(t, line.Subtotal.Equal(dec("2000")), "subtotal %s", line.Subtotal)
	assert.True(t, line.DiscountAmount.Equal(dec("200")), "discount %s", line.DiscountAmount)
	assert.True(t, line.Taxable.Equal(dec("1800")), "taxable %s", line.Taxable)
	assert.True(t, line.Tax.Equal(dec("324")), "tax %s", line.Tax)
	assert.True(t, line.Amount.Equal(dec("2124")), "amount %s", line.Amount)
}

func TestCalculateTwoIdenticalLines(t *testing.T) {
	totals := Calculate([]LineItem{sampleItem(), sampleItem()}, Jurisdiction{Seller: "Karnataka", Buyer: "Karnataka"})
	assert.True(t, totals.Subtotal.Equal(dec("4000")))
	assert.True(t, totals.TotalDiscount.Equal(dec("400")))
	assert.True(t, totals.TaxableAmount.Equal(dec("3600")))
	assert.True(t, totals.TotalTax.Equal(dec("648")))
	assert.True(t, totals.GrandTotal.Equal(dec("4248")))
	assert.True(t, totals.CGST.Equal(dec("324")))
	assert.True(t, totals.SGST.Equal(dec("324")))
	assert.True(t, totals.IGST.IsZero())
	assert.False(t, totals.InterState)
}

func TestCalculateEmptyIsZero(t *testing.T) {
	totals := Calculate(nil, Jurisdiction{Seller: "Karnataka"})
	for name, v := range map[string]decimal.Decimal{
		"subtotal": totals.Subtotal, "discount": totals.TotalDiscount, "taxable": totals.TaxableAmount,
		"tax": totals.TotalTax, "cgst": totals.CGST, "sgst": totals.SGST, "igst": totals.IGST,
		"grand": totals.GrandTotal,
	} {
		assert.True(t, v.IsZero(), "%s should be zero, got %s", name, v)
	}
}

func TestJurisdictionSplit(t *testing.T) {
	items := []LineItem{{Quantity: dec("1"), UnitPrice: dec("10.01"), TaxRate: dec("18")}}

	t.Run("intra-state halves sum exactly", func(t *testing.T) {
		totals := Calculate(items, Jurisdiction{Seller: "Karnataka", Buyer: " karnataka "})
		assert.True(t, totals.TotalTax.Equal(dec("1.80")), "tax %s", totals.TotalTax)
		assert.True(t, totals.CGST.Add(totals.SGST).Equal(totals.TotalTax))
		assert.True(t, totals.IGST.IsZero())
	})

	t.Run("inter-state uses igst", func(t *testing.T) {
		totals := Calculate(items, Jurisdiction{Seller: "Karnataka", Buyer: "Tamil Nadu"})
		assert.True(t, totals.InterState)
		assert.True(t, totals.IGST.Equal(totals.TotalTax))
		assert.True(t, totals.CGST.IsZero())
		assert.True(t, totals.SGST.IsZero())
	})

	t.Run("odd paise split", func(t *testing.T) {
		odd := []LineItem{{Quantity: dec("1"), UnitPrice: dec("0.17"), TaxRate: dec("100")}}
		totals := Calculate(odd, Jurisdiction{Seller: "Goa", Buyer: "Goa"})
		assert.True(t, totals.TotalTax.Equal(dec("0.17")))
		assert.True(t, totals.CGST.Equal(dec("0.09")), "cgst %s", totals.CGST)
		assert.True(t, totals.SGST.Equal(dec("0.08")), "sgst %s", totals.SGST)
	})
}

func TestCoercionAndClamping(t *testing.T) {
	line := Compute(LineItem{Quantity: dec("-3"), UnitPrice: dec("100")})
	assert.True(t, line.Amount.IsZero())

	line = Compute(LineItem{Quantity: dec("1"), UnitPrice: dec("100"), Discount: dec("150"), TaxRate: dec("18")})
	assert.True(t, line.Taxable.IsZero(), "discount above 100 clamps to 100")

	line = Compute(LineItem{Quantity: dec("1"), UnitPrice: dec("100"), Discount: dec("-5"), TaxRate: dec("250")})
	assert.True(t, line.Amount.Equal(dec("200")), "amount %s", line.Amount)

	assert.True(t, FromFloat(math.NaN()).IsZero())
	assert.True(t, FromFloat(math.Inf(1)).IsZero())
	assert.True(t, FromFloat(-1).IsZero())
	assert.True(t, FromFloat(2.5).Equal(dec("2.5")))
}

func TestLineAmountProperty(t *testing.T) {
	cases := []struct{ qty, price, discount, rate string }{
		{"1", "99.99", "0", "0"},
		{"3", "149.5", "12.5", "5"},
		{"10", "0.01", "100", "28"},
		{"7", "1234.56", "33", "18"},
	}
	for _, tc := range cases {
		item := LineItem{Quantity: dec(tc.qty), UnitPrice: dec(tc.price), Discount: dec(tc.discount), TaxRate: dec(tc.rate)}
		want := dec(tc.qty).Mul(dec(tc.price)).
			Mul(decimal.NewFromInt(1).Sub(dec(tc.discount).Div(hundred))).
			Mul(decimal.NewFromInt(1).Add(dec(tc.rate).Div(hundred)))
		got := Compute(item).Amount
		assert.True(t, got.Sub(want).Abs().LessThan(dec("0.000001")), "got %s want %s", got, want)
	}
}

func TestGrandTotalMatchesLineAmounts(t *testing.T) {
	items := []LineItem{
		{Quantity: dec("3"), UnitPrice: dec("149.5"), Discount: dec("12.5"), TaxRate: dec("5")},
		{Quantity: dec("1"), UnitPrice: dec("999"), TaxRate: dec("18")},
	}
	sum := decimal.Zero
	for _, item := range NormalizeAll(items) {
		sum = sum.Add(item.Amount)
	}
	totals := Calculate(items, Jurisdiction{})
	assert.True(t, totals.GrandTotal.Sub(sum).Abs().LessThanOrEqual(dec("0.02")))
}

func TestUnmarshalLenient(t *testing.T) {
	var item LineItem
	err := json.Unmarshal([]byte(`{"product":" Filter ","quantity":"2","unit_price":1000,"discount":"abc","tax_rate":null}`), &item)
	require.NoError(t, err)
	assert.Equal(t, "Filter", item.Product)
	assert.True(t, item.Quantity.Equal(dec("2")))
	assert.True(t, item.UnitPrice.Equal(dec("1000")))
	assert.True(t, item.Discount.IsZero())
	assert.True(t, item.TaxRate.IsZero())
}

func TestEditor(t *testing.T) {
	e := NewEditor(dec("18"), Jurisdiction{Seller: "Karnataka"})
	require.Equal(t, 1, e.Len())
	assert.True(t, e.Items()[0].TaxRate.Equal(dec("18")))

	assert.ErrorIs(t, e.Remove(0), ErrLastItem)

	idx := e.Add()
	require.NoError(t, e.Update(idx, func(li *LineItem) {
		li.Quantity = dec("2")
		li.UnitPrice = dec("1000")
		li.Discount = dec("10")
	}))
	require.NoError(t, e.Update(0, func(li *LineItem) {
		li.Quantity = dec("2")
		li.UnitPrice = dec("1000")
		li.Discount = dec("10")
	}))
	assert.True(t, e.Totals().GrandTotal.Equal(dec("4248")))

	require.NoError(t, e.Remove(1))
	assert.True(t, e.Totals().GrandTotal.Equal(dec("2124")))
	assert.ErrorIs(t, e.Update(5, func(*LineItem) {}), ErrItemNotFound)

	e.SetJurisdiction(Jurisdiction{Seller: "Karnataka", Buyer: "Kerala"})
	assert.True(t, e.Totals().IGST.Equal(dec("324")))
}

func TestLoadDropsBlankRows(t *testing.T) {
	blank := sampleItem()
	blank.Product = " "

	e, err := Load(Jurisdiction{Seller: "Karnataka"}, []LineItem{blank, sampleItem()})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, "Water purifier", e.Items()[0].Product)

	_, err = Load(Jurisdiction{Seller: "Karnataka"}, []LineItem{blank})
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = Load(Jurisdiction{Seller: "Karnataka"}, nil)
	assert.ErrorIs(t, err, ErrNoItems)
}
