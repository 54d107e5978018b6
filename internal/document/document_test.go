package document

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/internal/providers/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(qty, price, discount, rate string) lineitem.LineItem {
	return lineitem.LineItem{
		Product:   "Water purifier",
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
		Discount:  decimal.RequireFromString(discount),
		TaxRate:   decimal.RequireFromString(rate),
	}
}

func TestPriceIntraState(t *testing.T) {
	items, amounts, err := Price([]lineitem.LineItem{item("2", "1000", "10", "18")}, "Karnataka", "karnataka")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2124", items[0].Amount.String())
	assert.Equal(t, "2000", amounts.SubtotalAmount.String())
	assert.Equal(t, "200", amounts.DiscountAmount.String())
	assert.Equal(t, "1800", amounts.TaxableAmount.String())
	assert.Equal(t, "162", amounts.CGSTAmount.String())
	assert.Equal(t, "162", amounts.SGSTAmount.String())
	assert.True(t, amounts.IGSTAmount.IsZero())
	assert.Equal(t, "2124", amounts.TotalAmount.String())
	assert.Equal(t, TaxTypeIntra, amounts.TaxType)
}

func TestPriceInterState(t *testing.T) {
	_, amounts, err := Price([]lineitem.LineItem{
		item("2", "1000", "10", "18"),
		item("2", "1000", "10", "18"),
	}, "Karnataka", "Tamil Nadu")
	require.NoError(t, err)

	assert.Equal(t, "4248", amounts.TotalAmount.String())
	assert.Equal(t, "648", amounts.IGSTAmount.String())
	assert.True(t, amounts.CGSTAmount.IsZero())
	assert.Equal(t, TaxTypeInter, amounts.TaxType)
}

func TestPriceDropsBlankRows(t *testing.T) {
	blank := item("1", "500", "0", "18")
	blank.Product = "  "

	items, amounts, err := Price([]lineitem.LineItem{blank, item("1", "100", "0", "18")}, "Karnataka", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "118", amounts.TotalAmount.String())

	_, _, err = Price([]lineitem.LineItem{blank}, "Karnataka", "")
	assert.ErrorIs(t, err, lineitem.ErrNoItems)
}

func TestDecodeItemsAcceptsStrings(t *testing.T) {
	items, err := DecodeItems([]any{
		map[string]any{"product": "Filter", "quantity": "3", "unit_price": 250.5},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "3", items[0].Quantity.String())
	assert.Equal(t, "250.5", items[0].UnitPrice.String())

	_, err = DecodeItems("not a list")
	assert.Error(t, err)
}

func TestFillPDFFallsBackToSellerRegion(t *testing.T) {
	_, amounts, err := Price([]lineitem.LineItem{item("1", "100", "0", "18")}, "Karnataka", "")
	require.NoError(t, err)
	var doc pdf.Document

	FillPDF(&doc, Seller{Name: "Acme", Region: "Karnataka"}, Customer{CustomerName: "Globex", BillingAddress: "MG Road"}, amounts, "INR")

	assert.Equal(t, "Karnataka", doc.PlaceOfSupply)
	assert.Equal(t, "MG Road", doc.ShipToAddress)
	assert.Equal(t, "118.00", doc.Total)
	assert.Equal(t, "9.00", doc.CGST)
	assert.False(t, doc.InterState)
}
