// Package lineitem computes quotation and invoice amounts from line items.
//
// All functions are pure. Inputs are coerced before use: negative values
// become zero and percentages are clamped to [0, 100].
package lineitem

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// LineItem is one product or service row of a quotation or invoice.
type LineItem struct {
	Product     string          `json:"product"`
	Description string          `json:"description,omitempty"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Amount      decimal.Decimal `json:"amount"`
}

// Line holds the unrounded intermediate amounts of a single item.
type Line struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Taxable        decimal.Decimal
	Tax            decimal.Decimal
	Amount         decimal.Decimal
}

// UnmarshalJSON accepts numbers or numeric strings for amounts. Anything
// that does not parse as a number decodes to zero.
func (li *LineItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		Product     string          `json:"product"`
		Description string          `json:"description"`
		HSNCode     string          `json:"hsn_code"`
		Quantity    json.RawMessage `json:"quantity"`
		UnitPrice   json.RawMessage `json:"unit_price"`
		Discount    json.RawMessage `json:"discount"`
		TaxRate     json.RawMessage `json:"tax_rate"`
		TaxAmount   json.RawMessage `json:"tax_amount"`
		Amount      json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*li = LineItem{
		Product:     strings.TrimSpace(raw.Product),
		Description: strings.TrimSpace(raw.Description),
		HSNCode:     strings.TrimSpace(raw.HSNCode),
		Quantity:    lenientDecimal(raw.Quantity),
		UnitPrice:   lenientDecimal(raw.UnitPrice),
		Discount:    lenientDecimal(raw.Discount),
		TaxRate:     lenientDecimal(raw.TaxRate),
		TaxAmount:   lenientDecimal(raw.TaxAmount),
		Amount:      lenientDecimal(raw.Amount),
	}
	return nil
}

func lenientDecimal(raw json.RawMessage) decimal.Decimal {
	value := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if value == "" || value == "null" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromFloat converts a float input, mapping NaN, infinities and negatives to zero.
func FromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// NonNegative returns d, or zero when d is negative.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ClampPercent bounds a percentage to [0, 100].
func ClampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// Compute returns the per-line amounts after coercing the inputs.
func Compute(item LineItem) Line {
	qty := NonNegative(item.Quantity)
	price := NonNegative(item.UnitPrice)
	discount := ClampPercent(item.Discount)
	rate := ClampPercent(item.TaxRate)

	subtotal := qty.Mul(price)
	discountAmount := subtotal.Mul(discount).Div(hundred)
	taxable := subtotal.Sub(discountAmount)
	tax := taxable.Mul(rate).Div(hundred)

	return Line{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Taxable:        taxable,
		Tax:            tax,
		Amount:         taxable.Add(tax),
	}
}

// Normalize returns a copy of item with coerced inputs and derived tax and
// line amounts, rounded to two places.
func Normalize(item LineItem) LineItem {
	line := Compute(item)
	item.Quantity = NonNegative(item.Quantity)
	item.UnitPrice = NonNegative(item.UnitPrice)
	item.Discount = ClampPercent(item.Discount)
	item.TaxRate = ClampPercent(item.TaxRate)
	item.TaxAmount = Round(line.Tax)
	item.Amount = Round(line.Amount)
	return item
}

// NormalizeAll normalizes every item. The result is never nil.
func NormalizeAll(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, Normalize(item))
	}
	return out
}

// Round rounds half away from zero to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
