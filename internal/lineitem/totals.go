package lineitem

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Jurisdiction identifies the seller's home region and the buyer's place of supply.
type Jurisdiction struct {
	Seller string
	Buyer  string
}

// InterState reports whether the buyer is outside the seller's region.
// An undeclared buyer region is treated as local.
func (j Jurisdiction) InterState() bool {
	buyer := normalizeRegion(j.Buyer)
	if buyer == "" {
		return false
	}
	return buyer != normalizeRegion(j.Seller)
}

func normalizeRegion(region string) string {
	return strings.ToLower(strings.Join(strings.Fields(region), " "))
}

// Totals are the document-level amounts derived from line items.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	InterState    bool            `json:"inter_state"`
}

// Calculate aggregates items into document totals. Intra-state tax is split
// into CGST and SGST halves that always sum to TotalTax; inter-state tax is
// carried entirely as IGST.
func Calculate(items []LineItem, j Jurisdiction) Totals {
	var subtotal, discount, tax decimal.Decimal
	for _, item := range items {
		line := Compute(item)
		subtotal = subtotal.Add(line.Subtotal)
		discount = discount.Add(line.DiscountAmount)
		tax = tax.Add(line.Tax)
	}

	totals := Totals{
		Subtotal:      Round(subtotal),
		TotalDiscount: Round(discount),
		TotalTax:      Round(tax),
		InterState:    j.InterState(),
	}
	totals.TaxableAmount = totals.Subtotal.Sub(totals.TotalDiscount)
	totals.GrandTotal = totals.TaxableAmount.Add(totals.TotalTax)

	if totals.InterState {
		totals.IGST = totals.TotalTax
	} else {
		totals.CGST = Round(totals.TotalTax.Div(two))
		totals.SGST = totals.TotalTax.Sub(totals.CGST)
	}
	return totals
}
