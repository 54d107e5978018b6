package lineitem

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrLastItem     = errors.New("last_line_item")
	ErrItemNotFound = errors.New("line_item_not_found")
	ErrNoItems      = errors.New("no_line_items")
)

// Editor keeps an ordered, never-empty list of line items.
type Editor struct {
	items          []LineItem
	defaultTaxRate decimal.Decimal
	jurisdiction   Jurisdiction
}

// NewEditor starts from items, or from one empty item when none are given.
func NewEditor(defaultTaxRate decimal.Decimal, j Jurisdiction, items ...LineItem) *Editor {
	e := &Editor{
		defaultTaxRate: ClampPercent(defaultTaxRate),
		jurisdiction:   j,
	}
	e.items = append(e.items, items...)
	if len(e.items) == 0 {
		e.Add()
	}
	return e
}

// Load builds an editor from submitted items. Rows without a product are
// dropped and at least one must remain.
func Load(j Jurisdiction, items []LineItem) (*Editor, error) {
	kept := WithProducts(items)
	if len(kept) == 0 {
		return nil, ErrNoItems
	}
	return &Editor{items: NormalizeAll(kept), jurisdiction: j}, nil
}

// WithProducts drops rows without a product name.
func WithProducts(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Product) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Add appends an empty item with quantity 1 and the default tax rate and
// returns its index.
func (e *Editor) Add() int {
	e.items = append(e.items, LineItem{
		Quantity: decimal.NewFromInt(1),
		TaxRate:  e.defaultTaxRate,
	})
	return len(e.items) - 1
}

// Update mutates the item at index i in place.
func (e *Editor) Update(i int, fn func(*LineItem)) error {
	if i < 0 || i >= len(e.items) {
		return ErrItemNotFound
	}
	fn(&e.items[i])
	return nil
}

// Remove deletes the item at index i. The last remaining item cannot be removed.
func (e *Editor) Remove(i int) error {
	if i < 0 || i >= len(e.items) {
		return ErrItemNotFound
	}
	if len(e.items) == 1 {
		return ErrLastItem
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
	return nil
}

// SetJurisdiction changes the place of supply used for totals.
func (e *Editor) SetJurisdiction(j Jurisdiction) {
	e.jurisdiction = j
}

// Len returns the number of items.
func (e *Editor) Len() int { return len(e.items) }

// Items returns normalized copies of the current items.
func (e *Editor) Items() []LineItem {
	return NormalizeAll(e.items)
}

// Totals recomputes the document totals.
func (e *Editor) Totals() Totals {
	return Calculate(e.items, e.jurisdiction)
}
