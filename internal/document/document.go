// Package document holds the parts shared by quotations and invoices: the
// customer snapshot, the stored amount columns and the tax recalculation.
package document

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/internal/providers/pdf"
	"gorm.io/gorm"
)

const (
	TaxTypeIntra = "CGST+SGST"
	TaxTypeInter = "IGST"
)

// Customer is the buyer snapshot copied onto each document.
type Customer struct {
	CustomerName    string `gorm:"column:customer_name;type:text" json:"customer_name,omitempty"`
	ContactPerson   string `gorm:"column:contact_person;type:text" json:"contact_person,omitempty"`
	CustomerEmail   string `gorm:"column:customer_email;type:text" json:"customer_email,omitempty"`
	CustomerPhone   string `gorm:"column:customer_phone;type:text" json:"customer_phone,omitempty"`
	CustomerGSTIN   string `gorm:"column:customer_gstin;type:text" json:"customer_gstin,omitempty"`
	BillingAddress  string `gorm:"column:billing_address;type:text" json:"billing_address,omitempty"`
	ShippingAddress string `gorm:"column:shipping_address;type:text" json:"shipping_address,omitempty"`
	PlaceOfSupply   string `gorm:"column:place_of_supply;type:text" json:"place_of_supply,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed and the GSTIN
// upper-cased.
func (c Customer) Trimmed() Customer {
	return Customer{
		CustomerName:    strings.TrimSpace(c.CustomerName),
		ContactPerson:   strings.TrimSpace(c.ContactPerson),
		CustomerEmail:   strings.TrimSpace(c.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(c.CustomerPhone),
		CustomerGSTIN:   strings.ToUpper(strings.TrimSpace(c.CustomerGSTIN)),
		BillingAddress:  strings.TrimSpace(c.BillingAddress),
		ShippingAddress: strings.TrimSpace(c.ShippingAddress),
		PlaceOfSupply:   strings.TrimSpace(c.PlaceOfSupply),
	}
}

// Amounts are the persisted document totals, rounded to two places.
type Amounts struct {
	SubtotalAmount decimal.Decimal `gorm:"column:subtotal_amount;type:decimal(14,2);not null;default:0" json:"subtotal_amount"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:decimal(14,2);not null;default:0" json:"discount_amount"`
	TaxableAmount  decimal.Decimal `gorm:"column:taxable_amount;type:decimal(14,2);not null;default:0" json:"taxable_amount"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:decimal(14,2);not null;default:0" json:"tax_amount"`
	CGSTAmount     decimal.Decimal `gorm:"column:cgst_amount;type:decimal(14,2);not null;default:0" json:"cgst_amount"`
	SGSTAmount     decimal.Decimal `gorm:"column:sgst_amount;type:decimal(14,2);not null;default:0" json:"sgst_amount"`
	IGSTAmount     decimal.Decimal `gorm:"column:igst_amount;type:decimal(14,2);not null;default:0" json:"igst_amount"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:decimal(14,2);not null;default:0" json:"total_amount"`
	TaxType        string          `gorm:"column:tax_type;type:text" json:"tax_type"`
}

func AmountsFrom(t lineitem.Totals) Amounts {
	taxType := TaxTypeIntra
	if t.InterState {
		taxType = TaxTypeInter
	}
	return Amounts{
		SubtotalAmount: t.Subtotal,
		DiscountAmount: t.TotalDiscount,
		TaxableAmount:  t.TaxableAmount,
		TaxAmount:      t.TotalTax,
		CGSTAmount:     t.CGST,
		SGSTAmount:     t.SGST,
		IGSTAmount:     t.IGST,
		TotalAmount:    t.GrandTotal,
		TaxType:        taxType,
	}
}

// Columns renders amounts as an update map.
func (a Amounts) Columns() map[string]any {
	return map[string]any{
		"subtotal_amount": a.SubtotalAmount,
		"discount_amount": a.DiscountAmount,
		"taxable_amount":  a.TaxableAmount,
		"tax_amount":      a.TaxAmount,
		"cgst_amount":     a.CGSTAmount,
		"sgst_amount":     a.SGSTAmount,
		"igst_amount":     a.IGSTAmount,
		"total_amount":    a.TotalAmount,
		"tax_type":        a.TaxType,
	}
}

// Price normalizes items and derives the document amounts. Items arrive from
// clients with their own tax_amount and amount; those are always recomputed.
// Blank rows are dropped and lineitem.ErrNoItems is returned when none remain.
func Price(items []lineitem.LineItem, sellerRegion, placeOfSupply string) ([]lineitem.LineItem, Amounts, error) {
	editor, err := lineitem.Load(lineitem.Jurisdiction{Seller: sellerRegion, Buyer: placeOfSupply}, items)
	if err != nil {
		return nil, Amounts{}, err
	}
	return editor.Items(), AmountsFrom(editor.Totals()), nil
}

// DecodeItems reads line items from a decoded JSON update value.
func DecodeItems(raw any) ([]lineitem.LineItem, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var items []lineitem.LineItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Seller identifies the issuing company on a document.
type Seller struct {
	Name   string
	Region string
}

// LoadSeller reads the company name and home state. fallbackRegion is used
// when the company has no home state configured.
func LoadSeller(ctx context.Context, db *gorm.DB, companyID snowflake.ID, fallbackRegion string) Seller {
	var row struct {
		Name      string
		HomeState *string
	}
	seller := Seller{Region: fallbackRegion}
	err := db.WithContext(ctx).
		Table("companies").
		Select("name, home_state").
		Where("id = ?", companyID).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return seller
	}
	seller.Name = row.Name
	if row.HomeState != nil && strings.TrimSpace(*row.HomeState) != "" {
		seller.Region = strings.TrimSpace(*row.HomeState)
	}
	return seller
}

// PDFItems formats line items for rendering.
func PDFItems(items []lineitem.LineItem) []pdf.DocumentItem {
	out := make([]pdf.DocumentItem, 0, len(items))
	for _, item := range items {
		description := item.Product
		if item.Description != "" {
			description += " - " + item.Description
		}
		out = append(out, pdf.DocumentItem{
			Description: description,
			HSNCode:     item.HSNCode,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Discount:    item.Discount.String(),
			TaxRate:     item.TaxRate.String(),
			Amount:      item.Amount.StringFixed(2),
		})
	}
	return out
}

// FillPDF copies the customer snapshot and amounts into doc.
func FillPDF(doc *pdf.Document, seller Seller, c Customer, a Amounts, currency string) {
	doc.SellerName = seller.Name
	doc.SellerRegion = seller.Region
	doc.BillToName = c.CustomerName
	doc.BillToAddress = c.BillingAddress
	doc.BillToEmail = c.CustomerEmail
	doc.BillToGSTIN = c.CustomerGSTIN
	doc.ShipToAddress = c.ShippingAddress
	if doc.ShipToAddress == "" {
		doc.ShipToAddress = c.BillingAddress
	}
	doc.PlaceOfSupply = c.PlaceOfSupply
	if doc.PlaceOfSupply == "" {
		doc.PlaceOfSupply = seller.Region
	}
	doc.Currency = currency
	doc.Subtotal = a.SubtotalAmount.StringFixed(2)
	doc.Discount = a.DiscountAmount.StringFixed(2)
	doc.Taxable = a.TaxableAmount.StringFixed(2)
	doc.CGST = a.CGSTAmount.StringFixed(2)
	doc.SGST = a.SGSTAmount.StringFixed(2)
	doc.IGST = a.IGSTAmount.StringFixed(2)
	doc.Total = a.TotalAmount.StringFixed(2)
	doc.InterState = a.TaxType == TaxTypeInter
}
