// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/document"
	"github.com/smallbiznis/crm/internal/lineitem"
	"gorm.io/datatypes"
)

const (
	StatusDraft         = "Draft"
	StatusSent          = "Sent"
	StatusPartiallyPaid = "Partially Paid"
	StatusPaid          = "Paid"
	StatusCancelled     = "Cancelled"

	// DefaultDueDays is added to invoice_date when due_date is absent.
	DefaultDueDays = 30
)

// Invoice is a tax invoice, optionally raised from a quotation.
type Invoice struct {
	ID                snowflake.ID   `gorm:"primaryKey" json:"id"`
	CompanyID         snowflake.ID   `gorm:"column:company_id;not null;index;uniqueIndex:ux_invoices_company_number" json:"company_id"`
	InvoiceNumber     string         `gorm:"column:invoice_number;type:text;not null;uniqueIndex:ux_invoices_company_number" json:"invoice_number"`
	InvoiceDate       time.Time      `gorm:"column:invoice_date;not null" json:"invoice_date"`
	DueDate           *time.Time     `gorm:"column:due_date" json:"due_date,omitempty"`
	QuotationID       *snowflake.ID  `gorm:"column:quotation_id;index" json:"quotation_id,omitempty"`
	AccountID         *snowflake.ID  `gorm:"column:account_id;index" json:"account_id,omitempty"`
	document.Customer `gorm:"embedded"`
	LineItems         datatypes.JSONSlice[lineitem.LineItem] `gorm:"column:line_items" json:"line_items"`
	document.Amounts  `gorm:"embedded"`
	AmountPaid        decimal.Decimal `gorm:"column:amount_paid;type:decimal(14,2);not null;default:0" json:"amount_paid"`
	Currency          string          `gorm:"column:currency;type:text;not null" json:"currency"`
	Status            string          `gorm:"column:status;type:text;not null" json:"status"`
	AssignedTo        string          `gorm:"column:assigned_to;type:text" json:"assigned_to,omitempty"`
	PaymentTerms      string          `gorm:"column:payment_terms;type:text" json:"payment_terms,omitempty"`
	Notes             string          `gorm:"column:notes;type:text" json:"notes,omitempty"`
	TermsConditions   string          `gorm:"column:terms_conditions;type:text" json:"terms_conditions,omitempty"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
