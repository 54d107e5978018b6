// Package domain contains the quotation model and service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/document"
	"github.com/smallbiznis/crm/internal/lineitem"
	"gorm.io/datatypes"
)

const (
	StatusDraft    = "Draft"
	StatusSent     = "Sent"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
	StatusExpired  = "Expired"

	DefaultRevision = "Rev-0"
	DefaultPriority = "Medium"
	// DefaultValidityDays is added to quote_date when valid_until is absent.
	DefaultValidityDays = 30
)

// Quotation is a priced offer to a customer.
type Quotation struct {
	ID                snowflake.ID   `gorm:"primaryKey" json:"id"`
	CompanyID         snowflake.ID   `gorm:"column:company_id;not null;index;uniqueIndex:ux_quotations_company_number" json:"company_id"`
	QuoteNumber       string         `gorm:"column:quote_number;type:text;not null;uniqueIndex:ux_quotations_company_number" json:"quote_number"`
	QuoteDate         time.Time      `gorm:"column:quote_date;not null" json:"quote_date"`
	ValidUntil        *time.Time     `gorm:"column:valid_until" json:"valid_until,omitempty"`
	Revision          string         `gorm:"column:revision;type:text;not null" json:"revision"`
	AccountID         *snowflake.ID  `gorm:"column:account_id;index" json:"account_id,omitempty"`
	LeadID            *snowflake.ID  `gorm:"column:lead_id;index" json:"lead_id,omitempty"`
	document.Customer `gorm:"embedded"`
	LineItems         datatypes.JSONSlice[lineitem.LineItem] `gorm:"column:line_items" json:"line_items"`
	document.Amounts  `gorm:"embedded"`
	Currency          string    `gorm:"column:currency;type:text;not null" json:"currency"`
	Status            string    `gorm:"column:status;type:text;not null" json:"status"`
	AssignedTo        string    `gorm:"column:assigned_to;type:text" json:"assigned_to,omitempty"`
	Priority          string    `gorm:"column:priority;type:text" json:"priority,omitempty"`
	ReferenceNumber   string    `gorm:"column:reference_number;type:text" json:"reference_number,omitempty"`
	Subject           string    `gorm:"column:subject;type:text" json:"subject,omitempty"`
	Notes             string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	TermsConditions   string    `gorm:"column:terms_conditions;type:text" json:"terms_conditions,omitempty"`
	PaymentTerms      string    `gorm:"column:payment_terms;type:text" json:"payment_terms,omitempty"`
	DeliveryTerms     string    `gorm:"column:delivery_terms;type:text" json:"delivery_terms,omitempty"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Quotation) TableName() string { return "quotations" }
