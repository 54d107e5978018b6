package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/document"
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

// CreateInvoiceRequest creates an invoice. When QuotationID is set and no
// line items are given, items and the customer snapshot are copied from the
// quotation.
type CreateInvoiceRequest struct {
	InvoiceNumber string         `json:"invoice_number"`
	InvoiceDate   *timeutil.Date `json:"invoice_date"`
	DueDate       *timeutil.Date `json:"due_date"`
	QuotationID   *snowflake.ID  `json:"quotation_id"`
	AccountID     *snowflake.ID  `json:"account_id"`
	document.Customer
	LineItems       []lineitem.LineItem `json:"line_items"`
	Currency        string              `json:"currency"`
	Status          string              `json:"status"`
	AssignedTo      string              `json:"assigned_to"`
	PaymentTerms    string              `json:"payment_terms"`
	Notes           string              `json:"notes"`
	TermsConditions string              `json:"terms_conditions"`
}

type ListInvoiceRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	QuotationID string
	AccountID   string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListInvoiceFilter struct {
	Status      string
	QuotationID *snowflake.ID
	AccountID   *snowflake.ID
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type InvoiceView struct {
	Invoice
	BalanceDue        decimal.Decimal `json:"balance_due"`
	IsOverdue         bool            `json:"is_overdue"`
	DaysSinceCreation int             `json:"days_since_creation"`
}

func ToView(inv *Invoice, now time.Time) InvoiceView {
	view := InvoiceView{Invoice: *inv, DaysSinceCreation: clock.DaysBetween(inv.CreatedAt, now)}
	if view.Status == "" {
		view.Status = StatusDraft
	}
	if view.LineItems == nil {
		view.LineItems = []lineitem.LineItem{}
	}
	view.BalanceDue = lineitem.NonNegative(inv.TotalAmount.Sub(inv.AmountPaid))
	view.IsOverdue = inv.DueDate != nil && inv.DueDate.Before(timeutil.StartOfDay(now)) && IsOpen(view.Status)
	return view
}

// IsOpen reports whether an invoice in status still expects payment.
func IsOpen(status string) bool {
	return !strings.EqualFold(status, StatusPaid) && !strings.EqualFold(status, StatusCancelled)
}

// PaymentStatus derives the status implied by a payment against total.
func PaymentStatus(paid, total decimal.Decimal) string {
	switch {
	case paid.IsPositive() && paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartiallyPaid
	default:
		return ""
	}
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (InvoiceView, error)
	List(ctx context.Context, req ListInvoiceRequest) (pagination.Page[InvoiceView], error)
	Get(ctx context.Context, id string) (InvoiceView, error)
	Update(ctx context.Context, id string, fields map[string]any) (InvoiceView, error)
	Delete(ctx context.Context, id string) error
	RenderPDF(ctx context.Context, id string) ([]byte, InvoiceView, error)
}

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidCustomer  = errors.New("invalid_customer_name")
	ErrInvalidLineItems = errors.New("invalid_line_items")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrInvalidAmount    = errors.New("invalid_amount_paid")
	ErrQuotationMissing = errors.New("quotation_not_found")
	ErrNumberTaken      = errors.New("invoice_number_taken")
	ErrNotFound         = errors.New("not_found")
)
