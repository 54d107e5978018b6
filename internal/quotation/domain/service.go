package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/document"
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

type CreateQuotationRequest struct {
	QuoteNumber string         `json:"quote_number"`
	QuoteDate   *timeutil.Date `json:"quote_date"`
	ValidUntil  *timeutil.Date `json:"valid_until"`
	Revision    string         `json:"revision"`
	AccountID   *snowflake.ID  `json:"account_id"`
	LeadID      *snowflake.ID  `json:"lead_id"`
	document.Customer
	LineItems       []lineitem.LineItem `json:"line_items"`
	Currency        string              `json:"currency"`
	Status          string              `json:"status"`
	AssignedTo      string              `json:"assigned_to"`
	Priority        string              `json:"priority"`
	ReferenceNumber string              `json:"reference_number"`
	Subject         string              `json:"subject"`
	Notes           string              `json:"notes"`
	TermsConditions string              `json:"terms_conditions"`
	PaymentTerms    string              `json:"payment_terms"`
	DeliveryTerms   string              `json:"delivery_terms"`
}

type ListQuotationRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	AssignedTo  string
	AccountID   string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListQuotationFilter struct {
	Status      string
	AssignedTo  string
	AccountID   *snowflake.ID
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type QuotationView struct {
	Quotation
	IsExpired         bool `json:"is_expired"`
	DaysSinceCreation int  `json:"days_since_creation"`
}

func ToView(q *Quotation, now time.Time) QuotationView {
	view := QuotationView{Quotation: *q, DaysSinceCreation: clock.DaysBetween(q.CreatedAt, now)}
	if view.Status == "" {
		view.Status = StatusDraft
	}
	if view.Revision == "" {
		view.Revision = DefaultRevision
	}
	if view.LineItems == nil {
		view.LineItems = []lineitem.LineItem{}
	}
	view.IsExpired = q.ValidUntil != nil && q.ValidUntil.Before(timeutil.StartOfDay(now)) &&
		view.Status != StatusAccepted
	return view
}

type Service interface {
	Create(ctx context.Context, req CreateQuotationRequest) (QuotationView, error)
	List(ctx context.Context, req ListQuotationRequest) (pagination.Page[QuotationView], error)
	Get(ctx context.Context, id string) (QuotationView, error)
	Update(ctx context.Context, id string, fields map[string]any) (QuotationView, error)
	Delete(ctx context.Context, id string) error
	RenderPDF(ctx context.Context, id string) ([]byte, QuotationView, error)
}

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidCustomer  = errors.New("invalid_customer_name")
	ErrInvalidLineItems = errors.New("invalid_line_items")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrNumberTaken      = errors.New("quote_number_taken")
	ErrNotFound         = errors.New("not_found")
)
