package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

// StandardFields are the request keys stored in dedicated columns.
var StandardFields = []string{
	"lead_name", "account_name", "contact_name", "email", "phone", "mobile", "whatsapp",
	"industry", "lead_source", "assigned_to", "sales_stage", "lead_status", "priority",
	"estimated_value", "primary_product", "secondary_products", "tags", "city", "state",
	"country", "address", "expected_closing_date", "next_followup_date", "notes",
}

// reservedFields are never accepted from clients, not even as custom fields.
var reservedFields = map[string]bool{
	"id": true, "company_id": true, "companyId": true, "custom_fields": true,
	"created_at": true, "updated_at": true, "days_since_creation": true,
}

type ListLeadRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	SalesStage  string
	AssignedTo  string
	LeadSource  string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListLeadFilter struct {
	Status      string
	SalesStage  string
	AssignedTo  string
	LeadSource  string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type CreateLeadRequest struct {
	LeadName            string          `json:"lead_name"`
	AccountName         string          `json:"account_name"`
	ContactName         string          `json:"contact_name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	Mobile              string          `json:"mobile"`
	Whatsapp            string          `json:"whatsapp"`
	Industry            string          `json:"industry"`
	LeadSource          string          `json:"lead_source"`
	AssignedTo          string          `json:"assigned_to"`
	SalesStage          string          `json:"sales_stage"`
	LeadStatus          string          `json:"lead_status"`
	Priority            string          `json:"priority"`
	EstimatedValue      decimal.Decimal `json:"estimated_value"`
	PrimaryProduct      string          `json:"primary_product"`
	SecondaryProducts   []string        `json:"secondary_products"`
	Tags                []string        `json:"tags"`
	City                string          `json:"city"`
	State               string          `json:"state"`
	Country             string          `json:"country"`
	Address             string          `json:"address"`
	ExpectedClosingDate *timeutil.Date  `json:"expected_closing_date"`
	NextFollowupDate    *timeutil.Date  `json:"next_followup_date"`
	Notes               string          `json:"notes"`
	CustomFields        map[string]any  `json:"-"`
}

// DecodeCreateRequest splits a free-form lead payload into the typed request
// and its custom fields.
func DecodeCreateRequest(fields map[string]any) (CreateLeadRequest, error) {
	standard, custom := SplitFields(fields)
	raw, err := json.Marshal(standard)
	if err != nil {
		return CreateLeadRequest{}, ErrInvalidRequest
	}
	var req CreateLeadRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		if errors.Is(err, timeutil.ErrInvalidTime) {
			return CreateLeadRequest{}, ErrInvalidDate
		}
		return CreateLeadRequest{}, ErrInvalidRequest
	}
	req.CustomFields = custom
	return req, nil
}

// SplitFields separates column-backed keys from custom ones. Blank strings
// become nil so they decode to zero values.
func SplitFields(fields map[string]any) (map[string]any, map[string]any) {
	standard := make(map[string]any, len(fields))
	custom := make(map[string]any)
	known := make(map[string]bool, len(StandardFields))
	for _, f := range StandardFields {
		known[f] = true
	}
	for key, value := range fields {
		key = strings.TrimSpace(key)
		if key == "" || reservedFields[key] {
			continue
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			value = nil
		}
		if known[key] {
			standard[key] = value
			continue
		}
		custom[key] = value
	}
	return standard, custom
}

type LeadView struct {
	Lead
	DaysSinceCreation int `json:"days_since_creation"`
}

func ToView(l *Lead, now time.Time) LeadView {
	view := LeadView{Lead: *l, DaysSinceCreation: clock.DaysBetween(l.CreatedAt, now)}
	if view.SalesStage == "" {
		view.SalesStage = DefaultSalesStage
	}
	if view.Priority == "" {
		view.Priority = DefaultPriority
	}
	if view.LeadStatus == "" {
		view.LeadStatus = StatusNew
	}
	return view
}

// MarshalJSON flattens custom fields into the top-level object. Column-backed
// keys win on collision.
func (v LeadView) MarshalJSON() ([]byte, error) {
	type plain LeadView
	b, err := json.Marshal(plain(v))
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	delete(out, "custom_fields")
	for key, value := range v.CustomFields {
		if _, exists := out[key]; exists {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[key] = encoded
	}
	return json.Marshal(out)
}

type Service interface {
	Create(ctx context.Context, req CreateLeadRequest) (LeadView, error)
	List(ctx context.Context, req ListLeadRequest) (pagination.Page[LeadView], error)
	Get(ctx context.Context, id string) (LeadView, error)
	Update(ctx context.Context, id string, fields map[string]any) (LeadView, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidAssignedTo = errors.New("invalid_assigned_to")
	ErrInvalidValue      = errors.New("invalid_estimated_value")
	ErrInvalidDate       = errors.New("invalid_date")
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrNotFound          = errors.New("not_found")
)
