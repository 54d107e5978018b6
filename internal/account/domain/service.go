package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
)

type ListAccountRequest struct {
	PageToken   string
	PageSize    int32
	Search      string
	Industry    string
	City        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListAccountFilter struct {
	Search      string
	Industry    string
	City        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type CreateAccountRequest struct {
	AccountName       string           `json:"account_name"`
	DisplayName       string           `json:"display_name"`
	Website           string           `json:"website"`
	Industry          string           `json:"industry"`
	SubIndustry       string           `json:"sub_industry"`
	CompanyType       string           `json:"company_type"`
	AnnualRevenue     decimal.Decimal  `json:"annual_revenue"`
	EmployeeCount     int              `json:"employee_count"`
	Territory         string           `json:"territory"`
	AccountOwner      string           `json:"account_owner"`
	AccountStatus     string           `json:"account_status"`
	LifecycleStage    string           `json:"lifecycle_stage"`
	GSTNumber         string           `json:"gst_number"`
	PANNumber         string           `json:"pan_number"`
	CreditLimit       decimal.Decimal  `json:"credit_limit"`
	PaymentTerms      string           `json:"payment_terms"`
	Phone             string           `json:"phone"`
	Email             string           `json:"email"`
	BillingAddress    string           `json:"billing_address"`
	BillingCity       string           `json:"billing_city"`
	BillingState      string           `json:"billing_state"`
	BillingCountry    string           `json:"billing_country"`
	BillingPostalCode string           `json:"billing_postal_code"`
	Contacts          []map[string]any `json:"contacts"`
	Addresses         []map[string]any `json:"addresses"`
	Notes             string           `json:"notes"`
}

type AccountView struct {
	Account
	ContactCount      int `json:"contact_count"`
	DaysSinceCreation int `json:"days_since_creation"`
}

func ToView(a *Account, now time.Time) AccountView {
	view := AccountView{
		Account:           *a,
		ContactCount:      countJSONArray(a.Contacts),
		DaysSinceCreation: clock.DaysBetween(a.CreatedAt, now),
	}
	if view.AccountStatus == "" {
		view.AccountStatus = StatusActive
	}
	if view.LifecycleStage == "" {
		view.LifecycleStage = StageProspect
	}
	if view.DisplayName == "" {
		view.DisplayName = view.AccountName
	}
	return view
}

// DuplicateError reports an account name already used in the same city.
type DuplicateError struct {
	Name string
	City string
}

func (e *DuplicateError) Error() string {
	city := e.City
	if city == "" {
		city = "this city"
	}
	return fmt.Sprintf("An account with name %q already exists in %s", e.Name, city)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

type Service interface {
	Create(ctx context.Context, req CreateAccountRequest) (AccountView, error)
	List(ctx context.Context, req ListAccountRequest) (pagination.Page[AccountView], error)
	Get(ctx context.Context, id string) (AccountView, error)
	Update(ctx context.Context, id string, fields map[string]any) (AccountView, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_account_name")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrDuplicate      = errors.New("duplicate_account")
	ErrNotFound       = errors.New("not_found")
)
