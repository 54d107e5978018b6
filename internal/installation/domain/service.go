package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

type CreateInstallationRequest struct {
	InstallationNumber   string          `json:"installation_number"`
	SourceType           string          `json:"source_type"`
	SourceReference      string          `json:"source_reference"`
	AccountID            *snowflake.ID   `json:"account_id"`
	CustomerName         string          `json:"customer_name"`
	ContactPerson        string          `json:"contact_person"`
	CustomerPhone        string          `json:"customer_phone"`
	CustomerEmail        string          `json:"customer_email"`
	InstallationAddress  string          `json:"installation_address"`
	City                 string          `json:"city"`
	State                string          `json:"state"`
	Pincode              string          `json:"pincode"`
	ProductName          string          `json:"product_name"`
	ProductModel         string          `json:"product_model"`
	SerialNumber         string          `json:"serial_number"`
	Quantity             int             `json:"quantity"`
	InstallationType     string          `json:"installation_type"`
	Priority             string          `json:"priority"`
	ScheduledDate        *timeutil.Date  `json:"scheduled_date"`
	ScheduledTime        string          `json:"scheduled_time"`
	EstimatedDuration    string          `json:"estimated_duration"`
	AssignedTechnician   string          `json:"assigned_technician"`
	TechnicianPhone      string          `json:"technician_phone"`
	Status               string          `json:"status"`
	CompletedDate        *timeutil.Date  `json:"completed_date"`
	InstallationCost     decimal.Decimal `json:"installation_cost"`
	AdditionalCharges    decimal.Decimal `json:"additional_charges"`
	WarrantyPeriod       string          `json:"warranty_period"`
	WarrantyTerms        string          `json:"warranty_terms"`
	PreInstallationNotes string          `json:"pre_installation_notes"`
	SpecialInstructions  string          `json:"special_instructions"`
}

type ListInstallationRequest struct {
	PageToken          string
	PageSize           int32
	Status             string
	AssignedTechnician string
	Search             string
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
}

type ListInstallationFilter struct {
	Status             string
	AssignedTechnician string
	Search             string
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
}

type InstallationView struct {
	Installation
	IsDelayed         bool `json:"is_delayed"`
	DaysSinceCreation int  `json:"days_since_creation"`
}

func ToView(i *Installation, now time.Time) InstallationView {
	view := InstallationView{Installation: *i, DaysSinceCreation: clock.DaysBetween(i.CreatedAt, now)}
	if view.Status == "" {
		view.Status = StatusPending
	}
	if view.Priority == "" {
		view.Priority = DefaultPriority
	}
	view.IsDelayed = IsDelayed(i)
	return view
}

// IsDelayed reports whether the job finished after its scheduled date.
func IsDelayed(i *Installation) bool {
	return i.CompletedDate != nil && i.ScheduledDate != nil && i.CompletedDate.After(*i.ScheduledDate)
}

type Service interface {
	Create(ctx context.Context, req CreateInstallationRequest) (InstallationView, error)
	List(ctx context.Context, req ListInstallationRequest) (pagination.Page[InstallationView], error)
	Get(ctx context.Context, id string) (InstallationView, error)
	Update(ctx context.Context, id string, fields map[string]any) (InstallationView, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer_name")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidDate     = errors.New("invalid_date")
	ErrNumberTaken     = errors.New("installation_number_taken")
	ErrNotFound        = errors.New("not_found")
)
