package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

type CreateContractRequest struct {
	ContractNumber        string          `json:"contract_number"`
	InstallationID        *snowflake.ID   `json:"installation_id"`
	AccountID             *snowflake.ID   `json:"account_id"`
	CustomerName          string          `json:"customer_name"`
	ContactPerson         string          `json:"contact_person"`
	CustomerPhone         string          `json:"customer_phone"`
	CustomerEmail         string          `json:"customer_email"`
	ServiceAddress        string          `json:"service_address"`
	City                  string          `json:"city"`
	State                 string          `json:"state"`
	Pincode               string          `json:"pincode"`
	ContractType          string          `json:"contract_type"`
	StartDate             *timeutil.Date  `json:"start_date"`
	EndDate               *timeutil.Date  `json:"end_date"`
	DurationMonths        int             `json:"duration_months"`
	ContractValue         decimal.Decimal `json:"contract_value"`
	PaymentTerms          string          `json:"payment_terms"`
	ServiceFrequency      string          `json:"service_frequency"`
	NumberOfServices      int             `json:"number_of_services"`
	ResponseTimeHours     int             `json:"response_time_hours"`
	RenewalNoticeDays     int             `json:"renewal_notice_days"`
	EquipmentDetails      json.RawMessage `json:"equipment_details"`
	SparePartsIncluded    bool            `json:"spare_parts_included"`
	LabourChargesIncluded bool            `json:"labour_charges_included"`
	EmergencySupport      bool            `json:"emergency_support"`
	AutoRenewal           bool            `json:"auto_renewal"`
	AssignedTechnician    string          `json:"assigned_technician"`
	ServiceManager        string          `json:"service_manager"`
	Status                string          `json:"status"`
	TermsAndConditions    string          `json:"terms_and_conditions"`
	Exclusions            string          `json:"exclusions"`
	SpecialInstructions   string          `json:"special_instructions"`
}

type ListContractRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	Search      string
	ExpiringIn  int
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListContractFilter struct {
	Status      string
	Search      string
	EndAfter    *time.Time
	EndBefore   *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ContractView struct {
	Contract
	DaysToExpiry      int  `json:"days_to_expiry"`
	IsExpiringSoon    bool `json:"is_expiring_soon"`
	ServicesRemaining int  `json:"services_remaining"`
	DaysSinceCreation int  `json:"days_since_creation"`
}

func ToView(c *Contract, now time.Time) ContractView {
	view := ContractView{Contract: *c, DaysSinceCreation: clock.DaysBetween(c.CreatedAt, now)}
	if view.Status == "" {
		view.Status = StatusActive
	}
	today := timeutil.StartOfDay(now)
	view.DaysToExpiry = clock.DaysUntil(today, timeutil.StartOfDay(c.EndDate))
	view.IsExpiringSoon = view.Status == StatusActive && view.DaysToExpiry >= 0 && view.DaysToExpiry <= ExpiringWindowDays
	if remaining := c.NumberOfServices - c.ServicesCompleted; remaining > 0 {
		view.ServicesRemaining = remaining
	}
	return view
}

type Service interface {
	Create(ctx context.Context, req CreateContractRequest) (ContractView, error)
	List(ctx context.Context, req ListContractRequest) (pagination.Page[ContractView], error)
	Get(ctx context.Context, id string) (ContractView, error)
	Update(ctx context.Context, id string, fields map[string]any) (ContractView, error)
	Delete(ctx context.Context, id string) error
	// Renew issues a follow-on contract starting the day after the current
	// one ends and marks the current one Renewed.
	Renew(ctx context.Context, id string) (ContractView, error)
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer_name")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidDate     = errors.New("invalid_date")
	ErrInvalidValue    = errors.New("invalid_contract_value")
	ErrInvalidDuration = errors.New("invalid_duration_months")
	ErrAlreadyRenewed  = errors.New("contract_already_renewed")
	ErrNumberTaken     = errors.New("contract_number_taken")
	ErrNotFound        = errors.New("not_found")
)
