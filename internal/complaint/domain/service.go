package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

// CreateComplaintRequest uses the intake form's field names; they are mapped
// onto the stored columns on create.
type CreateComplaintRequest struct {
	ComplaintNumber      string         `json:"complaint_number"`
	ComplaintDate        *timeutil.Date `json:"complaint_date"`
	CustomerName         string         `json:"customer_name"`
	ComplaintTitle       string         `json:"complaint_title"`
	ComplaintDescription string         `json:"complaint_description"`
	ContactPerson        string         `json:"contact_person"`
	CustomerPhone        string         `json:"customer_phone"`
	CustomerEmail        string         `json:"customer_email"`
	WarrantyStatus       string         `json:"warranty_status"`
	InstallationID       *snowflake.ID  `json:"installation_id"`
	AMCContractID        *snowflake.ID  `json:"amc_contract_id"`
	SourceReference      string         `json:"source_reference"`
	ProductName          string         `json:"product_name"`
	ProductModel         string         `json:"product_model"`
	SerialNumber         string         `json:"serial_number"`
	Severity             string         `json:"severity"`
	Priority             string         `json:"priority"`
	Status               string         `json:"status"`
	AssignedTo           string         `json:"assigned_to"`
}

type ListComplaintRequest struct {
	PageToken     string
	PageSize      int32
	Status        string
	Priority      string
	ComplaintType string
	AssignedTo    string
	Search        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

type ListComplaintFilter struct {
	Status        string
	Priority      string
	ComplaintType string
	AssignedTo    string
	Search        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

type ComplaintView struct {
	Complaint
	IsOpen            bool `json:"is_open"`
	DaysOpen          int  `json:"days_open"`
	DaysSinceCreation int  `json:"days_since_creation"`
}

func ToView(c *Complaint, now time.Time) ComplaintView {
	view := ComplaintView{Complaint: *c, DaysSinceCreation: clock.DaysBetween(c.CreatedAt, now)}
	if view.Status == "" {
		view.Status = StatusNew
	}
	if view.Severity == "" {
		view.Severity = DefaultSeverity
	}
	if view.Priority == "" {
		view.Priority = DefaultPriority
	}
	if view.ProductName == "" {
		view.ProductName = DefaultProductName
	}
	view.IsOpen = view.Status != StatusResolved && view.Status != StatusClosed
	end := now
	if c.ResolvedDate != nil {
		end = *c.ResolvedDate
	}
	view.DaysOpen = clock.DaysBetween(c.ComplaintDate, end)
	return view
}

type Service interface {
	Create(ctx context.Context, req CreateComplaintRequest) (ComplaintView, error)
	List(ctx context.Context, req ListComplaintRequest) (pagination.Page[ComplaintView], error)
	Get(ctx context.Context, id string) (ComplaintView, error)
	Update(ctx context.Context, id string, fields map[string]any) (ComplaintView, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer_name")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidDate     = errors.New("invalid_date")
	ErrNumberTaken     = errors.New("complaint_number_taken")
	ErrNotFound        = errors.New("not_found")
)
