package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "Pending"
	StatusScheduled  = "Scheduled"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"

	DefaultPriority = "Medium"
)

var Statuses = []string{StatusPending, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

// Installation is an on-site equipment installation job.
type Installation struct {
	ID                   snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID            snowflake.ID    `gorm:"column:company_id;not null;index;uniqueIndex:ux_installations_company_number" json:"company_id"`
	InstallationNumber   string          `gorm:"column:installation_number;type:text;not null;uniqueIndex:ux_installations_company_number" json:"installation_number"`
	SourceType           string          `gorm:"column:source_type;type:text" json:"source_type,omitempty"`
	SourceReference      string          `gorm:"column:source_reference;type:text" json:"source_reference,omitempty"`
	AccountID            *snowflake.ID   `gorm:"column:account_id;index" json:"account_id,omitempty"`
	CustomerName         string          `gorm:"column:customer_name;type:text;not null" json:"customer_name"`
	ContactPerson        string          `gorm:"column:contact_person;type:text" json:"contact_person,omitempty"`
	CustomerPhone        string          `gorm:"column:customer_phone;type:text" json:"customer_phone,omitempty"`
	CustomerEmail        string          `gorm:"column:customer_email;type:text" json:"customer_email,omitempty"`
	InstallationAddress  string          `gorm:"column:installation_address;type:text" json:"installation_address,omitempty"`
	City                 string          `gorm:"column:city;type:text" json:"city,omitempty"`
	State                string          `gorm:"column:state;type:text" json:"state,omitempty"`
	Pincode              string          `gorm:"column:pincode;type:text" json:"pincode,omitempty"`
	ProductName          string          `gorm:"column:product_name;type:text" json:"product_name,omitempty"`
	ProductModel         string          `gorm:"column:product_model;type:text" json:"product_model,omitempty"`
	SerialNumber         string          `gorm:"column:serial_number;type:text" json:"serial_number,omitempty"`
	Quantity             int             `gorm:"column:quantity;not null;default:1" json:"quantity"`
	InstallationType     string          `gorm:"column:installation_type;type:text" json:"installation_type,omitempty"`
	Priority             string          `gorm:"column:priority;type:text" json:"priority"`
	ScheduledDate        *time.Time      `gorm:"column:scheduled_date" json:"scheduled_date,omitempty"`
	ScheduledTime        string          `gorm:"column:scheduled_time;type:text" json:"scheduled_time,omitempty"`
	EstimatedDuration    string          `gorm:"column:estimated_duration;type:text" json:"estimated_duration,omitempty"`
	AssignedTechnician   string          `gorm:"column:assigned_technician;type:text" json:"assigned_technician,omitempty"`
	TechnicianPhone      string          `gorm:"column:technician_phone;type:text" json:"technician_phone,omitempty"`
	Status               string          `gorm:"column:status;type:text;not null" json:"status"`
	CompletedDate        *time.Time      `gorm:"column:completed_date" json:"completed_date,omitempty"`
	InstallationCost     decimal.Decimal `gorm:"column:installation_cost;type:decimal(14,2);not null;default:0" json:"installation_cost"`
	AdditionalCharges    decimal.Decimal `gorm:"column:additional_charges;type:decimal(14,2);not null;default:0" json:"additional_charges"`
	TotalCost            decimal.Decimal `gorm:"column:total_cost;type:decimal(14,2);not null;default:0" json:"total_cost"`
	WarrantyPeriod       string          `gorm:"column:warranty_period;type:text" json:"warranty_period,omitempty"`
	WarrantyTerms        string          `gorm:"column:warranty_terms;type:text" json:"warranty_terms,omitempty"`
	PreInstallationNotes string          `gorm:"column:pre_installation_notes;type:text" json:"pre_installation_notes,omitempty"`
	SpecialInstructions  string          `gorm:"column:special_instructions;type:text" json:"special_instructions,omitempty"`
	CreatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Installation) TableName() string { return "installations" }
