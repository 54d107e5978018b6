package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"

	// StatusOpen is accepted on input and stored as StatusNew.
	StatusOpen = "Open"

	TypeUnderWarranty = "Under Warranty"
	TypeUnderAMC      = "Under AMC"
	TypeUncovered     = "No Warranty/AMC"

	DefaultSeverity    = "Medium"
	DefaultPriority    = "Medium"
	DefaultProductName = "Unknown Product"
)

var Statuses = []string{StatusNew, StatusInProgress, StatusResolved, StatusClosed}

// Complaint is a customer service complaint against an installed product.
type Complaint struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	CompanyID       snowflake.ID  `gorm:"column:company_id;not null;index;uniqueIndex:ux_complaints_company_number" json:"company_id"`
	ComplaintNumber string        `gorm:"column:complaint_number;type:text;not null;uniqueIndex:ux_complaints_company_number" json:"complaint_number"`
	ComplaintDate   time.Time     `gorm:"column:complaint_date;not null" json:"complaint_date"`
	AccountName     string        `gorm:"column:account_name;type:text" json:"account_name"`
	Subject         string        `gorm:"column:subject;type:text" json:"subject"`
	Description     string        `gorm:"column:description;type:text" json:"description"`
	ContactPerson   string        `gorm:"column:contact_person;type:text" json:"contact_person,omitempty"`
	ContactPhone    string        `gorm:"column:contact_phone;type:text" json:"contact_phone,omitempty"`
	ContactEmail    string        `gorm:"column:contact_email;type:text" json:"contact_email,omitempty"`
	ComplaintType   string        `gorm:"column:complaint_type;type:text;not null" json:"complaint_type"`
	WarrantyStatus  string        `gorm:"column:warranty_status;type:text" json:"warranty_status,omitempty"`
	InstallationID  *snowflake.ID `gorm:"column:installation_id;index" json:"installation_id,omitempty"`
	AMCContractID   *snowflake.ID `gorm:"column:amc_contract_id;index" json:"amc_contract_id,omitempty"`
	SourceReference string        `gorm:"column:source_reference;type:text" json:"source_reference,omitempty"`
	ProductName     string        `gorm:"column:product_name;type:text;not null" json:"product_name"`
	ModelNumber     string        `gorm:"column:model_number;type:text" json:"model_number,omitempty"`
	SerialNumber    string        `gorm:"column:serial_number;type:text" json:"serial_number,omitempty"`
	Severity        string        `gorm:"column:severity;type:text;not null" json:"severity"`
	Priority        string        `gorm:"column:priority;type:text;not null" json:"priority"`
	Status          string        `gorm:"column:status;type:text;not null" json:"status"`
	AssignedTo      string        `gorm:"column:assigned_to;type:text" json:"assigned_to,omitempty"`
	Resolution      string        `gorm:"column:resolution;type:text" json:"resolution,omitempty"`
	ResolvedDate    *time.Time    `gorm:"column:resolved_date" json:"resolved_date,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Complaint) TableName() string { return "complaints" }

// ClassifyCoverage derives complaint_type from the warranty status and
// any linked AMC contract. Warranty wins over AMC.
func ClassifyCoverage(warrantyStatus string, amcContractID *snowflake.ID) string {
	if warrantyStatus == TypeUnderWarranty {
		return TypeUnderWarranty
	}
	if amcContractID != nil && *amcContractID != 0 {
		return TypeUnderAMC
	}
	return TypeUncovered
}
