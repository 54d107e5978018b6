package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StageLead     = "Lead"
	StageCustomer = "Customer"

	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Contact is a person at a customer. When linked to an account, CompanyName
// mirrors the account's name.
type Contact struct {
	ID                   snowflake.ID                `gorm:"primaryKey" json:"id"`
	CompanyID            snowflake.ID                `gorm:"not null;index" json:"company_id"`
	AccountID            *snowflake.ID               `gorm:"column:account_id;index" json:"account_id,omitempty"`
	OwnerID              *snowflake.ID               `gorm:"column:owner_id" json:"owner_id,omitempty"`
	CreatedBy            *snowflake.ID               `gorm:"column:created_by" json:"created_by,omitempty"`
	Salutation           string                      `gorm:"type:text" json:"salutation,omitempty"`
	FirstName            string                      `gorm:"column:first_name;type:text;not null" json:"first_name"`
	MiddleName           string                      `gorm:"column:middle_name;type:text" json:"middle_name,omitempty"`
	LastName             string                      `gorm:"column:last_name;type:text;not null" json:"last_name"`
	JobTitle             string                      `gorm:"column:job_title;type:text" json:"job_title,omitempty"`
	Department           string                      `gorm:"type:text" json:"department,omitempty"`
	CompanyName          string                      `gorm:"column:company_name;type:text" json:"company_name,omitempty"`
	EmailPrimary         string                      `gorm:"column:email_primary;type:text;not null" json:"email_primary"`
	EmailSecondary       string                      `gorm:"column:email_secondary;type:text" json:"email_secondary,omitempty"`
	PhoneMobile          string                      `gorm:"column:phone_mobile;type:text;not null" json:"phone_mobile"`
	PhoneWork            string                      `gorm:"column:phone_work;type:text" json:"phone_work,omitempty"`
	LifecycleStage       string                      `gorm:"column:lifecycle_stage;type:text;not null;index" json:"lifecycle_stage"`
	CurrentContactStatus string                      `gorm:"column:current_contact_status;type:text" json:"current_contact_status"`
	LeadSource           string                      `gorm:"column:lead_source;type:text" json:"lead_source,omitempty"`
	City                 string                      `gorm:"type:text" json:"city,omitempty"`
	State                string                      `gorm:"type:text" json:"state,omitempty"`
	Country              string                      `gorm:"type:text" json:"country,omitempty"`
	Tags                 datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Notes                string                      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt            time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }
