package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DefaultSalesStage = "prospecting"
	DefaultPriority   = "medium"

	StatusNew       = "New"
	StatusContacted = "Contacted"
	StatusQualified = "Qualified"
	StatusConverted = "Converted"
)

// Lead is a prospective sale. Keys the API receives that have no column are
// kept in CustomFields and flattened back into the view.
type Lead struct {
	ID                  snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID           snowflake.ID      `gorm:"not null;index" json:"company_id"`
	LeadName            string            `gorm:"column:lead_name;type:text" json:"lead_name,omitempty"`
	AccountName         string            `gorm:"column:account_name;type:text" json:"account_name,omitempty"`
	ContactName         string            `gorm:"column:contact_name;type:text" json:"contact_name,omitempty"`
	Email               string            `gorm:"type:text" json:"email,omitempty"`
	Phone               string            `gorm:"type:text" json:"phone,omitempty"`
	Mobile              string            `gorm:"type:text" json:"mobile,omitempty"`
	Whatsapp            string            `gorm:"type:text" json:"whatsapp,omitempty"`
	Industry            string            `gorm:"type:text" json:"industry,omitempty"`
	LeadSource          string            `gorm:"column:lead_source;type:text;index" json:"lead_source,omitempty"`
	AssignedTo          string            `gorm:"column:assigned_to;type:text;not null" json:"assigned_to"`
	SalesStage          string            `gorm:"column:sales_stage;type:text" json:"sales_stage"`
	LeadStatus          string            `gorm:"column:lead_status;type:text;index" json:"lead_status"`
	Priority            string            `gorm:"type:text" json:"priority"`
	EstimatedValue      decimal.Decimal   `gorm:"column:estimated_value;type:decimal(14,2);not null;default:0" json:"estimated_value"`
	PrimaryProduct      string            `gorm:"column:primary_product;type:text" json:"primary_product,omitempty"`
	SecondaryProducts   datatypes.JSON    `gorm:"column:secondary_products" json:"secondary_products,omitempty"`
	Tags                datatypes.JSON    `gorm:"column:tags" json:"tags,omitempty"`
	City                string            `gorm:"type:text" json:"city,omitempty"`
	State               string            `gorm:"type:text" json:"state,omitempty"`
	Country             string            `gorm:"type:text" json:"country,omitempty"`
	Address             string            `gorm:"type:text" json:"address,omitempty"`
	ExpectedClosingDate *time.Time        `gorm:"column:expected_closing_date" json:"expected_closing_date,omitempty"`
	NextFollowupDate    *time.Time        `gorm:"column:next_followup_date" json:"next_followup_date,omitempty"`
	Notes               string            `gorm:"type:text" json:"notes,omitempty"`
	CustomFields        datatypes.JSONMap `gorm:"column:custom_fields" json:"custom_fields,omitempty"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }
