package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StageProspect = "Prospect"
	StageCustomer = "Customer"
	StageAdvocate = "Advocate"

	StatusActive = "Active"
)

// Account is a customer organisation. Contacts and addresses are JSON arrays
// of free-form objects.
type Account struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID         snowflake.ID    `gorm:"not null;index" json:"company_id"`
	AccountName       string          `gorm:"column:account_name;type:text;not null" json:"account_name"`
	DisplayName       string          `gorm:"column:display_name;type:text" json:"display_name,omitempty"`
	Website           string          `gorm:"type:text" json:"website,omitempty"`
	Industry          string          `gorm:"type:text;index" json:"industry,omitempty"`
	SubIndustry       string          `gorm:"column:sub_industry;type:text" json:"sub_industry,omitempty"`
	CompanyType       string          `gorm:"column:company_type;type:text" json:"company_type,omitempty"`
	AnnualRevenue     decimal.Decimal `gorm:"column:annual_revenue;type:decimal(14,2);not null;default:0" json:"annual_revenue"`
	EmployeeCount     int             `gorm:"column:employee_count;not null;default:0" json:"employee_count"`
	Territory         string          `gorm:"type:text" json:"territory,omitempty"`
	AccountOwner      string          `gorm:"column:account_owner;type:text" json:"account_owner,omitempty"`
	AccountStatus     string          `gorm:"column:account_status;type:text" json:"account_status"`
	LifecycleStage    string          `gorm:"column:lifecycle_stage;type:text" json:"lifecycle_stage"`
	GSTNumber         string          `gorm:"column:gst_number;type:text" json:"gst_number,omitempty"`
	PANNumber         string          `gorm:"column:pan_number;type:text" json:"pan_number,omitempty"`
	CreditLimit       decimal.Decimal `gorm:"column:credit_limit;type:decimal(14,2);not null;default:0" json:"credit_limit"`
	PaymentTerms      string          `gorm:"column:payment_terms;type:text" json:"payment_terms,omitempty"`
	Phone             string          `gorm:"type:text" json:"phone,omitempty"`
	Email             string          `gorm:"type:text" json:"email,omitempty"`
	BillingAddress    string          `gorm:"column:billing_address;type:text" json:"billing_address,omitempty"`
	BillingCity       string          `gorm:"column:billing_city;type:text;index" json:"billing_city,omitempty"`
	BillingState      string          `gorm:"column:billing_state;type:text" json:"billing_state,omitempty"`
	BillingCountry    string          `gorm:"column:billing_country;type:text" json:"billing_country,omitempty"`
	BillingPostalCode string          `gorm:"column:billing_postal_code;type:text" json:"billing_postal_code,omitempty"`
	Contacts          datatypes.JSON  `gorm:"column:contacts" json:"contacts,omitempty"`
	Addresses         datatypes.JSON  `gorm:"column:addresses" json:"addresses,omitempty"`
	Notes             string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }
