// Package domain contains annual maintenance contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusActive    = "Active"
	StatusExpired   = "Expired"
	StatusRenewed   = "Renewed"
	StatusCancelled = "Cancelled"

	DefaultDurationMonths = 12
	// ExpiringWindowDays is how far ahead a contract counts as expiring.
	ExpiringWindowDays = 30
)

var Statuses = []string{StatusActive, StatusExpired, StatusRenewed, StatusCancelled}

// Contract is stored in amc_contracts.
type Contract struct {
	ID                    snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID             snowflake.ID    `gorm:"column:company_id;not null;index;uniqueIndex:ux_amc_contracts_company_number" json:"company_id"`
	ContractNumber        string          `gorm:"column:contract_number;type:text;not null;uniqueIndex:ux_amc_contracts_company_number" json:"contract_number"`
	InstallationID        *snowflake.ID   `gorm:"column:installation_id;index" json:"installation_id,omitempty"`
	AccountID             *snowflake.ID   `gorm:"column:account_id;index" json:"account_id,omitempty"`
	RenewedFromID         *snowflake.ID   `gorm:"column:renewed_from_id" json:"renewed_from_id,omitempty"`
	CustomerName          string          `gorm:"column:customer_name;type:text;not null" json:"customer_name"`
	ContactPerson         string          `gorm:"column:contact_person;type:text" json:"contact_person,omitempty"`
	CustomerPhone         string          `gorm:"column:customer_phone;type:text" json:"customer_phone,omitempty"`
	CustomerEmail         string          `gorm:"column:customer_email;type:text" json:"customer_email,omitempty"`
	ServiceAddress        string          `gorm:"column:service_address;type:text" json:"service_address,omitempty"`
	City                  string          `gorm:"column:city;type:text" json:"city,omitempty"`
	State                 string          `gorm:"column:state;type:text" json:"state,omitempty"`
	Pincode               string          `gorm:"column:pincode;type:text" json:"pincode,omitempty"`
	ContractType          string          `gorm:"column:contract_type;type:text" json:"contract_type,omitempty"`
	StartDate             time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate               time.Time       `gorm:"column:end_date;not null;index" json:"end_date"`
	DurationMonths        int             `gorm:"column:duration_months;not null" json:"duration_months"`
	ContractValue         decimal.Decimal `gorm:"column:contract_value;type:decimal(14,2);not null;default:0" json:"contract_value"`
	PaymentTerms          string          `gorm:"column:payment_terms;type:text" json:"payment_terms,omitempty"`
	ServiceFrequency      string          `gorm:"column:service_frequency;type:text" json:"service_frequency,omitempty"`
	NumberOfServices      int             `gorm:"column:number_of_services;not null;default:0" json:"number_of_services"`
	ServicesCompleted     int             `gorm:"column:services_completed;not null;default:0" json:"services_completed"`
	ResponseTimeHours     int             `gorm:"column:response_time_hours;not null;default:0" json:"response_time_hours"`
	RenewalNoticeDays     int             `gorm:"column:renewal_notice_days;not null;default:0" json:"renewal_notice_days"`
	EquipmentDetails      datatypes.JSON  `gorm:"column:equipment_details" json:"equipment_details,omitempty"`
	SparePartsIncluded    bool            `gorm:"column:spare_parts_included;not null;default:false" json:"spare_parts_included"`
	LabourChargesIncluded bool            `gorm:"column:labour_charges_included;not null;default:false" json:"labour_charges_included"`
	EmergencySupport      bool            `gorm:"column:emergency_support;not null;default:false" json:"emergency_support"`
	AutoRenewal           bool            `gorm:"column:auto_renewal;not null;default:false" json:"auto_renewal"`
	AssignedTechnician    string          `gorm:"column:assigned_technician;type:text" json:"assigned_technician,omitempty"`
	ServiceManager        string          `gorm:"column:service_manager;type:text" json:"service_manager,omitempty"`
	Status                string          `gorm:"column:status;type:text;not null" json:"status"`
	TermsAndConditions    string          `gorm:"column:terms_and_conditions;type:text" json:"terms_and_conditions,omitempty"`
	Exclusions            string          `gorm:"column:exclusions;type:text" json:"exclusions,omitempty"`
	SpecialInstructions   string          `gorm:"column:special_instructions;type:text" json:"special_instructions,omitempty"`
	CreatedAt             time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Contract) TableName() string { return "amc_contracts" }
