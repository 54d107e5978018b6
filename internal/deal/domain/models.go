package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StageProspecting   = "Prospecting"
	StageQualification = "Qualification"
	StageProposal      = "Proposal"
	StageNegotiation   = "Negotiation"
	StageWon           = "Won"
	StageLost          = "Lost"

	DefaultStage = StageProspecting

	// HighProbability is the win probability at and above which follow-ups
	// are scheduled as high priority.
	HighProbability = 80
)

var Stages = []string{StageProspecting, StageQualification, StageProposal, StageNegotiation, StageWon, StageLost}

// Product is a product line attached to a deal.
type Product struct {
	ProductID    string          `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Notes        string          `json:"notes,omitempty"`
}

type Deal struct {
	ID                snowflake.ID                 `gorm:"primaryKey" json:"id"`
	CompanyID         snowflake.ID                 `gorm:"column:company_id;not null;index" json:"company_id"`
	DealName          string                       `gorm:"column:deal_name;type:text;not null" json:"deal_name"`
	AccountID         *snowflake.ID                `gorm:"column:account_id;index" json:"account_id,omitempty"`
	AccountName       string                       `gorm:"column:account_name;type:text" json:"account_name,omitempty"`
	LeadID            *snowflake.ID                `gorm:"column:lead_id;index" json:"lead_id,omitempty"`
	ContactPerson     string                       `gorm:"column:contact_person;type:text" json:"contact_person,omitempty"`
	Phone             string                       `gorm:"column:phone;type:text" json:"phone,omitempty"`
	Email             string                       `gorm:"column:email;type:text" json:"email,omitempty"`
	Product           string                       `gorm:"column:product;type:text" json:"product,omitempty"`
	DealValue         decimal.Decimal              `gorm:"column:deal_value;type:decimal(14,2);not null;default:0" json:"deal_value"`
	Stage             string                       `gorm:"column:stage;type:text;not null;index" json:"stage"`
	Probability       int                          `gorm:"column:probability;not null;default:0" json:"probability"`
	ExpectedCloseDate *time.Time                   `gorm:"column:expected_close_date" json:"expected_close_date,omitempty"`
	NextFollowupDate  *time.Time                   `gorm:"column:next_followup_date" json:"next_followup_date,omitempty"`
	SelectedProducts  datatypes.JSONSlice[Product] `gorm:"column:selected_products" json:"selected_products"`
	Source            string                       `gorm:"column:source;type:text" json:"source,omitempty"`
	AssignedTo        string                       `gorm:"column:assigned_to;type:text" json:"assigned_to,omitempty"`
	Notes             string                       `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt         time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Deal) TableName() string { return "deals" }
