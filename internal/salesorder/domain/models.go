package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
)

// SalesOrder is a confirmed order, usually raised from a quotation.
type SalesOrder struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID    snowflake.ID    `gorm:"column:company_id;not null;index;uniqueIndex:ux_sales_orders_company_number" json:"company_id"`
	OrderNumber  string          `gorm:"column:order_number;type:text;not null;uniqueIndex:ux_sales_orders_company_number" json:"order_number"`
	OrderDate    time.Time       `gorm:"column:order_date;not null" json:"order_date"`
	AccountID    *snowflake.ID   `gorm:"column:account_id;index" json:"account_id,omitempty"`
	AccountName  string          `gorm:"column:account_name;type:text" json:"account_name,omitempty"`
	QuotationID  *snowflake.ID   `gorm:"column:quotation_id;index" json:"quotation_id,omitempty"`
	TotalAmount  decimal.Decimal `gorm:"column:total_amount;type:decimal(14,2);not null;default:0" json:"total_amount"`
	Currency     string          `gorm:"column:currency;type:text" json:"currency,omitempty"`
	Status       string          `gorm:"column:status;type:text;not null" json:"status"`
	DeliveryDate *time.Time      `gorm:"column:delivery_date" json:"delivery_date,omitempty"`
	AssignedTo   string          `gorm:"column:assigned_to;type:text" json:"assigned_to,omitempty"`
	Notes        string          `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SalesOrder) TableName() string { return "sales_orders" }
