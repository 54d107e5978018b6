package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Product struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	CompanyID   snowflake.ID      `json:"company_id" gorm:"not null;uniqueIndex:ux_products_company_code,priority:1"`
	ProductCode *string           `json:"product_code,omitempty" gorm:"column:product_code;type:text;uniqueIndex:ux_products_company_code,priority:2"`
	ProductName string            `json:"product_name" gorm:"column:product_name;type:text;not null"`
	Category    string            `json:"category,omitempty" gorm:"type:text;index"`
	Principal   string            `json:"principal,omitempty" gorm:"type:text"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	HSNCode     string            `json:"hsn_code,omitempty" gorm:"column:hsn_code;type:text"`
	Unit        string            `json:"unit,omitempty" gorm:"type:text"`
	Price       decimal.Decimal   `json:"price" gorm:"type:decimal(14,2);not null;default:0"`
	TaxRate     decimal.Decimal   `json:"tax_rate" gorm:"column:tax_rate;type:decimal(5,2);not null;default:0"`
	Status      string            `json:"status" gorm:"type:text;not null"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"column:metadata"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
