// Package domain contains persistence models for companies and their users.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
)

// Company is a tenant of the CRM. Every business record carries its ID.
type Company struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name                 string       `gorm:"type:text;not null" json:"name"`
	Domain               string       `gorm:"type:text;not null;uniqueIndex:ux_companies_domain" json:"domain"`
	MaxUsers             int          `gorm:"column:max_users;not null" json:"max_users"`
	CurrentUsers         int          `gorm:"column:current_users;not null;default:0" json:"current_users"`
	SubscriptionStatus   string       `gorm:"column:subscription_status;type:text;not null" json:"subscription_status"`
	SubscriptionExpiryAt *time.Time   `gorm:"column:subscription_expires_at" json:"subscription_expires_at,omitempty"`
	HomeState            string       `gorm:"column:home_state;type:text" json:"home_state,omitempty"`
	IsActive             bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }

// User is a person who signs in to a company. Super admins have no company.
type User struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	CompanyID    *snowflake.ID `gorm:"column:company_id;index" json:"company_id,omitempty"`
	Email        string        `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	FullName     string        `gorm:"column:full_name;type:text;not null" json:"full_name"`
	Role         string        `gorm:"type:text;not null" json:"role"`
	PasswordHash string        `gorm:"column:password_hash;type:text" json:"-"`
	IsActive     bool          `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// BelongsTo reports whether the user is a member of companyID.
func (u User) BelongsTo(companyID snowflake.ID) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}
