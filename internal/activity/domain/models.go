package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"

	PriorityHigh   = "high"
	PriorityMedium = "medium"

	TypeCall     = "call"
	TypeDemo     = "demo"
	TypeFollowUp = "follow-up"
)

// Activity is a scheduled touchpoint (call, demo, follow-up...) optionally
// attached to another record through entity_type/entity_id.
type Activity struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID        snowflake.ID `gorm:"not null;index" json:"company_id"`
	ActivityType     string       `gorm:"column:activity_type;type:text;not null" json:"activity_type"`
	Title            string       `gorm:"type:text;not null" json:"title"`
	Description      string       `gorm:"type:text" json:"description,omitempty"`
	EntityType       string       `gorm:"column:entity_type;type:text;index" json:"entity_type,omitempty"`
	EntityID         string       `gorm:"column:entity_id;type:text;index" json:"entity_id,omitempty"`
	EntityName       string       `gorm:"column:entity_name;type:text" json:"entity_name,omitempty"`
	ContactName      string       `gorm:"column:contact_name;type:text" json:"contact_name,omitempty"`
	ContactPhone     string       `gorm:"column:contact_phone;type:text" json:"contact_phone,omitempty"`
	ContactEmail     string       `gorm:"column:contact_email;type:text" json:"contact_email,omitempty"`
	ScheduledDate    *time.Time   `gorm:"column:scheduled_date" json:"scheduled_date,omitempty"`
	DueDate          *time.Time   `gorm:"column:due_date" json:"due_date,omitempty"`
	CompletedDate    *time.Time   `gorm:"column:completed_date" json:"completed_date,omitempty"`
	Priority         string       `gorm:"type:text;not null" json:"priority"`
	Status           string       `gorm:"type:text;not null;index" json:"status"`
	AssignedTo       string       `gorm:"column:assigned_to;type:text" json:"assigned_to,omitempty"`
	Outcome          string       `gorm:"type:text" json:"outcome,omitempty"`
	OutcomeNotes     string       `gorm:"column:outcome_notes;type:text" json:"outcome_notes,omitempty"`
	NextAction       string       `gorm:"column:next_action;type:text" json:"next_action,omitempty"`
	FollowUpRequired bool         `gorm:"column:follow_up_required;not null;default:false" json:"follow_up_required"`
	FollowUpDate     *time.Time   `gorm:"column:follow_up_date" json:"follow_up_date,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Activity) TableName() string { return "activities" }
