package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

type ListActivityRequest struct {
	PageToken    string
	PageSize     int32
	EntityType   string
	EntityID     string
	Status       string
	ActivityType string
	AssignedTo   string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type ListActivityFilter struct {
	EntityType   string
	EntityID     string
	Status       string
	ActivityType string
	AssignedTo   string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type CreateActivityRequest struct {
	ActivityType  string         `json:"activity_type"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	EntityName    string         `json:"entity_name"`
	ContactName   string         `json:"contact_name"`
	ContactPhone  string         `json:"contact_phone"`
	ContactEmail  string         `json:"contact_email"`
	ScheduledDate *timeutil.Date `json:"scheduled_date"`
	DueDate       *timeutil.Date `json:"due_date"`
	Priority      string         `json:"priority"`
	AssignedTo    string         `json:"assigned_to"`
}

type ActivityView struct {
	Activity
	IsOverdue         bool `json:"is_overdue"`
	DaysSinceCreation int  `json:"days_since_creation"`
}

// ToView renders an activity for the API. An activity is overdue when its due
// date has passed and it is not completed.
func ToView(a *Activity, now time.Time) ActivityView {
	view := ActivityView{
		Activity:          *a,
		DaysSinceCreation: clock.DaysBetween(a.CreatedAt, now),
	}
	if view.Priority == "" {
		view.Priority = PriorityMedium
	}
	if view.Status == "" {
		view.Status = StatusPending
	}
	view.IsOverdue = a.DueDate != nil && a.DueDate.Before(now) && !IsCompleted(view.Status)
	return view
}

func IsCompleted(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusCompleted)
}

type Service interface {
	Create(ctx context.Context, req CreateActivityRequest) (ActivityView, error)
	List(ctx context.Context, req ListActivityRequest) (pagination.Page[ActivityView], error)
	Get(ctx context.Context, id string) (ActivityView, error)
	Update(ctx context.Context, id string, fields map[string]any) (ActivityView, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidType    = errors.New("invalid_activity_type")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidDate    = errors.New("invalid_date")
	ErrNotFound       = errors.New("not_found")
)
