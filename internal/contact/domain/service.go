package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
)

// RequiredFields must be present and non-blank on every contact.
var RequiredFields = []string{"first_name", "last_name", "email_primary", "phone_mobile", "lifecycle_stage"}

type ListContactRequest struct {
	PageToken      string
	PageSize       int32
	Search         string
	AccountID      string
	LifecycleStage string
	Status         string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

type ListContactFilter struct {
	Search         string
	AccountID      *snowflake.ID
	LifecycleStage string
	Status         string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

type CreateContactRequest struct {
	AccountID            *snowflake.ID `json:"account_id"`
	OwnerID              *snowflake.ID `json:"owner_id"`
	Salutation           string        `json:"salutation"`
	FirstName            string        `json:"first_name"`
	MiddleName           string        `json:"middle_name"`
	LastName             string        `json:"last_name"`
	JobTitle             string        `json:"job_title"`
	Department           string        `json:"department"`
	CompanyName          string        `json:"company_name"`
	EmailPrimary         string        `json:"email_primary"`
	EmailSecondary       string        `json:"email_secondary"`
	PhoneMobile          string        `json:"phone_mobile"`
	PhoneWork            string        `json:"phone_work"`
	LifecycleStage       string        `json:"lifecycle_stage"`
	CurrentContactStatus string        `json:"current_contact_status"`
	LeadSource           string        `json:"lead_source"`
	City                 string        `json:"city"`
	State                string        `json:"state"`
	Country              string        `json:"country"`
	Tags                 []string      `json:"tags"`
	Notes                string        `json:"notes"`
}

type ContactView struct {
	Contact
	FullName          string `json:"full_name"`
	DaysSinceCreation int    `json:"days_since_creation"`
}

func ToView(c *Contact, now time.Time) ContactView {
	view := ContactView{
		Contact:           *c,
		FullName:          FullName(c.Salutation, c.FirstName, c.MiddleName, c.LastName),
		DaysSinceCreation: clock.DaysBetween(c.CreatedAt, now),
	}
	if view.CurrentContactStatus == "" {
		view.CurrentContactStatus = StatusActive
	}
	if view.Tags == nil {
		view.Tags = []string{}
	}
	return view
}

// FullName joins the non-blank name parts with single spaces.
func FullName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// MissingFieldError names the required field that was absent or blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

type Service interface {
	Create(ctx context.Context, req CreateContactRequest) (ContactView, error)
	List(ctx context.Context, req ListContactRequest) (pagination.Page[ContactView], error)
	Get(ctx context.Context, id string) (ContactView, error)
	Update(ctx context.Context, id string, fields map[string]any) (ContactView, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrMissingField   = errors.New("missing_field")
	ErrInvalidEmail   = errors.New("invalid_email_primary")
	ErrInvalidPhone   = errors.New("invalid_phone_mobile")
	ErrInvalidAccount = errors.New("invalid_account_id")
	ErrNotFound       = errors.New("not_found")
)
