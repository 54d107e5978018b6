package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

type CreateCaseRequest struct {
	CaseNumber         string         `json:"case_number"`
	CaseDate           *timeutil.Date `json:"case_date"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Solution           string         `json:"solution"`
	CaseCategory       string         `json:"case_category"`
	IssueType          string         `json:"issue_type"`
	Severity           string         `json:"severity"`
	Priority           string         `json:"priority"`
	Status             string         `json:"status"`
	CustomerName       string         `json:"customer_name"`
	ContactPerson      string         `json:"contact_person"`
	ContactPhone       string         `json:"contact_phone"`
	ContactEmail       string         `json:"contact_email"`
	ProductName        string         `json:"product_name"`
	SerialNumber       string         `json:"serial_number"`
	ModelNumber        string         `json:"model_number"`
	AssignedTo         string         `json:"assigned_to"`
	Symptoms           string         `json:"symptoms"`
	CustomerImpact     string         `json:"customer_impact"`
	Workaround         string         `json:"workaround"`
	SourceType         string         `json:"source_type"`
	SourceID           string         `json:"source_id"`
	ResolutionRequired *bool          `json:"resolution_required"`
	FollowUpRequired   bool           `json:"follow_up_required"`
	FollowUpDate       *timeutil.Date `json:"follow_up_date"`
}

type ListCaseRequest struct {
	PageToken    string
	PageSize     int32
	Status       string
	CaseCategory string
	AssignedTo   string
	Search       string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type ListCaseFilter struct {
	Status       string
	CaseCategory string
	AssignedTo   string
	Search       string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type CaseView struct {
	Case
	IsOpen            bool `json:"is_open"`
	DaysSinceCreation int  `json:"days_since_creation"`
}

func ToCaseView(c *Case, now time.Time) CaseView {
	view := CaseView{Case: *c, DaysSinceCreation: clock.DaysBetween(c.CreatedAt, now)}
	if view.Status == "" {
		view.Status = CaseStatusOpen
	}
	if view.CaseCategory == "" {
		view.CaseCategory = DefaultCaseCategory
	}
	view.IsOpen = view.Status == CaseStatusOpen || view.Status == CaseStatusInProgress
	return view
}

type CreateSolutionRequest struct {
	SolutionNumber     string         `json:"solution_number"`
	SolutionDate       *timeutil.Date `json:"solution_date"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	SolutionType       string         `json:"solution_type"`
	SolutionCategory   string         `json:"solution_category"`
	ProblemStatement   string         `json:"problem_statement"`
	RootCause          string         `json:"root_cause"`
	SolutionSteps      string         `json:"solution_steps"`
	CaseID             *snowflake.ID  `json:"case_id"`
	CustomerName       string         `json:"customer_name"`
	ProductName        string         `json:"product_name"`
	DifficultyLevel    string         `json:"difficulty_level"`
	Status             string         `json:"status"`
	Effectiveness      string         `json:"effectiveness"`
	ImplementedBy      string         `json:"implemented_by"`
	KnowledgeBaseEntry *bool          `json:"knowledge_base_entry"`
	PublicSolution     bool           `json:"public_solution"`
	Reusable           *bool          `json:"reusable"`
	Version            string         `json:"version"`
	Notes              string         `json:"notes"`
}

type ListSolutionRequest struct {
	PageToken        string
	PageSize         int32
	Status           string
	SolutionCategory string
	Reusable         *bool
	Search           string
}

type ListSolutionFilter struct {
	Status           string
	SolutionCategory string
	Reusable         *bool
	Search           string
}

type SolutionView struct {
	Solution
	DaysSinceCreation int `json:"days_since_creation"`
}

func ToSolutionView(s *Solution, now time.Time) SolutionView {
	view := SolutionView{Solution: *s, DaysSinceCreation: clock.DaysBetween(s.CreatedAt, now)}
	if view.Status == "" {
		view.Status = SolutionStatusDraft
	}
	if view.Version == "" {
		view.Version = DefaultVersion
	}
	return view
}

type CaseService interface {
	Create(ctx context.Context, req CreateCaseRequest) (CaseView, error)
	List(ctx context.Context, req ListCaseRequest) (pagination.Page[CaseView], error)
	Get(ctx context.Context, id string) (CaseView, error)
	Update(ctx context.Context, id string, fields map[string]any) (CaseView, error)
	Delete(ctx context.Context, id string) error
}

type SolutionService interface {
	Create(ctx context.Context, req CreateSolutionRequest) (SolutionView, error)
	List(ctx context.Context, req ListSolutionRequest) (pagination.Page[SolutionView], error)
	Get(ctx context.Context, id string) (SolutionView, error)
	Update(ctx context.Context, id string, fields map[string]any) (SolutionView, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidDate    = errors.New("invalid_date")
	ErrInvalidFlag    = errors.New("invalid_flag")
	ErrCaseMissing    = errors.New("case_not_found")
	ErrNumberTaken    = errors.New("number_taken")
	ErrNotFound       = errors.New("not_found")
)
