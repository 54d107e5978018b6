package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	CaseStatusOpen       = "Open"
	CaseStatusInProgress = "In Progress"
	CaseStatusResolved   = "Resolved"
	CaseStatusClosed     = "Closed"

	SolutionStatusDraft     = "Draft"
	SolutionStatusPublished = "Published"
	SolutionStatusArchived  = "Archived"

	DefaultCaseCategory     = "Technical Support"
	DefaultSolutionCategory = "Technical Support"
	DefaultSolutionType     = "Bug Fix"
	DefaultSeverity         = "Medium"
	DefaultPriority         = "Medium"
	DefaultVersion          = "1.0"
)

var (
	CaseStatuses     = []string{CaseStatusOpen, CaseStatusInProgress, CaseStatusResolved, CaseStatusClosed}
	SolutionStatuses = []string{SolutionStatusDraft, SolutionStatusPublished, SolutionStatusArchived}
)

// Case is a support ticket, optionally raised from a complaint,
// installation or AMC contract (source_type/source_id).
type Case struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID          snowflake.ID `gorm:"column:company_id;not null;index;uniqueIndex:ux_cases_company_number" json:"company_id"`
	CaseNumber         string       `gorm:"column:case_number;type:text;not null;uniqueIndex:ux_cases_company_number" json:"case_number"`
	CaseDate           time.Time    `gorm:"column:case_date;not null" json:"case_date"`
	Title              string       `gorm:"column:title;type:text;not null" json:"title"`
	Description        string       `gorm:"column:description;type:text" json:"description,omitempty"`
	Solution           string       `gorm:"column:solution;type:text" json:"solution,omitempty"`
	CaseCategory       string       `gorm:"column:case_category;type:text;not null;index" json:"case_category"`
	IssueType          string       `gorm:"column:issue_type;type:text" json:"issue_type,omitempty"`
	Severity           string       `gorm:"column:severity;type:text;not null" json:"severity"`
	Priority           string       `gorm:"column:priority;type:text;not null" json:"priority"`
	Status             string       `gorm:"column:status;type:text;not null;index" json:"status"`
	CustomerName       string       `gorm:"column:customer_name;type:text" json:"customer_name,omitempty"`
	ContactPerson      string       `gorm:"column:contact_person;type:text" json:"contact_person,omitempty"`
	ContactPhone       string       `gorm:"column:contact_phone;type:text" json:"contact_phone,omitempty"`
	ContactEmail       string       `gorm:"column:contact_email;type:text" json:"contact_email,omitempty"`
	ProductName        string       `gorm:"column:product_name;type:text" json:"product_name,omitempty"`
	SerialNumber       string       `gorm:"column:serial_number;type:text" json:"serial_number,omitempty"`
	ModelNumber        string       `gorm:"column:model_number;type:text" json:"model_number,omitempty"`
	AssignedTo         string       `gorm:"column:assigned_to;type:text" json:"assigned_to,omitempty"`
	Symptoms           string       `gorm:"column:symptoms;type:text" json:"symptoms,omitempty"`
	CustomerImpact     string       `gorm:"column:customer_impact;type:text" json:"customer_impact,omitempty"`
	Workaround         string       `gorm:"column:workaround;type:text" json:"workaround,omitempty"`
	SourceType         string       `gorm:"column:source_type;type:text" json:"source_type,omitempty"`
	SourceID           string       `gorm:"column:source_id;type:text" json:"source_id,omitempty"`
	ResolutionRequired bool         `gorm:"column:resolution_required;not null" json:"resolution_required"`
	FollowUpRequired   bool         `gorm:"column:follow_up_required;not null;default:false" json:"follow_up_required"`
	FollowUpDate       *time.Time   `gorm:"column:follow_up_date" json:"follow_up_date,omitempty"`
	ResolvedDate       *time.Time   `gorm:"column:resolved_date" json:"resolved_date,omitempty"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Case) TableName() string { return "cases" }

// Solution is a knowledge-base entry describing how a problem was fixed.
type Solution struct {
	ID                 snowflake.ID  `gorm:"primaryKey" json:"id"`
	CompanyID          snowflake.ID  `gorm:"column:company_id;not null;index;uniqueIndex:ux_solutions_company_number" json:"company_id"`
	SolutionNumber     string        `gorm:"column:solution_number;type:text;not null;uniqueIndex:ux_solutions_company_number" json:"solution_number"`
	SolutionDate       time.Time     `gorm:"column:solution_date;not null" json:"solution_date"`
	Title              string        `gorm:"column:title;type:text;not null" json:"title"`
	Description        string        `gorm:"column:description;type:text" json:"description,omitempty"`
	SolutionType       string        `gorm:"column:solution_type;type:text;not null" json:"solution_type"`
	SolutionCategory   string        `gorm:"column:solution_category;type:text;not null;index" json:"solution_category"`
	ProblemStatement   string        `gorm:"column:problem_statement;type:text" json:"problem_statement,omitempty"`
	RootCause          string        `gorm:"column:root_cause;type:text" json:"root_cause,omitempty"`
	SolutionSteps      string        `gorm:"column:solution_steps;type:text" json:"solution_steps,omitempty"`
	CaseID             *snowflake.ID `gorm:"column:case_id;index" json:"case_id,omitempty"`
	CaseNumber         string        `gorm:"column:case_number;type:text" json:"case_number,omitempty"`
	CustomerName       string        `gorm:"column:customer_name;type:text" json:"customer_name,omitempty"`
	ProductName        string        `gorm:"column:product_name;type:text" json:"product_name,omitempty"`
	DifficultyLevel    string        `gorm:"column:difficulty_level;type:text" json:"difficulty_level,omitempty"`
	Status             string        `gorm:"column:status;type:text;not null;index" json:"status"`
	Effectiveness      string        `gorm:"column:effectiveness;type:text" json:"effectiveness,omitempty"`
	ImplementedBy      string        `gorm:"column:implemented_by;type:text" json:"implemented_by,omitempty"`
	KnowledgeBaseEntry bool          `gorm:"column:knowledge_base_entry;not null" json:"knowledge_base_entry"`
	PublicSolution     bool          `gorm:"column:public_solution;not null;default:false" json:"public_solution"`
	Reusable           bool          `gorm:"column:reusable;not null" json:"reusable"`
	Version            string        `gorm:"column:version;type:text;not null" json:"version"`
	Notes              string        `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Solution) TableName() string { return "solutions" }
