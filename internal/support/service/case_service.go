package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/support/domain"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"github.com/smallbiznis/crm/pkg/enum"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var caseColumns = patch.Allow(
	"case_date", "title", "description", "solution", "case_category", "issue_type", "severity",
	"priority", "status", "customer_name", "contact_person", "contact_phone", "contact_email",
	"product_name", "serial_number", "model_number", "assigned_to", "symptoms", "customer_impact",
	"workaround", "source_type", "source_id", "resolution_required", "follow_up_required",
	"follow_up_date", "resolved_date",
)

type CaseParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.CaseRepository
	Numbers numbering.Generator
}

type CaseService struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.CaseRepository
	numbers numbering.Generator
}

func NewCaseService(p CaseParams) domain.CaseService {
	return &CaseService{
		db:      p.DB,
		log:     p.Log.Named("support.case.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		numbers: p.Numbers,
	}
}

func (s *CaseService) Create(ctx context.Context, req domain.CreateCaseRequest) (domain.CaseView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.CaseView{}, domain.ErrInvalidCompany
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.CaseView{}, domain.ErrInvalidTitle
	}
	status := domain.CaseStatusOpen
	if strings.TrimSpace(req.Status) != "" {
		canonical, ok := enum.Canonical(req.Status, domain.CaseStatuses...)
		if !ok {
			return domain.CaseView{}, domain.ErrInvalidStatus
		}
		status = canonical
	}

	now := s.clock.Now()
	caseDate := now
	if d := req.CaseDate.Ptr(); d != nil {
		caseDate = *d
	}
	var resolved *time.Time
	if status == domain.CaseStatusResolved || status == domain.CaseStatusClosed {
		resolved = &now
	}
	resolutionRequired := true
	if req.ResolutionRequired != nil {
		resolutionRequired = *req.ResolutionRequired
	}

	record := domain.Case{
		ID:                 s.genID.Generate(),
		CompanyID:          companyID,
		CaseDate:           caseDate,
		Title:              title,
		Description:        strings.TrimSpace(req.Description),
		Solution:           strings.TrimSpace(req.Solution),
		CaseCategory:       defaultString(req.CaseCategory, domain.DefaultCaseCategory),
		IssueType:          strings.TrimSpace(req.IssueType),
		Severity:           defaultString(req.Severity, domain.DefaultSeverity),
		Priority:           defaultString(req.Priority, domain.DefaultPriority),
		Status:             status,
		CustomerName:       strings.TrimSpace(req.CustomerName),
		ContactPerson:      strings.TrimSpace(req.ContactPerson),
		ContactPhone:       strings.TrimSpace(req.ContactPhone),
		ContactEmail:       strings.TrimSpace(req.ContactEmail),
		ProductName:        strings.TrimSpace(req.ProductName),
		SerialNumber:       strings.TrimSpace(req.SerialNumber),
		ModelNumber:        strings.TrimSpace(req.ModelNumber),
		AssignedTo:         strings.TrimSpace(req.AssignedTo),
		Symptoms:           strings.TrimSpace(req.Symptoms),
		CustomerImpact:     strings.TrimSpace(req.CustomerImpact),
		Workaround:         strings.TrimSpace(req.Workaround),
		SourceType:         strings.TrimSpace(req.SourceType),
		SourceID:           strings.TrimSpace(req.SourceID),
		ResolutionRequired: resolutionRequired,
		FollowUpRequired:   req.FollowUpRequired,
		FollowUpDate:       req.FollowUpDate.Ptr(),
		ResolvedDate:       resolved,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Assign(ctx, tx, s.numbers, companyID, numbering.DocCase, req.CaseNumber, caseDate, s.numberTaken(companyID))
		if err != nil {
			return err
		}
		record.CaseNumber = number
		return s.repo.Insert(ctx, tx, &record)
	})
	if errors.Is(err, numbering.ErrNumberTaken) {
		return domain.CaseView{}, domain.ErrNumberTaken
	}
	if err != nil {
		return domain.CaseView{}, err
	}
	return domain.ToCaseView(&record, now), nil
}

func (s *CaseService) List(ctx context.Context, req domain.ListCaseRequest) (pagination.Page[domain.CaseView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.CaseView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListCaseFilter{
		CaseCategory: strings.TrimSpace(req.CaseCategory),
		AssignedTo:   strings.TrimSpace(req.AssignedTo),
		Search:       strings.TrimSpace(req.Search),
		CreatedFrom:  req.CreatedFrom,
		CreatedTo:    req.CreatedTo,
	}
	if strings.TrimSpace(req.Status) != "" {
		status, ok := enum.Canonical(req.Status, domain.CaseStatuses...)
		if !ok {
			return pagination.Page[domain.CaseView]{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.CaseView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(c *domain.Case) (string, time.Time) { return c.ID.String(), c.CreatedAt },
		func(c *domain.Case) domain.CaseView { return domain.ToCaseView(c, now) },
	), nil
}

func (s *CaseService) Get(ctx context.Context, id string) (domain.CaseView, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return domain.CaseView{}, err
	}
	return domain.ToCaseView(record, s.clock.Now()), nil
}

// Update stamps resolved_date the first time a case is resolved or closed.
func (s *CaseService) Update(ctx context.Context, id string, fields map[string]any) (domain.CaseView, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return domain.CaseView{}, err
	}

	updates := caseColumns.Apply(fields)
	if v, ok := updates["title"]; ok && v == nil {
		return domain.CaseView{}, domain.ErrInvalidTitle
	}
	if v, ok := updates["case_date"]; ok && v == nil {
		delete(updates, "case_date")
	}
	if v, ok := updates["case_category"]; ok && v == nil {
		updates["case_category"] = domain.DefaultCaseCategory
	}
	if raw, ok := updates["status"]; ok {
		if raw == nil {
			updates["status"] = domain.CaseStatusOpen
		} else {
			str, _ := raw.(string)
			status, valid := enum.Canonical(str, domain.CaseStatuses...)
			if !valid {
				return domain.CaseView{}, domain.ErrInvalidStatus
			}
			updates["status"] = status
		}
	}
	if err := patch.Times(updates, "case_date", "follow_up_date", "resolved_date"); err != nil {
		return domain.CaseView{}, domain.ErrInvalidDate
	}
	if err := flags(updates, "resolution_required", "follow_up_required"); err != nil {
		return domain.CaseView{}, err
	}

	if status, ok := updates["status"].(string); ok && record.ResolvedDate == nil &&
		(status == domain.CaseStatusResolved || status == domain.CaseStatusClosed) {
		if _, set := updates["resolved_date"]; !set {
			updates["resolved_date"] = s.clock.Now()
		}
	}
	if len(updates) == 0 {
		return domain.ToCaseView(record, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, record.CompanyID, record.ID, updates); err != nil {
		return domain.CaseView{}, err
	}
	return s.Get(ctx, id)
}

func (s *CaseService) Delete(ctx context.Context, id string) error {
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, record.CompanyID, record.ID)
	return err
}

func (s *CaseService) numberTaken(companyID snowflake.ID) numbering.TakenFunc {
	return func(ctx context.Context, db *gorm.DB, number string) (bool, error) {
		existing, err := s.repo.FindByNumber(ctx, db, companyID, number)
		return existing != nil, err
	}
}

func (s *CaseService) find(ctx context.Context, id string) (*domain.Case, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	caseID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, s.db, companyID, caseID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// flags requires boolean JSON values for the named columns; null clears to false.
func flags(updates map[string]any, columns ...string) error {
	for _, column := range columns {
		raw, ok := updates[column]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case nil:
			updates[column] = false
		case bool:
			updates[column] = v
		default:
			return domain.ErrInvalidFlag
		}
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
