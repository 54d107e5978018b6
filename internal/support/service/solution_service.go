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

var solutionColumns = patch.Allow(
	"solution_date", "title", "description", "solution_type", "solution_category",
	"problem_statement", "root_cause", "solution_steps", "customer_name", "product_name",
	"difficulty_level", "status", "effectiveness", "implemented_by", "knowledge_base_entry",
	"public_solution", "reusable", "version", "notes",
)

type SolutionParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.SolutionRepository
	Cases   domain.CaseRepository
	Numbers numbering.Generator
}

type SolutionService struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.SolutionRepository
	cases   domain.CaseRepository
	numbers numbering.Generator
}

func NewSolutionService(p SolutionParams) domain.SolutionService {
	return &SolutionService{
		db:      p.DB,
		log:     p.Log.Named("support.solution.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		cases:   p.Cases,
		numbers: p.Numbers,
	}
}

// Create records a solution. A linked case fills in the case number and
// any blank customer or product names.
func (s *SolutionService) Create(ctx context.Context, req domain.CreateSolutionRequest) (domain.SolutionView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.SolutionView{}, domain.ErrInvalidCompany
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.SolutionView{}, domain.ErrInvalidTitle
	}
	status := domain.SolutionStatusDraft
	if strings.TrimSpace(req.Status) != "" {
		canonical, ok := enum.Canonical(req.Status, domain.SolutionStatuses...)
		if !ok {
			return domain.SolutionView{}, domain.ErrInvalidStatus
		}
		status = canonical
	}

	now := s.clock.Now()
	solutionDate := now
	if d := req.SolutionDate.Ptr(); d != nil {
		solutionDate = *d
	}

	solution := domain.Solution{
		ID:                 s.genID.Generate(),
		CompanyID:          companyID,
		SolutionDate:       solutionDate,
		Title:              title,
		Description:        strings.TrimSpace(req.Description),
		SolutionType:       defaultString(req.SolutionType, domain.DefaultSolutionType),
		SolutionCategory:   defaultString(req.SolutionCategory, domain.DefaultSolutionCategory),
		ProblemStatement:   strings.TrimSpace(req.ProblemStatement),
		RootCause:          strings.TrimSpace(req.RootCause),
		SolutionSteps:      strings.TrimSpace(req.SolutionSteps),
		CustomerName:       strings.TrimSpace(req.CustomerName),
		ProductName:        strings.TrimSpace(req.ProductName),
		DifficultyLevel:    strings.TrimSpace(req.DifficultyLevel),
		Status:             status,
		Effectiveness:      strings.TrimSpace(req.Effectiveness),
		ImplementedBy:      strings.TrimSpace(req.ImplementedBy),
		KnowledgeBaseEntry: boolOr(req.KnowledgeBaseEntry, true),
		PublicSolution:     req.PublicSolution,
		Reusable:           boolOr(req.Reusable, true),
		Version:            defaultString(req.Version, domain.DefaultVersion),
		Notes:              strings.TrimSpace(req.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if req.CaseID != nil && *req.CaseID != 0 {
		linked, err := s.cases.FindByID(ctx, s.db, companyID, *req.CaseID)
		if err != nil {
			return domain.SolutionView{}, err
		}
		if linked == nil {
			return domain.SolutionView{}, domain.ErrCaseMissing
		}
		solution.CaseID = &linked.ID
		solution.CaseNumber = linked.CaseNumber
		if solution.CustomerName == "" {
			solution.CustomerName = linked.CustomerName
		}
		if solution.ProductName == "" {
			solution.ProductName = linked.ProductName
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Assign(ctx, tx, s.numbers, companyID, numbering.DocSolution, req.SolutionNumber, solutionDate, s.numberTaken(companyID))
		if err != nil {
			return err
		}
		solution.SolutionNumber = number
		return s.repo.Insert(ctx, tx, &solution)
	})
	if errors.Is(err, numbering.ErrNumberTaken) {
		return domain.SolutionView{}, domain.ErrNumberTaken
	}
	if err != nil {
		return domain.SolutionView{}, err
	}
	return domain.ToSolutionView(&solution, now), nil
}

func (s *SolutionService) List(ctx context.Context, req domain.ListSolutionRequest) (pagination.Page[domain.SolutionView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.SolutionView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListSolutionFilter{
		SolutionCategory: strings.TrimSpace(req.SolutionCategory),
		Reusable:         req.Reusable,
		Search:           strings.TrimSpace(req.Search),
	}
	if strings.TrimSpace(req.Status) != "" {
		status, ok := enum.Canonical(req.Status, domain.SolutionStatuses...)
		if !ok {
			return pagination.Page[domain.SolutionView]{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.SolutionView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(sol *domain.Solution) (string, time.Time) { return sol.ID.String(), sol.CreatedAt },
		func(sol *domain.Solution) domain.SolutionView { return domain.ToSolutionView(sol, now) },
	), nil
}

func (s *SolutionService) Get(ctx context.Context, id string) (domain.SolutionView, error) {
	solution, err := s.find(ctx, id)
	if err != nil {
		return domain.SolutionView{}, err
	}
	return domain.ToSolutionView(solution, s.clock.Now()), nil
}

func (s *SolutionService) Update(ctx context.Context, id string, fields map[string]any) (domain.SolutionView, error) {
	solution, err := s.find(ctx, id)
	if err != nil {
		return domain.SolutionView{}, err
	}

	updates := solutionColumns.Apply(fields)
	if v, ok := updates["title"]; ok && v == nil {
		return domain.SolutionView{}, domain.ErrInvalidTitle
	}
	if v, ok := updates["solution_date"]; ok && v == nil {
		delete(updates, "solution_date")
	}
	defaults := map[string]string{
		"solution_type":     domain.DefaultSolutionType,
		"solution_category": domain.DefaultSolutionCategory,
		"version":           domain.DefaultVersion,
		"status":            domain.SolutionStatusDraft,
	}
	for column, fallback := range defaults {
		if v, ok := updates[column]; ok && v == nil {
			updates[column] = fallback
		}
	}
	if raw, ok := updates["status"]; ok {
		str, _ := raw.(string)
		status, valid := enum.Canonical(str, domain.SolutionStatuses...)
		if !valid {
			return domain.SolutionView{}, domain.ErrInvalidStatus
		}
		updates["status"] = status
	}
	if err := patch.Times(updates, "solution_date"); err != nil {
		return domain.SolutionView{}, domain.ErrInvalidDate
	}
	if err := flags(updates, "knowledge_base_entry", "public_solution", "reusable"); err != nil {
		return domain.SolutionView{}, err
	}
	if len(updates) == 0 {
		return domain.ToSolutionView(solution, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, solution.CompanyID, solution.ID, updates); err != nil {
		return domain.SolutionView{}, err
	}
	return s.Get(ctx, id)
}

func (s *SolutionService) Delete(ctx context.Context, id string) error {
	solution, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, solution.CompanyID, solution.ID)
	return err
}

func (s *SolutionService) numberTaken(companyID snowflake.ID) numbering.TakenFunc {
	return func(ctx context.Context, db *gorm.DB, number string) (bool, error) {
		existing, err := s.repo.FindByNumber(ctx, db, companyID, number)
		return existing != nil, err
	}
}

func (s *SolutionService) find(ctx context.Context, id string) (*domain.Solution, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	solutionID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	solution, err := s.repo.FindByID(ctx, s.db, companyID, solutionID)
	if err != nil {
		return nil, err
	}
	if solution == nil {
		return nil, domain.ErrNotFound
	}
	return solution, nil
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
