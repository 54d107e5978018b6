package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/support/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type caseRepo struct {
	repository.Tenant[domain.Case]
}

func ProvideCases() domain.CaseRepository {
	return &caseRepo{}
}

func (r *caseRepo) FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*domain.Case, error) {
	return r.Tenant.FindOne(ctx, db, companyID, option.Equal("case_number", number))
}

func (r *caseRepo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListCaseFilter, page pagination.Pagination) ([]*domain.Case, error) {
	return r.Tenant.List(ctx, db, companyID, page,
		option.Equal("status", filter.Status),
		option.Equal("case_category", filter.CaseCategory),
		option.Equal("assigned_to", filter.AssignedTo),
		option.WithSearch(filter.Search, "case_number", "title", "customer_name", "product_name"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	)
}

type solutionRepo struct {
	repository.Tenant[domain.Solution]
}

func ProvideSolutions() domain.SolutionRepository {
	return &solutionRepo{}
}

func (r *solutionRepo) FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*domain.Solution, error) {
	return r.Tenant.FindOne(ctx, db, companyID, option.Equal("solution_number", number))
}

func (r *solutionRepo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListSolutionFilter, page pagination.Pagination) ([]*domain.Solution, error) {
	opts := []option.QueryOption{
		option.Equal("status", filter.Status),
		option.Equal("solution_category", filter.SolutionCategory),
		option.WithSearch(filter.Search, "solution_number", "title", "problem_statement", "product_name"),
	}
	if filter.Reusable != nil {
		opts = append(opts, option.Equal("reusable", *filter.Reusable))
	}
	return r.Tenant.List(ctx, db, companyID, page, opts...)
}
