package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/amc/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Contract]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*domain.Contract, error) {
	return r.Tenant.FindOne(ctx, db, companyID, option.Equal("contract_number", number))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListContractFilter, page pagination.Pagination) ([]*domain.Contract, error) {
	return r.Tenant.List(ctx, db, companyID, page,
		option.Equal("status", filter.Status),
		option.WithSearch(filter.Search, "contract_number", "customer_name", "city"),
		option.WithDateRange("end_date", filter.EndAfter, filter.EndBefore),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	)
}
