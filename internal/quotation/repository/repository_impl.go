package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/quotation/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Quotation]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*domain.Quotation, error) {
	return r.Tenant.FindOne(ctx, db, companyID, option.Equal("quote_number", number))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListQuotationFilter, page pagination.Pagination) ([]*domain.Quotation, error) {
	return r.Tenant.List(ctx, db, companyID, page,
		option.Equal("status", filter.Status),
		option.Equal("assigned_to", filter.AssignedTo),
		option.Equal("account_id", filter.AccountID),
		option.WithSearch(filter.Search, "quote_number", "customer_name", "subject", "reference_number"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	)
}
