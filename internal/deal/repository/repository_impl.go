package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/deal/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Deal]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListDealFilter, page pagination.Pagination) ([]*domain.Deal, error) {
	return r.Tenant.List(ctx, db, companyID, page,
		option.Equal("stage", filter.Stage),
		option.Equal("account_id", filter.AccountID),
		option.Equal("assigned_to", filter.AssignedTo),
		option.WithSearch(filter.Search, "deal_name", "account_name", "contact_person", "product"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	)
}
