package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/installation/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Installation]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*domain.Installation, error) {
	return r.Tenant.FindOne(ctx, db, companyID, option.Equal("installation_number", number))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListInstallationFilter, page pagination.Pagination) ([]*domain.Installation, error) {
	return r.Tenant.List(ctx, db, companyID, page,
		option.Equal("status", filter.Status),
		option.Equal("assigned_technician", filter.AssignedTechnician),
		option.WithSearch(filter.Search, "installation_number", "customer_name", "product_name", "city"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	)
}
