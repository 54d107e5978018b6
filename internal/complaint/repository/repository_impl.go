package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/complaint/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Complaint]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*domain.Complaint, error) {
	return r.Tenant.FindOne(ctx, db, companyID, option.Equal("complaint_number", number))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListComplaintFilter, page pagination.Pagination) ([]*domain.Complaint, error) {
	return r.Tenant.List(ctx, db, companyID, page,
		option.Equal("status", filter.Status),
		option.Equal("priority", filter.Priority),
		option.Equal("complaint_type", filter.ComplaintType),
		option.Equal("assigned_to", filter.AssignedTo),
		option.WithSearch(filter.Search, "complaint_number", "account_name", "subject", "product_name", "serial_number"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	)
}
