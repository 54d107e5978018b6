package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/contact/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Contact]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListContactFilter, page pagination.Pagination) ([]*domain.Contact, error) {
	opts := []option.QueryOption{
		option.WithSearch(filter.Search, "first_name", "last_name", "email_primary", "phone_mobile", "company_name"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	}
	if filter.AccountID != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "account_id", Operator: option.EQ, Value: *filter.AccountID}))
	}
	if filter.LifecycleStage != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "lifecycle_stage", Operator: option.EQ, Value: filter.LifecycleStage}))
	}
	if filter.Status != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "current_contact_status", Operator: option.EQ, Value: filter.Status}))
	}
	return r.Tenant.List(ctx, db, companyID, page, opts...)
}
