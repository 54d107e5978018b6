package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/activity/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Activity]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListActivityFilter, page pagination.Pagination) ([]*domain.Activity, error) {
	return r.Tenant.List(ctx, db, companyID, page,
		eq("entity_type", filter.EntityType),
		eq("entity_id", filter.EntityID),
		eq("status", filter.Status),
		eq("activity_type", filter.ActivityType),
		eq("assigned_to", filter.AssignedTo),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	)
}

func eq(field, value string) option.QueryOption {
	if value == "" {
		return option.QueryOptionFunc(func(db *gorm.DB) *gorm.DB { return db })
	}
	return option.ApplyOperator(option.Condition{Field: field, Operator: option.EQ, Value: value})
}
