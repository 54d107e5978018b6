package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/lead/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Lead]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListLeadFilter, page pagination.Pagination) ([]*domain.Lead, error) {
	opts := []option.QueryOption{
		option.WithSearch(filter.Search, "lead_name", "account_name", "contact_name", "email"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	}
	if filter.Status != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "lead_status", Operator: option.EQ, Value: filter.Status}))
	}
	if filter.SalesStage != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "sales_stage", Operator: option.EQ, Value: filter.SalesStage}))
	}
	if filter.AssignedTo != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "assigned_to", Operator: option.EQ, Value: filter.AssignedTo}))
	}
	if filter.LeadSource != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "lead_source", Operator: option.EQ, Value: filter.LeadSource}))
	}
	return r.Tenant.List(ctx, db, companyID, page, opts...)
}
