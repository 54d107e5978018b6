package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/account/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Account]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByNameAndCity(ctx context.Context, db *gorm.DB, companyID snowflake.ID, name, city string) (*domain.Account, error) {
	var rows []*domain.Account
	stmt := db.WithContext(ctx).
		Where("company_id = ? AND LOWER(account_name) = ?", companyID, strings.ToLower(name))
	if city == "" {
		stmt = stmt.Where("(billing_city IS NULL OR billing_city = '')")
	} else {
		stmt = stmt.Where("LOWER(billing_city) = ?", strings.ToLower(city))
	}
	if err := stmt.Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListAccountFilter, page pagination.Pagination) ([]*domain.Account, error) {
	opts := []option.QueryOption{
		option.WithSearch(filter.Search, "account_name", "billing_city", "website"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	}
	if filter.Industry != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "industry", Operator: option.EQ, Value: filter.Industry}))
	}
	if filter.City != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "billing_city", Operator: option.EQ, Value: filter.City}))
	}
	return r.Tenant.List(ctx, db, companyID, page, opts...)
}
