package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/product/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

var sortable = map[string]bool{
	"product_name": true,
	"price":        true,
	"category":     true,
	"created_at":   true,
}

type repo struct {
	repository.Tenant[domain.Product]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, companyID snowflake.ID, code string) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, product_code, product_name, category, principal, description, hsn_code,
		   unit, price, tax_rate, status, metadata, created_at, updated_at
		 FROM products WHERE company_id = ? AND product_code = ?`,
		companyID, code,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

// List pages newest first unless an allowlisted sort column is requested, in
// which case results come back in a single sorted page.
func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListProductFilter, page pagination.Pagination) ([]*domain.Product, error) {
	opts := []option.QueryOption{
		option.WithSearch(filter.Search, "product_name", "product_code", "hsn_code"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	}
	if filter.Category != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "category", Operator: option.EQ, Value: filter.Category}))
	}
	if filter.Status != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "status", Operator: option.EQ, Value: filter.Status}))
	}
	if filter.SortBy == "" || !sortable[filter.SortBy] {
		return r.Tenant.List(ctx, db, companyID, page, opts...)
	}

	var items []*domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{}).Where("company_id = ?", companyID)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, sortable)).Apply(stmt)
	if err := stmt.Limit(pagination.MaxPageSize).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
