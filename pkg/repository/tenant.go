package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

// Tenant is a company-scoped store over model T. Every statement it issues
// filters on company_id; T must carry company_id and id columns.
type Tenant[T any] struct{}

func (Tenant[T]) Insert(ctx context.Context, db *gorm.DB, row *T) error {
	return db.WithContext(ctx).Create(row).Error
}

// FindByID returns nil, nil when no row matches.
func (Tenant[T]) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*T, error) {
	var rows []*T
	err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FindOne returns the newest row matching opts, or nil, nil.
func (Tenant[T]) FindOne(ctx context.Context, db *gorm.DB, companyID snowflake.ID, opts ...option.QueryOption) (*T, error) {
	var rows []*T
	stmt := db.WithContext(ctx).Model(new(T)).Where("company_id = ?", companyID)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	if err := stmt.Order("created_at desc, id desc").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// List applies opts, then keyset pagination, newest first.
func (Tenant[T]) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, page pagination.Pagination, opts ...option.QueryOption) ([]*T, error) {
	var rows []*T
	stmt := db.WithContext(ctx).Model(new(T)).Where("company_id = ?", companyID)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindAll returns every matching row without pagination. Used by report fetchers
// and exports.
func (Tenant[T]) FindAll(ctx context.Context, db *gorm.DB, companyID snowflake.ID, opts ...option.QueryOption) ([]*T, error) {
	var rows []*T
	stmt := db.WithContext(ctx).Model(new(T)).Where("company_id = ?", companyID)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	if err := stmt.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (Tenant[T]) Update(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, fields map[string]any) (int64, error) {
	res := db.WithContext(ctx).
		Model(new(T)).
		Where("company_id = ? AND id = ?", companyID, id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (Tenant[T]) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(new(T))
	return res.RowsAffected, res.Error
}

func (Tenant[T]) DeleteAll(ctx context.Context, db *gorm.DB, companyID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Delete(new(T))
	return res.RowsAffected, res.Error
}

func (Tenant[T]) Count(ctx context.Context, db *gorm.DB, companyID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(new(T)).Where("company_id = ?", companyID).Count(&count).Error
	return count, err
}
