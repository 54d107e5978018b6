package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Account, error)
	// FindByNameAndCity matches case-insensitively; an empty city matches
	// accounts without a billing city.
	FindByNameAndCity(ctx context.Context, db *gorm.DB, companyID snowflake.ID, name, city string) (*Account, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListAccountFilter, page pagination.Pagination) ([]*Account, error)
	Update(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
