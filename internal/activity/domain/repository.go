package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, activity *Activity) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Activity, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListActivityFilter, page pagination.Pagination) ([]*Activity, error)
	Update(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
	DeleteAll(ctx context.Context, db *gorm.DB, companyID snowflake.ID) (int64, error)
}
