package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, installation *Installation) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Installation, error)
	FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*Installation, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListInstallationFilter, page pagination.Pagination) ([]*Installation, error)
	Update(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
