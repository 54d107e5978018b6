package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *SalesOrder) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*SalesOrder, error)
	FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*SalesOrder, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListSalesOrderFilter, page pagination.Pagination) ([]*SalesOrder, error)
	Update(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
