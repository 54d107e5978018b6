package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, complaint *Complaint) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Complaint, error)
	FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*Complaint, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListComplaintFilter, page pagination.Pagination) ([]*Complaint, error)
	Update(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
