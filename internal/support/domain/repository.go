package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type CaseRepository interface {
	Insert(ctx context.Context, db *gorm.DB, c *Case) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Case, error)
	FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*Case, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListCaseFilter, page pagination.Pagination) ([]*Case, error)
	Update(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}

type SolutionRepository interface {
	Insert(ctx context.Context, db *gorm.DB, s *Solution) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Solution, error)
	FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*Solution, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListSolutionFilter, page pagination.Pagination) ([]*Solution, error)
	Update(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
