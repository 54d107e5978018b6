package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	InsertCompany(ctx context.Context, db *gorm.DB, company *Company) error
	FindCompanyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	ListCompanies(ctx context.Context, db *gorm.DB, search string, page pagination.Pagination) ([]*Company, error)
	UpdateCompany(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) (int64, error)
	DeleteCompany(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	IncrementUsers(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	ListUsers(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]*User, error)
}
