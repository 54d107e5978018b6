package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/invoice/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	repository.Tenant[domain.Invoice]
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*domain.Invoice, error) {
	return r.Tenant.FindOne(ctx, db, companyID, option.Equal("invoice_number", number))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	return r.Tenant.List(ctx, db, companyID, page,
		option.Equal("status", filter.Status),
		option.Equal("quotation_id", filter.QuotationID),
		option.Equal("account_id", filter.AccountID),
		option.WithSearch(filter.Search, "invoice_number", "customer_name"),
		option.WithDateRange("created_at", filter.CreatedFrom, filter.CreatedTo),
	)
}
