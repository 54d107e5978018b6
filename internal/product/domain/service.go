package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (View, error)
	List(ctx context.Context, req ListRequest) (pagination.Page[View], error)
	Get(ctx context.Context, id string) (View, error)
	Update(ctx context.Context, id string, fields map[string]any) (View, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	PageToken   string
	PageSize    int32
	Search      string
	Category    string
	Status      string
	SortBy      string
	OrderBy     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListProductFilter struct {
	Search      string
	Category    string
	Status      string
	SortBy      string
	OrderBy     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CreateRequest leaves TaxRate nil to take the configured default rate.
type CreateRequest struct {
	ProductCode *string          `json:"product_code"`
	ProductName string           `json:"product_name"`
	Category    string           `json:"category"`
	Principal   string           `json:"principal"`
	Description *string          `json:"description"`
	HSNCode     string           `json:"hsn_code"`
	Unit        string           `json:"unit"`
	Price       decimal.Decimal  `json:"price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	Status      string           `json:"status"`
	Metadata    map[string]any   `json:"metadata"`
}

type View struct {
	Product
	PriceWithTax      decimal.Decimal `json:"price_with_tax"`
	DaysSinceCreation int             `json:"days_since_creation"`
}

func ToView(p *Product, now time.Time) View {
	view := View{
		Product:           *p,
		PriceWithTax:      p.Price.Add(p.Price.Mul(p.TaxRate).Div(decimal.NewFromInt(100))).Round(2),
		DaysSinceCreation: clock.DaysBetween(p.CreatedAt, now),
	}
	if view.Status == "" {
		view.Status = StatusActive
	}
	return view
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_product_name")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrInvalidTaxRate = errors.New("invalid_tax_rate")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrCodeTaken      = errors.New("product_code_taken")
	ErrNotFound       = errors.New("not_found")
)
