package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/timeutil"
)

type CreateSalesOrderRequest struct {
	OrderNumber  string          `json:"order_number"`
	OrderDate    *timeutil.Date  `json:"order_date"`
	AccountID    *snowflake.ID   `json:"account_id"`
	AccountName  string          `json:"account_name"`
	QuotationID  *snowflake.ID   `json:"quotation_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	DeliveryDate *timeutil.Date  `json:"delivery_date"`
	AssignedTo   string          `json:"assigned_to"`
	Notes        string          `json:"notes"`
}

type ListSalesOrderRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	AccountID   string
	QuotationID string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListSalesOrderFilter struct {
	Status      string
	AccountID   *snowflake.ID
	QuotationID *snowflake.ID
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type SalesOrderView struct {
	SalesOrder
	DaysSinceCreation int `json:"days_since_creation"`
}

func ToView(o *SalesOrder, now time.Time) SalesOrderView {
	view := SalesOrderView{SalesOrder: *o, DaysSinceCreation: clock.DaysBetween(o.CreatedAt, now)}
	if view.Status == "" {
		view.Status = StatusPending
	}
	return view
}

type Service interface {
	Create(ctx context.Context, req CreateSalesOrderRequest) (SalesOrderView, error)
	List(ctx context.Context, req ListSalesOrderRequest) (pagination.Page[SalesOrderView], error)
	Get(ctx context.Context, id string) (SalesOrderView, error)
	Update(ctx context.Context, id string, fields map[string]any) (SalesOrderView, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidAmount  = errors.New("invalid_total_amount")
	ErrInvalidDate    = errors.New("invalid_date")
	ErrNumberTaken    = errors.New("order_number_taken")
	ErrNotFound       = errors.New("not_found")
)
