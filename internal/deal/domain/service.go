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

type CreateDealRequest struct {
	DealName          string          `json:"deal_name"`
	AccountID         *snowflake.ID   `json:"account_id"`
	AccountName       string          `json:"account_name"`
	LeadID            *snowflake.ID   `json:"lead_id"`
	ContactPerson     string          `json:"contact_person"`
	Phone             string          `json:"phone"`
	Email             string          `json:"email"`
	Product           string          `json:"product"`
	DealValue         decimal.Decimal `json:"deal_value"`
	Stage             string          `json:"stage"`
	Probability       int             `json:"probability"`
	ExpectedCloseDate *timeutil.Date  `json:"expected_close_date"`
	NextFollowupDate  *timeutil.Date  `json:"next_followup_date"`
	SelectedProducts  []Product       `json:"selected_products"`
	Source            string          `json:"source"`
	AssignedTo        string          `json:"assigned_to"`
	Notes             string          `json:"notes"`
}

type ListDealRequest struct {
	PageToken   string
	PageSize    int32
	Stage       string
	AccountID   string
	AssignedTo  string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListDealFilter struct {
	Stage       string
	AccountID   *snowflake.ID
	AssignedTo  string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type DealView struct {
	Deal
	WeightedValue     decimal.Decimal `json:"weighted_value"`
	IsClosed          bool            `json:"is_closed"`
	DaysSinceCreation int             `json:"days_since_creation"`
}

// ToView adds the probability-weighted value of the deal.
func ToView(d *Deal, now time.Time) DealView {
	view := DealView{Deal: *d, DaysSinceCreation: clock.DaysBetween(d.CreatedAt, now)}
	if view.Stage == "" {
		view.Stage = DefaultStage
	}
	if view.SelectedProducts == nil {
		view.SelectedProducts = []Product{}
	}
	view.WeightedValue = d.DealValue.Mul(decimal.NewFromInt(int64(d.Probability))).Div(decimal.NewFromInt(100)).Round(2)
	view.IsClosed = view.Stage == StageWon || view.Stage == StageLost
	return view
}

type Service interface {
	Create(ctx context.Context, req CreateDealRequest) (DealView, error)
	List(ctx context.Context, req ListDealRequest) (pagination.Page[DealView], error)
	Get(ctx context.Context, id string) (DealView, error)
	Update(ctx context.Context, id string, fields map[string]any) (DealView, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_deal_name")
	ErrInvalidStage       = errors.New("invalid_stage")
	ErrInvalidValue       = errors.New("invalid_deal_value")
	ErrInvalidProbability = errors.New("invalid_probability")
	ErrInvalidDate        = errors.New("invalid_date")
	ErrNotFound           = errors.New("not_found")
)
