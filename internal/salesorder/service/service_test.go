package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/salesorder/domain"
	"github.com/smallbiznis/crm/internal/salesorder/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, context.Context, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.SalesOrder{}, &numbering.DocumentSequence{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	svc := &Service{
		db:    db,
		log:   log,
		genID: node,
		clock: clock.NewFakeClock(time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)),
		repo:  repository.Provide(),
		numbers: numbering.New(numbering.Params{
			Log:      log,
			GenID:    node,
			Settings: config.NewStaticSettings(config.DefaultSettings()),
		}),
	}
	ctx := companycontext.WithCompanyID(context.Background(), node.Generate().Int64())
	return svc, ctx, node
}

func TestCreateAssignsOrderNumber(t *testing.T) {
	svc, ctx, node := newTestService(t)
	quotationID := node.Generate()

	first, err := svc.Create(ctx, domain.CreateSalesOrderRequest{
		AccountName: "Acme",
		QuotationID: &quotationID,
		TotalAmount: decimal.RequireFromString("2124"),
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, domain.CreateSalesOrderRequest{AccountName: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, "SO-2025-0001", first.OrderNumber)
	assert.Equal(t, "SO-2025-0002", second.OrderNumber)
	assert.Equal(t, domain.StatusPending, first.Status)
	assert.Equal(t, quotationID, *first.QuotationID)
	assert.True(t, first.TotalAmount.Equal(decimal.NewFromInt(2124)))
}

func TestCreateRejectsTakenNumber(t *testing.T) {
	svc, ctx, _ := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateSalesOrderRequest{OrderNumber: "SO-X-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateSalesOrderRequest{OrderNumber: "SO-X-1"})
	assert.ErrorIs(t, err, domain.ErrNumberTaken)
}

func TestCreateRejectsNegativeTotal(t *testing.T) {
	svc, ctx, _ := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateSalesOrderRequest{TotalAmount: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListFiltersByQuotation(t *testing.T) {
	svc, ctx, node := newTestService(t)
	quotationID := node.Generate()

	_, err := svc.Create(ctx, domain.CreateSalesOrderRequest{QuotationID: &quotationID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateSalesOrderRequest{})
	require.NoError(t, err)

	page, err := svc.List(ctx, domain.ListSalesOrderRequest{
		PageSize:    10,
		QuotationID: quotationID.String(),
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	_, err = svc.List(ctx, domain.ListSalesOrderRequest{QuotationID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, ctx, _ := newTestService(t)
	created, err := svc.Create(ctx, domain.CreateSalesOrderRequest{})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.String(), map[string]any{
		"status":        "Delivered",
		"total_amount":  "4248",
		"delivery_date": "2025-06-20",
		"order_number":  "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(4248)))
	require.NotNil(t, updated.DeliveryDate)
	assert.Equal(t, created.OrderNumber, updated.OrderNumber)

	_, err = svc.Update(ctx, created.ID.String(), map[string]any{"total_amount": -5.0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	_, err = svc.Get(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequiresCompany(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateSalesOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}
