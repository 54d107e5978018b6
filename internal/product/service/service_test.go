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
	"github.com/smallbiznis/crm/internal/product/domain"
	"github.com/smallbiznis/crm/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	settings := config.DefaultSettings()
	settings.DefaultTaxRate = 12

	svc := &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		clock:    clock.NewFakeClock(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)),
		settings: config.NewStaticSettings(settings),
		repo:     repository.Provide(),
	}
	return svc, companycontext.WithCompanyID(context.Background(), node.Generate().Int64())
}

func strPtr(s string) *string { return &s }

func TestCreateProductUsesDefaultTaxRate(t *testing.T) {
	svc, ctx := newTestService(t)

	view, err := svc.Create(ctx, domain.CreateRequest{
		ProductName: "RO Membrane 80 GPD",
		Category:    "Spares",
		Price:       decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "12", view.TaxRate.String())
	assert.Equal(t, domain.StatusActive, view.Status)
	assert.Equal(t, "1120", view.PriceWithTax.String())

	rate := decimal.NewFromInt(5)
	view, err = svc.Create(ctx, domain.CreateRequest{ProductName: "Service kit", TaxRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, "5", view.TaxRate.String())
}

func TestCreateProductValidation(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateRequest{ProductName: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{ProductName: "x", Price: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	over := decimal.NewFromInt(101)
	_, err = svc.Create(ctx, domain.CreateRequest{ProductName: "x", TaxRate: &over})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)

	_, err = svc.Create(ctx, domain.CreateRequest{ProductName: "x", Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestProductCodeUniquePerCompany(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateRequest{ProductName: "Filter", ProductCode: strPtr("FLT-1")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{ProductName: "Filter 2", ProductCode: strPtr(" FLT-1 ")})
	assert.ErrorIs(t, err, domain.ErrCodeTaken)

	other := companycontext.WithCompanyID(context.Background(), 7)
	_, err = svc.Create(other, domain.CreateRequest{ProductName: "Filter", ProductCode: strPtr("FLT-1")})
	assert.NoError(t, err)
}

func TestUpdateProductCleansFields(t *testing.T) {
	svc, ctx := newTestService(t)

	view, err := svc.Create(ctx, domain.CreateRequest{
		ProductName: "Softener",
		Description: strPtr("Twin tank"),
		HSNCode:     "8421",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, view.ID.String(), map[string]any{
		"description": "  ",
		"hsn":         "842121",
		"price":       "2500.456",
		"status":      "INACTIVE",
		"company_id":  "1",
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "842121", updated.HSNCode)
	assert.Equal(t, "2500.46", updated.Price.String())
	assert.Equal(t, domain.StatusInactive, updated.Status)

	_, err = svc.Update(ctx, view.ID.String(), map[string]any{"tax_rate": float64(150)})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)
}

func TestListProductsSorted(t *testing.T) {
	svc, ctx := newTestService(t)
	for _, p := range []struct {
		name  string
		price int64
	}{{"B", 300}, {"A", 100}, {"C", 200}} {
		_, err := svc.Create(ctx, domain.CreateRequest{ProductName: p.name, Category: "Spares", Price: decimal.NewFromInt(p.price)})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, domain.ListRequest{SortBy: "price", OrderBy: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "A", page.Items[0].ProductName)
	assert.Equal(t, "B", page.Items[2].ProductName)
	assert.False(t, page.HasMore)

	page, err = svc.List(ctx, domain.ListRequest{Category: "Spares", Search: "c"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}
