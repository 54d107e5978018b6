package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/account/domain"
	"github.com/smallbiznis/crm/internal/account/repository"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Account{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: clock.NewFakeClock(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
		repo:  repository.Provide(),
	}
	return svc, companycontext.WithCompanyID(context.Background(), node.Generate().Int64())
}

func TestCreateAccountDefaults(t *testing.T) {
	svc, ctx := newTestService(t)

	view, err := svc.Create(ctx, domain.CreateAccountRequest{
		AccountName:   "Sunrise Hospital",
		Industry:      "Healthcare",
		AnnualRevenue: decimal.NewFromInt(5000000),
		GSTNumber:     "29abcde1234f1z5",
		Contacts:      []map[string]any{{"name": "Dr. Iyer"}, {"name": "Ravi"}},
		Addresses:     []map[string]any{{"city": "Mysuru", "state": "Karnataka"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", view.BillingCity)
	assert.Equal(t, "Karnataka", view.BillingState)
	assert.Equal(t, "29ABCDE1234F1Z5", view.GSTNumber)
	assert.Equal(t, domain.StatusActive, view.AccountStatus)
	assert.Equal(t, domain.StageProspect, view.LifecycleStage)
	assert.Equal(t, "Sunrise Hospital", view.DisplayName)
	assert.Equal(t, 2, view.ContactCount)
}

func TestCreateAccountDuplicateNameAndCity(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateAccountRequest{AccountName: "Acme", BillingCity: "Chennai"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateAccountRequest{AccountName: "acme", BillingCity: "chennai"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, `An account with name "acme" already exists in chennai`, err.Error())

	_, err = svc.Create(ctx, domain.CreateAccountRequest{AccountName: "Acme", BillingCity: "Madurai"})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateAccountRequest{AccountName: "NoCity"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateAccountRequest{AccountName: "NoCity"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "this city")
}

func TestUpdateAccountChecksDuplicates(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateAccountRequest{AccountName: "Acme", BillingCity: "Pune"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, domain.CreateAccountRequest{AccountName: "Beta", BillingCity: "Pune"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID.String(), map[string]any{"account_name": "Acme"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	updated, err := svc.Update(ctx, other.ID.String(), map[string]any{
		"industry":       "Retail",
		"annual_revenue": float64(120000),
		"website":        "",
	})
	require.NoError(t, err)
	assert.Equal(t, "Retail", updated.Industry)
	assert.Equal(t, "120000", updated.AnnualRevenue.String())

	_, err = svc.Update(ctx, other.ID.String(), map[string]any{"account_name": " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestListAccountsFilters(t *testing.T) {
	svc, ctx := newTestService(t)

	seed := []domain.CreateAccountRequest{
		{AccountName: "Blue Ocean Resorts", Industry: "Hospitality", BillingCity: "Goa"},
		{AccountName: "Green Farms", Industry: "Agriculture", BillingCity: "Nashik", Website: "bluefarm.in"},
		{AccountName: "City Mall", Industry: "Retail", BillingCity: "Goa"},
	}
	for _, req := range seed {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, domain.ListAccountRequest{Search: "BLUE"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, domain.ListAccountRequest{City: "Goa"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, domain.ListAccountRequest{Industry: "Retail"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "City Mall", page.Items[0].AccountName)

	other := companycontext.WithCompanyID(context.Background(), 42)
	page, err = svc.List(other, domain.ListAccountRequest{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestCreateAccountValidation(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateAccountRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateAccountRequest{AccountName: "x", AnnualRevenue: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
