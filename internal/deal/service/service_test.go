package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	activityrepository "github.com/smallbiznis/crm/internal/activity/repository"
	activityservice "github.com/smallbiznis/crm/internal/activity/service"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/deal/domain"
	"github.com/smallbiznis/crm/internal/deal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc        *Service
	activities activitydomain.Service
	ctx        context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Deal{}, &activitydomain.Activity{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	activities := activityservice.New(activityservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: activityrepository.Provide(),
	})
	return fixture{
		svc: &Service{
			db:         db,
			log:        log,
			genID:      node,
			clock:      fake,
			repo:       repository.Provide(),
			activities: activities,
		},
		activities: activities,
		ctx:        companycontext.WithCompanyID(context.Background(), node.Generate().Int64()),
	}
}

func TestCreateDeal(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Create(f.ctx, domain.CreateDealRequest{
		DealName:    "Water plant retrofit",
		DealValue:   decimal.NewFromInt(200000),
		Probability: 40,
		Stage:       "negotiation",
		SelectedProducts: []domain.Product{
			{ProductName: "RO Membrane", Quantity: 4, PricePerUnit: decimal.NewFromInt(2500)},
			{ProductName: " "},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StageNegotiation, view.Stage)
	assert.Equal(t, "80000", view.WeightedValue.String())
	require.Len(t, view.SelectedProducts, 1)
	assert.Equal(t, "10000", view.SelectedProducts[0].TotalAmount.String())
	assert.False(t, view.IsClosed)
}

func TestCreateDealValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateDealRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(f.ctx, domain.CreateDealRequest{DealName: "x", Probability: 120})
	assert.ErrorIs(t, err, domain.ErrInvalidProbability)

	_, err = f.svc.Create(f.ctx, domain.CreateDealRequest{DealName: "x", Stage: "Closed-ish"})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestUpdateSchedulesFollowUp(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(f.ctx, domain.CreateDealRequest{
		DealName:    "Water plant retrofit",
		AccountName: "Acme Schools",
		DealValue:   decimal.NewFromInt(150000),
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(f.ctx, created.ID.String(), map[string]any{
		"stage":              "Proposal",
		"probability":        float64(85),
		"contact_person":     "Meera",
		"next_followup_date": "2025-06-10",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StageProposal, updated.Stage)
	assert.Equal(t, 85, updated.Probability)

	page, err := f.activities.List(f.ctx, activitydomain.ListActivityRequest{EntityType: "deal", EntityID: created.ID.String()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	activity := page.Items[0]
	assert.Equal(t, activitydomain.TypeDemo, activity.ActivityType)
	assert.Equal(t, "Follow up Proposal stage with Meera", activity.Title)
	assert.Equal(t, activitydomain.PriorityHigh, activity.Priority)
	assert.Equal(t, activitydomain.StatusPending, activity.Status)
	assert.Equal(t, "Acme Schools", activity.EntityName)
}

func TestUpdateWithoutContactSkipsFollowUp(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(f.ctx, domain.CreateDealRequest{DealName: "Chiller AMC"})
	require.NoError(t, err)

	_, err = f.svc.Update(f.ctx, created.ID.String(), map[string]any{"next_followup_date": "2025-06-10"})
	require.NoError(t, err)

	page, err := f.activities.List(f.ctx, activitydomain.ListActivityRequest{EntityType: "deal"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = f.svc.Update(f.ctx, created.ID.String(), map[string]any{"probability": float64(101)})
	assert.ErrorIs(t, err, domain.ErrInvalidProbability)
}

func TestListByStage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateDealRequest{DealName: "A", Stage: "Won"})
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctx, domain.CreateDealRequest{DealName: "B"})
	require.NoError(t, err)

	page, err := f.svc.List(f.ctx, domain.ListDealRequest{Stage: "won"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].IsClosed)
}
