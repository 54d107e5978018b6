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
	"github.com/smallbiznis/crm/internal/installation/domain"
	"github.com/smallbiznis/crm/internal/installation/repository"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 9, 1, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Installation{}, &numbering.DocumentSequence{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	svc := &Service{
		db:    db,
		log:   log,
		genID: node,
		clock: clock.NewFakeClock(testNow),
		repo:  repository.Provide(),
		numbers: numbering.New(numbering.Params{
			Log:      log,
			GenID:    node,
			Settings: config.NewStaticSettings(config.DefaultSettings()),
		}),
	}
	return svc, companycontext.WithCompanyID(context.Background(), node.Generate().Int64())
}

func TestCreateDefaults(t *testing.T) {
	svc, ctx := newTestService(t)

	view, err := svc.Create(ctx, domain.CreateInstallationRequest{
		CustomerName:      "Globex",
		InstallationCost:  decimal.NewFromInt(1500),
		AdditionalCharges: decimal.RequireFromString("250.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "INS-2025-0001", view.InstallationNumber)
	assert.Equal(t, domain.StatusPending, view.Status)
	assert.Equal(t, domain.DefaultPriority, view.Priority)
	assert.Equal(t, 1, view.Quantity)
	assert.Equal(t, "1750.5", view.TotalCost.String())
}

func TestCreateScheduledAndCompleted(t *testing.T) {
	svc, ctx := newTestService(t)

	scheduled, err := svc.Create(ctx, domain.CreateInstallationRequest{
		CustomerName:  "Globex",
		ScheduledDate: timeutil.DateOf(testNow.AddDate(0, 0, 3)),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, scheduled.Status)

	completed, err := svc.Create(ctx, domain.CreateInstallationRequest{
		CustomerName: "Globex",
		Status:       "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedDate)
	assert.True(t, completed.CompletedDate.Equal(testNow))

	_, err = svc.Create(ctx, domain.CreateInstallationRequest{CustomerName: "Globex", Status: "done"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.Create(ctx, domain.CreateInstallationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

func TestUpdateCompletesAndFlagsDelay(t *testing.T) {
	svc, ctx := newTestService(t)
	created, err := svc.Create(ctx, domain.CreateInstallationRequest{
		CustomerName:     "Globex",
		ScheduledDate:    timeutil.DateOf(testNow.AddDate(0, 0, -2)),
		InstallationCost: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.String(), map[string]any{
		"status":             "in_progress",
		"additional_charges": 200.0,
		"quantity":           2.0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "1200", updated.TotalCost.String())
	assert.Equal(t, 2, updated.Quantity)
	assert.Nil(t, updated.CompletedDate)

	updated, err = svc.Update(ctx, created.ID.String(), map[string]any{"status": "Completed"})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedDate)
	assert.True(t, updated.IsDelayed)

	_, err = svc.Update(ctx, created.ID.String(), map[string]any{"quantity": 0.5})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.Update(ctx, created.ID.String(), map[string]any{"scheduled_date": "soon"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestListByStatus(t *testing.T) {
	svc, ctx := newTestService(t)
	for _, status := range []string{"Completed", "Pending", "Completed"} {
		_, err := svc.Create(ctx, domain.CreateInstallationRequest{CustomerName: "Globex", Status: status})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, domain.ListInstallationRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	_, err = svc.List(ctx, domain.ListInstallationRequest{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
