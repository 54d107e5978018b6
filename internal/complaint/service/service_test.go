package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/complaint/domain"
	"github.com/smallbiznis/crm/internal/complaint/repository"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, context.Context, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Complaint{}, &numbering.DocumentSequence{}))

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
	return svc, companycontext.WithCompanyID(context.Background(), node.Generate().Int64()), node
}

func TestCreateMapsIntakeForm(t *testing.T) {
	svc, ctx, _ := newTestService(t)

	view, err := svc.Create(ctx, domain.CreateComplaintRequest{
		CustomerName:         "Initech",
		ComplaintTitle:       "Printer jams",
		ComplaintDescription: "Paper jams on every third page",
		CustomerPhone:        "+91 98450 00000",
		ProductModel:         "LX-300",
		Status:               "Open",
	})
	require.NoError(t, err)

	assert.Equal(t, "COMP-2025-0001", view.ComplaintNumber)
	assert.Equal(t, "Initech", view.AccountName)
	assert.Equal(t, "Printer jams", view.Subject)
	assert.Equal(t, "LX-300", view.ModelNumber)
	assert.Equal(t, domain.StatusNew, view.Status)
	assert.Equal(t, domain.DefaultProductName, view.ProductName)
	assert.Equal(t, domain.DefaultSeverity, view.Severity)
	assert.Equal(t, domain.DefaultPriority, view.Priority)
	assert.Equal(t, domain.TypeUncovered, view.ComplaintType)
	assert.True(t, view.ComplaintDate.Equal(testNow))
	assert.True(t, view.IsOpen)
}

func TestClassifyCoverage(t *testing.T) {
	amc := snowflake.ID(42)
	assert.Equal(t, domain.TypeUnderWarranty, domain.ClassifyCoverage("Under Warranty", &amc))
	assert.Equal(t, domain.TypeUnderAMC, domain.ClassifyCoverage("Expired", &amc))
	assert.Equal(t, domain.TypeUncovered, domain.ClassifyCoverage("", nil))
}

func TestCreateValidation(t *testing.T) {
	svc, ctx, _ := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateComplaintRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = svc.Create(ctx, domain.CreateComplaintRequest{CustomerName: "Initech", Status: "Escalated"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.Create(context.Background(), domain.CreateComplaintRequest{CustomerName: "Initech"})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestUpdateReclassifiesAndResolves(t *testing.T) {
	svc, ctx, node := newTestService(t)

	created, err := svc.Create(ctx, domain.CreateComplaintRequest{CustomerName: "Initech"})
	require.NoError(t, err)

	amcID := node.Generate()
	updated, err := svc.Update(ctx, created.ID.String(), map[string]any{
		"amc_contract_id": amcID.String(),
		"status":          "resolved",
		"customer_phone":  "080-1234",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TypeUnderAMC, updated.ComplaintType)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	assert.Equal(t, "080-1234", updated.ContactPhone)
	require.NotNil(t, updated.ResolvedDate)
	assert.False(t, updated.IsOpen)

	_, err = svc.Update(ctx, created.ID.String(), map[string]any{"customer_name": ""})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, ctx, _ := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateComplaintRequest{CustomerName: "Initech"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateComplaintRequest{CustomerName: "Globex", Status: "In Progress"})
	require.NoError(t, err)

	page, err := svc.List(ctx, domain.ListComplaintRequest{Status: "in_progress"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Globex", page.Items[0].AccountName)

	all, err := svc.List(ctx, domain.ListComplaintRequest{Search: "init"})
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)
}

func TestDelete(t *testing.T) {
	svc, ctx, _ := newTestService(t)

	created, err := svc.Create(ctx, domain.CreateComplaintRequest{CustomerName: "Initech"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID.String()))

	_, err = svc.Get(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
