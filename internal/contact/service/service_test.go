package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	accountrepo "github.com/smallbiznis/crm/internal/account/repository"
	"github.com/smallbiznis/crm/internal/auditcontext"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/contact/domain"
	"github.com/smallbiznis/crm/internal/contact/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Contact{}, &accountdomain.Account{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		clock:    clock.NewFakeClock(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
		repo:     repository.Provide(),
		accounts: accountrepo.Provide(),
	}
	return svc, companycontext.WithCompanyID(context.Background(), node.Generate().Int64())
}

func validRequest() domain.CreateContactRequest {
	return domain.CreateContactRequest{
		FirstName:      "Priya",
		LastName:       "Raman",
		EmailPrimary:   "Priya@Example.com",
		PhoneMobile:    "+91 98400-12345",
		LifecycleStage: domain.StageLead,
		CompanyName:    "Typed Name",
	}
}

func seedAccount(t *testing.T, svc *Service, ctx context.Context, name string) *accountdomain.Account {
	t.Helper()
	companyID, _ := companycontext.CompanyIDFromContext(ctx)
	account := &accountdomain.Account{
		ID:          svc.genID.Generate(),
		CompanyID:   companyID,
		AccountName: name,
		CreatedAt:   svc.clock.Now(),
		UpdatedAt:   svc.clock.Now(),
	}
	require.NoError(t, svc.db.Create(account).Error)
	return account
}

func TestCreateContactDefaults(t *testing.T) {
	svc, ctx := newTestService(t)
	ctx = auditcontext.WithActor(ctx, "user", "77")

	req := validRequest()
	req.MiddleName = " "
	req.Tags = []string{"vip", " "}
	view, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", view.EmailPrimary)
	assert.Equal(t, domain.StatusActive, view.CurrentContactStatus)
	assert.Equal(t, "Priya Raman", view.FullName)
	assert.Equal(t, "Typed Name", view.CompanyName)
	assert.Equal(t, []string{"vip"}, []string(view.Tags))
	require.NotNil(t, view.CreatedBy)
	assert.Equal(t, snowflake.ID(77), *view.CreatedBy)
	assert.Equal(t, 0, view.DaysSinceCreation)
}

func TestCreateContactValidation(t *testing.T) {
	svc, ctx := newTestService(t)

	req := validRequest()
	req.FirstName = ""
	req.EmailPrimary = ""
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, "first_name is required", err.Error())

	req = validRequest()
	req.EmailPrimary = "priya@example"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	req = validRequest()
	req.PhoneMobile = "call me"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	req = validRequest()
	missing := snowflake.ID(12345)
	req.AccountID = &missing
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)

	_, err = svc.Create(context.Background(), validRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestCreateContactTakesAccountName(t *testing.T) {
	svc, ctx := newTestService(t)
	account := seedAccount(t, svc, ctx, "Sunrise Hospital")

	req := validRequest()
	req.AccountID = &account.ID
	view, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Hospital", view.CompanyName)
	require.NotNil(t, view.AccountID)
	assert.Equal(t, account.ID, *view.AccountID)
}

func TestListContactsFilters(t *testing.T) {
	svc, ctx := newTestService(t)
	account := seedAccount(t, svc, ctx, "Acme")

	linked := validRequest()
	linked.AccountID = &account.ID
	_, err := svc.Create(ctx, linked)
	require.NoError(t, err)

	customer := validRequest()
	customer.FirstName = "Kumar"
	customer.LifecycleStage = domain.StageCustomer
	customer.CurrentContactStatus = domain.StatusInactive
	_, err = svc.Create(ctx, customer)
	require.NoError(t, err)

	page, err := svc.List(ctx, domain.ListContactRequest{AccountID: account.ID.String()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Priya", page.Items[0].FirstName)

	page, err = svc.List(ctx, domain.ListContactRequest{LifecycleStage: domain.StageCustomer})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Kumar", page.Items[0].FirstName)

	page, err = svc.List(ctx, domain.ListContactRequest{Status: domain.StatusActive, Search: "pri"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = svc.List(ctx, domain.ListContactRequest{AccountID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateContact(t *testing.T) {
	svc, ctx := newTestService(t)
	account := seedAccount(t, svc, ctx, "Globex")

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	id := created.ID.String()

	_, err = svc.Update(ctx, id, map[string]any{"last_name": "  "})
	require.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, "last_name is required", err.Error())

	_, err = svc.Update(ctx, id, map[string]any{"email_primary": "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Update(ctx, id, map[string]any{"account_id": "999"})
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)

	view, err := svc.Update(ctx, id, map[string]any{
		"account_id":    account.ID.String(),
		"job_title":     "Purchase Manager",
		"email_primary": "PRIYA@globex.com",
		"created_by":    "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", view.CompanyName)
	assert.Equal(t, "Purchase Manager", view.JobTitle)
	assert.Equal(t, "priya@globex.com", view.EmailPrimary)
	assert.Nil(t, view.CreatedBy)
}

func TestDeleteContact(t *testing.T) {
	svc, ctx := newTestService(t)

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	_, err = svc.Get(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "x"), domain.ErrInvalidID)
}
