package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	"github.com/smallbiznis/crm/internal/audit/repository"
	"github.com/smallbiznis/crm/internal/auditcontext"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *clock.FakeClock, context.Context, snowflake.ID) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC))
	svc := &Service{db: db, log: zap.NewNop(), genID: node, clock: fake, repo: repository.Provide()}

	companyID := node.Generate()
	ctx := companycontext.WithCompanyID(context.Background(), companyID.Int64())
	return svc, fake, ctx, companyID
}

func TestAuditLogMasksSecretsAndUsesContext(t *testing.T) {
	svc, _, ctx, companyID := newTestService(t)
	ctx = auditcontext.WithActor(ctx, string(auditdomain.ActorTypeUser), "42")
	ctx = auditcontext.WithRequestID(ctx, "req-1")
	ctx = auditcontext.WithIPAddress(ctx, "10.0.0.7")

	target := "901"
	require.NoError(t, svc.AuditLog(ctx, nil, "", nil, "company.create", "company", &target, map[string]any{
		"name":           "Acme Labs",
		"admin_password": "correct-horse",
	}))

	page, err := svc.List(ctx, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	entry := page.Items[0]
	require.NotNil(t, entry.CompanyID)
	assert.Equal(t, companyID, *entry.CompanyID)
	assert.Equal(t, "user", entry.ActorType)
	assert.Equal(t, "42", *entry.ActorID)
	assert.Equal(t, "901", *entry.TargetID)
	assert.Equal(t, "10.0.0.7", *entry.IPAddress)
	assert.Equal(t, "Acme Labs", entry.Metadata["name"])
	assert.Equal(t, "****orse", entry.Metadata["admin_password"])
	assert.Equal(t, "req-1", entry.Metadata["request_id"])
}

func TestAuditLogRequiresAction(t *testing.T) {
	svc, _, ctx, _ := newTestService(t)
	assert.ErrorIs(t, svc.AuditLog(ctx, nil, "", nil, " ", "lead", nil, nil), auditdomain.ErrInvalidAction)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, fake, ctx, _ := newTestService(t)
	for _, action := range []string{"lead.create", "lead.update", "lead.delete"} {
		require.NoError(t, svc.AuditLog(ctx, nil, "system", nil, action, "lead", nil, nil))
		fake.Advance(time.Minute)
	}

	first, err := svc.List(ctx, auditdomain.ListAuditLogRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "lead.delete", first.Items[0].Action)
	assert.True(t, first.HasMore)

	second, err := svc.List(ctx, auditdomain.ListAuditLogRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "lead.create", second.Items[0].Action)
	assert.False(t, second.HasMore)
}

func TestListIsCompanyScoped(t *testing.T) {
	svc, _, ctx, _ := newTestService(t)
	require.NoError(t, svc.AuditLog(ctx, nil, "system", nil, "deal.create", "deal", nil, nil))

	other := companycontext.WithCompanyID(context.Background(), svc.genID.Generate().Int64())
	page, err := svc.List(other, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = svc.List(context.Background(), auditdomain.ListAuditLogRequest{})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidCompany)
}
