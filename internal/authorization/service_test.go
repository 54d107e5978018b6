package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authzFixture struct {
	svc     *ServiceImpl
	db      *gorm.DB
	node    *snowflake.Node
	company snowflake.ID
}

func newFixture(t *testing.T) *authzFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&companydomain.User{}))

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{DB: db, Log: zap.NewNop(), Enforcer: enforcer}).(*ServiceImpl)
	return &authzFixture{svc: svc, db: db, node: node, company: node.Generate()}
}

func (f *authzFixture) user(t *testing.T, role string, companyID *snowflake.ID) string {
	t.Helper()
	user := companydomain.User{
		ID:        f.node.Generate(),
		CompanyID: companyID,
		Email:     role + "-" + f.node.Generate().String() + "@example.com",
		FullName:  "Test " + role,
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return "user:" + user.ID.String()
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := f.company.String()

	cases := []struct {
		role    string
		object  string
		action  string
		allowed bool
	}{
		{companydomain.RoleCompanyAdmin, ObjectLead, Action(ObjectLead, VerbDelete), true},
		{companydomain.RoleCompanyAdmin, ObjectCompany, ActionCompanyCreate, false},
		{companydomain.RoleManager, ObjectReport, ActionReportExport, true},
		{companydomain.RoleManager, ObjectAuditLog, ActionAuditLogView, true},
		{companydomain.RoleSalesRep, ObjectDeal, Action(ObjectDeal, VerbCreate), true},
		{companydomain.RoleSalesRep, ObjectDeal, Action(ObjectDeal, VerbDelete), false},
		{companydomain.RoleSalesRep, ObjectProduct, Action(ObjectProduct, VerbCreate), false},
		{companydomain.RoleSalesRep, ObjectReport, ActionReportExport, false},
		{companydomain.RoleServiceEngineer, ObjectComplaint, Action(ObjectComplaint, VerbUpdate), true},
		{companydomain.RoleServiceEngineer, ObjectLead, Action(ObjectLead, VerbView), false},
		{companydomain.RoleSalesRep, ObjectContact, Action(ObjectContact, VerbCreate), true},
		{companydomain.RoleServiceEngineer, ObjectContact, Action(ObjectContact, VerbView), true},
		{companydomain.RoleServiceEngineer, ObjectContact, Action(ObjectContact, VerbUpdate), false},
		{companydomain.RoleViewer, ObjectInvoice, Action(ObjectInvoice, VerbView), true},
		{companydomain.RoleViewer, ObjectInvoice, Action(ObjectInvoice, VerbCreate), false},
		{companydomain.RoleViewer, ObjectAuditLog, ActionAuditLogView, false},
	}

	for _, tc := range cases {
		actor := f.user(t, tc.role, &f.company)
		err := f.svc.Authorize(ctx, actor, company, tc.object, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s %s", tc.role, tc.action)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s", tc.role, tc.action)
		}
	}
}

func TestAuthorizeRejectsOtherCompany(t *testing.T) {
	f := newFixture(t)
	other := f.node.Generate()
	actor := f.user(t, companydomain.RoleCompanyAdmin, &f.company)

	err := f.svc.Authorize(context.Background(), actor, other.String(), ObjectLead, Action(ObjectLead, VerbView))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeSuperAdminCrossesCompanies(t *testing.T) {
	f := newFixture(t)
	actor := f.user(t, companydomain.RoleSuperAdmin, nil)

	for _, company := range []snowflake.ID{f.company, f.node.Generate()} {
		assert.NoError(t, f.svc.Authorize(context.Background(), actor, company.String(), ObjectCompany, ActionCompanyCreate))
	}
}

func TestAuthorizeUnknownAndInactiveUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := f.company.String()

	err := f.svc.Authorize(ctx, "user:"+f.node.Generate().String(), company, ObjectLead, Action(ObjectLead, VerbView))
	assert.ErrorIs(t, err, ErrUnknownActor)

	actor := f.user(t, companydomain.RoleManager, &f.company)
	require.NoError(t, f.db.Model(&companydomain.User{}).
		Where("id = ?", actor[len("user:"):]).
		UpdateColumn("is_active", false).Error)
	err = f.svc.Authorize(ctx, actor, company, ObjectLead, Action(ObjectLead, VerbView))
	assert.ErrorIs(t, err, ErrUnknownActor)
}

func TestAuthorizeValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := f.company.String()

	assert.ErrorIs(t, f.svc.Authorize(ctx, "", company, ObjectLead, "lead.view"), ErrInvalidActor)
	assert.ErrorIs(t, f.svc.Authorize(ctx, "apikey:1", company, ObjectLead, "lead.view"), ErrInvalidActor)
	assert.ErrorIs(t, f.svc.Authorize(ctx, "system", "nope", ObjectLead, "lead.view"), ErrInvalidCompany)
	assert.ErrorIs(t, f.svc.Authorize(ctx, "system", company, "", "lead.view"), ErrInvalidObject)
	assert.ErrorIs(t, f.svc.Authorize(ctx, "system", company, ObjectLead, " "), ErrInvalidAction)
	assert.NoError(t, f.svc.Authorize(ctx, "system", company, ObjectLead, "lead.view"))
}

func TestAuthorizeFollowsRoleChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := f.company.String()
	actor := f.user(t, companydomain.RoleViewer, &f.company)

	assert.ErrorIs(t, f.svc.Authorize(ctx, actor, company, ObjectLead, Action(ObjectLead, VerbCreate)), ErrForbidden)

	require.NoError(t, f.db.Model(&companydomain.User{}).
		Where("id = ?", actor[len("user:"):]).
		UpdateColumn("role", companydomain.RoleSalesRep).Error)
	assert.NoError(t, f.svc.Authorize(ctx, actor, company, ObjectLead, Action(ObjectLead, VerbCreate)))
}
