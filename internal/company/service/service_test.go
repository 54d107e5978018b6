package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/company/password"
	"github.com/smallbiznis/crm/internal/company/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Company{}, &domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		repo:  repository.Provide(),
	}, db
}

func validCompany() domain.CreateCompanyRequest {
	return domain.CreateCompanyRequest{
		Name:          "Aqua Pure Systems",
		AdminName:     "Hari Kumar",
		AdminEmail:    "Hari@AquaPure.test",
		AdminPassword: "s3cret-pass",
		MaxUsers:      10,
		HomeState:     "Karnataka",
	}
}

func TestCreateCompany(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, validCompany())
	require.NoError(t, err)

	assert.Equal(t, "aqua-pure-systems", resp.Company.Domain)
	assert.Equal(t, domain.SubscriptionActive, resp.Company.SubscriptionStatus)
	assert.Equal(t, 1, resp.Company.CurrentUsers)
	require.NotNil(t, resp.Company.SubscriptionExpiryAt)
	assert.Equal(t, 2026, resp.Company.SubscriptionExpiryAt.Year())
	assert.Equal(t, "hari@aquapure.test", resp.Admin.Email)
	assert.Equal(t, domain.RoleCompanyAdmin, resp.Admin.Role)
	assert.Equal(t, resp.Company.ID, resp.Admin.CompanyID)

	var stored domain.User
	require.NoError(t, db.Where("email = ?", "hari@aquapure.test").First(&stored).Error)
	ok := password.Verify("s3cret-pass", stored.PasswordHash)
	assert.True(t, ok)
}

func TestCreateCompanyValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.CreateCompanyRequest)
		want   error
	}{
		{"missing name", func(r *domain.CreateCompanyRequest) { r.Name = " " }, domain.ErrInvalidName},
		{"missing admin", func(r *domain.CreateCompanyRequest) { r.AdminName = "" }, domain.ErrInvalidAdminName},
		{"bad email", func(r *domain.CreateCompanyRequest) { r.AdminEmail = "nobody" }, domain.ErrInvalidEmail},
		{"short password", func(r *domain.CreateCompanyRequest) { r.AdminPassword = "abc" }, domain.ErrInvalidPassword},
		{"too few seats", func(r *domain.CreateCompanyRequest) { r.MaxUsers = 4 }, domain.ErrInvalidMaxUsers},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCompany()
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateCompanyDuplicateAdminEmail(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCompany())
	require.NoError(t, err)

	req := validCompany()
	req.Name = "Another Co"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	var count int64
	require.NoError(t, db.Model(&domain.Company{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "failed create must not leave a company behind")
}

func TestCreateUserRespectsSeatLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := validCompany()
	req.MaxUsers = 5
	resp, err := svc.Create(ctx, req)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := svc.CreateUser(ctx, resp.Company.ID, domain.CreateUserRequest{
			FullName: "Rep",
			Email:    "rep" + string(rune('a'+i)) + "@aquapure.test",
			Password: "password-123",
		})
		require.NoError(t, err)
	}

	_, err = svc.CreateUser(ctx, resp.Company.ID, domain.CreateUserRequest{
		FullName: "One Too Many",
		Email:    "extra@aquapure.test",
		Password: "password-123",
	})
	assert.ErrorIs(t, err, domain.ErrUserLimitReached)

	users, err := svc.ListUsers(ctx, resp.Company.ID)
	require.NoError(t, err)
	assert.Len(t, users, 5)
	for _, u := range users {
		if u.Email != "hari@aquapure.test" {
			assert.Equal(t, domain.RoleSalesRep, u.Role)
		}
	}

	company, err := svc.Get(ctx, resp.Company.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, company.CurrentUsers)
}

func TestCreateUserRejectsSuperAdminRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, validCompany())
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, resp.Company.ID, domain.CreateUserRequest{
		FullName: "Root",
		Email:    "root@aquapure.test",
		Password: "password-123",
		Role:     domain.RoleSuperAdmin,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestUpdateAndDeleteCompany(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, validCompany())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, resp.Company.ID, map[string]any{
		"name":       "Aqua Pure Systems Pvt Ltd",
		"home_state": "Tamil Nadu",
		"domain":     "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "Aqua Pure Systems Pvt Ltd", updated.Name)
	assert.Equal(t, "Tamil Nadu", updated.HomeState)
	assert.Equal(t, "aqua-pure-systems", updated.Domain)

	_, err = svc.Update(ctx, resp.Company.ID, map[string]any{"max_users": float64(2)})
	assert.ErrorIs(t, err, domain.ErrInvalidMaxUsers)

	_, err = svc.Update(ctx, resp.Company.ID, map[string]any{"name": ""})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	require.NoError(t, svc.Delete(ctx, resp.Company.ID))
	_, err = svc.Get(ctx, resp.Company.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, resp.Company.ID), domain.ErrNotFound)
}

func TestListCompaniesSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Blue Water", "Green Leaf", "Blue Sky"} {
		req := validCompany()
		req.Name = name
		req.AdminEmail = slugEmail(name)
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, domain.ListCompaniesRequest{Search: "blue"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)

	page, err = svc.List(ctx, domain.ListCompaniesRequest{PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextPageToken)
}

func slugEmail(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r != ' ' {
			out = append(out, r)
		}
	}
	return string(out) + "@example.test"
}
