package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/company/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsureDefaultCompanyIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&companydomain.Company{}, &companydomain.User{}))

	admin := Admin{Email: " Owner@Example.com ", Password: "s3cret-pass"}
	require.NoError(t, EnsureDefaultCompany(db, admin))
	require.NoError(t, EnsureDefaultCompany(db, admin))

	var companies []companydomain.Company
	require.NoError(t, db.Find(&companies).Error)
	require.Len(t, companies, 1)
	assert.Equal(t, "main", companies[0].Domain)
	assert.Equal(t, 1, companies[0].CurrentUsers)

	var users []companydomain.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "owner@example.com", users[0].Email)
	assert.Equal(t, companydomain.RoleSuperAdmin, users[0].Role)
	assert.True(t, users[0].BelongsTo(companies[0].ID))

	assert.True(t, password.Verify("s3cret-pass", users[0].PasswordHash))
}
