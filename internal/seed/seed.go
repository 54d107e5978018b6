package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/company/password"
	"gorm.io/gorm"
)

const (
	defaultCompanyName   = "Main"
	defaultCompanyDomain = "main"
	defaultMaxUsers      = 25
	defaultAdminName     = "CRM Admin"
	defaultAdminEmail    = "admin@crm.local"
	defaultAdminPassword = "admin"
)

// Admin is the bootstrap administrator credential.
type Admin struct {
	Email    string
	Password string
}

// EnsureDefaultCompany seeds the default company and its super admin. Running
// it again leaves existing rows unchanged.
func EnsureDefaultCompany(db *gorm.DB, admin Admin) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		email = defaultAdminEmail
	}
	secret := admin.Password
	if strings.TrimSpace(secret) == "" {
		secret = defaultAdminPassword
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company, err := ensureCompanyTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node, company, email, secret)
	})
}

func ensureCompanyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (companydomain.Company, error) {
	var company companydomain.Company
	err := tx.WithContext(ctx).Where("domain = ?", defaultCompanyDomain).First(&company).Error
	if err == nil {
		return company, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return company, err
	}

	now := time.Now().UTC()
	expiry := now.AddDate(1, 0, 0)
	company = companydomain.Company{
		ID:                   node.Generate(),
		Name:                 defaultCompanyName,
		Domain:               defaultCompanyDomain,
		MaxUsers:             defaultMaxUsers,
		CurrentUsers:         0,
		SubscriptionStatus:   companydomain.SubscriptionActive,
		SubscriptionExpiryAt: &expiry,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := tx.WithContext(ctx).Create(&company).Error; err != nil {
		return company, err
	}
	return company, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, company companydomain.Company, email, secret string) error {
	var user companydomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(secret)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user = companydomain.User{
		ID:           node.Generate(),
		CompanyID:    &company.ID,
		Email:        email,
		FullName:     defaultAdminName,
		Role:         companydomain.RoleSuperAdmin,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Model(&companydomain.Company{}).
		Where("id = ?", company.ID).
		UpdateColumn("current_users", gorm.Expr("current_users + 1")).Error
}
