package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/crm/pkg/db/pagination"
)

const MinMaxUsers = 5

const (
	RoleSuperAdmin      = "super_admin"
	RoleCompanyAdmin    = "company_admin"
	RoleManager         = "manager"
	RoleSalesRep        = "sales_rep"
	RoleServiceEngineer = "service_engineer"
	RoleViewer          = "viewer"
)

// Roles lists every assignable role.
var Roles = []string{
	RoleSuperAdmin,
	RoleCompanyAdmin,
	RoleManager,
	RoleSalesRep,
	RoleServiceEngineer,
	RoleViewer,
}

type CreateCompanyRequest struct {
	Name          string `json:"name"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
	MaxUsers      int    `json:"max_users"`
	HomeState     string `json:"home_state"`
}

type CreateCompanyResponse struct {
	Company CompanyView `json:"company"`
	Admin   UserView    `json:"admin"`
}

type CreateUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ListCompaniesRequest struct {
	PageToken string
	PageSize  int32
	Search    string
}

type CompanyView struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Domain               string     `json:"domain"`
	MaxUsers             int        `json:"max_users"`
	CurrentUsers         int        `json:"current_users"`
	SubscriptionStatus   string     `json:"subscription_status"`
	SubscriptionExpiryAt *time.Time `json:"subscription_expires_at,omitempty"`
	HomeState            string     `json:"home_state,omitempty"`
	IsActive             bool       `json:"is_active"`
	CreatedAt            time.Time  `json:"created_at"`
}

type UserView struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id,omitempty"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func ToCompanyView(c *Company) CompanyView {
	return CompanyView{
		ID:                   c.ID.String(),
		Name:                 c.Name,
		Domain:               c.Domain,
		MaxUsers:             c.MaxUsers,
		CurrentUsers:         c.CurrentUsers,
		SubscriptionStatus:   c.SubscriptionStatus,
		SubscriptionExpiryAt: c.SubscriptionExpiryAt,
		HomeState:            c.HomeState,
		IsActive:             c.IsActive,
		CreatedAt:            c.CreatedAt,
	}
}

func ToUserView(u *User) UserView {
	view := UserView{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.CompanyID != nil {
		view.CompanyID = u.CompanyID.String()
	}
	return view
}

type Service interface {
	Create(ctx context.Context, req CreateCompanyRequest) (CreateCompanyResponse, error)
	Get(ctx context.Context, id string) (CompanyView, error)
	List(ctx context.Context, req ListCompaniesRequest) (pagination.Page[CompanyView], error)
	Update(ctx context.Context, id string, fields map[string]any) (CompanyView, error)
	Delete(ctx context.Context, id string) error

	CreateUser(ctx context.Context, companyID string, req CreateUserRequest) (UserView, error)
	ListUsers(ctx context.Context, companyID string) ([]UserView, error)
	// GetCompany and GetUser load raw records for request authentication.
	GetCompany(ctx context.Context, id string) (*Company, error)
	GetUser(ctx context.Context, id string) (*User, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidAdminName = errors.New("invalid_admin_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidPassword  = errors.New("invalid_password")
	ErrInvalidMaxUsers  = errors.New("invalid_max_users")
	ErrInvalidRole      = errors.New("invalid_role")
	ErrEmailTaken       = errors.New("email_taken")
	ErrDomainTaken      = errors.New("domain_taken")
	ErrUserLimitReached = errors.New("user_limit_reached")
	ErrNotFound         = errors.New("not_found")
	ErrUserNotFound     = errors.New("user_not_found")
)
