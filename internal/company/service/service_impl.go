package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/company/password"
	"github.com/smallbiznis/crm/pkg/db"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow("name", "max_users", "subscription_status", "home_state", "is_active").
	With("subscription_expires_at", "subscription_expiry")

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create provisions a company with an active one-year subscription and its
// first company_admin user in a single transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateCompanyRequest) (domain.CreateCompanyResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CreateCompanyResponse{}, domain.ErrInvalidName
	}
	adminName := strings.TrimSpace(req.AdminName)
	if adminName == "" {
		return domain.CreateCompanyResponse{}, domain.ErrInvalidAdminName
	}
	adminEmail := strings.ToLower(strings.TrimSpace(req.AdminEmail))
	if !validEmail(adminEmail) {
		return domain.CreateCompanyResponse{}, domain.ErrInvalidEmail
	}
	if err := password.Validate(req.AdminPassword); err != nil {
		return domain.CreateCompanyResponse{}, domain.ErrInvalidPassword
	}
	if req.MaxUsers < domain.MinMaxUsers {
		return domain.CreateCompanyResponse{}, domain.ErrInvalidMaxUsers
	}

	hash, err := password.Hash(req.AdminPassword)
	if err != nil {
		return domain.CreateCompanyResponse{}, err
	}

	now := s.clock.Now()
	expiry := now.AddDate(1, 0, 0)
	company := domain.Company{
		ID:                   s.genID.Generate(),
		Name:                 name,
		Domain:               slug.Make(name),
		MaxUsers:             req.MaxUsers,
		CurrentUsers:         1,
		SubscriptionStatus:   domain.SubscriptionActive,
		SubscriptionExpiryAt: &expiry,
		HomeState:            strings.TrimSpace(req.HomeState),
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	admin := domain.User{
		ID:           s.genID.Generate(),
		CompanyID:    &company.ID,
		Email:        adminEmail,
		FullName:     adminName,
		Role:         domain.RoleCompanyAdmin,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindUserByEmail(ctx, tx, adminEmail)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}
		if err := s.repo.InsertCompany(ctx, tx, &company); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDomainTaken
			}
			return err
		}
		return s.repo.InsertUser(ctx, tx, &admin)
	})
	if err != nil {
		return domain.CreateCompanyResponse{}, err
	}

	s.log.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("domain", company.Domain),
	)

	return domain.CreateCompanyResponse{
		Company: domain.ToCompanyView(&company),
		Admin:   domain.ToUserView(&admin),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.CompanyView, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return domain.CompanyView{}, err
	}
	return domain.ToCompanyView(company), nil
}

func (s *Service) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	companyID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	company, err := s.repo.FindCompanyByID(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCompaniesRequest) (pagination.Page[domain.CompanyView], error) {
	size := pagination.NormalizeSize(req.PageSize)
	rows, err := s.repo.ListCompanies(ctx, s.db, strings.TrimSpace(req.Search), pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(size),
	})
	if err != nil {
		return pagination.Page[domain.CompanyView]{}, err
	}
	return pagination.BuildPage(rows, size,
		func(c *domain.Company) (string, time.Time) { return c.ID.String(), c.CreatedAt },
		domain.ToCompanyView,
	), nil
}

func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.CompanyView, error) {
	companyID, err := parseID(id)
	if err != nil {
		return domain.CompanyView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if name, ok := updates["name"]; ok && name == nil {
		return domain.CompanyView{}, domain.ErrInvalidName
	}
	if raw, ok := updates["max_users"]; ok {
		if n, isNum := raw.(float64); !isNum || int(n) < domain.MinMaxUsers {
			return domain.CompanyView{}, domain.ErrInvalidMaxUsers
		}
	}
	if len(updates) > 0 {
		updates["updated_at"] = s.clock.Now()
		affected, err := s.repo.UpdateCompany(ctx, s.db, companyID, updates)
		if err != nil {
			return domain.CompanyView{}, err
		}
		if affected == 0 {
			return domain.CompanyView{}, domain.ErrNotFound
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	companyID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.DeleteCompany(ctx, s.db, companyID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateUser adds a user to a company while it has seats left.
func (s *Service) CreateUser(ctx context.Context, companyID string, req domain.CreateUserRequest) (domain.UserView, error) {
	cid, err := parseID(companyID)
	if err != nil {
		return domain.UserView{}, err
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.UserView{}, domain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		return domain.UserView{}, domain.ErrInvalidEmail
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = domain.RoleSalesRep
	}
	if !validRole(role) || role == domain.RoleSuperAdmin {
		return domain.UserView{}, domain.ErrInvalidRole
	}
	if err := password.Validate(req.Password); err != nil {
		return domain.UserView{}, domain.ErrInvalidPassword
	}
	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.UserView{}, err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           s.genID.Generate(),
		CompanyID:    &cid,
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company, err := s.repo.FindCompanyByID(ctx, tx, cid)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound
		}
		existing, err := s.repo.FindUserByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}
		affected, err := s.repo.IncrementUsers(ctx, tx, cid)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrUserLimitReached
		}
		return s.repo.InsertUser(ctx, tx, &user)
	})
	if err != nil {
		return domain.UserView{}, err
	}
	return domain.ToUserView(&user), nil
}

func (s *Service) ListUsers(ctx context.Context, companyID string) ([]domain.UserView, error) {
	cid, err := parseID(companyID)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx, s.db, cid)
	if err != nil {
		return nil, err
	}
	views := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, domain.ToUserView(u))
	}
	return views, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func validRole(role string) bool {
	for _, r := range domain.Roles {
		if r == role {
			return true
		}
	}
	return false
}

