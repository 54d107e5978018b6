package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/account/domain"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"account_name", "display_name", "website", "industry", "sub_industry", "company_type",
	"annual_revenue", "employee_count", "territory", "account_owner", "account_status",
	"lifecycle_stage", "gst_number", "pan_number", "credit_limit", "payment_terms", "phone",
	"email", "billing_address", "billing_city", "billing_state", "billing_country",
	"billing_postal_code", "contacts", "addresses", "notes",
)

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
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create rejects a second account with the same name in the same billing
// city. Without an explicit billing city, the first address's city is used.
func (s *Service) Create(ctx context.Context, req domain.CreateAccountRequest) (domain.AccountView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.AccountView{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.AccountName)
	if name == "" {
		return domain.AccountView{}, domain.ErrInvalidName
	}
	if req.AnnualRevenue.IsNegative() || req.CreditLimit.IsNegative() || req.EmployeeCount < 0 {
		return domain.AccountView{}, domain.ErrInvalidAmount
	}

	city := strings.TrimSpace(req.BillingCity)
	if city == "" {
		city = firstString(req.Addresses, "city")
	}

	existing, err := s.repo.FindByNameAndCity(ctx, s.db, companyID, name, city)
	if err != nil {
		return domain.AccountView{}, err
	}
	if existing != nil {
		return domain.AccountView{}, &domain.DuplicateError{Name: name, City: city}
	}

	now := s.clock.Now()
	account := domain.Account{
		ID:                s.genID.Generate(),
		CompanyID:         companyID,
		AccountName:       name,
		DisplayName:       strings.TrimSpace(req.DisplayName),
		Website:           strings.TrimSpace(req.Website),
		Industry:          strings.TrimSpace(req.Industry),
		SubIndustry:       strings.TrimSpace(req.SubIndustry),
		CompanyType:       strings.TrimSpace(req.CompanyType),
		AnnualRevenue:     req.AnnualRevenue.Round(2),
		EmployeeCount:     req.EmployeeCount,
		Territory:         strings.TrimSpace(req.Territory),
		AccountOwner:      strings.TrimSpace(req.AccountOwner),
		AccountStatus:     defaultString(req.AccountStatus, domain.StatusActive),
		LifecycleStage:    defaultString(req.LifecycleStage, domain.StageProspect),
		GSTNumber:         strings.ToUpper(strings.TrimSpace(req.GSTNumber)),
		PANNumber:         strings.ToUpper(strings.TrimSpace(req.PANNumber)),
		CreditLimit:       req.CreditLimit.Round(2),
		PaymentTerms:      strings.TrimSpace(req.PaymentTerms),
		Phone:             strings.TrimSpace(req.Phone),
		Email:             strings.TrimSpace(req.Email),
		BillingAddress:    strings.TrimSpace(req.BillingAddress),
		BillingCity:       city,
		BillingState:      defaultString(req.BillingState, firstString(req.Addresses, "state")),
		BillingCountry:    strings.TrimSpace(req.BillingCountry),
		BillingPostalCode: strings.TrimSpace(req.BillingPostalCode),
		Contacts:          jsonArray(req.Contacts),
		Addresses:         jsonArray(req.Addresses),
		Notes:             strings.TrimSpace(req.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		return domain.AccountView{}, err
	}
	return domain.ToView(&account, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListAccountRequest) (pagination.Page[domain.AccountView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.AccountView]{}, domain.ErrInvalidCompany
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, domain.ListAccountFilter{
		Search:      strings.TrimSpace(req.Search),
		Industry:    strings.TrimSpace(req.Industry),
		City:        strings.TrimSpace(req.City),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.AccountView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(a *domain.Account) (string, time.Time) { return a.ID.String(), a.CreatedAt },
		func(a *domain.Account) domain.AccountView { return domain.ToView(a, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.AccountView, error) {
	account, err := s.find(ctx, id)
	if err != nil {
		return domain.AccountView{}, err
	}
	return domain.ToView(account, s.clock.Now()), nil
}

func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.AccountView, error) {
	account, err := s.find(ctx, id)
	if err != nil {
		return domain.AccountView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["account_name"]; ok && v == nil {
		return domain.AccountView{}, domain.ErrInvalidName
	}
	if err := patch.Decimals(updates, "annual_revenue", "credit_limit"); err != nil {
		return domain.AccountView{}, domain.ErrInvalidAmount
	}
	if len(updates) == 0 {
		return domain.ToView(account, s.clock.Now()), nil
	}

	name, nameSet := updates["account_name"].(string)
	city, citySet := updates["billing_city"].(string)
	if _, cleared := updates["billing_city"]; cleared && !citySet {
		citySet = true
	}
	if nameSet || citySet {
		if !nameSet {
			name = account.AccountName
		}
		if !citySet {
			city = account.BillingCity
		}
		existing, err := s.repo.FindByNameAndCity(ctx, s.db, account.CompanyID, name, city)
		if err != nil {
			return domain.AccountView{}, err
		}
		if existing != nil && existing.ID != account.ID {
			return domain.AccountView{}, &domain.DuplicateError{Name: name, City: city}
		}
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, account.CompanyID, account.ID, updates); err != nil {
		return domain.AccountView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	account, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, account.CompanyID, account.ID)
	return err
}

func (s *Service) find(ctx context.Context, id string) (*domain.Account, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	accountID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.FindByID(ctx, s.db, companyID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func firstString(items []map[string]any, key string) string {
	if len(items) == 0 {
		return ""
	}
	if s, ok := items[0][key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func jsonArray(items []map[string]any) datatypes.JSON {
	if len(items) == 0 {
		return nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
