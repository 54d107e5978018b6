package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/internal/product/domain"
	"github.com/smallbiznis/crm/pkg/db"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"product_code", "product_name", "category", "principal", "description", "hsn_code",
	"unit", "price", "tax_rate", "status", "metadata",
).With("hsn_code", "hsn")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Settings *config.SettingsHolder
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	settings *config.SettingsHolder
	repo     domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		settings: p.Settings,
		repo:     p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.View, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.View{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		return domain.View{}, domain.ErrInvalidName
	}
	if req.Price.IsNegative() {
		return domain.View{}, domain.ErrInvalidPrice
	}

	taxRate := s.defaultTaxRate()
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() || req.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
			return domain.View{}, domain.ErrInvalidTaxRate
		}
		taxRate = *req.TaxRate
	}

	status, err := normalizeStatus(req.Status)
	if err != nil {
		return domain.View{}, err
	}

	code := trimmedPtr(req.ProductCode)
	if code != nil {
		existing, err := s.repo.FindByCode(ctx, s.db, companyID, *code)
		if err != nil {
			return domain.View{}, err
		}
		if existing != nil {
			return domain.View{}, domain.ErrCodeTaken
		}
	}

	now := s.clock.Now()
	product := domain.Product{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		ProductCode: code,
		ProductName: name,
		Category:    strings.TrimSpace(req.Category),
		Principal:   strings.TrimSpace(req.Principal),
		Description: trimmedPtr(req.Description),
		HSNCode:     strings.TrimSpace(req.HSNCode),
		Unit:        strings.TrimSpace(req.Unit),
		Price:       req.Price.Round(2),
		TaxRate:     taxRate.Round(2),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(req.Metadata) > 0 {
		product.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.View{}, domain.ErrCodeTaken
		}
		return domain.View{}, err
	}

	return domain.ToView(&product, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (pagination.Page[domain.View], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.View]{}, domain.ErrInvalidCompany
	}

	size := pagination.NormalizeSize(req.PageSize)
	sortBy := strings.ToLower(strings.TrimSpace(req.SortBy))
	if sortBy != "" {
		size = pagination.MaxPageSize
	}

	items, err := s.repo.List(ctx, s.db, companyID, domain.ListProductFilter{
		Search:      strings.TrimSpace(req.Search),
		Category:    strings.TrimSpace(req.Category),
		Status:      strings.ToLower(strings.TrimSpace(req.Status)),
		SortBy:      sortBy,
		OrderBy:     req.OrderBy,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.View]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(p *domain.Product) (string, time.Time) { return p.ID.String(), p.CreatedAt },
		func(p *domain.Product) domain.View { return domain.ToView(p, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.View, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return domain.View{}, err
	}
	return domain.ToView(product, s.clock.Now()), nil
}

func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.View, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return domain.View{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["product_name"]; ok && v == nil {
		return domain.View{}, domain.ErrInvalidName
	}
	if err := patch.Decimals(updates, "price"); err != nil {
		return domain.View{}, domain.ErrInvalidPrice
	}
	if err := patch.Decimals(updates, "tax_rate"); err != nil {
		return domain.View{}, domain.ErrInvalidTaxRate
	}
	if rate, ok := updates["tax_rate"].(decimal.Decimal); ok && rate.GreaterThan(decimal.NewFromInt(100)) {
		return domain.View{}, domain.ErrInvalidTaxRate
	}
	if raw, ok := updates["status"]; ok {
		value, _ := raw.(string)
		status, err := normalizeStatus(value)
		if err != nil {
			return domain.View{}, err
		}
		updates["status"] = status
	}
	if code, ok := updates["product_code"].(string); ok {
		existing, err := s.repo.FindByCode(ctx, s.db, product.CompanyID, code)
		if err != nil {
			return domain.View{}, err
		}
		if existing != nil && existing.ID != product.ID {
			return domain.View{}, domain.ErrCodeTaken
		}
	}
	if len(updates) == 0 {
		return domain.ToView(product, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, product.CompanyID, product.ID, updates); err != nil {
		return domain.View{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	product, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, product.CompanyID, product.ID)
	return err
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, s.db, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) defaultTaxRate() decimal.Decimal {
	if s.settings == nil {
		return lineitem.ClampPercent(decimal.NewFromInt(18))
	}
	return lineitem.ClampPercent(lineitem.FromFloat(s.settings.Get().DefaultTaxRate))
}

func normalizeStatus(value string) (string, error) {
	switch status := strings.ToLower(strings.TrimSpace(value)); status {
	case "":
		return domain.StatusActive, nil
	case domain.StatusActive, domain.StatusInactive:
		return status, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
