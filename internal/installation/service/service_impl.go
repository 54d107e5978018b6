package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/installation/domain"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"github.com/smallbiznis/crm/pkg/enum"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"source_type", "source_reference", "customer_name", "contact_person", "customer_phone",
	"customer_email", "installation_address", "city", "state", "pincode", "product_name",
	"product_model", "serial_number", "quantity", "installation_type", "priority",
	"scheduled_date", "scheduled_time", "estimated_duration", "assigned_technician",
	"technician_phone", "status", "completed_date", "installation_cost", "additional_charges",
	"warranty_period", "warranty_terms", "pre_installation_notes", "special_instructions",
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Numbers numbering.Generator
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	numbers numbering.Generator
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("installation.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		numbers: p.Numbers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInstallationRequest) (domain.InstallationView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.InstallationView{}, domain.ErrInvalidCompany
	}

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		return domain.InstallationView{}, domain.ErrInvalidCustomer
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return domain.InstallationView{}, domain.ErrInvalidQuantity
	}
	if req.InstallationCost.IsNegative() || req.AdditionalCharges.IsNegative() {
		return domain.InstallationView{}, domain.ErrInvalidAmount
	}

	scheduled := req.ScheduledDate.Ptr()
	status := domain.StatusPending
	if scheduled != nil {
		status = domain.StatusScheduled
	}
	if strings.TrimSpace(req.Status) != "" {
		canonical, ok := enum.Canonical(req.Status, domain.Statuses...)
		if !ok {
			return domain.InstallationView{}, domain.ErrInvalidStatus
		}
		status = canonical
	}

	now := s.clock.Now()
	completed := req.CompletedDate.Ptr()
	if status == domain.StatusCompleted && completed == nil {
		completed = &now
	}

	installation := domain.Installation{
		ID:                   s.genID.Generate(),
		CompanyID:            companyID,
		SourceType:           strings.TrimSpace(req.SourceType),
		SourceReference:      strings.TrimSpace(req.SourceReference),
		AccountID:            req.AccountID,
		CustomerName:         customerName,
		ContactPerson:        strings.TrimSpace(req.ContactPerson),
		CustomerPhone:        strings.TrimSpace(req.CustomerPhone),
		CustomerEmail:        strings.TrimSpace(req.CustomerEmail),
		InstallationAddress:  strings.TrimSpace(req.InstallationAddress),
		City:                 strings.TrimSpace(req.City),
		State:                strings.TrimSpace(req.State),
		Pincode:              strings.TrimSpace(req.Pincode),
		ProductName:          strings.TrimSpace(req.ProductName),
		ProductModel:         strings.TrimSpace(req.ProductModel),
		SerialNumber:         strings.TrimSpace(req.SerialNumber),
		Quantity:             quantity,
		InstallationType:     strings.TrimSpace(req.InstallationType),
		Priority:             defaultString(req.Priority, domain.DefaultPriority),
		ScheduledDate:        scheduled,
		ScheduledTime:        strings.TrimSpace(req.ScheduledTime),
		EstimatedDuration:    strings.TrimSpace(req.EstimatedDuration),
		AssignedTechnician:   strings.TrimSpace(req.AssignedTechnician),
		TechnicianPhone:      strings.TrimSpace(req.TechnicianPhone),
		Status:               status,
		CompletedDate:        completed,
		InstallationCost:     req.InstallationCost.Round(2),
		AdditionalCharges:    req.AdditionalCharges.Round(2),
		TotalCost:            req.InstallationCost.Add(req.AdditionalCharges).Round(2),
		WarrantyPeriod:       strings.TrimSpace(req.WarrantyPeriod),
		WarrantyTerms:        strings.TrimSpace(req.WarrantyTerms),
		PreInstallationNotes: strings.TrimSpace(req.PreInstallationNotes),
		SpecialInstructions:  strings.TrimSpace(req.SpecialInstructions),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Assign(ctx, tx, s.numbers, companyID, numbering.DocInstallation, req.InstallationNumber, now, s.numberTaken(companyID))
		if err != nil {
			return err
		}
		installation.InstallationNumber = number
		return s.repo.Insert(ctx, tx, &installation)
	})
	if errors.Is(err, numbering.ErrNumberTaken) {
		return domain.InstallationView{}, domain.ErrNumberTaken
	}
	if err != nil {
		return domain.InstallationView{}, err
	}

	return domain.ToView(&installation, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListInstallationRequest) (pagination.Page[domain.InstallationView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.InstallationView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListInstallationFilter{
		AssignedTechnician: strings.TrimSpace(req.AssignedTechnician),
		Search:             strings.TrimSpace(req.Search),
		CreatedFrom:        req.CreatedFrom,
		CreatedTo:          req.CreatedTo,
	}
	if strings.TrimSpace(req.Status) != "" {
		status, ok := enum.Canonical(req.Status, domain.Statuses...)
		if !ok {
			return pagination.Page[domain.InstallationView]{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.InstallationView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(i *domain.Installation) (string, time.Time) { return i.ID.String(), i.CreatedAt },
		func(i *domain.Installation) domain.InstallationView { return domain.ToView(i, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.InstallationView, error) {
	installation, err := s.find(ctx, id)
	if err != nil {
		return domain.InstallationView{}, err
	}
	return domain.ToView(installation, s.clock.Now()), nil
}

// Update applies allowlisted columns. Completing a job without a
// completed_date stamps the current time; total_cost follows the two cost
// columns.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.InstallationView, error) {
	installation, err := s.find(ctx, id)
	if err != nil {
		return domain.InstallationView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["customer_name"]; ok && v == nil {
		return domain.InstallationView{}, domain.ErrInvalidCustomer
	}
	if v, ok := updates["priority"]; ok && v == nil {
		updates["priority"] = domain.DefaultPriority
	}
	if raw, ok := updates["status"]; ok {
		str, _ := raw.(string)
		status, valid := enum.Canonical(str, domain.Statuses...)
		if !valid {
			return domain.InstallationView{}, domain.ErrInvalidStatus
		}
		updates["status"] = status
	}
	if raw, ok := updates["quantity"]; ok {
		quantity, valid := raw.(float64)
		if !valid || quantity < 1 || quantity != float64(int(quantity)) {
			return domain.InstallationView{}, domain.ErrInvalidQuantity
		}
		updates["quantity"] = int(quantity)
	}
	if err := patch.Times(updates, "scheduled_date", "completed_date"); err != nil {
		return domain.InstallationView{}, domain.ErrInvalidDate
	}
	for _, column := range []string{"installation_cost", "additional_charges"} {
		if v, ok := updates[column]; ok && v == nil {
			updates[column] = decimal.Zero
		}
	}
	if err := patch.Decimals(updates, "installation_cost", "additional_charges"); err != nil {
		return domain.InstallationView{}, domain.ErrInvalidAmount
	}

	cost, costTouched := updates["installation_cost"].(decimal.Decimal)
	if !costTouched {
		cost = installation.InstallationCost
	}
	charges, chargesTouched := updates["additional_charges"].(decimal.Decimal)
	if !chargesTouched {
		charges = installation.AdditionalCharges
	}
	if costTouched || chargesTouched {
		updates["total_cost"] = cost.Add(charges).Round(2)
	}

	if updates["status"] == domain.StatusCompleted && installation.CompletedDate == nil {
		if _, ok := updates["completed_date"]; !ok {
			updates["completed_date"] = s.clock.Now()
		}
	}
	if len(updates) == 0 {
		return domain.ToView(installation, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, installation.CompanyID, installation.ID, updates); err != nil {
		return domain.InstallationView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	installation, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, installation.CompanyID, installation.ID)
	return err
}

func (s *Service) numberTaken(companyID snowflake.ID) numbering.TakenFunc {
	return func(ctx context.Context, db *gorm.DB, number string) (bool, error) {
		existing, err := s.repo.FindByNumber(ctx, db, companyID, number)
		return existing != nil, err
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.Installation, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	installationID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	installation, err := s.repo.FindByID(ctx, s.db, companyID, installationID)
	if err != nil {
		return nil, err
	}
	if installation == nil {
		return nil, domain.ErrNotFound
	}
	return installation, nil
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
