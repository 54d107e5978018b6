package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/amc/domain"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"github.com/smallbiznis/crm/pkg/enum"
	"github.com/smallbiznis/crm/pkg/timeutil"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"customer_name", "contact_person", "customer_phone", "customer_email", "service_address",
	"city", "state", "pincode", "contract_type", "start_date", "end_date", "duration_months",
	"contract_value", "payment_terms", "service_frequency", "number_of_services",
	"services_completed", "response_time_hours", "renewal_notice_days", "equipment_details",
	"spare_parts_included", "labour_charges_included", "emergency_support", "auto_renewal",
	"assigned_technician", "service_manager", "status", "terms_and_conditions", "exclusions",
	"special_instructions",
)

var countColumns = []string{
	"duration_months", "number_of_services", "services_completed", "response_time_hours", "renewal_notice_days",
}

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
		log:     p.Log.Named("amc.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		numbers: p.Numbers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateContractRequest) (domain.ContractView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.ContractView{}, domain.ErrInvalidCompany
	}

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		return domain.ContractView{}, domain.ErrInvalidCustomer
	}
	if req.ContractValue.IsNegative() {
		return domain.ContractView{}, domain.ErrInvalidValue
	}
	duration := req.DurationMonths
	if duration == 0 {
		duration = domain.DefaultDurationMonths
	}
	if duration < 0 {
		return domain.ContractView{}, domain.ErrInvalidDuration
	}

	now := s.clock.Now()
	start := timeutil.StartOfDay(now)
	if d := req.StartDate.Ptr(); d != nil {
		start = *d
	}
	end := endOfTerm(start, duration)
	if d := req.EndDate.Ptr(); d != nil {
		end = *d
	}
	if end.Before(start) {
		return domain.ContractView{}, domain.ErrInvalidDate
	}

	status := domain.StatusActive
	if strings.TrimSpace(req.Status) != "" {
		canonical, ok := enum.Canonical(req.Status, domain.Statuses...)
		if !ok {
			return domain.ContractView{}, domain.ErrInvalidStatus
		}
		status = canonical
	}

	contract := domain.Contract{
		ID:                    s.genID.Generate(),
		CompanyID:             companyID,
		InstallationID:        req.InstallationID,
		AccountID:             req.AccountID,
		CustomerName:          customerName,
		ContactPerson:         strings.TrimSpace(req.ContactPerson),
		CustomerPhone:         strings.TrimSpace(req.CustomerPhone),
		CustomerEmail:         strings.TrimSpace(req.CustomerEmail),
		ServiceAddress:        strings.TrimSpace(req.ServiceAddress),
		City:                  strings.TrimSpace(req.City),
		State:                 strings.TrimSpace(req.State),
		Pincode:               strings.TrimSpace(req.Pincode),
		ContractType:          strings.TrimSpace(req.ContractType),
		StartDate:             start,
		EndDate:               end,
		DurationMonths:        duration,
		ContractValue:         req.ContractValue.Round(2),
		PaymentTerms:          strings.TrimSpace(req.PaymentTerms),
		ServiceFrequency:      strings.TrimSpace(req.ServiceFrequency),
		NumberOfServices:      nonNegative(req.NumberOfServices),
		ResponseTimeHours:     nonNegative(req.ResponseTimeHours),
		RenewalNoticeDays:     nonNegative(req.RenewalNoticeDays),
		SparePartsIncluded:    req.SparePartsIncluded,
		LabourChargesIncluded: req.LabourChargesIncluded,
		EmergencySupport:      req.EmergencySupport,
		AutoRenewal:           req.AutoRenewal,
		AssignedTechnician:    strings.TrimSpace(req.AssignedTechnician),
		ServiceManager:        strings.TrimSpace(req.ServiceManager),
		Status:                status,
		TermsAndConditions:    strings.TrimSpace(req.TermsAndConditions),
		Exclusions:            strings.TrimSpace(req.Exclusions),
		SpecialInstructions:   strings.TrimSpace(req.SpecialInstructions),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if len(req.EquipmentDetails) > 0 && string(req.EquipmentDetails) != "null" {
		contract.EquipmentDetails = datatypes.JSON(req.EquipmentDetails)
	}

	if err := s.insert(ctx, &contract, req.ContractNumber); err != nil {
		return domain.ContractView{}, err
	}
	return domain.ToView(&contract, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListContractRequest) (pagination.Page[domain.ContractView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.ContractView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListContractFilter{
		Search:      strings.TrimSpace(req.Search),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if strings.TrimSpace(req.Status) != "" {
		status, ok := enum.Canonical(req.Status, domain.Statuses...)
		if !ok {
			return pagination.Page[domain.ContractView]{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	now := s.clock.Now()
	if req.ExpiringIn > 0 {
		today := timeutil.StartOfDay(now)
		until := today.AddDate(0, 0, req.ExpiringIn+1)
		filter.EndAfter = &today
		filter.EndBefore = &until
		if filter.Status == "" {
			filter.Status = domain.StatusActive
		}
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.ContractView]{}, err
	}

	return pagination.BuildPage(items, size,
		func(c *domain.Contract) (string, time.Time) { return c.ID.String(), c.CreatedAt },
		func(c *domain.Contract) domain.ContractView { return domain.ToView(c, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.ContractView, error) {
	contract, err := s.find(ctx, id)
	if err != nil {
		return domain.ContractView{}, err
	}
	return domain.ToView(contract, s.clock.Now()), nil
}

func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.ContractView, error) {
	contract, err := s.find(ctx, id)
	if err != nil {
		return domain.ContractView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["customer_name"]; ok && v == nil {
		return domain.ContractView{}, domain.ErrInvalidCustomer
	}
	if raw, ok := updates["status"]; ok {
		str, _ := raw.(string)
		status, valid := enum.Canonical(str, domain.Statuses...)
		if !valid {
			return domain.ContractView{}, domain.ErrInvalidStatus
		}
		updates["status"] = status
	}
	for _, column := range []string{"start_date", "end_date"} {
		if v, ok := updates[column]; ok && v == nil {
			return domain.ContractView{}, domain.ErrInvalidDate
		}
	}
	if err := patch.Times(updates, "start_date", "end_date"); err != nil {
		return domain.ContractView{}, domain.ErrInvalidDate
	}
	if v, ok := updates["contract_value"]; ok && v == nil {
		updates["contract_value"] = decimal.Zero
	}
	if err := patch.Decimals(updates, "contract_value"); err != nil {
		return domain.ContractView{}, domain.ErrInvalidValue
	}
	for _, column := range countColumns {
		raw, ok := updates[column]
		if !ok {
			continue
		}
		n, valid := raw.(float64)
		if !valid || n < 0 || n != float64(int(n)) {
			if column == "duration_months" {
				return domain.ContractView{}, domain.ErrInvalidDuration
			}
			return domain.ContractView{}, domain.ErrInvalidValue
		}
		updates[column] = int(n)
	}

	start := contract.StartDate
	if v, ok := updates["start_date"].(time.Time); ok {
		start = v
	}
	end := contract.EndDate
	if v, ok := updates["end_date"].(time.Time); ok {
		end = v
	} else if months, ok := updates["duration_months"].(int); ok {
		end = endOfTerm(start, months)
		updates["end_date"] = end
	}
	if end.Before(start) {
		return domain.ContractView{}, domain.ErrInvalidDate
	}
	if len(updates) == 0 {
		return domain.ToView(contract, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, contract.CompanyID, contract.ID, updates); err != nil {
		return domain.ContractView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	contract, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, contract.CompanyID, contract.ID)
	return err
}

func (s *Service) Renew(ctx context.Context, id string) (domain.ContractView, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return domain.ContractView{}, err
	}
	if current.Status == domain.StatusRenewed {
		return domain.ContractView{}, domain.ErrAlreadyRenewed
	}

	now := s.clock.Now()
	next := *current
	next.ID = s.genID.Generate()
	next.ContractNumber = ""
	next.RenewedFromID = &current.ID
	next.StartDate = timeutil.StartOfDay(current.EndDate).AddDate(0, 0, 1)
	next.EndDate = endOfTerm(next.StartDate, current.DurationMonths)
	next.ServicesCompleted = 0
	next.Status = domain.StatusActive
	next.CreatedAt = now
	next.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numbers.Next(ctx, tx, current.CompanyID, numbering.DocAMC, now)
		if err != nil {
			return err
		}
		next.ContractNumber = number
		if err := s.repo.Insert(ctx, tx, &next); err != nil {
			return err
		}
		_, err = s.repo.Update(ctx, tx, current.CompanyID, current.ID, map[string]any{
			"status":     domain.StatusRenewed,
			"updated_at": now,
		})
		return err
	})
	if err != nil {
		return domain.ContractView{}, err
	}

	s.log.Info("amc contract renewed",
		zap.String("contract_id", current.ID.String()),
		zap.String("renewal_id", next.ID.String()),
		zap.String("contract_number", next.ContractNumber),
	)
	return domain.ToView(&next, now), nil
}

func (s *Service) insert(ctx context.Context, contract *domain.Contract, supplied string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Assign(ctx, tx, s.numbers, contract.CompanyID, numbering.DocAMC, supplied, contract.CreatedAt, s.numberTaken(contract.CompanyID))
		if err != nil {
			return err
		}
		contract.ContractNumber = number
		return s.repo.Insert(ctx, tx, contract)
	})
	if errors.Is(err, numbering.ErrNumberTaken) {
		return domain.ErrNumberTaken
	}
	return err
}

func (s *Service) numberTaken(companyID snowflake.ID) numbering.TakenFunc {
	return func(ctx context.Context, db *gorm.DB, number string) (bool, error) {
		existing, err := s.repo.FindByNumber(ctx, db, companyID, number)
		return existing != nil, err
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.Contract, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	contractID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	contract, err := s.repo.FindByID(ctx, s.db, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, domain.ErrNotFound
	}
	return contract, nil
}

// endOfTerm is the last day covered by a contract of months starting at start.
func endOfTerm(start time.Time, months int) time.Time {
	return start.AddDate(0, months, -1)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
