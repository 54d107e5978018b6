package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/complaint/domain"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"github.com/smallbiznis/crm/pkg/enum"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"complaint_date", "contact_person", "warranty_status", "installation_id", "amc_contract_id",
	"source_reference", "product_name", "serial_number", "severity", "priority", "status",
	"assigned_to", "resolution", "resolved_date",
).
	With("account_name", "customer_name").
	With("subject", "complaint_title").
	With("description", "complaint_description").
	With("contact_phone", "customer_phone").
	With("contact_email", "customer_email").
	With("model_number", "product_model")

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
		log:     p.Log.Named("complaint.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		numbers: p.Numbers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateComplaintRequest) (domain.ComplaintView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.ComplaintView{}, domain.ErrInvalidCompany
	}

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		return domain.ComplaintView{}, domain.ErrInvalidCustomer
	}
	status, err := normalizeStatus(req.Status)
	if err != nil {
		return domain.ComplaintView{}, err
	}

	now := s.clock.Now()
	complaintDate := dateOrToday(req.ComplaintDate.Ptr(), now)
	var resolved *time.Time
	if status == domain.StatusResolved || status == domain.StatusClosed {
		resolved = &now
	}

	warranty := strings.TrimSpace(req.WarrantyStatus)
	complaint := domain.Complaint{
		ID:              s.genID.Generate(),
		CompanyID:       companyID,
		ComplaintDate:   complaintDate,
		AccountName:     customerName,
		Subject:         strings.TrimSpace(req.ComplaintTitle),
		Description:     strings.TrimSpace(req.ComplaintDescription),
		ContactPerson:   strings.TrimSpace(req.ContactPerson),
		ContactPhone:    strings.TrimSpace(req.CustomerPhone),
		ContactEmail:    strings.TrimSpace(req.CustomerEmail),
		ComplaintType:   domain.ClassifyCoverage(warranty, req.AMCContractID),
		WarrantyStatus:  warranty,
		InstallationID:  req.InstallationID,
		AMCContractID:   req.AMCContractID,
		SourceReference: strings.TrimSpace(req.SourceReference),
		ProductName:     defaultString(req.ProductName, domain.DefaultProductName),
		ModelNumber:     strings.TrimSpace(req.ProductModel),
		SerialNumber:    strings.TrimSpace(req.SerialNumber),
		Severity:        defaultString(req.Severity, domain.DefaultSeverity),
		Priority:        defaultString(req.Priority, domain.DefaultPriority),
		Status:          status,
		AssignedTo:      strings.TrimSpace(req.AssignedTo),
		ResolvedDate:    resolved,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Assign(ctx, tx, s.numbers, companyID, numbering.DocComplaint, req.ComplaintNumber, complaintDate, s.numberTaken(companyID))
		if err != nil {
			return err
		}
		complaint.ComplaintNumber = number
		return s.repo.Insert(ctx, tx, &complaint)
	})
	if errors.Is(err, numbering.ErrNumberTaken) {
		return domain.ComplaintView{}, domain.ErrNumberTaken
	}
	if err != nil {
		return domain.ComplaintView{}, err
	}

	s.log.Debug("complaint logged",
		zap.String("complaint_number", complaint.ComplaintNumber),
		zap.String("complaint_type", complaint.ComplaintType),
	)
	return domain.ToView(&complaint, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListComplaintRequest) (pagination.Page[domain.ComplaintView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.ComplaintView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListComplaintFilter{
		Priority:      strings.TrimSpace(req.Priority),
		ComplaintType: strings.TrimSpace(req.ComplaintType),
		AssignedTo:    strings.TrimSpace(req.AssignedTo),
		Search:        strings.TrimSpace(req.Search),
		CreatedFrom:   req.CreatedFrom,
		CreatedTo:     req.CreatedTo,
	}
	if strings.TrimSpace(req.Status) != "" {
		status, err := normalizeStatus(req.Status)
		if err != nil {
			return pagination.Page[domain.ComplaintView]{}, err
		}
		filter.Status = status
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.ComplaintView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(c *domain.Complaint) (string, time.Time) { return c.ID.String(), c.CreatedAt },
		func(c *domain.Complaint) domain.ComplaintView { return domain.ToView(c, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.ComplaintView, error) {
	complaint, err := s.find(ctx, id)
	if err != nil {
		return domain.ComplaintView{}, err
	}
	return domain.ToView(complaint, s.clock.Now()), nil
}

// Update accepts both stored column names and the intake form's names.
// complaint_type is re-derived whenever warranty or AMC coverage changes.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.ComplaintView, error) {
	complaint, err := s.find(ctx, id)
	if err != nil {
		return domain.ComplaintView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["account_name"]; ok && v == nil {
		return domain.ComplaintView{}, domain.ErrInvalidCustomer
	}
	if v, ok := updates["complaint_date"]; ok && v == nil {
		delete(updates, "complaint_date")
	}
	defaults := map[string]string{
		"product_name": domain.DefaultProductName,
		"severity":     domain.DefaultSeverity,
		"priority":     domain.DefaultPriority,
		"status":       domain.StatusNew,
	}
	for column, fallback := range defaults {
		if v, ok := updates[column]; ok && v == nil {
			updates[column] = fallback
		}
	}
	if raw, ok := updates["status"]; ok {
		str, _ := raw.(string)
		status, err := normalizeStatus(str)
		if err != nil {
			return domain.ComplaintView{}, err
		}
		updates["status"] = status
	}
	if err := patch.Times(updates, "complaint_date", "resolved_date"); err != nil {
		return domain.ComplaintView{}, domain.ErrInvalidDate
	}
	if err := refIDs(updates, "installation_id", "amc_contract_id"); err != nil {
		return domain.ComplaintView{}, err
	}

	_, warrantyTouched := updates["warranty_status"]
	_, amcTouched := updates["amc_contract_id"]
	if warrantyTouched || amcTouched {
		warranty := complaint.WarrantyStatus
		if warrantyTouched {
			warranty, _ = updates["warranty_status"].(string)
		}
		amcID := complaint.AMCContractID
		if amcTouched {
			amcID = nil
			if id, ok := updates["amc_contract_id"].(snowflake.ID); ok {
				amcID = &id
			}
		}
		updates["complaint_type"] = domain.ClassifyCoverage(warranty, amcID)
	}

	if status, ok := updates["status"].(string); ok && complaint.ResolvedDate == nil &&
		(status == domain.StatusResolved || status == domain.StatusClosed) {
		if _, set := updates["resolved_date"]; !set {
			updates["resolved_date"] = s.clock.Now()
		}
	}
	if len(updates) == 0 {
		return domain.ToView(complaint, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, complaint.CompanyID, complaint.ID, updates); err != nil {
		return domain.ComplaintView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	complaint, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, complaint.CompanyID, complaint.ID)
	return err
}

func (s *Service) numberTaken(companyID snowflake.ID) numbering.TakenFunc {
	return func(ctx context.Context, db *gorm.DB, number string) (bool, error) {
		existing, err := s.repo.FindByNumber(ctx, db, companyID, number)
		return existing != nil, err
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.Complaint, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	complaintID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	complaint, err := s.repo.FindByID(ctx, s.db, companyID, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, domain.ErrNotFound
	}
	return complaint, nil
}

// normalizeStatus maps the intake form's "Open" onto New.
func normalizeStatus(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return domain.StatusNew, nil
	}
	if _, ok := enum.Canonical(value, domain.StatusOpen); ok {
		return domain.StatusNew, nil
	}
	status, ok := enum.Canonical(value, domain.Statuses...)
	if !ok {
		return "", domain.ErrInvalidStatus
	}
	return status, nil
}

func dateOrToday(value *time.Time, now time.Time) time.Time {
	if value != nil {
		return *value
	}
	return now
}

func refIDs(updates map[string]any, columns ...string) error {
	for _, column := range columns {
		raw, ok := updates[column]
		if !ok || raw == nil {
			continue
		}
		str, isString := raw.(string)
		if !isString {
			return domain.ErrInvalidID
		}
		id, err := parseID(str)
		if err != nil {
			return err
		}
		updates[column] = id
	}
	return nil
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
