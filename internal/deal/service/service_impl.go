package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/deal/domain"
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
	"deal_name", "account_id", "account_name", "lead_id", "contact_person", "phone", "email",
	"product", "deal_value", "stage", "probability", "expected_close_date", "next_followup_date",
	"selected_products", "source", "assigned_to", "notes",
).With("deal_value", "value")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Activities activitydomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	activities activitydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("deal.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		activities: p.Activities,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDealRequest) (domain.DealView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.DealView{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.DealName)
	if name == "" {
		return domain.DealView{}, domain.ErrInvalidName
	}
	if req.DealValue.IsNegative() {
		return domain.DealView{}, domain.ErrInvalidValue
	}
	if req.Probability < 0 || req.Probability > 100 {
		return domain.DealView{}, domain.ErrInvalidProbability
	}
	stage := domain.DefaultStage
	if strings.TrimSpace(req.Stage) != "" {
		canonical, ok := enum.Canonical(req.Stage, domain.Stages...)
		if !ok {
			return domain.DealView{}, domain.ErrInvalidStage
		}
		stage = canonical
	}

	now := s.clock.Now()
	deal := domain.Deal{
		ID:                s.genID.Generate(),
		CompanyID:         companyID,
		DealName:          name,
		AccountID:         req.AccountID,
		AccountName:       strings.TrimSpace(req.AccountName),
		LeadID:            req.LeadID,
		ContactPerson:     strings.TrimSpace(req.ContactPerson),
		Phone:             strings.TrimSpace(req.Phone),
		Email:             strings.TrimSpace(req.Email),
		Product:           strings.TrimSpace(req.Product),
		DealValue:         req.DealValue.Round(2),
		Stage:             stage,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate.Ptr(),
		NextFollowupDate:  req.NextFollowupDate.Ptr(),
		SelectedProducts:  datatypes.NewJSONSlice(priceProducts(req.SelectedProducts)),
		Source:            strings.TrimSpace(req.Source),
		AssignedTo:        strings.TrimSpace(req.AssignedTo),
		Notes:             strings.TrimSpace(req.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Insert(ctx, s.db, &deal); err != nil {
		return domain.DealView{}, err
	}
	return domain.ToView(&deal, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListDealRequest) (pagination.Page[domain.DealView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.DealView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListDealFilter{
		AssignedTo:  strings.TrimSpace(req.AssignedTo),
		Search:      strings.TrimSpace(req.Search),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if strings.TrimSpace(req.Stage) != "" {
		stage, ok := enum.Canonical(req.Stage, domain.Stages...)
		if !ok {
			return pagination.Page[domain.DealView]{}, domain.ErrInvalidStage
		}
		filter.Stage = stage
	}
	if strings.TrimSpace(req.AccountID) != "" {
		accountID, err := parseID(req.AccountID)
		if err != nil {
			return pagination.Page[domain.DealView]{}, err
		}
		filter.AccountID = &accountID
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.DealView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(d *domain.Deal) (string, time.Time) { return d.ID.String(), d.CreatedAt },
		func(d *domain.Deal) domain.DealView { return domain.ToView(d, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.DealView, error) {
	deal, err := s.find(ctx, id)
	if err != nil {
		return domain.DealView{}, err
	}
	return domain.ToView(deal, s.clock.Now()), nil
}

// Update applies allowlisted columns, then schedules a follow-up activity
// when the stored deal has both a follow-up date and a contact person.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.DealView, error) {
	deal, err := s.find(ctx, id)
	if err != nil {
		return domain.DealView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["deal_name"]; ok && v == nil {
		return domain.DealView{}, domain.ErrInvalidName
	}
	if raw, ok := updates["stage"]; ok {
		if raw == nil {
			updates["stage"] = domain.DefaultStage
		} else {
			str, _ := raw.(string)
			stage, valid := enum.Canonical(str, domain.Stages...)
			if !valid {
				return domain.DealView{}, domain.ErrInvalidStage
			}
			updates["stage"] = stage
		}
	}
	if raw, ok := updates["probability"]; ok {
		probability, err := toProbability(raw)
		if err != nil {
			return domain.DealView{}, err
		}
		updates["probability"] = probability
	}
	if v, ok := updates["deal_value"]; ok && v == nil {
		updates["deal_value"] = decimal.Zero
	}
	if err := patch.Decimals(updates, "deal_value"); err != nil {
		return domain.DealView{}, domain.ErrInvalidValue
	}
	if err := patch.Times(updates, "expected_close_date", "next_followup_date"); err != nil {
		return domain.DealView{}, domain.ErrInvalidDate
	}
	if err := refIDs(updates, "account_id", "lead_id"); err != nil {
		return domain.DealView{}, err
	}
	if _, ok := updates["selected_products"]; ok {
		products, err := decodeProducts(fields)
		if err != nil {
			return domain.DealView{}, err
		}
		updates["selected_products"] = datatypes.NewJSONSlice(priceProducts(products))
	}
	if len(updates) == 0 {
		return domain.ToView(deal, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, deal.CompanyID, deal.ID, updates); err != nil {
		return domain.DealView{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, deal.CompanyID, deal.ID)
	if err != nil {
		return domain.DealView{}, err
	}
	if updated == nil {
		return domain.DealView{}, domain.ErrNotFound
	}
	if updated.NextFollowupDate != nil && updated.ContactPerson != "" {
		s.scheduleFollowUp(ctx, updated)
	}
	return domain.ToView(updated, s.clock.Now()), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deal, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, deal.CompanyID, deal.ID)
	return err
}

// scheduleFollowUp creates the follow-up activity for a deal. Failures are
// logged and never fail the deal write.
func (s *Service) scheduleFollowUp(ctx context.Context, deal *domain.Deal) {
	if s.activities == nil {
		return
	}
	activityType := activitydomain.TypeCall
	if deal.Stage == domain.StageProposal {
		activityType = activitydomain.TypeDemo
	}
	priority := activitydomain.PriorityMedium
	if deal.Probability >= domain.HighProbability {
		priority = activitydomain.PriorityHigh
	}
	due := timeutil.DateOf(*deal.NextFollowupDate)
	_, err := s.activities.Create(ctx, activitydomain.CreateActivityRequest{
		ActivityType:  activityType,
		Title:         fmt.Sprintf("Follow up %s stage with %s", deal.Stage, deal.ContactPerson),
		Description:   fmt.Sprintf("%s stage: %s deal worth %s", deal.Stage, defaultString(deal.Product, deal.DealName), deal.DealValue.StringFixed(2)),
		EntityType:    "deal",
		EntityID:      deal.ID.String(),
		EntityName:    defaultString(deal.AccountName, deal.DealName),
		ContactName:   deal.ContactPerson,
		ContactPhone:  deal.Phone,
		ContactEmail:  deal.Email,
		ScheduledDate: due,
		DueDate:       due,
		Priority:      priority,
		AssignedTo:    deal.AssignedTo,
	})
	if err != nil {
		s.log.Warn("failed to schedule deal follow-up",
			zap.String("deal_id", deal.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.Deal, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	dealID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	deal, err := s.repo.FindByID(ctx, s.db, companyID, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrNotFound
	}
	return deal, nil
}

// priceProducts fills each product's total from quantity and unit price.
func priceProducts(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		p.ProductName = strings.TrimSpace(p.ProductName)
		if p.ProductName == "" && p.ProductID == "" {
			continue
		}
		if p.Quantity <= 0 {
			p.Quantity = 1
		}
		p.PricePerUnit = p.PricePerUnit.Round(2)
		p.TotalAmount = p.PricePerUnit.Mul(decimal.NewFromInt(int64(p.Quantity))).Round(2)
		out = append(out, p)
	}
	return out
}

func decodeProducts(fields map[string]any) ([]domain.Product, error) {
	raw := fields["selected_products"]
	if raw == nil {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, domain.ErrInvalidValue
	}
	var products []domain.Product
	if err := json.Unmarshal(b, &products); err != nil {
		return nil, domain.ErrInvalidValue
	}
	return products, nil
}

func toProbability(raw any) (int, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		if v < 0 || v > 100 || v != float64(int(v)) {
			return 0, domain.ErrInvalidProbability
		}
		return int(v), nil
	case int:
		if v < 0 || v > 100 {
			return 0, domain.ErrInvalidProbability
		}
		return v, nil
	default:
		return 0, domain.ErrInvalidProbability
	}
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
