package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/lead/domain"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"github.com/smallbiznis/crm/pkg/timeutil"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(domain.StandardFields...)

var dateColumns = []string{"expected_closing_date", "next_followup_date"}

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
		log:        p.Log.Named("lead.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		activities: p.Activities,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLeadRequest) (domain.LeadView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.LeadView{}, domain.ErrInvalidCompany
	}

	assignedTo := strings.TrimSpace(req.AssignedTo)
	if assignedTo == "" {
		return domain.LeadView{}, domain.ErrInvalidAssignedTo
	}
	if req.EstimatedValue.IsNegative() {
		return domain.LeadView{}, domain.ErrInvalidValue
	}

	now := s.clock.Now()
	lead := domain.Lead{
		ID:                  s.genID.Generate(),
		CompanyID:           companyID,
		LeadName:            strings.TrimSpace(req.LeadName),
		AccountName:         strings.TrimSpace(req.AccountName),
		ContactName:         strings.TrimSpace(req.ContactName),
		Email:               strings.TrimSpace(req.Email),
		Phone:               strings.TrimSpace(req.Phone),
		Mobile:              strings.TrimSpace(req.Mobile),
		Whatsapp:            strings.TrimSpace(req.Whatsapp),
		Industry:            strings.TrimSpace(req.Industry),
		LeadSource:          strings.TrimSpace(req.LeadSource),
		AssignedTo:          assignedTo,
		SalesStage:          defaultString(req.SalesStage, domain.DefaultSalesStage),
		LeadStatus:          defaultString(req.LeadStatus, domain.StatusNew),
		Priority:            defaultString(req.Priority, domain.DefaultPriority),
		EstimatedValue:      req.EstimatedValue.Round(2),
		PrimaryProduct:      strings.TrimSpace(req.PrimaryProduct),
		SecondaryProducts:   jsonList(req.SecondaryProducts),
		Tags:                jsonList(req.Tags),
		City:                strings.TrimSpace(req.City),
		State:               strings.TrimSpace(req.State),
		Country:             strings.TrimSpace(req.Country),
		Address:             strings.TrimSpace(req.Address),
		ExpectedClosingDate: req.ExpectedClosingDate.Ptr(),
		NextFollowupDate:    req.NextFollowupDate.Ptr(),
		Notes:               strings.TrimSpace(req.Notes),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if len(req.CustomFields) > 0 {
		lead.CustomFields = datatypes.JSONMap(req.CustomFields)
	}

	if err := s.repo.Insert(ctx, s.db, &lead); err != nil {
		return domain.LeadView{}, err
	}

	if lead.NextFollowupDate != nil {
		contact := lead.ContactName
		if contact == "" {
			contact = "Contact"
		}
		s.scheduleFollowUp(ctx, &lead, activitydomain.TypeCall, "Follow up with "+contact, "Follow up on lead inquiry")
	}

	return domain.ToView(&lead, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListLeadRequest) (pagination.Page[domain.LeadView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.LeadView]{}, domain.ErrInvalidCompany
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, domain.ListLeadFilter{
		Status:      strings.TrimSpace(req.Status),
		SalesStage:  strings.TrimSpace(req.SalesStage),
		AssignedTo:  strings.TrimSpace(req.AssignedTo),
		LeadSource:  strings.TrimSpace(req.LeadSource),
		Search:      strings.TrimSpace(req.Search),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.LeadView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(l *domain.Lead) (string, time.Time) { return l.ID.String(), l.CreatedAt },
		func(l *domain.Lead) domain.LeadView { return domain.ToView(l, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.LeadView, error) {
	lead, err := s.find(ctx, id)
	if err != nil {
		return domain.LeadView{}, err
	}
	return domain.ToView(lead, s.clock.Now()), nil
}

// Update writes allowlisted columns and merges any other keys into the
// existing custom fields. A new next_followup_date schedules a follow-up.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.LeadView, error) {
	lead, err := s.find(ctx, id)
	if err != nil {
		return domain.LeadView{}, err
	}

	standard, custom := domain.SplitFields(fields)
	updates := updatableColumns.Apply(standard)
	if v, ok := updates["assigned_to"]; ok && v == nil {
		return domain.LeadView{}, domain.ErrInvalidAssignedTo
	}
	if err := patch.Decimals(updates, "estimated_value"); err != nil {
		return domain.LeadView{}, domain.ErrInvalidValue
	}
	if err := patch.Times(updates, dateColumns...); err != nil {
		return domain.LeadView{}, domain.ErrInvalidDate
	}
	if len(custom) > 0 {
		merged := datatypes.JSONMap{}
		for k, v := range lead.CustomFields {
			merged[k] = v
		}
		for k, v := range custom {
			merged[k] = v
		}
		updates["custom_fields"] = merged
	}
	if len(updates) == 0 {
		return domain.ToView(lead, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, lead.CompanyID, lead.ID, updates); err != nil {
		return domain.LeadView{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, lead.CompanyID, lead.ID)
	if err != nil {
		return domain.LeadView{}, err
	}
	if updated == nil {
		return domain.LeadView{}, domain.ErrNotFound
	}

	if _, touched := updates["next_followup_date"]; touched && updated.NextFollowupDate != nil && updated.ContactName != "" {
		activityType := activitydomain.TypeCall
		if strings.EqualFold(updated.LeadStatus, domain.StatusContacted) {
			activityType = activitydomain.TypeFollowUp
		}
		description := strings.TrimSpace(strings.Join([]string{
			defaultString(updated.LeadStatus, domain.StatusNew), "lead:", updated.PrimaryProduct, "inquiry from", updated.AccountName,
		}, " "))
		s.scheduleFollowUp(ctx, updated, activityType, "Follow up with "+updated.ContactName, description)
	}

	return domain.ToView(updated, s.clock.Now()), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	lead, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, lead.CompanyID, lead.ID)
	return err
}

// scheduleFollowUp creates the follow-up activity for a lead. Failures are
// logged and never fail the lead write.
func (s *Service) scheduleFollowUp(ctx context.Context, lead *domain.Lead, activityType, title, description string) {
	if s.activities == nil {
		return
	}
	priority := activitydomain.PriorityMedium
	if strings.EqualFold(lead.Priority, "high") {
		priority = activitydomain.PriorityHigh
	}
	due := timeutil.DateOf(*lead.NextFollowupDate)
	entityName := lead.AccountName
	if entityName == "" {
		entityName = defaultString(lead.LeadName, "Lead")
	}
	_, err := s.activities.Create(ctx, activitydomain.CreateActivityRequest{
		ActivityType:  activityType,
		Title:         title,
		Description:   description,
		EntityType:    "lead",
		EntityID:      lead.ID.String(),
		EntityName:    entityName,
		ContactName:   lead.ContactName,
		ContactPhone:  lead.Phone,
		ContactEmail:  lead.Email,
		ScheduledDate: due,
		DueDate:       due,
		Priority:      priority,
		AssignedTo:    lead.AssignedTo,
	})
	if err != nil {
		s.log.Warn("failed to schedule lead follow-up",
			zap.String("lead_id", lead.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.Lead, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	leadID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	lead, err := s.repo.FindByID(ctx, s.db, companyID, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	return lead, nil
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

func jsonList(values []string) datatypes.JSON {
	cleaned := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		cleaned = append(cleaned, v)
	}
	if len(cleaned) == 0 {
		return nil
	}
	b, _ := json.Marshal(cleaned)
	return datatypes.JSON(b)
}
