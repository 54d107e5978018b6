package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/activity/domain"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"activity_type", "title", "description", "contact_name", "contact_phone", "contact_email",
	"scheduled_date", "due_date", "completed_date", "priority", "status", "assigned_to",
	"outcome", "outcome_notes", "next_action", "follow_up_required", "follow_up_date",
)

var dateColumns = []string{"scheduled_date", "due_date", "completed_date", "follow_up_date"}

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
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateActivityRequest) (domain.ActivityView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.ActivityView{}, domain.ErrInvalidCompany
	}

	activityType := strings.TrimSpace(req.ActivityType)
	if activityType == "" {
		return domain.ActivityView{}, domain.ErrInvalidType
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.ActivityView{}, domain.ErrInvalidTitle
	}

	priority := strings.ToLower(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := s.clock.Now()
	activity := domain.Activity{
		ID:            s.genID.Generate(),
		CompanyID:     companyID,
		ActivityType:  activityType,
		Title:         title,
		Description:   strings.TrimSpace(req.Description),
		EntityType:    strings.TrimSpace(req.EntityType),
		EntityID:      strings.TrimSpace(req.EntityID),
		EntityName:    strings.TrimSpace(req.EntityName),
		ContactName:   strings.TrimSpace(req.ContactName),
		ContactPhone:  strings.TrimSpace(req.ContactPhone),
		ContactEmail:  strings.TrimSpace(req.ContactEmail),
		ScheduledDate: req.ScheduledDate.Ptr(),
		DueDate:       req.DueDate.Ptr(),
		Priority:      priority,
		Status:        domain.StatusPending,
		AssignedTo:    strings.TrimSpace(req.AssignedTo),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &activity); err != nil {
		return domain.ActivityView{}, err
	}
	return domain.ToView(&activity, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListActivityRequest) (pagination.Page[domain.ActivityView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.ActivityView]{}, domain.ErrInvalidCompany
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, domain.ListActivityFilter{
		EntityType:   strings.TrimSpace(req.EntityType),
		EntityID:     strings.TrimSpace(req.EntityID),
		Status:       strings.TrimSpace(req.Status),
		ActivityType: strings.TrimSpace(req.ActivityType),
		AssignedTo:   strings.TrimSpace(req.AssignedTo),
		CreatedFrom:  req.CreatedFrom,
		CreatedTo:    req.CreatedTo,
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.ActivityView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(a *domain.Activity) (string, time.Time) { return a.ID.String(), a.CreatedAt },
		func(a *domain.Activity) domain.ActivityView { return domain.ToView(a, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.ActivityView, error) {
	activity, err := s.find(ctx, id)
	if err != nil {
		return domain.ActivityView{}, err
	}
	return domain.ToView(activity, s.clock.Now()), nil
}

// Update applies a partial update. Completing an activity without an explicit
// completed_date stamps the current time.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.ActivityView, error) {
	activity, err := s.find(ctx, id)
	if err != nil {
		return domain.ActivityView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["title"]; ok && v == nil {
		return domain.ActivityView{}, domain.ErrInvalidTitle
	}
	if v, ok := updates["activity_type"]; ok && v == nil {
		return domain.ActivityView{}, domain.ErrInvalidType
	}
	if err := patch.Times(updates, dateColumns...); err != nil {
		return domain.ActivityView{}, domain.ErrInvalidDate
	}
	if status, ok := updates["status"].(string); ok {
		updates["status"] = strings.ToLower(status)
		if domain.IsCompleted(status) && updates["completed_date"] == nil {
			updates["completed_date"] = s.clock.Now()
		}
	}
	if len(updates) == 0 {
		return domain.ToView(activity, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, activity.CompanyID, activity.ID, updates); err != nil {
		return domain.ActivityView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	activity, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, activity.CompanyID, activity.ID)
	return err
}

// DeleteAll removes every activity of the current company.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return 0, domain.ErrInvalidCompany
	}
	deleted, err := s.repo.DeleteAll(ctx, s.db, companyID)
	if err != nil {
		return 0, err
	}
	s.log.Info("activities cleared",
		zap.String("company_id", companyID.String()),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Activity, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	activityID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	activity, err := s.repo.FindByID(ctx, s.db, companyID, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, domain.ErrNotFound
	}
	return activity, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

