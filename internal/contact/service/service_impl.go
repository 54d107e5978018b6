package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	"github.com/smallbiznis/crm/internal/auditcontext"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/contact/domain"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]+$`)
)

var updatableColumns = patch.Allow(
	"account_id", "owner_id", "salutation", "first_name", "middle_name", "last_name",
	"job_title", "department", "company_name", "email_primary", "email_secondary",
	"phone_mobile", "phone_work", "lifecycle_stage", "current_contact_status",
	"lead_source", "city", "state", "country", "tags", "notes",
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Accounts accountdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	accounts accountdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("contact.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		accounts: p.Accounts,
	}
}

// Create validates the required fields in order, then the email and phone
// formats. A linked account overrides the submitted company name.
func (s *Service) Create(ctx context.Context, req domain.CreateContactRequest) (domain.ContactView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.ContactView{}, domain.ErrInvalidCompany
	}

	contact := domain.Contact{
		Salutation:           strings.TrimSpace(req.Salutation),
		FirstName:            strings.TrimSpace(req.FirstName),
		MiddleName:           strings.TrimSpace(req.MiddleName),
		LastName:             strings.TrimSpace(req.LastName),
		JobTitle:             strings.TrimSpace(req.JobTitle),
		Department:           strings.TrimSpace(req.Department),
		CompanyName:          strings.TrimSpace(req.CompanyName),
		EmailPrimary:         strings.ToLower(strings.TrimSpace(req.EmailPrimary)),
		EmailSecondary:       strings.ToLower(strings.TrimSpace(req.EmailSecondary)),
		PhoneMobile:          strings.TrimSpace(req.PhoneMobile),
		PhoneWork:            strings.TrimSpace(req.PhoneWork),
		LifecycleStage:       strings.TrimSpace(req.LifecycleStage),
		CurrentContactStatus: defaultString(req.CurrentContactStatus, domain.StatusActive),
		LeadSource:           strings.TrimSpace(req.LeadSource),
		City:                 strings.TrimSpace(req.City),
		State:                strings.TrimSpace(req.State),
		Country:              strings.TrimSpace(req.Country),
		Tags:                 datatypes.JSONSlice[string](cleanTags(req.Tags)),
		Notes:                strings.TrimSpace(req.Notes),
	}
	if err := validate(map[string]string{
		"first_name":      contact.FirstName,
		"last_name":       contact.LastName,
		"email_primary":   contact.EmailPrimary,
		"phone_mobile":    contact.PhoneMobile,
		"lifecycle_stage": contact.LifecycleStage,
	}); err != nil {
		return domain.ContactView{}, err
	}

	if req.AccountID != nil && *req.AccountID != 0 {
		account, err := s.account(ctx, companyID, *req.AccountID)
		if err != nil {
			return domain.ContactView{}, err
		}
		contact.AccountID = &account.ID
		contact.CompanyName = account.AccountName
	}
	if req.OwnerID != nil && *req.OwnerID != 0 {
		contact.OwnerID = req.OwnerID
	}
	contact.CreatedBy = actorID(ctx)

	now := s.clock.Now()
	contact.ID = s.genID.Generate()
	contact.CompanyID = companyID
	contact.CreatedAt = now
	contact.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &contact); err != nil {
		return domain.ContactView{}, err
	}
	return domain.ToView(&contact, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListContactRequest) (pagination.Page[domain.ContactView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.ContactView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListContactFilter{
		Search:         strings.TrimSpace(req.Search),
		LifecycleStage: strings.TrimSpace(req.LifecycleStage),
		Status:         strings.TrimSpace(req.Status),
		CreatedFrom:    req.CreatedFrom,
		CreatedTo:      req.CreatedTo,
	}
	if strings.TrimSpace(req.AccountID) != "" {
		accountID, err := parseID(req.AccountID)
		if err != nil {
			return pagination.Page[domain.ContactView]{}, err
		}
		filter.AccountID = &accountID
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.ContactView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(c *domain.Contact) (string, time.Time) { return c.ID.String(), c.CreatedAt },
		func(c *domain.Contact) domain.ContactView { return domain.ToView(c, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.ContactView, error) {
	contact, err := s.find(ctx, id)
	if err != nil {
		return domain.ContactView{}, err
	}
	return domain.ToView(contact, s.clock.Now()), nil
}

// Update applies a partial update. Required fields cannot be cleared, and
// relinking an account refreshes the company name.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.ContactView, error) {
	contact, err := s.find(ctx, id)
	if err != nil {
		return domain.ContactView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if len(updates) == 0 {
		return domain.ToView(contact, s.clock.Now()), nil
	}

	touched := make(map[string]string)
	for _, field := range domain.RequiredFields {
		raw, ok := updates[field]
		if !ok {
			continue
		}
		value, _ := raw.(string)
		touched[field] = value
	}
	if email, ok := touched["email_primary"]; ok && email != "" {
		touched["email_primary"] = strings.ToLower(email)
		updates["email_primary"] = touched["email_primary"]
	}
	if err := validate(touched); err != nil {
		return domain.ContactView{}, err
	}

	for _, column := range []string{"account_id", "owner_id"} {
		raw, ok := updates[column]
		if !ok || raw == nil {
			continue
		}
		str, isString := raw.(string)
		if !isString {
			return domain.ContactView{}, domain.ErrInvalidID
		}
		ref, err := parseID(str)
		if err != nil {
			return domain.ContactView{}, err
		}
		updates[column] = ref
	}
	if ref, ok := updates["account_id"].(snowflake.ID); ok {
		account, err := s.account(ctx, contact.CompanyID, ref)
		if err != nil {
			return domain.ContactView{}, err
		}
		updates["company_name"] = account.AccountName
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, contact.CompanyID, contact.ID, updates); err != nil {
		return domain.ContactView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	contact, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, contact.CompanyID, contact.ID)
	return err
}

func (s *Service) find(ctx context.Context, id string) (*domain.Contact, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	contactID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	contact, err := s.repo.FindByID(ctx, s.db, companyID, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, domain.ErrNotFound
	}
	return contact, nil
}

func (s *Service) account(ctx context.Context, companyID, id snowflake.ID) (*accountdomain.Account, error) {
	account, err := s.accounts.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrInvalidAccount
	}
	return account, nil
}

// validate checks the given required fields in declaration order, then the
// email and phone formats of whichever of them are present.
func validate(values map[string]string) error {
	for _, field := range domain.RequiredFields {
		if value, ok := values[field]; ok && value == "" {
			return &domain.MissingFieldError{Field: field}
		}
	}
	if email, ok := values["email_primary"]; ok && !emailPattern.MatchString(email) {
		return domain.ErrInvalidEmail
	}
	if phone, ok := values["phone_mobile"]; ok && !phonePattern.MatchString(phone) {
		return domain.ErrInvalidPhone
	}
	return nil
}

func actorID(ctx context.Context) *snowflake.ID {
	actorType, raw := auditcontext.ActorFromContext(ctx)
	if actorType != "user" {
		return nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return nil
	}
	return &id
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

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
