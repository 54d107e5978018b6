package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/document"
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/providers/pdf"
	"github.com/smallbiznis/crm/internal/quotation/domain"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"quote_date", "valid_until", "revision", "account_id", "lead_id",
	"customer_name", "contact_person", "customer_email", "customer_phone", "customer_gstin",
	"billing_address", "shipping_address", "place_of_supply",
	"currency", "status", "assigned_to", "priority", "reference_number", "subject",
	"notes", "terms_conditions", "payment_terms", "delivery_terms",
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Settings *config.SettingsHolder
	Repo     domain.Repository
	Numbers  numbering.Generator
	PDF      pdf.Provider
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	settings *config.SettingsHolder
	repo     domain.Repository
	numbers  numbering.Generator
	pdf      pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("quotation.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		settings: p.Settings,
		repo:     p.Repo,
		numbers:  p.Numbers,
		pdf:      p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuotationRequest) (domain.QuotationView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.QuotationView{}, domain.ErrInvalidCompany
	}

	customer := req.Customer.Trimmed()
	if customer.CustomerName == "" {
		return domain.QuotationView{}, domain.ErrInvalidCustomer
	}

	now := s.clock.Now()
	quoteDate := now
	if d := req.QuoteDate.Ptr(); d != nil {
		quoteDate = *d
	}
	validUntil := req.ValidUntil.Ptr()
	if validUntil == nil {
		v := quoteDate.AddDate(0, 0, domain.DefaultValidityDays)
		validUntil = &v
	}
	if validUntil.Before(quoteDate) {
		return domain.QuotationView{}, domain.ErrInvalidDate
	}

	settings := s.settings.Get()
	seller := document.LoadSeller(ctx, s.db, companyID, settings.HomeState)
	priced, amounts, err := document.Price(req.LineItems, seller.Region, customer.PlaceOfSupply)
	if err != nil {
		return domain.QuotationView{}, domain.ErrInvalidLineItems
	}

	quotation := domain.Quotation{
		ID:              s.genID.Generate(),
		CompanyID:       companyID,
		QuoteDate:       quoteDate,
		ValidUntil:      validUntil,
		Revision:        defaultString(req.Revision, domain.DefaultRevision),
		AccountID:       req.AccountID,
		LeadID:          req.LeadID,
		Customer:        customer,
		LineItems:       datatypes.NewJSONSlice(priced),
		Amounts:         amounts,
		Currency:        defaultString(req.Currency, settings.DefaultCurrency),
		Status:          defaultString(req.Status, domain.StatusDraft),
		AssignedTo:      strings.TrimSpace(req.AssignedTo),
		Priority:        defaultString(req.Priority, domain.DefaultPriority),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Subject:         strings.TrimSpace(req.Subject),
		Notes:           strings.TrimSpace(req.Notes),
		TermsConditions: strings.TrimSpace(req.TermsConditions),
		PaymentTerms:    strings.TrimSpace(req.PaymentTerms),
		DeliveryTerms:   strings.TrimSpace(req.DeliveryTerms),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Assign(ctx, tx, s.numbers, companyID, numbering.DocQuotation, req.QuoteNumber, quoteDate, s.numberTaken(companyID))
		if err != nil {
			return err
		}
		quotation.QuoteNumber = number
		return s.repo.Insert(ctx, tx, &quotation)
	})
	if errors.Is(err, numbering.ErrNumberTaken) {
		return domain.QuotationView{}, domain.ErrNumberTaken
	}
	if err != nil {
		return domain.QuotationView{}, err
	}

	s.log.Info("quotation created",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("quote_number", quotation.QuoteNumber),
		zap.String("total_amount", quotation.TotalAmount.String()),
	)
	return domain.ToView(&quotation, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuotationRequest) (pagination.Page[domain.QuotationView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.QuotationView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListQuotationFilter{
		Status:      strings.TrimSpace(req.Status),
		AssignedTo:  strings.TrimSpace(req.AssignedTo),
		Search:      strings.TrimSpace(req.Search),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if v := strings.TrimSpace(req.AccountID); v != "" {
		id, err := parseID(v)
		if err != nil {
			return pagination.Page[domain.QuotationView]{}, err
		}
		filter.AccountID = &id
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.QuotationView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(q *domain.Quotation) (string, time.Time) { return q.ID.String(), q.CreatedAt },
		func(q *domain.Quotation) domain.QuotationView { return domain.ToView(q, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.QuotationView, error) {
	quotation, err := s.find(ctx, id)
	if err != nil {
		return domain.QuotationView{}, err
	}
	return domain.ToView(quotation, s.clock.Now()), nil
}

// Update applies allowlisted columns. Totals are recomputed whenever the line
// items or the place of supply change; client-sent amounts are ignored.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.QuotationView, error) {
	quotation, err := s.find(ctx, id)
	if err != nil {
		return domain.QuotationView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["customer_name"]; ok && v == nil {
		return domain.QuotationView{}, domain.ErrInvalidCustomer
	}
	for column, fallback := range map[string]string{
		"status":   domain.StatusDraft,
		"revision": domain.DefaultRevision,
		"currency": s.settings.Get().DefaultCurrency,
	} {
		if v, ok := updates[column]; ok && v == nil {
			updates[column] = fallback
		}
	}
	if v, ok := updates["quote_date"]; ok && v == nil {
		delete(updates, "quote_date")
	}
	if err := patch.Times(updates, "quote_date", "valid_until"); err != nil {
		return domain.QuotationView{}, domain.ErrInvalidDate
	}
	if err := refIDs(updates, "account_id", "lead_id"); err != nil {
		return domain.QuotationView{}, err
	}

	rawItems, itemsTouched := fields["line_items"]
	_, supplyTouched := updates["place_of_supply"]
	if itemsTouched || supplyTouched {
		items := []lineitem.LineItem(quotation.LineItems)
		if itemsTouched {
			decoded, err := document.DecodeItems(rawItems)
			if err != nil {
				return domain.QuotationView{}, domain.ErrInvalidLineItems
			}
			items = decoded
		}
		placeOfSupply := quotation.PlaceOfSupply
		if supplyTouched {
			placeOfSupply, _ = updates["place_of_supply"].(string)
		}
		seller := document.LoadSeller(ctx, s.db, quotation.CompanyID, s.settings.Get().HomeState)
		priced, amounts, err := document.Price(items, seller.Region, placeOfSupply)
		if err != nil {
			return domain.QuotationView{}, domain.ErrInvalidLineItems
		}
		updates["line_items"] = datatypes.NewJSONSlice(priced)
		for column, value := range amounts.Columns() {
			updates[column] = value
		}
	}
	if len(updates) == 0 {
		return domain.ToView(quotation, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, quotation.CompanyID, quotation.ID, updates); err != nil {
		return domain.QuotationView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	quotation, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, quotation.CompanyID, quotation.ID)
	return err
}

// RenderPDF renders the stored quotation. Amounts come from the saved row.
func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, domain.QuotationView, error) {
	quotation, err := s.find(ctx, id)
	if err != nil {
		return nil, domain.QuotationView{}, err
	}
	view := domain.ToView(quotation, s.clock.Now())

	doc := pdf.Document{
		Title:     "Quotation",
		Number:    view.QuoteNumber,
		IssueDate: view.QuoteDate.Format("02 Jan 2006"),
		DateLabel: "Valid until",
		Items:     document.PDFItems(view.LineItems),
		Notes:     view.Notes,
		Terms:     view.TermsConditions,
	}
	if view.ValidUntil != nil {
		doc.Date = view.ValidUntil.Format("02 Jan 2006")
	}
	seller := document.LoadSeller(ctx, s.db, quotation.CompanyID, s.settings.Get().HomeState)
	document.FillPDF(&doc, seller, view.Customer, view.Amounts, view.Currency)

	out, err := s.pdf.RenderDocument(ctx, doc)
	if err != nil {
		s.log.Error("failed to render quotation pdf",
			zap.String("quotation_id", quotation.ID.String()),
			zap.Error(err),
		)
		return nil, domain.QuotationView{}, err
	}
	return out, view, nil
}

func (s *Service) numberTaken(companyID snowflake.ID) numbering.TakenFunc {
	return func(ctx context.Context, db *gorm.DB, number string) (bool, error) {
		existing, err := s.repo.FindByNumber(ctx, db, companyID, number)
		return existing != nil, err
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.Quotation, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	quotationID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	quotation, err := s.repo.FindByID(ctx, s.db, companyID, quotationID)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, domain.ErrNotFound
	}
	return quotation, nil
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
