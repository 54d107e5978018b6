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
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/document"
	"github.com/smallbiznis/crm/internal/invoice/domain"
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/providers/pdf"
	quotationdomain "github.com/smallbiznis/crm/internal/quotation/domain"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"invoice_date", "due_date", "account_id",
	"customer_name", "contact_person", "customer_email", "customer_phone", "customer_gstin",
	"billing_address", "shipping_address", "place_of_supply",
	"amount_paid", "currency", "status", "assigned_to", "payment_terms", "notes", "terms_conditions",
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Settings   *config.SettingsHolder
	Repo       domain.Repository
	Quotations quotationdomain.Repository
	Numbers    numbering.Generator
	PDF        pdf.Provider
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	settings   *config.SettingsHolder
	repo       domain.Repository
	quotations quotationdomain.Repository
	numbers    numbering.Generator
	pdf        pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		settings:   p.Settings,
		repo:       p.Repo,
		quotations: p.Quotations,
		numbers:    p.Numbers,
		pdf:        p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.InvoiceView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.InvoiceView{}, domain.ErrInvalidCompany
	}

	customer := req.Customer.Trimmed()
	items := lineitem.WithProducts(req.LineItems)
	currency := strings.TrimSpace(req.Currency)
	accountID := req.AccountID

	var quotation *quotationdomain.Quotation
	if req.QuotationID != nil {
		found, err := s.quotations.FindByID(ctx, s.db, companyID, *req.QuotationID)
		if err != nil {
			return domain.InvoiceView{}, err
		}
		if found == nil {
			return domain.InvoiceView{}, domain.ErrQuotationMissing
		}
		quotation = found
		if len(items) == 0 {
			items = []lineitem.LineItem(found.LineItems)
			if customer.CustomerName == "" {
				customer = found.Customer
			}
		}
		if currency == "" {
			currency = found.Currency
		}
		if accountID == nil {
			accountID = found.AccountID
		}
	}

	if customer.CustomerName == "" {
		return domain.InvoiceView{}, domain.ErrInvalidCustomer
	}

	now := s.clock.Now()
	invoiceDate := now
	if d := req.InvoiceDate.Ptr(); d != nil {
		invoiceDate = *d
	}
	dueDate := req.DueDate.Ptr()
	if dueDate == nil {
		d := invoiceDate.AddDate(0, 0, domain.DefaultDueDays)
		dueDate = &d
	}
	if dueDate.Before(invoiceDate) {
		return domain.InvoiceView{}, domain.ErrInvalidDate
	}

	settings := s.settings.Get()
	seller := document.LoadSeller(ctx, s.db, companyID, settings.HomeState)
	priced, amounts, err := document.Price(items, seller.Region, customer.PlaceOfSupply)
	if err != nil {
		return domain.InvoiceView{}, domain.ErrInvalidLineItems
	}

	invoice := domain.Invoice{
		ID:              s.genID.Generate(),
		CompanyID:       companyID,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		QuotationID:     req.QuotationID,
		AccountID:       accountID,
		Customer:        customer,
		LineItems:       datatypes.NewJSONSlice(priced),
		Amounts:         amounts,
		AmountPaid:      decimal.Zero,
		Currency:        defaultString(currency, settings.DefaultCurrency),
		Status:          defaultString(req.Status, domain.StatusDraft),
		AssignedTo:      strings.TrimSpace(req.AssignedTo),
		PaymentTerms:    strings.TrimSpace(req.PaymentTerms),
		Notes:           strings.TrimSpace(req.Notes),
		TermsConditions: strings.TrimSpace(req.TermsConditions),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Assign(ctx, tx, s.numbers, companyID, numbering.DocInvoice, req.InvoiceNumber, invoiceDate, s.numberTaken(companyID))
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}
		if quotation == nil || strings.EqualFold(quotation.Status, quotationdomain.StatusAccepted) {
			return nil
		}
		_, err = s.quotations.Update(ctx, tx, companyID, quotation.ID, map[string]any{
			"status":     quotationdomain.StatusAccepted,
			"updated_at": now,
		})
		return err
	})
	if errors.Is(err, numbering.ErrNumberTaken) {
		return domain.InvoiceView{}, domain.ErrNumberTaken
	}
	if err != nil {
		return domain.InvoiceView{}, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total_amount", invoice.TotalAmount.String()),
	)
	return domain.ToView(&invoice, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (pagination.Page[domain.InvoiceView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.InvoiceView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListInvoiceFilter{
		Status:      strings.TrimSpace(req.Status),
		Search:      strings.TrimSpace(req.Search),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	var err error
	if filter.QuotationID, err = optionalID(req.QuotationID); err != nil {
		return pagination.Page[domain.InvoiceView]{}, err
	}
	if filter.AccountID, err = optionalID(req.AccountID); err != nil {
		return pagination.Page[domain.InvoiceView]{}, err
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.InvoiceView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(inv *domain.Invoice) (string, time.Time) { return inv.ID.String(), inv.CreatedAt },
		func(inv *domain.Invoice) domain.InvoiceView { return domain.ToView(inv, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.InvoiceView, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	return domain.ToView(invoice, s.clock.Now()), nil
}

// Update applies allowlisted columns and recomputes totals when line items or
// the place of supply change. Recording amount_paid without an explicit status
// moves the invoice to Partially Paid or Paid.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.InvoiceView, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.InvoiceView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["customer_name"]; ok && v == nil {
		return domain.InvoiceView{}, domain.ErrInvalidCustomer
	}
	if v, ok := updates["status"]; ok && v == nil {
		updates["status"] = domain.StatusDraft
	}
	if v, ok := updates["currency"]; ok && v == nil {
		updates["currency"] = s.settings.Get().DefaultCurrency
	}
	if v, ok := updates["invoice_date"]; ok && v == nil {
		delete(updates, "invoice_date")
	}
	if v, ok := updates["amount_paid"]; ok && v == nil {
		updates["amount_paid"] = decimal.Zero
	}
	if err := patch.Times(updates, "invoice_date", "due_date"); err != nil {
		return domain.InvoiceView{}, domain.ErrInvalidDate
	}
	if err := patch.Decimals(updates, "amount_paid"); err != nil {
		return domain.InvoiceView{}, domain.ErrInvalidAmount
	}
	if raw, ok := updates["account_id"]; ok && raw != nil {
		str, isString := raw.(string)
		if !isString {
			return domain.InvoiceView{}, domain.ErrInvalidID
		}
		accountID, err := parseID(str)
		if err != nil {
			return domain.InvoiceView{}, err
		}
		updates["account_id"] = accountID
	}

	total := invoice.TotalAmount
	rawItems, itemsTouched := fields["line_items"]
	_, supplyTouched := updates["place_of_supply"]
	if itemsTouched || supplyTouched {
		items := []lineitem.LineItem(invoice.LineItems)
		if itemsTouched {
			decoded, err := document.DecodeItems(rawItems)
			if err != nil {
				return domain.InvoiceView{}, domain.ErrInvalidLineItems
			}
			items = decoded
		}
		placeOfSupply := invoice.PlaceOfSupply
		if supplyTouched {
			placeOfSupply, _ = updates["place_of_supply"].(string)
		}
		seller := document.LoadSeller(ctx, s.db, invoice.CompanyID, s.settings.Get().HomeState)
		priced, amounts, err := document.Price(items, seller.Region, placeOfSupply)
		if err != nil {
			return domain.InvoiceView{}, domain.ErrInvalidLineItems
		}
		updates["line_items"] = datatypes.NewJSONSlice(priced)
		for column, value := range amounts.Columns() {
			updates[column] = value
		}
		total = amounts.TotalAmount
	}

	if paid, ok := updates["amount_paid"].(decimal.Decimal); ok {
		if _, explicit := updates["status"]; !explicit {
			if status := domain.PaymentStatus(paid, total); status != "" {
				updates["status"] = status
			}
		}
	}
	if len(updates) == 0 {
		return domain.ToView(invoice, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, invoice.CompanyID, invoice.ID, updates); err != nil {
		return domain.InvoiceView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, invoice.CompanyID, invoice.ID)
	return err
}

func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, domain.InvoiceView, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return nil, domain.InvoiceView{}, err
	}
	view := domain.ToView(invoice, s.clock.Now())

	doc := pdf.Document{
		Title:     "Tax Invoice",
		Number:    view.InvoiceNumber,
		IssueDate: view.InvoiceDate.Format("02 Jan 2006"),
		DateLabel: "Due date",
		Items:     document.PDFItems(view.LineItems),
		Notes:     view.Notes,
		Terms:     view.TermsConditions,
	}
	if view.DueDate != nil {
		doc.Date = view.DueDate.Format("02 Jan 2006")
	}
	seller := document.LoadSeller(ctx, s.db, invoice.CompanyID, s.settings.Get().HomeState)
	document.FillPDF(&doc, seller, view.Customer, view.Amounts, view.Currency)

	out, err := s.pdf.RenderDocument(ctx, doc)
	if err != nil {
		s.log.Error("failed to render invoice pdf",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
		return nil, domain.InvoiceView{}, err
	}
	return out, view, nil
}

func (s *Service) numberTaken(companyID snowflake.ID) numbering.TakenFunc {
	return func(ctx context.Context, db *gorm.DB, number string) (bool, error) {
		existing, err := s.repo.FindByNumber(ctx, db, companyID, number)
		return existing != nil, err
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.Invoice, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func optionalID(value string) (*snowflake.ID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := parseID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
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
