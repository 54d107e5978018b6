package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/document"
	"github.com/smallbiznis/crm/internal/invoice/domain"
	"github.com/smallbiznis/crm/internal/invoice/repository"
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/providers/pdf"
	quotationdomain "github.com/smallbiznis/crm/internal/quotation/domain"
	quotationrepository "github.com/smallbiznis/crm/internal/quotation/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	ctx   context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}, &quotationdomain.Quotation{}, &numbering.DocumentSequence{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	settings := config.NewStaticSettings(config.DefaultSettings())
	fake := clock.NewFakeClock(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	svc := &Service{
		db:         db,
		log:        log,
		genID:      node,
		clock:      fake,
		settings:   settings,
		repo:       repository.Provide(),
		quotations: quotationrepository.Provide(),
		numbers:    numbering.New(numbering.Params{Log: log, GenID: node, Settings: settings}),
		pdf:        pdf.New(),
	}
	return fixture{
		svc:   svc,
		db:    db,
		node:  node,
		clock: fake,
		ctx:   companycontext.WithCompanyID(context.Background(), node.Generate().Int64()),
	}
}

func purifier() lineitem.LineItem {
	return lineitem.LineItem{
		Product:   "RO Purifier",
		Quantity:  decimal.NewFromInt(2),
		UnitPrice: decimal.NewFromInt(1000),
		Discount:  decimal.NewFromInt(10),
		TaxRate:   decimal.NewFromInt(18),
	}
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{
		Customer:  document.Customer{CustomerName: "Globex", PlaceOfSupply: "Kerala"},
		LineItems: []lineitem.LineItem{purifier()},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2025-001", view.InvoiceNumber)
	assert.Equal(t, domain.StatusDraft, view.Status)
	assert.Equal(t, "2124", view.TotalAmount.String())
	assert.Equal(t, "324", view.IGSTAmount.String())
	assert.Equal(t, "2124", view.BalanceDue.String())
	assert.False(t, view.IsOverdue)
	require.NotNil(t, view.DueDate)
	assert.Equal(t, 31, view.DueDate.Day())
}

func TestCreateFromQuotationCopiesItems(t *testing.T) {
	f := newFixture(t)
	companyID, _ := companycontext.CompanyIDFromContext(f.ctx)
	quotation := quotationdomain.Quotation{
		ID:          f.node.Generate(),
		CompanyID:   companyID,
		QuoteNumber: "QTN-2025-001",
		QuoteDate:   f.clock.Now(),
		Revision:    quotationdomain.DefaultRevision,
		Customer:    document.Customer{CustomerName: "Initech", PlaceOfSupply: "Karnataka"},
		LineItems:   datatypes.NewJSONSlice([]lineitem.LineItem{purifier(), purifier()}),
		Currency:    "USD",
		Status:      quotationdomain.StatusSent,
		CreatedAt:   f.clock.Now(),
		UpdatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&quotation).Error)

	view, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{QuotationID: &quotation.ID})
	require.NoError(t, err)
	assert.Equal(t, "Initech", view.CustomerName)
	assert.Equal(t, "USD", view.Currency)
	assert.Len(t, view.LineItems, 2)
	assert.Equal(t, "4248", view.TotalAmount.String())
	assert.Equal(t, document.TaxTypeIntra, view.TaxType)

	var stored quotationdomain.Quotation
	require.NoError(t, f.db.First(&stored, "id = ?", quotation.ID).Error)
	assert.Equal(t, quotationdomain.StatusAccepted, stored.Status)

	missing := f.node.Generate()
	_, err = f.svc.Create(f.ctx, domain.CreateInvoiceRequest{QuotationID: &missing})
	assert.ErrorIs(t, err, domain.ErrQuotationMissing)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{LineItems: []lineitem.LineItem{purifier()}})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = f.svc.Create(f.ctx, domain.CreateInvoiceRequest{Customer: document.Customer{CustomerName: "Globex"}})
	assert.ErrorIs(t, err, domain.ErrInvalidLineItems)
}

func TestUpdatePaymentDerivesStatus(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{
		Customer:  document.Customer{CustomerName: "Globex"},
		LineItems: []lineitem.LineItem{purifier()},
	})
	require.NoError(t, err)

	partial, err := f.svc.Update(f.ctx, created.ID.String(), map[string]any{"amount_paid": 1000.0})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyPaid, partial.Status)
	assert.Equal(t, "1124", partial.BalanceDue.String())

	paid, err := f.svc.Update(f.ctx, created.ID.String(), map[string]any{"amount_paid": "2124"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	assert.True(t, paid.BalanceDue.IsZero())

	_, err = f.svc.Update(f.ctx, created.ID.String(), map[string]any{"amount_paid": -1.0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestOverdueView(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{
		Customer:  document.Customer{CustomerName: "Globex"},
		LineItems: []lineitem.LineItem{purifier()},
	})
	require.NoError(t, err)

	f.clock.Advance(45 * 24 * time.Hour)
	view, err := f.svc.Get(f.ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, view.IsOverdue)
	assert.Equal(t, 45, view.DaysSinceCreation)
}

func TestListAndRender(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{
			Customer:  document.Customer{CustomerName: "Globex"},
			LineItems: []lineitem.LineItem{purifier()},
		})
		require.NoError(t, err)
	}

	page, err := f.svc.List(f.ctx, domain.ListInvoiceRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextPageToken)

	out, view, err := f.svc.RenderPDF(f.ctx, page.Items[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, page.Items[0].InvoiceNumber, view.InvoiceNumber)
	assert.Equal(t, "%PDF", string(out[:4]))
}
