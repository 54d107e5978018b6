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
	"github.com/smallbiznis/crm/internal/lineitem"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/providers/pdf"
	"github.com/smallbiznis/crm/internal/quotation/domain"
	"github.com/smallbiznis/crm/internal/quotation/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Quotation{}, &numbering.DocumentSequence{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	settings := config.NewStaticSettings(config.DefaultSettings())
	svc := &Service{
		db:       db,
		log:      log,
		genID:    node,
		clock:    clock.NewFakeClock(time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)),
		settings: settings,
		repo:     repository.Provide(),
		numbers:  numbering.New(numbering.Params{Log: log, GenID: node, Settings: settings}),
		pdf:      pdf.New(),
	}
	return svc, companycontext.WithCompanyID(context.Background(), node.Generate().Int64())
}

func purifier() lineitem.LineItem {
	return lineitem.LineItem{
		Product:   "RO Purifier",
		HSNCode:   "8421",
		Quantity:  decimal.NewFromInt(2),
		UnitPrice: decimal.NewFromInt(1000),
		Discount:  decimal.NewFromInt(10),
		TaxRate:   decimal.NewFromInt(18),
		Amount:    decimal.NewFromInt(99999),
	}
}

func TestCreateComputesTotalsAndDefaults(t *testing.T) {
	svc, ctx := newTestService(t)

	view, err := svc.Create(ctx, domain.CreateQuotationRequest{
		Customer:  document.Customer{CustomerName: " Globex ", PlaceOfSupply: "Karnataka"},
		LineItems: []lineitem.LineItem{purifier(), {Product: " "}},
	})
	require.NoError(t, err)

	assert.Equal(t, "QTN-2025-001", view.QuoteNumber)
	assert.Equal(t, "Globex", view.CustomerName)
	assert.Equal(t, domain.StatusDraft, view.Status)
	assert.Equal(t, domain.DefaultRevision, view.Revision)
	assert.Equal(t, "INR", view.Currency)
	require.Len(t, view.LineItems, 1)
	assert.Equal(t, "2124", view.LineItems[0].Amount.String())
	assert.Equal(t, "2124", view.TotalAmount.String())
	assert.Equal(t, "162", view.CGSTAmount.String())
	assert.Equal(t, document.TaxTypeIntra, view.TaxType)
	require.NotNil(t, view.ValidUntil)
	assert.Equal(t, time.Date(2025, 4, 14, 8, 0, 0, 0, time.UTC), view.ValidUntil.UTC())
}

func TestCreateValidation(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateQuotationRequest{LineItems: []lineitem.LineItem{purifier()}})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = svc.Create(ctx, domain.CreateQuotationRequest{Customer: document.Customer{CustomerName: "Globex"}})
	assert.ErrorIs(t, err, domain.ErrInvalidLineItems)

	_, err = svc.Create(context.Background(), domain.CreateQuotationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestCreateRejectsDuplicateNumber(t *testing.T) {
	svc, ctx := newTestService(t)
	req := domain.CreateQuotationRequest{
		QuoteNumber: "QTN-CUSTOM",
		Customer:    document.Customer{CustomerName: "Globex"},
		LineItems:   []lineitem.LineItem{purifier()},
	}

	_, err := svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNumberTaken)
}

func TestUpdateRecomputesOnPlaceOfSupply(t *testing.T) {
	svc, ctx := newTestService(t)
	created, err := svc.Create(ctx, domain.CreateQuotationRequest{
		Customer:  document.Customer{CustomerName: "Globex"},
		LineItems: []lineitem.LineItem{purifier()},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.String(), map[string]any{
		"place_of_supply": "Tamil Nadu",
		"total_amount":    1,
	})
	require.NoError(t, err)
	assert.Equal(t, document.TaxTypeInter, updated.TaxType)
	assert.Equal(t, "324", updated.IGSTAmount.String())
	assert.True(t, updated.CGSTAmount.IsZero())
	assert.Equal(t, "2124", updated.TotalAmount.String())

	updated, err = svc.Update(ctx, created.ID.String(), map[string]any{
		"line_items": []any{
			map[string]any{"product": "RO Purifier", "quantity": 2, "unit_price": 1000, "discount": 10, "tax_rate": 18},
			map[string]any{"product": "RO Purifier", "quantity": "2", "unit_price": "1000", "discount": "10", "tax_rate": "18"},
		},
		"status": "",
	})
	require.NoError(t, err)
	assert.Len(t, updated.LineItems, 2)
	assert.Equal(t, "4248", updated.TotalAmount.String())
	assert.Equal(t, domain.StatusDraft, updated.Status)

	_, err = svc.Update(ctx, created.ID.String(), map[string]any{"line_items": []any{}})
	assert.ErrorIs(t, err, domain.ErrInvalidLineItems)

	_, err = svc.Update(ctx, created.ID.String(), map[string]any{"customer_name": ""})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

func TestRenderPDF(t *testing.T) {
	svc, ctx := newTestService(t)
	created, err := svc.Create(ctx, domain.CreateQuotationRequest{
		Customer:        document.Customer{CustomerName: "Globex", BillingAddress: "MG Road"},
		LineItems:       []lineitem.LineItem{purifier()},
		TermsConditions: "Prices valid for 30 days",
	})
	require.NoError(t, err)

	out, view, err := svc.RenderPDF(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.QuoteNumber, view.QuoteNumber)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))

	_, _, err = svc.RenderPDF(ctx, snowflake.ID(42).String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
