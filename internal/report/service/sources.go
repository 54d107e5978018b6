package service

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	amcdomain "github.com/smallbiznis/crm/internal/amc/domain"
	complaintdomain "github.com/smallbiznis/crm/internal/complaint/domain"
	dealdomain "github.com/smallbiznis/crm/internal/deal/domain"
	installationdomain "github.com/smallbiznis/crm/internal/installation/domain"
	invoicedomain "github.com/smallbiznis/crm/internal/invoice/domain"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
	productdomain "github.com/smallbiznis/crm/internal/product/domain"
	quotationdomain "github.com/smallbiznis/crm/internal/quotation/domain"
	"github.com/smallbiznis/crm/internal/report/domain"
	salesorderdomain "github.com/smallbiznis/crm/internal/salesorder/domain"
	supportdomain "github.com/smallbiznis/crm/internal/support/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type source string

const (
	srcLeads         source = "leads"
	srcDeals         source = "deals"
	srcQuotations    source = "quotations"
	srcAccounts      source = "accounts"
	srcSalesOrders   source = "sales_orders"
	srcActivities    source = "activities"
	srcInstallations source = "installations"
	srcAMC           source = "amc_contracts"
	srcComplaints    source = "complaints"
	srcCases         source = "cases"
	srcSolutions     source = "solutions"
	srcProducts      source = "products"
	srcInvoices      source = "invoices"
)

// need is one collection an aggregator reads. Ranged sources are limited to
// rows created inside the report period.
type need struct {
	source source
	ranged bool
}

func all(src source) need    { return need{source: src} }
func ranged(src source) need { return need{source: src, ranged: true} }

// dataset holds every collection a report may read. A source that was not
// requested, or that failed to load, stays empty.
type dataset struct {
	leads         []*leaddomain.Lead
	deals         []*dealdomain.Deal
	quotations    []*quotationdomain.Quotation
	accounts      []*accountdomain.Account
	salesOrders   []*salesorderdomain.SalesOrder
	activities    []*activitydomain.Activity
	installations []*installationdomain.Installation
	contracts     []*amcdomain.Contract
	complaints    []*complaintdomain.Complaint
	cases         []*supportdomain.Case
	solutions     []*supportdomain.Solution
	products      []*productdomain.Product
	invoices      []*invoicedomain.Invoice

	failed []string
}

type loader struct {
	db        *gorm.DB
	log       *zap.Logger
	companyID snowflake.ID
	dateRange domain.DateRange

	mu     sync.Mutex
	failed []string
}

// fetch loads every needed source concurrently. A failing source is logged,
// reported through onFail and left empty; only cancellation of ctx fails
// the whole fetch.
func (s *Service) fetch(ctx context.Context, companyID snowflake.ID, dr domain.DateRange, needs []need, onFail func(source)) (*dataset, error) {
	l := &loader{db: s.db, log: s.log, companyID: companyID, dateRange: dr}
	ds := &dataset{}

	g, gctx := errgroup.WithContext(ctx)
	for _, n := range needs {
		n := n
		switch n.source {
		case srcLeads:
			g.Go(func() error { return into(gctx, l, n, &ds.leads) })
		case srcDeals:
			g.Go(func() error { return into(gctx, l, n, &ds.deals) })
		case srcQuotations:
			g.Go(func() error { return into(gctx, l, n, &ds.quotations) })
		case srcAccounts:
			g.Go(func() error { return into(gctx, l, n, &ds.accounts) })
		case srcSalesOrders:
			g.Go(func() error { return into(gctx, l, n, &ds.salesOrders) })
		case srcActivities:
			g.Go(func() error { return into(gctx, l, n, &ds.activities) })
		case srcInstallations:
			g.Go(func() error { return into(gctx, l, n, &ds.installations) })
		case srcAMC:
			g.Go(func() error { return into(gctx, l, n, &ds.contracts) })
		case srcComplaints:
			g.Go(func() error { return into(gctx, l, n, &ds.complaints) })
		case srcCases:
			g.Go(func() error { return into(gctx, l, n, &ds.cases) })
		case srcSolutions:
			g.Go(func() error { return into(gctx, l, n, &ds.solutions) })
		case srcProducts:
			g.Go(func() error { return into(gctx, l, n, &ds.products) })
		case srcInvoices:
			g.Go(func() error { return into(gctx, l, n, &ds.invoices) })
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds.failed = l.failed
	if onFail != nil {
		for _, src := range ds.failed {
			onFail(source(src))
		}
	}
	return ds, nil
}

// into loads one source into dst. Each goroutine owns its own slot.
func into[T any](ctx context.Context, l *loader, n need, dst *[]*T) error {
	var opts []option.QueryOption
	if n.ranged {
		start, end := l.dateRange.StartDate, l.dateRange.EndDate
		opts = append(opts, option.WithDateRange("created_at", &start, &end))
	}

	rows, err := repository.Tenant[T]{}.FindAll(ctx, l.db, l.companyID, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.log.Warn("report source failed",
			zap.String("source", string(n.source)),
			zap.String("company_id", l.companyID.String()),
			zap.Error(err),
		)
		l.mu.Lock()
		l.failed = append(l.failed, string(n.source))
		l.mu.Unlock()
		*dst = nil
		return nil
	}
	*dst = rows
	return nil
}
