package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/crm/internal/cache"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/config"
	obsmetrics "github.com/smallbiznis/crm/internal/observability/metrics"
	"github.com/smallbiznis/crm/internal/providers/pdf"
	"github.com/smallbiznis/crm/internal/ratelimit"
	"github.com/smallbiznis/crm/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	endpointReports = "reports"

	statusOK    = "ok"
	statusError = "error"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Settings *config.SettingsHolder
	Cache    cache.Store
	PDF      pdf.Provider
	Limiter  *ratelimit.ReportLimiter `optional:"true"`
	Metrics  *obsmetrics.Metrics      `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	settings *config.SettingsHolder
	cache    cache.Store
	pdf      pdf.Provider
	limiter  *ratelimit.ReportLimiter
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("report.service"),
		clock:    p.Clock,
		settings: p.Settings,
		cache:    p.Cache,
		pdf:      p.PDF,
		limiter:  p.Limiter,
		metrics:  p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, req domain.Request) (domain.Report, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.Report{}, domain.ErrInvalidCompany
	}
	reportType, err := validateType(req.Type)
	if err != nil {
		return domain.Report{}, err
	}

	if err := s.allow(ctx, companyID.String()); err != nil {
		return domain.Report{}, err
	}
	return s.generate(ctx, reportType, req.Period)
}

func (s *Service) generate(ctx context.Context, reportType, requestedPeriod string) (domain.Report, error) {
	companyID, _ := companycontext.CompanyIDFromContext(ctx)
	start := time.Now()
	now := s.clock.Now()
	period, dateRange := domain.ResolvePeriod(requestedPeriod, now)

	key := cache.Key("report", companyID.String(), reportType, period)
	if report, ok := s.cached(ctx, key); ok {
		return report, nil
	}

	agg := aggregators[reportType]
	ds, err := s.fetch(ctx, companyID, dateRange, agg.needs, func(src source) {
		s.metrics.RecordReportSourceFailure(ctx, reportType, string(src))
	})
	if err != nil {
		s.metrics.RecordReportGenerated(ctx, reportType, statusError, time.Since(start))
		return domain.Report{}, err
	}

	report := domain.Report{
		ReportType:  reportType,
		Period:      period,
		DateRange:   dateRange,
		Data:        agg.build(ds, env{now: now, dateRange: dateRange}),
		GeneratedAt: now,
	}
	if len(ds.failed) > 0 {
		report.Data["partial"] = true
		report.Data["failedSources"] = ds.failed
	} else {
		s.store(ctx, key, report)
	}

	s.metrics.RecordReportGenerated(ctx, reportType, statusOK, time.Since(start))
	s.log.Debug("report generated",
		zap.String("company_id", companyID.String()),
		zap.String("type", reportType),
		zap.String("period", period),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// allow takes a token from the company's report bucket. Limiter failures
// are logged and the request proceeds.
func (s *Service) allow(ctx context.Context, companyID string) error {
	if !s.limiter.Enabled() {
		return nil
	}
	res, err := s.limiter.AllowCompany(ctx, companyID)
	if err != nil {
		s.log.Warn("report rate limiter unavailable", zap.String("company_id", companyID), zap.Error(err))
		return nil
	}
	if res != nil && !res.Allowed {
		s.metrics.RecordRateLimitDenied(ctx, companyID, endpointReports, "rate_limited")
		return domain.ErrRateLimited
	}
	return nil
}

func (s *Service) cached(ctx context.Context, key string) (domain.Report, bool) {
	if s.cache == nil {
		return domain.Report{}, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return domain.Report{}, false
	}
	if !ok {
		return domain.Report{}, false
	}
	var report domain.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		s.log.Warn("report cache entry corrupt", zap.String("key", key), zap.Error(err))
		return domain.Report{}, false
	}
	return report, true
}

func (s *Service) store(ctx context.Context, key string, report domain.Report) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		s.log.Warn("report cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.settings.Get().ReportCacheTTL()); err != nil {
		s.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func validateType(reportType string) (string, error) {
	reportType = strings.ToLower(strings.TrimSpace(reportType))
	if reportType == "" {
		return "", domain.ErrTypeRequired
	}
	if !domain.IsValidType(reportType) {
		return "", domain.ErrInvalidType
	}
	return reportType, nil
}

func isLockHeld(err error) bool {
	return errors.Is(err, ratelimit.ErrLockHeld)
}
