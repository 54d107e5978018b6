package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/crm/internal/config"
)

const (
	keyReportCompany = "report:company:%s"
	keyReportExport  = "report:export:lock:%s:%s:%s"

	defaultExportLockTTL = 30 * time.Second
)

// ReportLimiter throttles report generation per company and serializes
// exports of the same report. A nil limiter allows everything.
type ReportLimiter struct {
	enabled bool

	bucket *TokenBucket
	locks  *exportLocks

	rate  float64
	burst int
}

func NewReportLimiter(cfg config.Config, client *redis.Client) (*ReportLimiter, error) {
	limitCfg := cfg.RateLimit
	if client == nil {
		if limitCfg.Enabled {
			return nil, errors.New("report rate limit requires REDIS_ADDR")
		}
		return nil, nil
	}
	if limitCfg.Enabled && (limitCfg.ReportRate <= 0 || limitCfg.ReportBurst <= 0) {
		return nil, errors.New("report rate limit must be positive")
	}

	return &ReportLimiter{
		enabled: limitCfg.Enabled,
		bucket:  NewTokenBucket(client),
		locks:   newExportLocks(client, time.Duration(limitCfg.ExportLock)*time.Second),
		rate:    limitCfg.ReportRate,
		burst:   limitCfg.ReportBurst,
	}, nil
}

func (l *ReportLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowCompany takes one token from the company's report bucket.
func (l *ReportLimiter) AllowCompany(ctx context.Context, companyID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyReportCompany, strings.TrimSpace(companyID)), l.rate, l.burst)
}

// LockExport returns a release func. Without redis the lock is a no-op.
func (l *ReportLimiter) LockExport(ctx context.Context, companyID, reportType, period string) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if l == nil || l.locks == nil {
		return noop, nil
	}
	key := newExportKey(companyID, reportType, period)
	holder, err := l.locks.acquire(ctx, key)
	if err != nil {
		return noop, err
	}
	return func(ctx context.Context) error {
		return l.locks.release(ctx, key, holder)
	}, nil
}
