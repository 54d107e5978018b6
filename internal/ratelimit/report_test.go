package ratelimit

import (
	"context"
	"testing"

	"github.com/smallbiznis/crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportLimiterWithoutRedis(t *testing.T) {
	limiter, err := NewReportLimiter(config.Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	res, err := limiter.AllowCompany(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	release, err := limiter.LockExport(context.Background(), "42", "sales-pipeline", "current-month")
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}

func TestReportLimiterRequiresRedisWhenEnabled(t *testing.T) {
	_, err := NewReportLimiter(config.Config{RateLimit: config.RateLimitConfig{Enabled: true, ReportRate: 1, ReportBurst: 1}}, nil)
	assert.Error(t, err)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, "40s", defaultBucketTTL(1, 20).String())
	assert.Equal(t, "1s", defaultBucketTTL(0, 0).String())
}

func TestExportKey(t *testing.T) {
	key := newExportKey(" 42 ", "Sales-Pipeline", " Current-Month ")
	require.NoError(t, key.validate())
	assert.Equal(t, "report:export:lock:42:sales-pipeline:current-month", key.String())

	assert.Equal(t, "report:export:lock:42:sales-pipeline:default", newExportKey("42", "sales-pipeline", "").String())
	assert.ErrorIs(t, newExportKey("", "sales-pipeline", "").validate(), errExportKeyMissing)
	assert.ErrorIs(t, newExportKey("42", " ", "").validate(), errExportKeyMissing)
}

func TestExportLocksWithoutClient(t *testing.T) {
	locks := newExportLocks(nil, 0)
	assert.Equal(t, defaultExportLockTTL, locks.ttl)

	_, err := locks.acquire(context.Background(), newExportKey("42", "sales-pipeline", ""))
	assert.ErrorIs(t, err, errLocksUnavailable)

	_, err = locks.acquire(context.Background(), newExportKey("", "sales-pipeline", ""))
	assert.ErrorIs(t, err, errExportKeyMissing)

	assert.NoError(t, locks.release(context.Background(), newExportKey("42", "sales-pipeline", ""), "holder"))
}
