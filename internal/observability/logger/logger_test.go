package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/crm/internal/auditcontext"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	core, logs := observer.New(level)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Config{
		Environment:   "production",
		AppVersion:    "1.2.0",
		Observability: config.ObservabilityConfig{LogLevel: "warn", LogFormat: "json"},
	})
	assert.Equal(t, "crm", cfg.Service)
	assert.Equal(t, "warn", cfg.Level)
	assert.False(t, cfg.Debug)

	_, err := zapConfig(Config{Level: "loud"})
	assert.Error(t, err)

	zc, err := zapConfig(Config{Format: "console"})
	require.NoError(t, err)
	assert.Equal(t, "console", zc.Encoding)
}

func TestWithContextAddsTenantFields(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	ctx := companycontext.WithCompanyID(context.Background(), 42)
	ctx = auditcontext.WithRequestID(ctx, "req-1")
	ctx = auditcontext.WithActor(ctx, "user", "7")
	FromContext(ctx).Info("lead created")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "42", fields["company_id"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "7", fields["actor_id"])

	base := zap.NewNop()
	assert.Same(t, base, WithContext(context.Background(), base))
}

func TestGinMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observe(t, zapcore.DebugLevel)

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{Classify: func(error) (string, string) {
		return "validation_error", "invalid_request"
	}}))
	r.GET("/api/leads/:id", func(c *gin.Context) {
		assert.Equal(t, "abc", auditcontext.RequestIDFromContext(c.Request.Context()))
		c.Request = c.Request.WithContext(companycontext.WithCompanyID(c.Request.Context(), 9))
		_ = c.Error(errors.New("bad id"))
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/leads/1", nil)
	req.Header.Set("X-Request-Id", "abc")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, "abc", resp.Header().Get("X-Request-Id"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "leads", fields["resource"])
	assert.Equal(t, "9", fields["company_id"])
	assert.Equal(t, "invalid_request", fields["error_code"])
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFor("/health", http.StatusOK, ""))
	assert.Equal(t, zapcore.ErrorLevel, levelFor("/api/reports", http.StatusInternalServerError, "internal_error"))
	assert.Equal(t, zapcore.DebugLevel, levelFor("/api/wizards/:kind/validate", http.StatusBadRequest, "validation_error"))
	assert.Equal(t, zapcore.InfoLevel, levelFor("/api/leads", http.StatusBadRequest, "validation_error"))

	assert.Equal(t, "amc", resourceOf("/api/amc/:id/renew"))
	assert.Equal(t, "", resourceOf("/metrics"))
}

func TestGormLogger(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	cfg := GormConfigFrom(config.Config{})
	assert.Equal(t, gormlogger.Warn, cfg.Level)
	assert.Equal(t, defaultSlowQuery, cfg.SlowQuery)
	assert.Equal(t, gormlogger.Info, GormConfigFrom(config.Config{Observability: config.ObservabilityConfig{LogLevel: "debug"}}).Level)

	l := NewGormLogger(GormConfig{Level: gormlogger.Warn, SlowQuery: time.Minute})
	sql := func() (string, int64) { return `SELECT * FROM "leads" WHERE company_id = 1`, 3 }

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now().Add(-2*time.Minute), sql, nil)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "leads", entry.ContextMap()["table"])
	assert.Equal(t, "SELECT", entry.ContextMap()["operation"])

	sqlOut, params := l.ParamsFilter(context.Background(), "SELECT 1", "secret@example.com")
	assert.Equal(t, "SELECT 1", sqlOut)
	assert.Nil(t, params)
}
