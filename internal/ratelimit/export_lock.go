package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseIfHolder deletes the lock only while it still carries the caller's
// holder token.
const releaseIfHolder = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var (
	ErrLockHeld         = errors.New("export_in_progress")
	errExportKeyMissing = errors.New("export lock needs a company and report type")
	errLocksUnavailable = errors.New("export locks require redis")
)

// exportKey names one report export. Exports with the same company, report
// type and period never overlap.
type exportKey struct {
	CompanyID  string
	ReportType string
	Period     string
}

func newExportKey(companyID, reportType, period string) exportKey {
	return exportKey{
		CompanyID:  strings.TrimSpace(companyID),
		ReportType: strings.ToLower(strings.TrimSpace(reportType)),
		Period:     strings.ToLower(strings.TrimSpace(period)),
	}
}

func (k exportKey) String() string {
	period := k.Period
	if period == "" {
		period = "default"
	}
	return fmt.Sprintf(keyReportExport, k.CompanyID, k.ReportType, period)
}

func (k exportKey) validate() error {
	if k.CompanyID == "" || k.ReportType == "" {
		return errExportKeyMissing
	}
	return nil
}

// exportLocks hands out expiring per-export locks. The TTL bounds how long a
// crashed export can block the next one.
type exportLocks struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
}

func newExportLocks(client *redis.Client, ttl time.Duration) *exportLocks {
	if ttl <= 0 {
		ttl = defaultExportLockTTL
	}
	return &exportLocks{
		client: client,
		script: redis.NewScript(releaseIfHolder),
		ttl:    ttl,
	}
}

// acquire returns the holder token, or ErrLockHeld while another export of
// the same key is running.
func (l *exportLocks) acquire(ctx context.Context, key exportKey) (string, error) {
	if err := key.validate(); err != nil {
		return "", err
	}
	if l == nil || l.client == nil {
		return "", errLocksUnavailable
	}

	holder := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key.String(), holder, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrLockHeld
	}
	return holder, nil
}

func (l *exportLocks) release(ctx context.Context, key exportKey, holder string) error {
	if l == nil || l.client == nil || holder == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key.String()}, holder).Err()
}
