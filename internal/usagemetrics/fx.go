package usagemetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/crm/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultInterval = 30 * time.Minute

var Module = fx.Module("usage.metrics",
	fx.Provide(NewPusher),
	fx.Provide(func(cfg config.Config, db *gorm.DB, pusher Pusher, logger *zap.Logger) *Collector {
		if !cfg.UsageMetrics.Enabled || pusher == nil {
			return nil
		}
		return NewCollector(db, prometheus.NewRegistry(), pusher, logger)
	}),
	fx.Invoke(startWorker),
)

func startWorker(lc fx.Lifecycle, cfg config.Config, c *Collector, logger *zap.Logger) {
	if c == nil {
		return
	}

	interval := time.Duration(cfg.UsageMetrics.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = defaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting usage metrics worker", zap.Duration("interval", interval))
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				if err := c.Collect(ctx); err != nil {
					logger.Error("initial usage metrics push failed", zap.Error(err))
				}
				for {
					select {
					case <-ticker.C:
						if err := c.Collect(ctx); err != nil {
							logger.Error("periodic usage metrics push failed", zap.Error(err))
						}
					case <-ctx.Done():
						logger.Info("stopping usage metrics worker")
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
