// Package usagemetrics periodically counts CRM records and pushes the totals
// to Prometheus.
package usagemetrics

import (
	"context"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entities maps the entity label to its table.
var Entities = []struct {
	Name  string
	Table string
}{
	{"company", "companies"},
	{"user", "users"},
	{"lead", "leads"},
	{"account", "accounts"},
	{"product", "products"},
	{"quotation", "quotations"},
	{"invoice", "invoices"},
	{"installation", "installations"},
	{"amc_contract", "amc_contracts"},
	{"complaint", "complaints"},
	{"deal", "deals"},
	{"activity", "activities"},
	{"sales_order", "sales_orders"},
	{"case", "cases"},
	{"solution", "solutions"},
}

type Collector struct {
	db       *gorm.DB
	log      *zap.Logger
	registry *prometheus.Registry
	pusher   Pusher

	entities *prometheus.GaugeVec
	memory   prometheus.Gauge
}

func NewCollector(db *gorm.DB, registry *prometheus.Registry, pusher Pusher, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Collector{
		db:       db,
		log:      log.Named("usagemetrics"),
		registry: registry,
		pusher:   pusher,
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "crm_entities_total",
			Help: "Number of stored records per CRM entity.",
		}, []string{"entity"}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crm_memory_bytes",
			Help: "Bytes of memory obtained from the OS.",
		}),
	}
	registry.MustRegister(c.entities, c.memory)
	return c
}

// Refresh recounts every entity table. A table that cannot be counted keeps
// its previous value.
func (c *Collector) Refresh(ctx context.Context) {
	for _, entity := range Entities {
		var count int64
		if err := c.db.WithContext(ctx).Table(entity.Table).Count(&count).Error; err != nil {
			c.log.Debug("skip entity count", zap.String("entity", entity.Name), zap.Error(err))
			continue
		}
		c.entities.WithLabelValues(entity.Name).Set(float64(count))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	c.memory.Set(float64(m.Sys))
}

// Collect refreshes the gauges and pushes them when a pusher is configured.
func (c *Collector) Collect(ctx context.Context) error {
	c.Refresh(ctx)
	if c.pusher == nil {
		return nil
	}
	return c.pusher.Push(ctx, c.registry)
}
