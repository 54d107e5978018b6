package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	documentsCreated    metric.Int64Counter
	reportsGenerated    metric.Int64Counter
	reportDuration      metric.Float64Histogram
	reportSourceFailure metric.Int64Counter
	exportsGenerated    metric.Int64Counter
	rateLimitDenied     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "crm"
	}
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	meter := provider.Meter(name)

	documentsCreated, err := meter.Int64Counter("crm_documents_created_total")
	if err != nil {
		return nil, err
	}
	reportsGenerated, err := meter.Int64Counter("crm_reports_generated_total")
	if err != nil {
		return nil, err
	}
	reportDuration, err := meter.Float64Histogram("crm_report_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	reportSourceFailure, err := meter.Int64Counter("crm_report_source_failures_total")
	if err != nil {
		return nil, err
	}
	exportsGenerated, err := meter.Int64Counter("crm_report_exports_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("crm_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		documentsCreated:    documentsCreated,
		reportsGenerated:    reportsGenerated,
		reportDuration:      reportDuration,
		reportSourceFailure: reportSourceFailure,
		exportsGenerated:    exportsGenerated,
		rateLimitDenied:     rateLimitDenied,
	}, nil
}

// RecordDocumentCreated counts a created record of the given entity.
func (m *Metrics) RecordDocumentCreated(ctx context.Context, entity string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("entity", strings.TrimSpace(entity)))
	m.documentsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReportGenerated counts a generated report and its latency.
func (m *Metrics) RecordReportGenerated(ctx context.Context, reportType, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("report_type", strings.TrimSpace(reportType)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.reportsGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.reportDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordReportSourceFailure counts a failed source fetch during aggregation.
func (m *Metrics) RecordReportSourceFailure(ctx context.Context, reportType, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("report_type", strings.TrimSpace(reportType)),
		attribute.String("source", strings.TrimSpace(source)),
	)
	m.reportSourceFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExport counts a report export by format.
func (m *Metrics) RecordExport(ctx context.Context, reportType, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("report_type", strings.TrimSpace(reportType)),
		attribute.String("format", strings.TrimSpace(format)),
	)
	m.exportsGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, companyID, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("company_id", strings.TrimSpace(companyID)),
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"company_id":  {},
	"entity":      {},
	"report_type": {},
	"source":      {},
	"format":      {},
	"status":      {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
