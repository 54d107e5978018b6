package observability

import (
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/observability/logger"
	"github.com/smallbiznis/crm/internal/observability/metrics"
	"github.com/smallbiznis/crm/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module provides the process logger, the tracer provider, the OTLP meter
// provider and the CRM instruments, all configured from config.Config.
var Module = fx.Module("observability",
	fx.Provide(
		logger.ConfigFrom,
		logger.New,
		logger.GormConfigFrom,
		tracingConfig,
		tracing.NewProvider,
		metricsConfig,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	// Nothing else depends on the tracer provider; invoking it installs the
	// global provider and propagators.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)

func tracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.Observability.TracingEnabled,
		ServiceName:      cfg.AppName,
		ServiceVersion:   cfg.AppVersion,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OTLPEndpoint,
		ExporterProtocol: cfg.Observability.OTLPProtocol,
		SamplingRatio:    cfg.Observability.SamplingRatio,
	}
}

// OTLP metrics share the trace exporter's endpoint and switch. The
// Prometheus /metrics endpoint is always served.
func metricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.Observability.TracingEnabled,
		ExporterEndpoint: cfg.OTLPEndpoint,
		ExporterProtocol: cfg.Observability.OTLPProtocol,
		ServiceName:      cfg.AppName,
		Environment:      cfg.Environment,
	}
}
