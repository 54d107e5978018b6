package metrics

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("company_id", "123"),
		attribute.String("customer_email", "a@b.c"),
		attribute.String("report_type", "sales-performance"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "company_id" && attrs[1].Key != "company_id" {
		t.Fatalf("expected company_id to be retained")
	}
	if attrs[0].Key != "report_type" && attrs[1].Key != "report_type" {
		t.Fatalf("expected report_type to be retained")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordDocumentCreated(context.Background(), "lead")
	m.RecordReportGenerated(context.Background(), "lead-source", "ok", time.Millisecond)
	m.RecordRateLimitDenied(context.Background(), "1", "/api/reports", "rate_limited")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordDocumentCreated(context.Background(), "invoice")
	m.RecordExport(context.Background(), "lead-source", "csv")
}
