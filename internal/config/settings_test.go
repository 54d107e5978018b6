package config

import (
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.HomeState != "Karnataka" {
		t.Fatalf("expected Karnataka, got %q", s.HomeState)
	}
	if s.DefaultTaxRate != 18 {
		t.Fatalf("expected 18, got %v", s.DefaultTaxRate)
	}
	if s.ReportCacheTTL() != time.Minute {
		t.Fatalf("expected 1m cache ttl, got %v", s.ReportCacheTTL())
	}
}

func TestNumberTemplateFallsBackToDefault(t *testing.T) {
	s := Settings{NumberTemplates: map[string]string{"invoice": "BILL-{SEQ}"}}
	if got := s.NumberTemplate("invoice"); got != "BILL-{SEQ}" {
		t.Fatalf("expected override, got %q", got)
	}
	if got := s.NumberTemplate("quotation"); got != "QTN-{YYYY}-{SEQ3}" {
		t.Fatalf("expected default quotation template, got %q", got)
	}
}

func TestValidateSettings(t *testing.T) {
	if err := validateSettings(Settings{HomeState: "", DefaultTaxRate: 18}); err == nil {
		t.Fatalf("expected error for empty home state")
	}
	if err := validateSettings(Settings{HomeState: "Kerala", DefaultTaxRate: 120}); err == nil {
		t.Fatalf("expected error for tax rate above 100")
	}
	if err := validateSettings(DefaultSettings()); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
}

func TestNilHolderReturnsDefaults(t *testing.T) {
	var h *SettingsHolder
	if h.Get().HomeState != "Karnataka" {
		t.Fatalf("expected defaults from nil holder")
	}
}
