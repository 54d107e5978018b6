package domain

import (
	"context"
	"errors"
	"time"
)

const (
	TypeExecutiveOverview     = "executive-overview"
	TypeMonthlyBusinessReview = "monthly-business-review"
	TypeQuarterlyTrends       = "quarterly-trends"
	TypeSalesPipeline         = "sales-pipeline"
	TypeLeadConversion        = "lead-conversion"
	TypeQuotationAnalysis     = "quotation-analysis"
	TypeSalesRepPerformance   = "sales-rep-performance"
	TypeRevenueForecast       = "revenue-forecast"
	TypeCustomerAcquisition   = "customer-acquisition"
	TypeAccountHealth         = "account-health"
	TypeCustomerLifecycle     = "customer-lifecycle"
	TypeTopCustomers          = "top-customers"
	TypeProductSalesAnalysis  = "product-sales-analysis"
	TypeCategoryPerformance   = "category-performance"
	TypePricingAnalysis       = "pricing-analysis"
	TypeProductDemand         = "product-demand"
	TypeAMCPerformance        = "amc-performance"
	TypeInstallationTracking  = "installation-tracking"
	TypeServiceEfficiency     = "service-efficiency"
	TypeContractRenewals      = "contract-renewals"
	TypeSupportPerformance    = "support-performance"
	TypeCaseAnalysis          = "case-analysis"
	TypeKnowledgeBase         = "knowledge-base"
	TypeCustomerSatisfaction  = "customer-satisfaction"
	TypeUserAdoption          = "user-adoption"
	TypeDocumentUsage         = "document-usage"
	TypeActivitySummary       = "activity-summary"
	TypeFollowUpEfficiency    = "follow-up-efficiency"
)

// Types lists every report type in catalogue order.
var Types = []string{
	TypeExecutiveOverview, TypeMonthlyBusinessReview, TypeQuarterlyTrends,
	TypeSalesPipeline, TypeLeadConversion, TypeQuotationAnalysis, TypeSalesRepPerformance, TypeRevenueForecast,
	TypeCustomerAcquisition, TypeAccountHealth, TypeCustomerLifecycle, TypeTopCustomers,
	TypeProductSalesAnalysis, TypeCategoryPerformance, TypePricingAnalysis, TypeProductDemand,
	TypeAMCPerformance, TypeInstallationTracking, TypeServiceEfficiency, TypeContractRenewals,
	TypeSupportPerformance, TypeCaseAnalysis, TypeKnowledgeBase, TypeCustomerSatisfaction,
	TypeUserAdoption, TypeDocumentUsage, TypeActivitySummary, TypeFollowUpEfficiency,
}

const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

var Formats = []string{FormatPDF, FormatExcel, FormatCSV, FormatJSON}

type Request struct {
	Type   string
	Period string
}

type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Report is the response body of a generated report.
type Report struct {
	ReportType  string         `json:"reportType"`
	Period      string         `json:"period"`
	DateRange   DateRange      `json:"dateRange"`
	Data        map[string]any `json:"data"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

type Service interface {
	Generate(ctx context.Context, req Request) (Report, error)
	Export(ctx context.Context, req Request, format string) (File, error)
}

var (
	ErrTypeRequired      = errors.New("Report type is required")
	ErrInvalidType       = errors.New("Invalid report type")
	ErrUnsupportedFormat = errors.New("Unsupported export format")
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrRateLimited       = errors.New("rate_limited")
	ErrExportInProgress  = errors.New("export_in_progress")
)

// IsValidType reports whether t names a known report.
func IsValidType(t string) bool {
	for _, known := range Types {
		if known == t {
			return true
		}
	}
	return false
}
