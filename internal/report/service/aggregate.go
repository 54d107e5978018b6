package service

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/report/domain"
)

const unknown = "Unknown"

// env is what an aggregator knows besides its data.
type env struct {
	now       time.Time
	dateRange domain.DateRange
}

type aggregator struct {
	needs []need
	build func(ds *dataset, e env) map[string]any
}

var aggregators = map[string]aggregator{
	domain.TypeExecutiveOverview: {
		needs: []need{ranged(srcLeads), ranged(srcDeals), ranged(srcQuotations), all(srcAccounts)},
		build: executiveOverview,
	},
	domain.TypeMonthlyBusinessReview: {
		needs: []need{ranged(srcLeads), ranged(srcDeals), ranged(srcAccounts), ranged(srcQuotations)},
		build: monthlyBusinessReview,
	},
	domain.TypeQuarterlyTrends: {
		needs: []need{all(srcDeals), all(srcAccounts)},
		build: quarterlyTrends,
	},
	domain.TypeSalesPipeline: {
		needs: []need{ranged(srcDeals)},
		build: salesPipeline,
	},
	domain.TypeLeadConversion: {
		needs: []need{ranged(srcLeads)},
		build: leadConversion,
	},
	domain.TypeQuotationAnalysis: {
		needs: []need{all(srcQuotations), all(srcSalesOrders)},
		build: quotationAnalysis,
	},
	domain.TypeSalesRepPerformance: {
		needs: []need{all(srcLeads), all(srcDeals)},
		build: salesRepPerformance,
	},
	domain.TypeRevenueForecast: {
		needs: []need{all(srcDeals)},
		build: revenueForecast,
	},
	domain.TypeCustomerAcquisition: {
		needs: []need{ranged(srcAccounts)},
		build: customerAcquisition,
	},
	domain.TypeAccountHealth: {
		needs: []need{all(srcAccounts), all(srcActivities)},
		build: accountHealth,
	},
	domain.TypeCustomerLifecycle: {
		needs: []need{all(srcAccounts)},
		build: customerLifecycle,
	},
	domain.TypeTopCustomers: {
		needs: []need{all(srcAccounts), all(srcSalesOrders)},
		build: topCustomers,
	},
	domain.TypeProductSalesAnalysis: {
		needs: []need{all(srcProducts), all(srcInvoices)},
		build: productSalesAnalysis,
	},
	domain.TypeCategoryPerformance: {
		needs: []need{all(srcProducts), all(srcInvoices)},
		build: categoryPerformance,
	},
	domain.TypePricingAnalysis: {
		needs: []need{all(srcProducts), all(srcInvoices)},
		build: pricingAnalysis,
	},
	domain.TypeProductDemand: {
		needs: []need{all(srcProducts), ranged(srcQuotations)},
		build: productDemand,
	},
	domain.TypeAMCPerformance: {
		needs: []need{all(srcAMC)},
		build: amcPerformance,
	},
	domain.TypeInstallationTracking: {
		needs: []need{all(srcInstallations)},
		build: installationTracking,
	},
	domain.TypeServiceEfficiency: {
		needs: []need{all(srcInstallations), all(srcAMC), all(srcComplaints)},
		build: serviceEfficiency,
	},
	domain.TypeContractRenewals: {
		needs: []need{all(srcAMC)},
		build: contractRenewals,
	},
	domain.TypeSupportPerformance: {
		needs: []need{ranged(srcCases), ranged(srcComplaints)},
		build: supportPerformance,
	},
	domain.TypeCaseAnalysis: {
		needs: []need{all(srcCases), all(srcComplaints)},
		build: caseAnalysis,
	},
	domain.TypeKnowledgeBase: {
		needs: []need{all(srcSolutions)},
		build: knowledgeBase,
	},
	domain.TypeCustomerSatisfaction: {
		needs: []need{all(srcCases)},
		build: customerSatisfaction,
	},
	domain.TypeUserAdoption: {
		needs: []need{all(srcActivities)},
		build: userAdoption,
	},
	domain.TypeDocumentUsage: {
		needs: []need{ranged(srcQuotations), ranged(srcInvoices), ranged(srcSalesOrders)},
		build: documentUsage,
	},
	domain.TypeActivitySummary: {
		needs: []need{ranged(srcActivities)},
		build: activitySummary,
	},
	domain.TypeFollowUpEfficiency: {
		needs: []need{all(srcActivities)},
		build: followUpEfficiency,
	},
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func is(value, want string) bool {
	return strings.EqualFold(strings.TrimSpace(value), want)
}

func orUnknown(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return unknown
}

func countIf[T any](rows []*T, pred func(*T) bool) int {
	n := 0
	for _, row := range rows {
		if pred(row) {
			n++
		}
	}
	return n
}

func countBy[T any](rows []*T, key func(*T) string) map[string]int {
	out := make(map[string]int)
	for _, row := range rows {
		out[orUnknown(key(row))]++
	}
	return out
}

func sumBy[T any](rows []*T, value func(*T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(value(row))
	}
	return total
}

// day truncates t to midnight in its own location.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ranking is a named amount used for top-N lists.
type ranking struct {
	name     string
	count    int
	quantity decimal.Decimal
	value    decimal.Decimal
}

// rank returns the tallies ordered by value descending, then name.
func rank(tally map[string]*ranking) []*ranking {
	out := make([]*ranking, 0, len(tally))
	for _, r := range tally {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].value.Cmp(out[j].value); c != 0 {
			return c > 0
		}
		return out[i].name < out[j].name
	})
	return out
}

func tallyOf(tally map[string]*ranking, name string) *ranking {
	key := strings.ToLower(name)
	r, ok := tally[key]
	if !ok {
		r = &ranking{name: name}
		tally[key] = r
	}
	return r
}
