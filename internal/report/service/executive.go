package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	dealdomain "github.com/smallbiznis/crm/internal/deal/domain"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
	"github.com/smallbiznis/crm/pkg/ratio"
)

func dealValue(d *dealdomain.Deal) decimal.Decimal { return d.DealValue }

func isWon(d *dealdomain.Deal) bool { return is(d.Stage, dealdomain.StageWon) }

func executiveOverview(ds *dataset, _ env) map[string]any {
	totalLeads := len(ds.leads)
	won := countIf(ds.deals, isWon)

	return map[string]any{
		"kpis": map[string]any{
			"totalLeads":         totalLeads,
			"totalDeals":         len(ds.deals),
			"totalPipelineValue": money(sumBy(ds.deals, dealValue)),
			"totalQuotations":    len(ds.quotations),
			"totalAccounts":      len(ds.accounts),
			"conversionRate":     ratio.Percent(won, totalLeads),
		},
		"illustrative": placeholder(PlaceholderGrowth),
	}
}

func monthlyBusinessReview(ds *dataset, _ env) map[string]any {
	return map[string]any{
		"summary": map[string]any{
			"newLeads":       len(ds.leads),
			"newDeals":       len(ds.deals),
			"newCustomers":   len(ds.accounts),
			"quotationsSent": len(ds.quotations),
			"wonDeals":       countIf(ds.deals, isWon),
			"wonValue":       money(sumBy(filter(ds.deals, isWon), dealValue)),
			"convertedLeads": countIf(ds.leads, func(l *leaddomain.Lead) bool { return is(l.LeadStatus, leaddomain.StatusConverted) }),
		},
		"illustrative": placeholder(PlaceholderBusinessReview),
	}
}

// quarterlyTrends buckets won revenue and new accounts into the quarters of
// the current year.
func quarterlyTrends(ds *dataset, e env) map[string]any {
	year := e.now.Year()
	current := quarterOf(e.now)

	revenue := make([]decimal.Decimal, 4)
	for i := range revenue {
		revenue[i] = decimal.Zero
	}
	for _, d := range ds.deals {
		if !isWon(d) || d.CreatedAt.Year() != year {
			continue
		}
		q := quarterOf(d.CreatedAt)
		revenue[q-1] = revenue[q-1].Add(d.DealValue)
	}

	customers := make([]int, 4)
	for _, a := range ds.accounts {
		if a.CreatedAt.Year() != year {
			continue
		}
		customers[quarterOf(a.CreatedAt)-1]++
	}

	revenueOut := map[string]any{}
	customersOut := map[string]any{}
	for q := 1; q <= 4; q++ {
		key := fmt.Sprintf("q%d", q)
		revenueOut[key] = money(revenue[q-1])
		customersOut[key] = customers[q-1]
	}
	revenueOut["trend"] = trendOf(revenue[current-1].Cmp(previousQuarter(revenue, current)))
	customersOut["trend"] = trendOf(compareInt(customers[current-1], previousQuarterInt(customers, current)))

	return map[string]any{
		"year":                year,
		"currentQuarter":      fmt.Sprintf("Q%d", current),
		"revenueGrowth":       revenueOut,
		"customerAcquisition": customersOut,
		"illustrative":        placeholder(PlaceholderQuarterlyInsights),
	}
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func previousQuarter(values []decimal.Decimal, current int) decimal.Decimal {
	if current <= 1 {
		return decimal.Zero
	}
	return values[current-2]
}

func previousQuarterInt(values []int, current int) int {
	if current <= 1 {
		return 0
	}
	return values[current-2]
}

func compareInt(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

func trendOf(cmp int) string {
	switch {
	case cmp > 0:
		return "upward"
	case cmp < 0:
		return "downward"
	}
	return "flat"
}

func filter[T any](rows []*T, pred func(*T) bool) []*T {
	var out []*T
	for _, row := range rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return out
}

func accountRevenue(a *accountdomain.Account) decimal.Decimal { return a.AnnualRevenue }
