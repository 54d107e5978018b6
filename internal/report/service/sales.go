package service

import (
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	dealdomain "github.com/smallbiznis/crm/internal/deal/domain"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
	quotationdomain "github.com/smallbiznis/crm/internal/quotation/domain"
	"github.com/smallbiznis/crm/pkg/ratio"
)

const (
	topQuotedProducts = 5
	unassigned        = "Unassigned"
)

func salesPipeline(ds *dataset, _ env) map[string]any {
	type stage struct {
		count int
		value decimal.Decimal
	}
	stages := map[string]*stage{}
	for _, d := range ds.deals {
		name := orUnknown(d.Stage)
		st, ok := stages[name]
		if !ok {
			st = &stage{value: decimal.Zero}
			stages[name] = st
		}
		st.count++
		st.value = st.value.Add(d.DealValue)
	}

	byStage := make(map[string]any, len(stages))
	for name, st := range stages {
		byStage[name] = map[string]any{"count": st.count, "value": money(st.value)}
	}

	total := sumBy(ds.deals, dealValue)
	return map[string]any{
		"pipelineByStage": byStage,
		"totalValue":      money(total),
		"averageDealSize": ratio.Mean(total, len(ds.deals)),
		"totalDeals":      len(ds.deals),
	}
}

func leadConversion(ds *dataset, _ env) map[string]any {
	type tally struct{ total, qualified, converted int }
	sources := map[string]*tally{}
	converted := 0
	for _, l := range ds.leads {
		name := orUnknown(l.LeadSource)
		t, ok := sources[name]
		if !ok {
			t = &tally{}
			sources[name] = t
		}
		t.total++
		switch {
		case is(l.LeadStatus, leaddomain.StatusQualified):
			t.qualified++
		case is(l.LeadStatus, leaddomain.StatusConverted):
			t.converted++
			converted++
		}
	}

	bySource := make(map[string]any, len(sources))
	for name, t := range sources {
		bySource[name] = map[string]any{"total": t.total, "qualified": t.qualified, "converted": t.converted}
	}
	return map[string]any{
		"conversionBySource": bySource,
		"totalLeads":         len(ds.leads),
		"conversionRate":     ratio.Percent(converted, len(ds.leads)),
	}
}

func quotationAnalysis(ds *dataset, _ env) map[string]any {
	quoted := make(map[snowflake.ID]bool, len(ds.quotations))
	for _, q := range ds.quotations {
		quoted[q.ID] = false
	}
	for _, o := range ds.salesOrders {
		if o.QuotationID == nil {
			continue
		}
		if _, ok := quoted[*o.QuotationID]; ok {
			quoted[*o.QuotationID] = true
		}
	}
	converted := 0
	for _, ordered := range quoted {
		if ordered {
			converted++
		}
	}

	total := len(ds.quotations)
	return map[string]any{
		"totalQuotations":     total,
		"convertedQuotations": converted,
		"conversionRate":      ratio.Percent(converted, total),
		"averageValue":        ratio.Mean(sumBy(ds.quotations, quotationTotal), total),
		"statusBreakdown":     countBy(ds.quotations, func(q *quotationdomain.Quotation) string { return q.Status }),
		"topProducts":         quotedProducts(ds.quotations, topQuotedProducts),
		"illustrative":        placeholder(PlaceholderQuotationTiming),
	}
}

func quotationTotal(q *quotationdomain.Quotation) decimal.Decimal { return q.TotalAmount }

// quotedProducts ranks products by quoted line value. count is the number of
// quotations naming the product.
func quotedProducts(quotations []*quotationdomain.Quotation, limit int) []map[string]any {
	tally := map[string]*ranking{}
	for _, q := range quotations {
		seen := map[string]bool{}
		for _, item := range q.LineItems {
			name := strings.TrimSpace(item.Product)
			if name == "" {
				continue
			}
			r := tallyOf(tally, name)
			if !seen[strings.ToLower(name)] {
				r.count++
				seen[strings.ToLower(name)] = true
			}
			r.quantity = r.quantity.Add(item.Quantity)
			r.value = r.value.Add(item.Amount)
		}
	}

	ranked := rank(tally)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]map[string]any, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, map[string]any{
			"product":  r.name,
			"count":    r.count,
			"quantity": r.quantity.InexactFloat64(),
			"value":    money(r.value),
		})
	}
	return out
}

// salesRepPerformance reports per-owner activity from leads and deals.
// Revenue targets are not stored, so the team scorecard stays illustrative.
func salesRepPerformance(ds *dataset, _ env) map[string]any {
	type rep struct {
		name         string
		leads, deals int
		won          int
		revenue      decimal.Decimal
	}
	reps := map[string]*rep{}
	get := func(name string) *rep {
		name = strings.TrimSpace(name)
		if name == "" {
			name = unassigned
		}
		r, ok := reps[name]
		if !ok {
			r = &rep{name: name, revenue: decimal.Zero}
			reps[name] = r
		}
		return r
	}
	for _, l := range ds.leads {
		get(l.AssignedTo).leads++
	}
	for _, d := range ds.deals {
		r := get(d.AssignedTo)
		r.deals++
		if isWon(d) {
			r.won++
			r.revenue = r.revenue.Add(d.DealValue)
		}
	}

	ordered := make([]*rep, 0, len(reps))
	for _, r := range reps {
		ordered = append(ordered, r)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if c := ordered[i].revenue.Cmp(ordered[j].revenue); c != 0 {
			return c > 0
		}
		return ordered[i].name < ordered[j].name
	})

	activity := make([]map[string]any, 0, len(ordered))
	for _, r := range ordered {
		activity = append(activity, map[string]any{
			"name":     r.name,
			"leads":    r.leads,
			"deals":    r.deals,
			"wonDeals": r.won,
			"revenue":  money(r.revenue),
			"winRate":  ratio.Percent(r.won, r.deals),
		})
	}

	return map[string]any{
		"repActivity":  activity,
		"illustrative": placeholder(placeholderScorecard(PlaceholderSalesReps)),
	}
}

func placeholderScorecard(reps []PlaceholderRep) map[string]any {
	if len(reps) == 0 {
		return map[string]any{"teamPerformance": []PlaceholderRep{}}
	}
	top := reps[0]
	var leads, deals int
	var revenue int64
	achievement := make([]map[string]any, 0, len(reps))
	for _, r := range reps {
		if r.Revenue > top.Revenue {
			top = r
		}
		leads += r.Leads
		deals += r.Deals
		revenue += r.Revenue
		achievement = append(achievement, map[string]any{
			"name":        r.Name,
			"achievement": ratio.PercentOf(decimal.NewFromInt(r.Revenue), decimal.NewFromInt(r.Target)),
		})
	}
	n := decimal.NewFromInt(int64(len(reps)))
	return map[string]any{
		"teamPerformance": reps,
		"topPerformer":    top,
		"averagePerformance": map[string]any{
			"leadsPerRep":   ratio.Mean(decimal.NewFromInt(int64(leads)), len(reps)),
			"dealsPerRep":   ratio.Mean(decimal.NewFromInt(int64(deals)), len(reps)),
			"revenuePerRep": money(decimal.NewFromInt(revenue).Div(n)),
		},
		"targetAchievement": achievement,
	}
}

// revenueForecast weights every open deal by its win probability.
func revenueForecast(ds *dataset, _ env) map[string]any {
	weighted := decimal.Zero
	open := 0
	for _, d := range ds.deals {
		if isWon(d) || is(d.Stage, dealdomain.StageLost) {
			continue
		}
		open++
		weighted = weighted.Add(d.DealValue.Mul(decimal.NewFromInt(int64(d.Probability))).Div(decimal.NewFromInt(100)))
	}

	return map[string]any{
		"currentPipeline":     money(sumBy(ds.deals, dealValue)),
		"openDeals":           open,
		"probabilityWeighted": money(weighted),
		"wonRevenue":          money(sumBy(filter(ds.deals, isWon), dealValue)),
		"illustrative":        placeholder(PlaceholderForecast),
	}
}
