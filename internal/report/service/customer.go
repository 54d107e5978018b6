package service

import (
	"sort"

	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	"github.com/smallbiznis/crm/pkg/ratio"
)

const (
	topHealthAccounts = 10
	topCustomerCount  = 20
)

const (
	HealthHealthy  = "Healthy"
	HealthWarning  = "Warning"
	HealthCritical = "Critical"

	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

func customerAcquisition(ds *dataset, _ env) map[string]any {
	return map[string]any{
		"newCustomers":        len(ds.accounts),
		"customersByIndustry": countBy(ds.accounts, func(a *accountdomain.Account) string { return a.Industry }),
		"averageRevenue":      ratio.Mean(sumBy(ds.accounts, accountRevenue), len(ds.accounts)),
	}
}

func healthOf(activities int) string {
	switch {
	case activities > 5:
		return HealthHealthy
	case activities > 2:
		return HealthWarning
	}
	return HealthCritical
}

func riskOf(activities int) string {
	switch {
	case activities == 0:
		return RiskHigh
	case activities < 3:
		return RiskMedium
	}
	return RiskLow
}

// accountHealth scores each account by the activities logged against it.
// Activities arrive newest first, so the first match is the latest.
func accountHealth(ds *dataset, _ env) map[string]any {
	byAccount := map[string][]*activitydomain.Activity{}
	for _, act := range ds.activities {
		if act.EntityID == "" {
			continue
		}
		byAccount[act.EntityID] = append(byAccount[act.EntityID], act)
	}

	breakdown := map[string]int{HealthHealthy: 0, HealthWarning: 0, HealthCritical: 0}
	atRisk, active := 0, 0
	top := make([]map[string]any, 0, topHealthAccounts)
	for _, a := range ds.accounts {
		related := byAccount[a.ID.String()]
		health := healthOf(len(related))
		risk := riskOf(len(related))
		breakdown[health]++
		if risk == RiskHigh {
			atRisk++
		}
		if len(related) > 0 {
			active++
		}

		if len(top) < topHealthAccounts {
			var last any
			if len(related) > 0 {
				last = related[0].CreatedAt
			}
			top = append(top, map[string]any{
				"id":              a.ID.String(),
				"account_name":    a.AccountName,
				"industry":        a.Industry,
				"lifecycle_stage": a.LifecycleStage,
				"activityCount":   len(related),
				"health":          health,
				"lastActivity":    last,
				"riskLevel":       risk,
			})
		}
	}

	return map[string]any{
		"totalAccounts":   len(ds.accounts),
		"healthyAccounts": breakdown[HealthHealthy],
		"atRiskAccounts":  atRisk,
		"accountBreakdown": map[string]any{
			"healthy":  breakdown[HealthHealthy],
			"warning":  breakdown[HealthWarning],
			"critical": breakdown[HealthCritical],
		},
		"topAccounts": top,
		"engagementMetrics": map[string]any{
			"averageActivitiesPerAccount": ratio.Mean(decimal.NewFromInt(int64(len(ds.activities))), len(ds.accounts)),
			"activeAccounts":              active,
			"dormantAccounts":             len(ds.accounts) - active,
		},
	}
}

func customerLifecycle(ds *dataset, _ env) map[string]any {
	stage := func(want string) int {
		return countIf(ds.accounts, func(a *accountdomain.Account) bool { return is(a.LifecycleStage, want) })
	}
	return map[string]any{
		"lifecycleStages": map[string]any{
			"prospect": stage(accountdomain.StageProspect),
			"customer": stage(accountdomain.StageCustomer),
			"advocate": stage(accountdomain.StageAdvocate),
		},
		"illustrative": placeholder(PlaceholderLifecycle),
	}
}

// topCustomers ranks accounts by the total of their sales orders.
func topCustomers(ds *dataset, _ env) map[string]any {
	type customer struct {
		account *accountdomain.Account
		revenue decimal.Decimal
		orders  int
	}
	customers := make([]*customer, 0, len(ds.accounts))
	index := make(map[string]*customer, len(ds.accounts))
	for _, a := range ds.accounts {
		c := &customer{account: a, revenue: decimal.Zero}
		customers = append(customers, c)
		index[a.ID.String()] = c
	}
	totalOrders := 0
	for _, o := range ds.salesOrders {
		if o.AccountID == nil {
			continue
		}
		c, ok := index[o.AccountID.String()]
		if !ok {
			continue
		}
		c.revenue = c.revenue.Add(o.TotalAmount)
		c.orders++
		totalOrders++
	}
	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].revenue.GreaterThan(customers[j].revenue)
	})

	cut := len(customers) / 10
	topShare, rest := decimal.Zero, decimal.Zero
	repeat := 0
	list := make([]map[string]any, 0, topCustomerCount)
	for i, c := range customers {
		if i < cut {
			topShare = topShare.Add(c.revenue)
		} else {
			rest = rest.Add(c.revenue)
		}
		if c.orders > 1 {
			repeat++
		}
		if i < topCustomerCount {
			list = append(list, map[string]any{
				"id":           c.account.ID.String(),
				"account_name": c.account.AccountName,
				"industry":     c.account.Industry,
				"totalRevenue": money(c.revenue),
				"orderCount":   c.orders,
			})
		}
	}

	return map[string]any{
		"topCustomers": list,
		"revenueDistribution": map[string]any{
			"top10Percent":       money(topShare),
			"remaining90Percent": money(rest),
		},
		"loyaltyMetrics": map[string]any{
			"repeatCustomers":          repeat,
			"averageOrdersPerCustomer": ratio.Mean(decimal.NewFromInt(int64(totalOrders)), len(customers)),
		},
	}
}
