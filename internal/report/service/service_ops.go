package service

import (
	"time"

	"github.com/shopspring/decimal"
	amcdomain "github.com/smallbiznis/crm/internal/amc/domain"
	complaintdomain "github.com/smallbiznis/crm/internal/complaint/domain"
	installationdomain "github.com/smallbiznis/crm/internal/installation/domain"
	"github.com/smallbiznis/crm/pkg/ratio"
)

const (
	renewalWindow  = 30 * 24 * time.Hour
	upcomingWindow = 7 * 24 * time.Hour
)

func contractValue(c *amcdomain.Contract) decimal.Decimal { return c.ContractValue }

// expiresWithin reports whether an active contract ends between now and
// now+window.
func expiresWithin(c *amcdomain.Contract, now time.Time, window time.Duration) bool {
	if !is(c.Status, amcdomain.StatusActive) {
		return false
	}
	return !c.EndDate.Before(day(now)) && !c.EndDate.After(now.Add(window))
}

func amcPerformance(ds *dataset, e env) map[string]any {
	return map[string]any{
		"activeContracts": countIf(ds.contracts, func(c *amcdomain.Contract) bool { return is(c.Status, amcdomain.StatusActive) }),
		"totalRevenue":    money(sumBy(ds.contracts, contractValue)),
		"expiringContracts": countIf(ds.contracts, func(c *amcdomain.Contract) bool {
			return expiresWithin(c, e.now, renewalWindow)
		}),
		"renewalRate": ratio.Percent(
			countIf(ds.contracts, func(c *amcdomain.Contract) bool { return is(c.Status, amcdomain.StatusRenewed) }),
			len(ds.contracts),
		),
	}
}

func installationTracking(ds *dataset, e env) map[string]any {
	status := func(want string) int {
		return countIf(ds.installations, func(i *installationdomain.Installation) bool { return is(i.Status, want) })
	}
	completed := status(installationdomain.StatusCompleted)
	today := day(e.now)

	delayed := countIf(ds.installations, func(i *installationdomain.Installation) bool {
		if i.ScheduledDate == nil || i.CompletedDate == nil {
			return false
		}
		return day(*i.CompletedDate).After(day(*i.ScheduledDate))
	})
	upcoming := countIf(ds.installations, func(i *installationdomain.Installation) bool {
		if i.ScheduledDate == nil {
			return false
		}
		if is(i.Status, installationdomain.StatusCompleted) || is(i.Status, installationdomain.StatusCancelled) {
			return false
		}
		return !i.ScheduledDate.Before(today) && !i.ScheduledDate.After(e.now.Add(upcomingWindow))
	})

	return map[string]any{
		"totalInstallations":      len(ds.installations),
		"completedInstallations":  completed,
		"pendingInstallations":    status(installationdomain.StatusPending),
		"inProgressInstallations": status(installationdomain.StatusInProgress),
		"completionRate":          ratio.Percent(completed, len(ds.installations)),
		"delayedInstallations":    delayed,
		"upcomingInstallations":   upcoming,
		"illustrative":            placeholder(PlaceholderInstallationTiming),
	}
}

func serviceEfficiency(ds *dataset, _ env) map[string]any {
	closed := countIf(ds.complaints, func(c *complaintdomain.Complaint) bool {
		return is(c.Status, complaintdomain.StatusResolved) || is(c.Status, complaintdomain.StatusClosed)
	})
	return map[string]any{
		"serviceTypes": map[string]any{
			"installation": len(ds.installations),
			"maintenance":  len(ds.contracts),
			"repair":       len(ds.complaints),
		},
		"complaintResolutionRate": ratio.Percent(closed, len(ds.complaints)),
		"illustrative":            placeholder(PlaceholderServiceMetrics),
	}
}

// contractRenewals looks at active contracts ending within the renewal
// window. Auto-renewing contracts count as likely renewals; fully serviced
// ones as probable; the rest need attention.
func contractRenewals(ds *dataset, e env) map[string]any {
	thisMonth := countIf(ds.contracts, func(c *amcdomain.Contract) bool {
		return c.EndDate.Year() == e.now.Year() && c.EndDate.Month() == e.now.Month()
	})

	due := filter(ds.contracts, func(c *amcdomain.Contract) bool { return expiresWithin(c, e.now, renewalWindow) })
	var high, medium, low int
	for _, c := range due {
		switch {
		case c.AutoRenewal:
			high++
		case c.NumberOfServices > 0 && c.ServicesCompleted >= c.NumberOfServices:
			medium++
		default:
			low++
		}
	}

	return map[string]any{
		"totalContracts":     len(ds.contracts),
		"renewalsThisMonth":  thisMonth,
		"renewalsNext30Days": len(due),
		"potentialRevenue":   money(sumBy(due, contractValue)),
		"renewalProbability": map[string]any{
			"high":   high,
			"medium": medium,
			"low":    low,
		},
		"actionRequired": medium + low,
		"illustrative":   placeholder(PlaceholderRenewalAdvice),
	}
}
