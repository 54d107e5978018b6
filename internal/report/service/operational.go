package service

import (
	"strings"

	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	"github.com/smallbiznis/crm/pkg/ratio"
)

func activityDone(a *activitydomain.Activity) bool {
	return is(a.Status, activitydomain.StatusCompleted)
}

func userAdoption(ds *dataset, _ env) map[string]any {
	byUser := countBy(ds.activities, func(a *activitydomain.Activity) string { return a.AssignedTo })
	delete(byUser, unknown)

	return map[string]any{
		"activeUsers":    len(byUser),
		"activityByUser": byUser,
		"illustrative":   placeholder(PlaceholderAdoption),
	}
}

func documentUsage(ds *dataset, _ env) map[string]any {
	return map[string]any{
		"documentsIssued": map[string]any{
			"quotations":  len(ds.quotations),
			"invoices":    len(ds.invoices),
			"salesOrders": len(ds.salesOrders),
		},
		"illustrative": placeholder(PlaceholderDocuments),
	}
}

func activitySummary(ds *dataset, _ env) map[string]any {
	completed := countIf(ds.activities, activityDone)
	return map[string]any{
		"totalActivities":     len(ds.activities),
		"completedActivities": completed,
		"completionRate":      ratio.Percent(completed, len(ds.activities)),
		"activityBreakdown":   countBy(ds.activities, func(a *activitydomain.Activity) string { return a.ActivityType }),
	}
}

func followUpEfficiency(ds *dataset, e env) map[string]any {
	followUps := filter(ds.activities, func(a *activitydomain.Activity) bool {
		return is(a.ActivityType, activitydomain.TypeFollowUp)
	})
	completed := countIf(followUps, activityDone)
	overdue := countIf(followUps, func(a *activitydomain.Activity) bool {
		return a.DueDate != nil && a.DueDate.Before(e.now) && !activityDone(a)
	})
	mentions := func(word string) int {
		return countIf(followUps, func(a *activitydomain.Activity) bool {
			return strings.Contains(strings.ToLower(a.Description), word)
		})
	}

	return map[string]any{
		"followUpMetrics": map[string]any{
			"totalFollowUps":     len(followUps),
			"completedFollowUps": completed,
			"pendingFollowUps": countIf(followUps, func(a *activitydomain.Activity) bool {
				return is(a.Status, activitydomain.StatusPending)
			}),
			"overdueFollowUps": overdue,
		},
		"completionRate": ratio.Percent(completed, len(followUps)),
		"followUpTypes": map[string]any{
			"Sales Follow-up":   mentions("sales"),
			"Support Follow-up": mentions("support"),
			"Service Follow-up": mentions("service"),
		},
		"illustrative": placeholder(PlaceholderFollowUpTiming),
	}
}
