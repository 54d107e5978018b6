package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	complaintdomain "github.com/smallbiznis/crm/internal/complaint/domain"
	supportdomain "github.com/smallbiznis/crm/internal/support/domain"
	"github.com/smallbiznis/crm/pkg/ratio"
)

func caseStatus(want string) func(*supportdomain.Case) bool {
	return func(c *supportdomain.Case) bool { return is(c.Status, want) }
}

// resolutionTime is the mean hours from logging to resolution over the
// cases that carry a resolved date.
func resolutionTime(cases []*supportdomain.Case) string {
	total := decimal.Zero
	n := 0
	for _, c := range cases {
		if c.ResolvedDate == nil || c.ResolvedDate.Before(c.CreatedAt) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(c.ResolvedDate.Sub(c.CreatedAt).Hours()))
		n++
	}
	return fmt.Sprintf("%.1f hours", ratio.Mean(total, n))
}

func supportPerformance(ds *dataset, _ env) map[string]any {
	resolvedCases := countIf(ds.cases, caseStatus(supportdomain.CaseStatusResolved))
	return map[string]any{
		"totalCases":      len(ds.cases),
		"resolvedCases":   resolvedCases,
		"totalComplaints": len(ds.complaints),
		"resolvedComplaints": countIf(ds.complaints, func(c *complaintdomain.Complaint) bool {
			return is(c.Status, complaintdomain.StatusResolved)
		}),
		"resolutionRate":    ratio.Percent(resolvedCases, len(ds.cases)),
		"avgResolutionTime": resolutionTime(ds.cases),
	}
}

func caseAnalysis(ds *dataset, _ env) map[string]any {
	category := func(want string) int {
		return countIf(ds.cases, func(c *supportdomain.Case) bool { return is(c.CaseCategory, want) })
	}
	return map[string]any{
		"caseStatistics": map[string]any{
			"totalCases":            len(ds.cases),
			"openCases":             countIf(ds.cases, caseStatus(supportdomain.CaseStatusOpen)),
			"resolvedCases":         countIf(ds.cases, caseStatus(supportdomain.CaseStatusResolved)),
			"averageResolutionTime": resolutionTime(ds.cases),
		},
		"issueTrends": map[string]any{
			"technical": category("Technical Support"),
			"hardware":  category("Hardware Issue"),
			"software":  category("Software Issue"),
			"training":  category("Training"),
		},
		"casesByCategory":  countBy(ds.cases, func(c *supportdomain.Case) string { return c.CaseCategory }),
		"complaintsByType": countBy(ds.complaints, func(c *complaintdomain.Complaint) string { return c.ComplaintType }),
		"illustrative":     placeholder(PlaceholderRootCauses),
	}
}

func knowledgeBase(ds *dataset, _ env) map[string]any {
	category := func(want string) int {
		return countIf(ds.solutions, func(s *supportdomain.Solution) bool { return is(s.SolutionCategory, want) })
	}
	return map[string]any{
		"solutionMetrics": map[string]any{
			"totalSolutions": len(ds.solutions),
			"publishedSolutions": countIf(ds.solutions, func(s *supportdomain.Solution) bool {
				return is(s.Status, supportdomain.SolutionStatusPublished)
			}),
			"reusableSolutions": countIf(ds.solutions, func(s *supportdomain.Solution) bool { return s.Reusable }),
		},
		"solutionCategories": map[string]any{
			"Technical Support": category("Technical Support"),
			"Installation":      category("Installation"),
			"Training":          category("Training"),
		},
		"illustrative": placeholder(PlaceholderKnowledgeBase),
	}
}

// customerSatisfaction has no survey data behind it yet.
func customerSatisfaction(ds *dataset, _ env) map[string]any {
	return map[string]any{
		"casesReviewed": len(ds.cases),
		"illustrative":  placeholder(PlaceholderSatisfaction),
	}
}
