package service

// Figures the CRM does not track yet. Every section built from these values
// carries "dataDriven": false so clients can tell them from computed data.

type PlaceholderRep struct {
	Name    string `json:"name"`
	Leads   int    `json:"leads"`
	Deals   int    `json:"deals"`
	Revenue int64  `json:"revenue"`
	Target  int64  `json:"target"`
}

var PlaceholderSalesReps = []PlaceholderRep{
	{Name: "Hari Kumar K", Leads: 25, Deals: 8, Revenue: 450000, Target: 500000},
	{Name: "Priya Singh", Leads: 32, Deals: 12, Revenue: 680000, Target: 600000},
	{Name: "Raj Patel", Leads: 18, Deals: 6, Revenue: 320000, Target: 400000},
	{Name: "Anjali Sharma", Leads: 28, Deals: 10, Revenue: 520000, Target: 550000},
}

var PlaceholderEngineers = []map[string]any{
	{"name": "Hari Kumar K", "calls": 45, "resolution": "85%", "rating": 4.5},
	{"name": "Priya Mehta", "calls": 38, "resolution": "82%", "rating": 4.3},
	{"name": "Raj Singh", "calls": 42, "resolution": "88%", "rating": 4.6},
}

var PlaceholderGrowth = map[string]any{
	"leadsGrowth":    "+12%",
	"dealsGrowth":    "+8%",
	"pipelineGrowth": "+15%",
}

var PlaceholderBusinessReview = map[string]any{
	"performance": map[string]any{
		"leadGrowth":      "+15%",
		"dealGrowth":      "+8%",
		"customerGrowth":  "+12%",
		"quotationGrowth": "+20%",
	},
	"trends": map[string]any{
		"leadTrend":     "Increasing",
		"dealTrend":     "Stable",
		"customerTrend": "Increasing",
		"seasonality":   "Q4 peak observed",
	},
	"recommendations": []string{
		"Focus on high-value deal closure",
		"Increase lead qualification efforts",
		"Expand customer engagement programs",
	},
}

var PlaceholderQuarterlyInsights = map[string]any{
	"marketInsights": []string{
		"Consistent growth in enterprise segment",
		"Seasonal patterns in Q4 performance",
		"Strong product adoption rates",
	},
	"forecast": map[string]any{
		"nextQuarter": map[string]any{"revenue": 3400000, "customers": 65},
		"confidence":  "85%",
	},
}

var PlaceholderQuotationTiming = map[string]any{
	"timeToConversion": "5.2 days",
	"winRate":          "68%",
}

var PlaceholderForecast = map[string]any{
	"forecastedRevenue": map[string]any{
		"conservative": 2400000,
		"realistic":    2800000,
		"optimistic":   3200000,
	},
	"monthlyBreakdown": []map[string]any{
		{"month": "Jan", "forecast": 450000, "actual": 420000},
		{"month": "Feb", "forecast": 480000, "actual": 510000},
		{"month": "Mar", "forecast": 520000, "actual": 495000},
		{"month": "Apr", "forecast": 540000, "actual": nil},
	},
	"keyAssumptions": []string{
		"Current win rate maintains at 65%",
		"Average deal size increases by 8%",
		"Sales cycle remains at 45 days",
	},
}

var PlaceholderLifecycle = map[string]any{
	"averageLifetimeValue": 245000,
	"churnRate":            "5.2%",
	"retentionRate":        "94.8%",
	"customerJourney": []map[string]any{
		{"stage": "Awareness", "duration": "2-3 weeks", "conversionRate": "25%"},
		{"stage": "Consideration", "duration": "3-4 weeks", "conversionRate": "45%"},
		{"stage": "Purchase", "duration": "1-2 weeks", "conversionRate": "68%"},
		{"stage": "Onboarding", "duration": "2-3 weeks", "conversionRate": "92%"},
		{"stage": "Growth", "duration": "Ongoing", "conversionRate": "78%"},
	},
}

var PlaceholderCategoryOutlook = map[string]any{
	"growth": map[string]any{
		"Laboratory Equipment":   "+12%",
		"Scientific Instruments": "+8%",
		"Medical Devices":        "+15%",
		"Research Tools":         "+5%",
	},
}

var PlaceholderPricing = map[string]any{
	"marginAnalysis": map[string]any{
		"averageMargin":      "32%",
		"highMarginProducts": 12,
		"lowMarginProducts":  8,
	},
	"pricingRecommendations": []string{
		"Increase prices for high-demand products by 5-8%",
		"Bundle complementary products for better margins",
		"Review competitor pricing for market positioning",
	},
	"competitivePosition": "Market Premium",
}

var PlaceholderDemand = map[string]any{
	"seasonalPatterns": map[string]any{
		"Q1": "Low demand period",
		"Q2": "Moderate growth",
		"Q3": "Peak demand",
		"Q4": "Year-end surge",
	},
	"stockRecommendations": []string{
		"Increase inventory for high-growth products",
		"Reduce slow-moving inventory",
		"Plan for seasonal variations",
	},
}

var PlaceholderInstallationTiming = map[string]any{
	"averageInstallationTime": "3.2 days",
}

var PlaceholderServiceMetrics = map[string]any{
	"serviceMetrics": map[string]any{
		"averageResponseTime":  "2.4 hours",
		"firstCallResolution":  "78%",
		"customerSatisfaction": "4.2/5",
		"slaCompliance":        "92%",
	},
	"engineerPerformance": PlaceholderEngineers,
	"efficiency":          "High - Above industry standards",
}

var PlaceholderRenewalAdvice = map[string]any{
	"recommendations": []string{
		"Initiate renewal discussions 60 days before expiry",
		"Offer incentives for early renewals",
		"Schedule customer satisfaction reviews",
	},
}

var PlaceholderRootCauses = map[string]any{
	"rootCauseAnalysis": []map[string]any{
		{"cause": "User Error", "frequency": 35, "percentage": "42%"},
		{"cause": "Software Bug", "frequency": 18, "percentage": "22%"},
		{"cause": "Hardware Failure", "frequency": 15, "percentage": "18%"},
		{"cause": "Configuration Issue", "frequency": 12, "percentage": "14%"},
		{"cause": "Network Problem", "frequency": 3, "percentage": "4%"},
	},
	"preventionRecommendations": []string{
		"Enhance user training programs",
		"Improve software testing protocols",
		"Regular hardware maintenance checks",
	},
}

var PlaceholderKnowledgeBase = map[string]any{
	"averageEffectiveness": "4.1/5",
	"popularSolutions": []map[string]any{
		{"title": "Calibration Procedure", "views": 245, "effectiveness": "4.5/5"},
		{"title": "Software Installation Guide", "views": 189, "effectiveness": "4.2/5"},
		{"title": "Troubleshooting Network Issues", "views": 156, "effectiveness": "4.0/5"},
	},
	"knowledgeGaps": []string{
		"Advanced troubleshooting procedures",
		"Integration with third-party systems",
		"Customization guidelines",
	},
}

var PlaceholderSatisfaction = map[string]any{
	"overallSatisfaction": "4.2/5",
	"satisfactionTrends": map[string]any{
		"Very Satisfied":    45,
		"Satisfied":         38,
		"Neutral":           12,
		"Dissatisfied":      4,
		"Very Dissatisfied": 1,
	},
	"departmentRatings": map[string]any{
		"Technical Support": "4.3/5",
		"Sales":             "4.1/5",
		"Installation":      "4.4/5",
		"Training":          "4.0/5",
	},
	"improvementAreas": []string{
		"Response time reduction",
		"First-call resolution",
		"Follow-up communication",
	},
	"npsScore": 68,
	"customerFeedback": []string{
		"Excellent technical expertise",
		"Quick resolution of issues",
		"Professional service delivery",
	},
}

var PlaceholderAdoption = map[string]any{
	"userMetrics": map[string]any{
		"totalUsers":    25,
		"activeUsers":   22,
		"inactiveUsers": 3,
		"adoptionRate":  "88%",
	},
	"featureUsage": map[string]any{
		"Leads Management":   "95%",
		"Deal Tracking":      "88%",
		"Contact Management": "92%",
		"Reports":            "76%",
		"Activities":         "85%",
		"Support Center":     "82%",
	},
	"loginFrequency": map[string]any{
		"daily":    18,
		"weekly":   4,
		"monthly":  2,
		"inactive": 1,
	},
	"recommendations": []string{
		"Provide training for underutilized features",
		"Implement gamification for engagement",
		"Regular check-ins with inactive users",
	},
}

var PlaceholderDocuments = map[string]any{
	"documentMetrics": map[string]any{
		"totalDocuments":    156,
		"documentsAccessed": 134,
		"averageViews":      12,
		"downloadCount":     1247,
	},
	"popularDocuments": []map[string]any{
		{"name": "Product Catalog 2025", "views": 245, "downloads": 89},
		{"name": "Installation Manual", "views": 189, "downloads": 67},
		{"name": "Technical Specifications", "views": 156, "downloads": 45},
	},
	"documentTypes": map[string]any{
		"manuals":        45,
		"brochures":      34,
		"specifications": 28,
		"presentations":  25,
		"forms":          24,
	},
	"usagePatterns": map[string]any{
		"Peak Access Time":         "10:00 AM - 12:00 PM",
		"Most Active Day":          "Tuesday",
		"Average Session Duration": "8.5 minutes",
	},
}

var PlaceholderFollowUpTiming = map[string]any{
	"averageCompletionTime": "2.3 days",
	"recommendations": []string{
		"Set automated reminders for follow-ups",
		"Prioritize overdue activities",
		"Implement follow-up templates",
	},
}

// placeholder copies values into a fresh section flagged as not data driven.
func placeholder(values map[string]any) map[string]any {
	out := make(map[string]any, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	out["dataDriven"] = false
	return out
}
