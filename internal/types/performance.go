// Package types provides type definitions for structured data used throughout the liquor marketing agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CampaignResults holds observed outcomes of an executed campaign plan
type CampaignResults struct {
	Opens       int     `json:"opens"`
	Clicks      int     `json:"clicks"`
	Conversions int     `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// PerformanceRates holds percentage rates rounded to two decimals
type PerformanceRates struct {
	OpenRate       float64 `json:"open_rate"`
	ClickRate      float64 `json:"click_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}

// PerformanceFinancials holds revenue-derived figures
type PerformanceFinancials struct {
	TotalRevenue   float64 `json:"total_revenue"`
	AOV            float64 `json:"aov"`
	RevenuePerSend float64 `json:"revenue_per_send"`
}

// PlanPerformance is the analysis of a plan against its observed results
type PlanPerformance struct {
	PlanID              string                `json:"plan_id,omitempty"`
	TotalSends          int                   `json:"total_sends"`
	Metrics             CampaignResults       `json:"metrics"`
	Rates               PerformanceRates      `json:"rates"`
	Financial           PerformanceFinancials `json:"financial"`
	KPIs                []string              `json:"kpis"`
	PerformanceVsTarget map[string]string     `json:"performance_vs_target"`
}
