package planning

import (
	"fmt"
	"math"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// AnalyzePerformance compares an executed plan with its observed results.
// Every rate is zero when its denominator is zero.
func AnalyzePerformance(plan types.CampaignPlan, results types.CampaignResults) types.PlanPerformance {
	totalSends := len(plan.Sends)

	openRate := percent(float64(results.Opens), float64(totalSends))
	clickRate := percent(float64(results.Clicks), float64(results.Opens))
	conversionRate := percent(float64(results.Conversions), float64(totalSends))
	aov := ratio(results.Revenue, float64(results.Conversions))

	kpis := plan.KPIs
	if kpis == nil {
		kpis = []string{}
	}

	return types.PlanPerformance{
		PlanID:     plan.ID,
		TotalSends: totalSends,
		Metrics:    results,
		Rates: types.PerformanceRates{
			OpenRate:       round2(openRate),
			ClickRate:      round2(clickRate),
			ConversionRate: round2(conversionRate),
		},
		Financial: types.PerformanceFinancials{
			TotalRevenue:   results.Revenue,
			AOV:            round2(aov),
			RevenuePerSend: round2(ratio(results.Revenue, float64(totalSends))),
		},
		KPIs: kpis,
		PerformanceVsTarget: map[string]string{
			"win_back_rate":   "TBD",
			"aov":             fmt.Sprintf("$%s", formatRounded(aov)),
			"conversion_rate": fmt.Sprintf("%s%%", formatRounded(conversionRate)),
		},
	}
}

func percent(part, whole float64) float64 {
	return ratio(part, whole) * 100
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatRounded(v float64) string {
	return fmt.Sprintf("%.2f", round2(v))
}
