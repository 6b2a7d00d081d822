// Package scoring ranks customers by outreach priority and derives one action per ranked customer.
package scoring

import (
	"strings"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Additive rule weights
const (
	highChurnWeight       = 50.0
	mediumChurnWeight     = 10.0
	lowSuccessRateWeight  = 15.0
	nightBuyerWeight      = 5.0
	valuableSegmentWeight = 8.0

	// lowSuccessRateThreshold is exclusive: a rate of exactly 50 earns nothing
	lowSuccessRateThreshold = 50.0
)

// valuableSegmentMarkers are matched case-sensitively against the RFM segment
var valuableSegmentMarkers = []string{"Very_Frequent", "High_Value"}

// Score computes the priority score for one customer.
// Missing fields contribute nothing; the score is never negative.
func Score(c types.CustomerRecord) float64 {
	score := 0.0

	score += computeChurnScore(c.ChurnRisk)
	score += computeSuccessRateScore(c.SuccessRatePct)
	if c.NightBuyer {
		score += nightBuyerWeight
	}
	score += computeSegmentScore(c.RFMSegment)

	return score
}

func computeChurnScore(risk types.ChurnRisk) float64 {
	switch risk {
	case types.ChurnRiskHigh:
		return highChurnWeight
	case types.ChurnRiskMedium:
		return mediumChurnWeight
	default:
		return 0.0
	}
}

// computeSuccessRateScore rewards a low success rate.
// An absent rate gets the benefit of the doubt and contributes nothing.
func computeSuccessRateScore(rate *float64) float64 {
	if rate == nil || *rate >= lowSuccessRateThreshold {
		return 0.0
	}
	return lowSuccessRateWeight
}

func computeSegmentScore(segment string) float64 {
	for _, marker := range valuableSegmentMarkers {
		if strings.Contains(segment, marker) {
			return valuableSegmentWeight
		}
	}
	return 0.0
}
