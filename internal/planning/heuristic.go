// Package planning schedules ranked actions into a dated multi-day campaign plan,
// either with a deterministic round-robin heuristic or through an AI planner
// with the heuristic as fallback.
package planning

import (
	"fmt"
	"time"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// MaxPlannedSends caps the number of actions a heuristic plan schedules,
// independent of any caller-supplied limit.
const MaxPlannedSends = 200

// DateLayout is the ISO date format used for send dates and the period label
const DateLayout = "2006-01-02"

// DefaultRationale is the fixed rationale of heuristic plans
const DefaultRationale = "Focus high-churn win-backs and bundle AOV uplift. Timing aligned to buyer behavior."

// DefaultCohorts returns the fixed cohort labels of heuristic plans
func DefaultCohorts() []string {
	return []string{"High churn", "Low_Value_Frequent", "Category primaries"}
}

// DefaultKPIs returns the fixed KPI names of heuristic plans
func DefaultKPIs() []string {
	return []string{"win_back_rate", "aov", "conversion_rate"}
}

// CampaignDays returns durationDays consecutive calendar dates starting at start.
// A duration below one is treated as one day.
func CampaignDays(start time.Time, durationDays int) []string {
	if durationDays < 1 {
		durationDays = 1
	}
	y, m, d := start.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	days := make([]string, durationDays)
	for i := range days {
		days[i] = first.AddDate(0, 0, i).Format(DateLayout)
	}
	return days
}

// HeuristicPlan distributes the first MaxPlannedSends actions round-robin across
// the campaign days: action i lands on day i mod durationDays. Within a day,
// sends keep their rank order.
func HeuristicPlan(actions []types.Action, start time.Time, durationDays int) types.CampaignPlan {
	days := CampaignDays(start, durationDays)

	planned := actions
	if len(planned) > MaxPlannedSends {
		planned = planned[:MaxPlannedSends]
	}

	sends := make([]types.Send, 0, len(planned))
	for idx, action := range planned {
		sends = append(sends, buildSend(days[idx%len(days)], action))
	}

	return types.CampaignPlan{
		Period:    fmt.Sprintf("%s to %s", days[0], days[len(days)-1]),
		Rationale: DefaultRationale,
		Cohorts:   DefaultCohorts(),
		KPIs:      DefaultKPIs(),
		Sends:     sends,
		Engine:    types.EngineHeuristic,
	}
}

// DefaultSendChannels is the channel list of a send that names none
func DefaultSendChannels() []string {
	return []string{"Email"}
}

// DefaultSendWindow is the send window of a send that names none
func DefaultSendWindow() []string {
	return []string{"18:00", "22:00"}
}

// buildSend copies delivery fields from an action, applying channel and window defaults
func buildSend(date string, action types.Action) types.Send {
	channel := action.Channel
	if len(channel) == 0 {
		channel = DefaultSendChannels()
	}
	window := action.SendWindow
	if len(window) == 0 {
		window = DefaultSendWindow()
	}

	return types.Send{
		Date:         date,
		Email:        action.Email,
		Channel:      append([]string(nil), channel...),
		SendWindow:   append([]string(nil), window...),
		Offer:        action.Offer,
		CreativeHint: action.CreativeHint,
		Segment:      action.Segment,
		Phone:        action.Phone,
	}
}
