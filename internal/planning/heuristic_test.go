package planning

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

func makeActions(n int) []types.Action {
	actions := make([]types.Action, n)
	for i := range actions {
		actions[i] = types.Action{
			Email:        fmt.Sprintf("c%03d@example.com", i),
			Name:         fmt.Sprintf("Customer %d", i),
			Segment:      "Loyal",
			Offer:        "Win-back: 12% off",
			SendWindow:   []string{"18:00", "22:00"},
			Channel:      []string{"Email", "SMS"},
			CreativeHint: "Bourbon focus | Win-back",
		}
	}
	return actions
}

var jan1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestHeuristicPlan_CapsAndDistributes(t *testing.T) {
	plan := HeuristicPlan(makeActions(250), jan1, 7)

	require.Len(t, plan.Sends, MaxPlannedSends)
	assert.Equal(t, types.EngineHeuristic, plan.Engine)
	assert.Equal(t, "2025-01-01 to 2025-01-07", plan.Period)
	assert.Equal(t, "2025-01-01", plan.Sends[0].Date)

	perDay := map[string]int{}
	for _, s := range plan.Sends {
		perDay[s.Date]++
	}
	require.Len(t, perDay, 7)
	for date, count := range perDay {
		assert.True(t, count == 28 || count == 29, "day %s has %d sends", date, count)
	}
	assert.Equal(t, 29, perDay["2025-01-01"])
	assert.Equal(t, 28, perDay["2025-01-07"])
}

func TestHeuristicPlan_RoundRobinPreservesRank(t *testing.T) {
	actions := makeActions(10)
	plan := HeuristicPlan(actions, jan1, 3)

	require.Len(t, plan.Sends, 10)
	for i, s := range plan.Sends {
		assert.Equal(t, actions[i].Email, s.Email)
		assert.Equal(t, CampaignDays(jan1, 3)[i%3], s.Date)
	}
}

func TestHeuristicPlan_FixedFields(t *testing.T) {
	plan := HeuristicPlan(makeActions(1), jan1, 7)

	assert.Equal(t, DefaultRationale, plan.Rationale)
	assert.Equal(t, []string{"High churn", "Low_Value_Frequent", "Category primaries"}, plan.Cohorts)
	assert.Equal(t, []string{"win_back_rate", "aov", "conversion_rate"}, plan.KPIs)

	send := plan.Sends[0]
	assert.Equal(t, "Loyal", send.Segment)
	assert.Equal(t, "Win-back: 12% off", send.Offer)
	assert.Equal(t, []string{"Email", "SMS"}, send.Channel)
	assert.Equal(t, "Bourbon focus | Win-back", send.CreativeHint)
}

func TestHeuristicPlan_EmptyActions(t *testing.T) {
	plan := HeuristicPlan(nil, jan1, 7)

	assert.NotNil(t, plan.Sends)
	assert.Empty(t, plan.Sends)
	assert.Equal(t, "2025-01-01 to 2025-01-07", plan.Period)
}

func TestHeuristicPlan_Deterministic(t *testing.T) {
	actions := makeActions(40)
	assert.Equal(t, HeuristicPlan(actions, jan1, 5), HeuristicPlan(actions, jan1, 5))
}

func TestHeuristicPlan_DefaultsMissingChannelAndWindow(t *testing.T) {
	plan := HeuristicPlan([]types.Action{{Email: "a@example.com"}}, jan1, 1)

	require.Len(t, plan.Sends, 1)
	assert.Equal(t, []string{"Email"}, plan.Sends[0].Channel)
	assert.Equal(t, []string{"18:00", "22:00"}, plan.Sends[0].SendWindow)
}

func TestCampaignDays(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		duration int
		want     []string
	}{
		{"single day", jan1, 1, []string{"2025-01-01"}},
		{"zero clamps to one", jan1, 0, []string{"2025-01-01"}},
		{"negative clamps to one", jan1, -4, []string{"2025-01-01"}},
		{"crosses month", time.Date(2025, 1, 30, 15, 4, 0, 0, time.UTC), 3, []string{"2025-01-30", "2025-01-31", "2025-02-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CampaignDays(tt.start, tt.duration))
		})
	}
}
