package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PhoneOmittedWhenEmpty(t *testing.T) {
	send := Send{
		Date:       "2025-01-01",
		Email:      "a@x.com",
		Channel:    []string{"Email"},
		SendWindow: []string{"18:00", "22:00"},
	}

	jsonBytes, err := json.Marshal(send)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonBytes), `"phone"`)
	assert.Contains(t, string(jsonBytes), `"send_window":["18:00","22:00"]`)

	send.Phone = "+15550100"
	jsonBytes, err = json.Marshal(send)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"phone":"+15550100"`)
}

func TestCampaignPlan_EngineTag(t *testing.T) {
	plan := CampaignPlan{
		Period: "2025-01-01 to 2025-01-07",
		Sends:  []Send{},
		Engine: EngineHeuristic,
	}

	jsonBytes, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"engine":"heuristic"`)
	assert.Contains(t, string(jsonBytes), `"sends":[]`)
	assert.NotContains(t, string(jsonBytes), `"id"`)
}
