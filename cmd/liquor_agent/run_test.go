package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmoney1214/liquormarketingagent/internal/config"
	"github.com/Jmoney1214/liquormarketingagent/internal/docs"
	"github.com/Jmoney1214/liquormarketingagent/internal/pipeline"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

func TestWriteRunOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	result := &pipeline.Result{
		Actions: []types.Action{{
			Email: "a@x.com", Name: "Ana", Segment: "Champions", PrimaryCategory: "Tequila",
			Offer: "VIP early access", SendWindow: []string{"18:00", "22:00"}, Channel: []string{"Email"},
			CreativeHint: "Tequila focus", Reason: "High priority", PriorityScore: 40,
		}},
		Plan: types.CampaignPlan{
			ID: "plan-1", Period: "2025-03-10 to 2025-03-10", Rationale: "r",
			Cohorts: []string{}, KPIs: []string{}, Engine: types.EngineHeuristic,
			Sends: []types.Send{{
				Date: "2025-03-10", Email: "a@x.com", Channel: []string{"Email"},
				SendWindow: []string{"18:00", "22:00"}, Offer: "VIP early access", Segment: "Champions",
			}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeRunOutputs(&buf, dir, result, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))

	var set types.ActionSet
	require.NoError(t, readJSONFile(filepath.Join(dir, "actions.json"), "actions", &set))
	assert.Equal(t, 1, set.ActionsCount)
	assert.Equal(t, "2025-03-10T00:00:00Z", set.GeneratedAt)

	var plan types.CampaignPlan
	require.NoError(t, readJSONFile(filepath.Join(dir, "campaign_plan.json"), "campaign plan", &plan))
	assert.Equal(t, "plan-1", plan.ID)

	assert.Contains(t, buf.String(), "Successfully wrote 1 actions")
	assert.Contains(t, buf.String(), "heuristic campaign plan with 1 sends")
}

func TestDocSources(t *testing.T) {
	cfg := config.Defaults()
	assert.Equal(t, docs.DefaultPlaybooks(), docSources(nil, &cfg))

	cfg.Planner.Docs = []string{"data/house.md"}
	assert.Equal(t, []string{"data/house.md"}, docSources(nil, &cfg))
	assert.Equal(t, []string{"https://example.com/p.html"}, docSources([]string{"https://example.com/p.html"}, &cfg))
}

func TestConnectDB_RequiresURL(t *testing.T) {
	cfg := config.Defaults()
	_, err := connectDB(t.Context(), &cfg, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestRunPipelineCmd_RequiresCustomerSource(t *testing.T) {
	savedCustomers, savedFromDB := runCustomers, runFromDB
	t.Cleanup(func() { runCustomers, runFromDB = savedCustomers, savedFromDB })
	runCustomers, runFromDB = "", false

	err := runPipelineCmd(runCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of --customers or --from-db is required")
}
