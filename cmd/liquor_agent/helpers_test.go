package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmoney1214/liquormarketingagent/internal/llm"
	"github.com/Jmoney1214/liquormarketingagent/internal/schemas"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

func TestParseStartDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty is today", value: "", want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{name: "iso date", value: "2025-04-01", want: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{name: "wrong layout", value: "04/01/2025", wantErr: true},
		{name: "impossible date", value: "2025-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStartDate(tt.value, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "YYYY-MM-DD")
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestWriteJSONOutput_CreatesDirectoryAndIndents(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "dir", "actions.json")
	set := types.ActionSet{GeneratedAt: "2025-03-10T00:00:00Z", Actions: []types.Action{}}

	require.NoError(t, writeJSONOutput(out, set, "schemas/actions.schema.json", "actions"))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n  \"actions_count\": 0")

	var decoded types.ActionSet
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, set.GeneratedAt, decoded.GeneratedAt)
}

func TestWriteJSONOutput_SchemaViolation(t *testing.T) {
	if schemas.ResolveSchemaPath("schemas/actions.schema.json") == "" {
		t.Skip("actions schema not found")
	}
	out := filepath.Join(t.TempDir(), "actions.json")

	err := writeJSONOutput(out, map[string]any{"actions": "not a list"}, "schemas/actions.schema.json", "actions")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generated actions is invalid")
	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestWriteJSONOutput_ModelPlanWithoutLists(t *testing.T) {
	if schemas.ResolveSchemaPath("schemas/campaign_plan.schema.json") == "" {
		t.Skip("campaign plan schema not found")
	}
	plan, err := llm.ParsePlan(`{"period": "p", "rationale": "r", "sends": [{"date": "2025-03-10", "email": "a@example.com", "channel": "Email", "offer": "o"}]}`)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, writeJSONOutput(out, plan, "schemas/campaign_plan.schema.json", "campaign plan"))
}

func TestWriteJSONOutput_MissingSchemaIsSkipped(t *testing.T) {
	out := filepath.Join(t.TempDir(), "anything.json")
	require.NoError(t, writeJSONOutput(out, map[string]int{"x": 1}, "schemas/does_not_exist.schema.json", "thing"))
	require.NoError(t, writeJSONOutput(out, map[string]int{"x": 1}, "", "thing"))
}

func TestReadJSONFile(t *testing.T) {
	var plan types.CampaignPlan
	path := writeTempFile(t, "plan.json", `{"period": "2025-03-10 to 2025-03-16", "engine": "heuristic"}`)
	require.NoError(t, readJSONFile(path, "campaign plan", &plan))
	assert.Equal(t, types.EngineHeuristic, plan.Engine)

	err := readJSONFile(writeTempFile(t, "bad.json", `{`), "campaign plan", &plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal campaign plan JSON")

	err = readJSONFile("/nonexistent/plan.json", "campaign plan", &plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read campaign plan file")
}

func TestFirstPositive(t *testing.T) {
	assert.Equal(t, 5, firstPositive(0, 5, 7))
	assert.Equal(t, 3, firstPositive(3, 5))
	assert.Equal(t, 0, firstPositive(0, -1))
}
