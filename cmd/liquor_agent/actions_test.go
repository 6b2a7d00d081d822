package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmoney1214/liquormarketingagent/internal/db"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

func TestGenerateActions(t *testing.T) {
	path := writeTempFile(t, "customers.json", sampleCustomers)
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		filter     db.CustomerFilter
		limit      int
		wantEmails []string
	}{
		{
			name:       "all customers ranked",
			limit:      10,
			wantEmails: []string{"a@x.com", "c@x.com", "b@x.com"},
		},
		{
			name:       "limit keeps the top",
			limit:      1,
			wantEmails: []string{"a@x.com"},
		},
		{
			name:       "segment filter",
			filter:     db.CustomerFilter{Segments: []string{"Champions"}},
			limit:      10,
			wantEmails: []string{"a@x.com", "c@x.com"},
		},
		{
			name:       "churn risk filter ignores case",
			filter:     db.CustomerFilter{ChurnRisk: "MEDIUM"},
			limit:      10,
			wantEmails: []string{"c@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := generateActions(context.Background(), path, tt.filter, tt.limit, now)
			require.NoError(t, err)

			assert.Equal(t, "2025-03-10T15:00:00Z", set.GeneratedAt)
			assert.Equal(t, len(tt.wantEmails), set.ActionsCount)
			emails := make([]string, 0, len(set.Actions))
			for _, a := range set.Actions {
				emails = append(emails, a.Email)
			}
			assert.Equal(t, tt.wantEmails, emails)
		})
	}
}

func TestGenerateActions_Errors(t *testing.T) {
	_, err := generateActions(context.Background(), "/nonexistent/customers.json", db.CustomerFilter{}, 10, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load customers")

	path := writeTempFile(t, "customers.json", sampleCustomers)
	_, err = generateActions(context.Background(), path, db.CustomerFilter{}, 0, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--limit")
}

func TestGenerateActions_EmptyFileYieldsEmptySet(t *testing.T) {
	path := writeTempFile(t, "customers.json", `[]`)

	set, err := generateActions(context.Background(), path, db.CustomerFilter{}, 10, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, set.ActionsCount)
	assert.Empty(t, set.Actions)
}

func TestActionsCommand_FlagsValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Missing --customers flag",
			args:        []string{"actions", "--out", "/tmp/actions.json"},
			errorString: "required",
		},
		{
			name:        "Missing --out flag",
			args:        []string{"actions", "--customers", "/tmp/customers.json"},
			errorString: "required",
		},
	}

	binaryPath := getBinaryPath(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := exec.Command(binaryPath, tt.args...).CombinedOutput()
			assert.Error(t, err)
			assert.Contains(t, string(output), tt.errorString)
		})
	}
}

func TestActionsCommand_Success(t *testing.T) {
	binaryPath := getBinaryPath(t)
	input := writeTempFile(t, "customers.json", sampleCustomers)
	out := filepath.Join(t.TempDir(), "actions.json")

	output, err := exec.Command(binaryPath, "actions", "--customers", input, "--out", out, "--limit", "2").CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Contains(t, string(output), "Successfully generated 2 actions")

	var set types.ActionSet
	require.NoError(t, readJSONFile(out, "actions", &set))
	assert.Len(t, set.Actions, 2)
	_, statErr := os.Stat(out)
	assert.NoError(t, statErr)
}
