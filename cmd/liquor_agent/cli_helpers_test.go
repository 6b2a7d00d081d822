package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// getBinaryPath returns the path to the liquor_agent binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "liquor_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/liquor_agent ./cmd/liquor_agent'", binaryPath)
	}

	return binaryPath
}

const sampleCustomers = `{"customers": [
	{"email": "a@x.com", "name": "Ana", "phone": "555-0100", "rfm_segment": "Champions", "churn_risk": "High", "primary_category": "Tequila"},
	{"email": "b@x.com", "name": "Ben", "rfm_segment": "Hibernating", "churn_risk": "Low", "primary_category": "Wine"},
	{"email": "c@x.com", "name": "Cal", "rfm_segment": "Champions", "churn_risk": "Medium", "primary_category": "Whiskey"}
]}`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
