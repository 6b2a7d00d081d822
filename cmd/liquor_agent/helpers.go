package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Jmoney1214/liquormarketingagent/internal/config"
	"github.com/Jmoney1214/liquormarketingagent/internal/llm"
	"github.com/Jmoney1214/liquormarketingagent/internal/logging"
	"github.com/Jmoney1214/liquormarketingagent/internal/planning"
	"github.com/Jmoney1214/liquormarketingagent/internal/schemas"
)

// loadConfig reads --config (if given) and the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.LogLevel)
}

// newPlanner wires the configured AI provider into a planner. Without a
// credential the AI planner is left nil and every plan is heuristic.
func newPlanner(cfg *config.Config, logger *slog.Logger) *planning.Planner {
	llmCfg := cfg.LLMConfig()
	var ai planning.AIPlanner
	if llmCfg.HasCredential() {
		ai = llm.NewCampaignPlanner(llmCfg)
	}
	return planning.NewPlanner(cfg.PlannerConfig(), ai, logger)
}

// parseStartDate parses a YYYY-MM-DD flag value. Empty means today (UTC).
func parseStartDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(planning.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// readJSONFile decodes path into dst
func readJSONFile(path, what string, dst any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s file %s: %w", what, path, err)
	}
	if err := json.Unmarshal(content, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s JSON: %w", what, err)
	}
	return nil
}

// writeJSONOutput writes v as indented JSON and checks it against schemaRel
// when that schema can be found. Only a real validation failure is an error.
// An empty schemaRel skips validation.
func writeJSONOutput(path string, v any, schemaRel, what string) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(path, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write %s to output file %s: %w", what, path, err)
	}

	if schemaRel == "" {
		return nil
	}
	schemaPath := schemas.ResolveSchemaPath(schemaRel)
	if schemaPath == "" {
		return nil
	}
	if err := schemas.ValidateJSON(schemaPath, path); err != nil {
		var validationErr *schemas.ValidationError
		var schemaLoadErr *schemas.SchemaLoadError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("generated %s is invalid: %w", what, err)
		} else if errors.As(err, &schemaLoadErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema (schema loading failed): %v\n", err)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema: %v\n", err)
		}
	}
	return nil
}
