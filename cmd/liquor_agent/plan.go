package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Jmoney1214/liquormarketingagent/internal/config"
	"github.com/Jmoney1214/liquormarketingagent/internal/docs"
	"github.com/Jmoney1214/liquormarketingagent/internal/observability"
	"github.com/Jmoney1214/liquormarketingagent/internal/planning"
	"github.com/Jmoney1214/liquormarketingagent/internal/publish"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Turn an ActionSet into a dated campaign plan",
	Long: `Builds a campaign plan from an ActionSet JSON file. With --use-ai the configured
AI provider drafts the plan using the house playbooks as context; any AI failure
falls back to the deterministic round-robin plan.`,
	RunE: runPlan,
}

var (
	planActions   string
	planOutput    string
	planStartDate string
	planDays      int
	planUseAI     bool
	planObjective string
	planDocs      []string
	planPublish   bool
	planVerbose   bool
)

func init() {
	planCmd.Flags().StringVarP(&planActions, "actions", "a", "", "Path to input ActionSet JSON file (required)")
	planCmd.Flags().StringVarP(&planOutput, "out", "o", "", "Path to output CampaignPlan JSON file (required)")
	planCmd.Flags().StringVar(&planStartDate, "start-date", "", "First campaign day, YYYY-MM-DD (defaults to today)")
	planCmd.Flags().IntVar(&planDays, "days", 0, "Campaign length in days (defaults to the configured duration)")
	planCmd.Flags().BoolVar(&planUseAI, "use-ai", true, "Ask the configured AI provider for the plan")
	planCmd.Flags().StringVar(&planObjective, "objective", "", "Campaign objective handed to the AI planner")
	planCmd.Flags().StringSliceVar(&planDocs, "docs", nil, "Playbook files or URLs used as AI context (repeatable)")
	planCmd.Flags().BoolVar(&planPublish, "publish", false, "Publish the plan sends to Kafka")
	planCmd.Flags().BoolVarP(&planVerbose, "verbose", "v", false, "Print a plan summary")

	if err := planCmd.MarkFlagRequired("actions"); err != nil {
		panic(fmt.Sprintf("failed to mark actions flag as required: %v", err))
	}
	if err := planCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if planPublish && len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("--publish requires kafka brokers (set %s or kafka.brokers in the config file)", config.EnvKafkaBrokers)
	}

	actions, err := loadActions(planActions)
	if err != nil {
		return err
	}

	start, err := parseStartDate(planStartDate, time.Now())
	if err != nil {
		return err
	}
	if planDays < 0 || planDays > 30 {
		return fmt.Errorf("--days must be between 1 and 30, got %d", planDays)
	}
	days := firstPositive(planDays, cfg.Planner.DurationDays)

	var contextDocs []types.ContextDoc
	if planUseAI {
		contextDocs = docs.NewLoader(logger).Load(ctx, docSources(planDocs, cfg))
	}

	planner := newPlanner(cfg, logger)
	plan := planner.Generate(ctx, planning.GenerateRequest{
		Actions:      actions,
		StartDate:    start,
		DurationDays: days,
		Objective:    planObjective,
		ContextDocs:  contextDocs,
		UseAI:        planUseAI,
	})
	plan.ID = uuid.NewString()

	if err := writeJSONOutput(planOutput, plan, "schemas/campaign_plan.schema.json", "campaign plan"); err != nil {
		return err
	}

	if planVerbose {
		observability.NewPrinter(os.Stdout).PrintPlan(&plan)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Successfully generated %s campaign plan with %d sends to %s\n", plan.Engine, len(plan.Sends), planOutput)

	if planPublish {
		n, err := publishPlan(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, plan, logger)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Published %d sends to topic %s\n", n, cfg.Kafka.Topic)
	}
	return nil
}

func publishPlan(ctx context.Context, brokers []string, topic string, plan types.CampaignPlan, logger *slog.Logger) (int, error) {
	publisher := publish.NewPublisher(brokers, topic, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close publisher", "error", err)
		}
	}()

	n, err := publisher.PublishPlan(ctx, plan)
	if err != nil {
		return n, fmt.Errorf("failed to publish plan: %w", err)
	}
	return n, nil
}

// loadActions reads an ActionSet file. A bare JSON array of actions is also accepted.
func loadActions(path string) ([]types.Action, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions file %s: %w", path, err)
	}

	var set types.ActionSet
	if err := json.Unmarshal(content, &set); err == nil {
		return set.Actions, nil
	}

	var actions []types.Action
	if err := json.Unmarshal(content, &actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions JSON: %w", err)
	}
	return actions, nil
}
