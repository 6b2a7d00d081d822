package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jmoney1214/liquormarketingagent/internal/customer"
	"github.com/Jmoney1214/liquormarketingagent/internal/db"
	"github.com/Jmoney1214/liquormarketingagent/internal/observability"
	"github.com/Jmoney1214/liquormarketingagent/internal/pipeline"
	"github.com/Jmoney1214/liquormarketingagent/internal/scoring"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Rank customers and generate outreach actions",
	Long:  "Scores every customer in a customer JSON file, keeps the highest priority ones and writes an ActionSet JSON with one offer, send window and channel list per customer.",
	RunE:  runActions,
}

var (
	actionsCustomers string
	actionsOutput    string
	actionsLimit     int
	actionsSegments  []string
	actionsChurnRisk string
	actionsVerbose   bool
)

func init() {
	actionsCmd.Flags().StringVarP(&actionsCustomers, "customers", "c", "", "Path to input customer JSON file (required)")
	actionsCmd.Flags().StringVarP(&actionsOutput, "out", "o", "", "Path to output ActionSet JSON file (required)")
	actionsCmd.Flags().IntVar(&actionsLimit, "limit", pipeline.DefaultMaxActions, "Maximum number of actions to keep")
	actionsCmd.Flags().StringSliceVar(&actionsSegments, "segment", nil, "Only rank customers in these RFM segments (repeatable)")
	actionsCmd.Flags().StringVar(&actionsChurnRisk, "churn-risk", "", "Only rank customers with this churn risk (Low, Medium, High)")
	actionsCmd.Flags().BoolVarP(&actionsVerbose, "verbose", "v", false, "Print the top actions")

	if err := actionsCmd.MarkFlagRequired("customers"); err != nil {
		panic(fmt.Sprintf("failed to mark customers flag as required: %v", err))
	}
	if err := actionsCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(actionsCmd)
}

func runActions(cmd *cobra.Command, _ []string) error {
	filter := db.CustomerFilter{Segments: actionsSegments, ChurnRisk: actionsChurnRisk}
	set, err := generateActions(cmd.Context(), actionsCustomers, filter, actionsLimit, time.Now())
	if err != nil {
		return err
	}

	if err := writeJSONOutput(actionsOutput, set, "schemas/actions.schema.json", "actions"); err != nil {
		return err
	}

	if actionsVerbose {
		observability.NewPrinter(os.Stdout).PrintActions(set.Actions)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Successfully generated %d actions to %s\n", set.ActionsCount, actionsOutput)
	return nil
}

// generateActions loads, filters and ranks the customers in path
func generateActions(ctx context.Context, path string, filter db.CustomerFilter, limit int, now time.Time) (types.ActionSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit < 1 {
		return types.ActionSet{}, fmt.Errorf("--limit must be at least 1, got %d", limit)
	}

	customers, err := customer.LoadFile(path)
	if err != nil {
		return types.ActionSet{}, fmt.Errorf("failed to load customers: %w", err)
	}
	customers = pipeline.FilterCustomers(customers, filter)

	actions, err := scoring.RankAndGenerateActions(ctx, customers, limit)
	if err != nil {
		return types.ActionSet{}, fmt.Errorf("failed to rank customers: %w", err)
	}

	return types.ActionSet{
		GeneratedAt:  now.UTC().Format(time.RFC3339),
		ActionsCount: len(actions),
		Actions:      actions,
	}, nil
}
