package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jmoney1214/liquormarketingagent/internal/observability"
	"github.com/Jmoney1214/liquormarketingagent/internal/planning"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare a campaign plan with its observed results",
	Long:  "Computes open, click and conversion rates plus revenue figures for a CampaignPlan and a results JSON file ({opens, clicks, conversions, revenue}), and rates them against the plan KPIs.",
	RunE:  runAnalyze,
}

var (
	analyzePlan    string
	analyzeResults string
	analyzeOutput  string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzePlan, "plan", "p", "", "Path to input CampaignPlan JSON file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeResults, "results", "r", "", "Path to input campaign results JSON file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Optional path to write the PlanPerformance JSON")

	if err := analyzeCmd.MarkFlagRequired("plan"); err != nil {
		panic(fmt.Sprintf("failed to mark plan flag as required: %v", err))
	}
	if err := analyzeCmd.MarkFlagRequired("results"); err != nil {
		panic(fmt.Sprintf("failed to mark results flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	perf, err := analyzeFiles(analyzePlan, analyzeResults)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintPerformance(&perf)

	if analyzeOutput != "" {
		if err := writeJSONOutput(analyzeOutput, perf, "schemas/plan_performance.schema.json", "plan performance"); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Successfully wrote plan performance to %s\n", analyzeOutput)
	}
	return nil
}

func analyzeFiles(planPath, resultsPath string) (types.PlanPerformance, error) {
	var plan types.CampaignPlan
	if err := readJSONFile(planPath, "campaign plan", &plan); err != nil {
		return types.PlanPerformance{}, err
	}

	var results types.CampaignResults
	if err := readJSONFile(resultsPath, "campaign results", &results); err != nil {
		return types.PlanPerformance{}, err
	}
	if results.Opens < 0 || results.Clicks < 0 || results.Conversions < 0 || results.Revenue < 0 {
		return types.PlanPerformance{}, fmt.Errorf("campaign results must not be negative")
	}

	return planning.AnalyzePerformance(plan, results), nil
}
