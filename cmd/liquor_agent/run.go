package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jmoney1214/liquormarketingagent/internal/config"
	"github.com/Jmoney1214/liquormarketingagent/internal/db"
	"github.com/Jmoney1214/liquormarketingagent/internal/docs"
	"github.com/Jmoney1214/liquormarketingagent/internal/pipeline"
	"github.com/Jmoney1214/liquormarketingagent/internal/publish"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full campaign pipeline end-to-end",
	Long: `Orchestrates the whole campaign flow: load customers -> rank actions -> load playbooks -> plan campaign -> save -> publish.

Customers come from --customers, or from the database when --from-db is set.
Writes actions.json and campaign_plan.json into --out-dir.`,
	RunE: runPipelineCmd,
}

var (
	runCustomers   string
	runFromDB      bool
	runOutDir      string
	runLimit       int
	runSegments    []string
	runChurnRisk   string
	runStartDate   string
	runDays        int
	runUseAI       bool
	runObjective   string
	runDocs        []string
	runSave        bool
	runPublish     bool
	runVerbose     bool
	runDatabaseURL string
)

func init() {
	runCommand.Flags().StringVarP(&runCustomers, "customers", "c", "", "Path to input customer JSON file (mutually exclusive with --from-db)")
	runCommand.Flags().BoolVar(&runFromDB, "from-db", false, "Read customers from the database instead of a file")
	runCommand.Flags().StringVarP(&runOutDir, "out-dir", "o", "output", "Directory for actions.json and campaign_plan.json")
	runCommand.Flags().IntVar(&runLimit, "limit", 0, "Maximum number of actions (defaults to the configured max_actions)")
	runCommand.Flags().StringSliceVar(&runSegments, "segment", nil, "Only rank customers in these RFM segments (repeatable)")
	runCommand.Flags().StringVar(&runChurnRisk, "churn-risk", "", "Only rank customers with this churn risk")
	runCommand.Flags().StringVar(&runStartDate, "start-date", "", "First campaign day, YYYY-MM-DD (defaults to today)")
	runCommand.Flags().IntVar(&runDays, "days", 0, "Campaign length in days (defaults to the configured duration)")
	runCommand.Flags().BoolVar(&runUseAI, "use-ai", true, "Ask the configured AI provider for the plan")
	runCommand.Flags().StringVar(&runObjective, "objective", "", "Campaign objective handed to the AI planner")
	runCommand.Flags().StringSliceVar(&runDocs, "docs", nil, "Playbook files or URLs used as AI context (repeatable)")
	runCommand.Flags().BoolVar(&runSave, "save", false, "Save the plan to the database")
	runCommand.Flags().BoolVar(&runPublish, "publish", false, "Publish the plan sends to Kafka")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress")

	// Database URL can be passed as a flag, or read from DATABASE_URL
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL)")

	runCommand.MarkFlagsMutuallyExclusive("customers", "from-db")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if runCustomers == "" && !runFromDB {
		return fmt.Errorf("one of --customers or --from-db is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	start, err := parseStartDate(runStartDate, time.Now())
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		CustomersPath: runCustomers,
		Filter:        db.CustomerFilter{Segments: runSegments, ChurnRisk: runChurnRisk},
		MaxActions:    firstPositive(runLimit, cfg.Planner.MaxActions),
		StartDate:     start,
		DurationDays:  firstPositive(runDays, cfg.Planner.DurationDays),
		Objective:     runObjective,
		UseAI:         runUseAI,
		DocSources:    docSources(runDocs, cfg),
		Docs:          docs.NewLoader(logger),
		Planner:       newPlanner(cfg, logger),
		Verbose:       runVerbose,
		Out:           os.Stdout,
		Logger:        logger,
	}
	if runVerbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(os.Stdout, "[%s] %s\n", event.Step, event.Message)
		}
	}

	if runFromDB || runSave {
		database, err := connectDB(ctx, cfg, runDatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if runFromDB {
			opts.Customers = database
		}
		if runSave {
			opts.Store = database
		}
	}

	if runPublish {
		if len(cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("--publish requires kafka brokers (set %s or kafka.brokers in the config file)", config.EnvKafkaBrokers)
		}
		publisher := publish.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close publisher", "error", err)
			}
		}()
		opts.Publisher = publisher
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	return writeRunOutputs(os.Stdout, runOutDir, result, time.Now())
}

// writeRunOutputs writes actions.json and campaign_plan.json into dir
func writeRunOutputs(w io.Writer, dir string, result *pipeline.Result, now time.Time) error {
	set := types.ActionSet{
		GeneratedAt:  now.UTC().Format(time.RFC3339),
		ActionsCount: len(result.Actions),
		Actions:      result.Actions,
	}
	actionsPath := filepath.Join(dir, "actions.json")
	if err := writeJSONOutput(actionsPath, set, "schemas/actions.schema.json", "actions"); err != nil {
		return err
	}

	planPath := filepath.Join(dir, "campaign_plan.json")
	if err := writeJSONOutput(planPath, result.Plan, "schemas/campaign_plan.schema.json", "campaign plan"); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Successfully wrote %d actions to %s\n", set.ActionsCount, actionsPath)
	_, _ = fmt.Fprintf(w, "Successfully wrote %s campaign plan with %d sends to %s\n", result.Plan.Engine, len(result.Plan.Sends), planPath)
	return nil
}

// connectDB opens and migrates the database named by override or the config
func connectDB(ctx context.Context, cfg *config.Config, override string) (*db.DB, error) {
	databaseURL := override
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required (use --db-url or set %s)", config.EnvDatabaseURL)
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

func docSources(flagValue []string, cfg *config.Config) []string {
	if len(flagValue) > 0 {
		return flagValue
	}
	if len(cfg.Planner.Docs) > 0 {
		return cfg.Planner.Docs
	}
	return docs.DefaultPlaybooks()
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
