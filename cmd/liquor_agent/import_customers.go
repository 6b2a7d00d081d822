package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jmoney1214/liquormarketingagent/internal/customer"
)

var importCustomersCmd = &cobra.Command{
	Use:   "import-customers",
	Short: "Load a customer JSON file into the database",
	Long:  "Normalizes every record in a customer JSON file and upserts it into the customers table by email. Records without an email are skipped.",
	RunE:  runImportCustomers,
}

var (
	importFile  string
	importDBURL string
)

func init() {
	importCustomersCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to input customer JSON file (required)")
	importCustomersCmd.Flags().StringVar(&importDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL)")

	if err := importCustomersCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(importCustomersCmd)
}

func runImportCustomers(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := customer.LoadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to load customers: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := connectDB(ctx, cfg, importDBURL)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := database.UpsertCustomers(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to import customers: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully imported %d of %d customers from %s\n", n, len(records), importFile)
	return nil
}
