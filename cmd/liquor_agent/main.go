// Package main implements the liquor_agent CLI: customer ranking, campaign
// planning, message dry runs and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "liquor_agent",
	Short: "Liquor store marketing agent",
	Long:  "Liquor store marketing agent ranks customers into outreach actions and turns them into a dated campaign plan, optionally with an AI planner.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (environment variables override it)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
