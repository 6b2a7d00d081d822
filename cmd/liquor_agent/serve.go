package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Jmoney1214/liquormarketingagent/internal/docs"
	"github.com/Jmoney1214/liquormarketingagent/internal/server"
	"github.com/Jmoney1214/liquormarketingagent/internal/server/ratelimit"
)

var (
	servePort      int
	serveAllowlist string
	serveBlocklist string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for generating actions and campaign plans from the customer database.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to the configured port)")
	serveCmd.Flags().StringVar(&serveAllowlist, "rate-limit-allowlist", "", "Comma-separated client IPs exempt from rate limiting")
	serveCmd.Flags().StringVar(&serveBlocklist, "rate-limit-blocklist", "", "Comma-separated client IPs always rejected")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	jwtCfg, err := cfg.JWT()
	if err != nil {
		return fmt.Errorf("invalid JWT configuration: %w", err)
	}
	if jwtCfg == nil {
		logger.Warn("JWT_SECRET not set, API authentication disabled")
	}

	database, err := connectDB(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer database.Close()

	port := firstPositive(servePort, cfg.Server.Port)
	srv, err := server.New(server.Config{
		Port:        port,
		JWT:         jwtCfg,
		RateLimit:   ratelimit.NewConfig(cfg.Server.RateLimitPerMinute, serveAllowlist, serveBlocklist),
		CORSOrigins: cfg.Server.CORSOrigins,
		DocSources:  docSources(nil, cfg),
		MaxActions:  cfg.Planner.MaxActions,
	}, server.Deps{
		Customers: database,
		Plans:     database,
		Planner:   newPlanner(cfg, logger),
		Docs:      docs.NewLoader(logger),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
