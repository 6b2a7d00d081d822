package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jmoney1214/liquormarketingagent/internal/config"
	"github.com/Jmoney1214/liquormarketingagent/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Long:  "Signs a bearer token for the REST API with JWT_SECRET. The token expires after JWT_EXPIRATION_HOURS.",
	RunE:  runToken,
}

var tokenSubject string

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Principal the token is issued to (required)")

	if err := tokenCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token, err := issueToken(cfg, tokenSubject)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, token)
	return nil
}

func issueToken(cfg *config.Config, subject string) (string, error) {
	jwtCfg, err := cfg.JWT()
	if err != nil {
		return "", fmt.Errorf("invalid JWT configuration: %w", err)
	}
	if jwtCfg == nil {
		return "", fmt.Errorf("%s is not set", config.EnvJWTSecret)
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(subject)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
