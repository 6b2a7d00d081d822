package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmoney1214/liquormarketingagent/internal/config"
	"github.com/Jmoney1214/liquormarketingagent/internal/server"
)

func TestIssueToken(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.JWTSecret = "test-secret-with-enough-length"

	token, err := issueToken(&cfg, "ops@store.example")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	jwtCfg, err := cfg.JWT()
	require.NoError(t, err)
	claims, err := server.NewJWTService(jwtCfg).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@store.example", claims.Principal())
}

func TestIssueToken_Errors(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		subject string
		wantErr string
	}{
		{name: "no secret", secret: "", subject: "ops", wantErr: "JWT_SECRET is not set"},
		{name: "short secret", secret: "short", subject: "ops", wantErr: "invalid JWT configuration"},
		{name: "empty subject", secret: "test-secret-with-enough-length", subject: "", wantErr: "failed to generate token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Server.JWTSecret = tt.secret

			_, err := issueToken(&cfg, tt.subject)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
