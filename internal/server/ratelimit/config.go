package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig limits one path (exact, or prefix when it ends in "/") and method.
// Limit requests are allowed per Window; Burst is the bucket capacity and
// defaults to Limit.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Allowlist       map[string]bool
	Blocklist       map[string]bool
	Endpoints       []EndpointConfig
}

// NewConfig builds a configuration allowing perMinute requests per client on
// ordinary endpoints. Zero or less disables limiting.
func NewConfig(perMinute int, allowlist, blocklist string) Config {
	if perMinute <= 0 {
		return Config{Enabled: false}
	}
	return Config{
		Enabled:         true,
		DefaultLimit:    perMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Allowlist:       parseIPList(allowlist),
		Blocklist:       parseIPList(blocklist),
		Endpoints:       DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the limits for endpoints that may call the AI planner.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/v1/campaigns/generate", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
		{Path: "/api/v1/campaigns/generate/stream", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
