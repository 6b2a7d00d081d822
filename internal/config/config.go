// Package config loads agent settings from a JSON or YAML file and the
// environment, and hands explicit per-component configs to the rest of the code.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Jmoney1214/liquormarketingagent/internal/llm"
	"github.com/Jmoney1214/liquormarketingagent/internal/planning"
)

// Environment variables read by ApplyEnv
const (
	EnvOpenAIAPIKey       = "OPENAI_API_KEY"
	EnvOpenAIBaseURL      = "OPENAI_BASE_URL"
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
	EnvLLMProvider        = "LLM_PROVIDER"
	EnvModel              = "MODEL"
	EnvAWSRegion          = "AWS_REGION"
	EnvAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvDatabaseURL        = "DATABASE_URL"
	EnvKafkaBrokers       = "KAFKA_BROKERS"
	EnvKafkaTopic         = "KAFKA_TOPIC"
	EnvLogLevel           = "LOG_LEVEL"
	EnvAITimeout          = "AI_TIMEOUT"
	EnvJWTSecret          = "JWT_SECRET"
	EnvJWTExpirationHours = "JWT_EXPIRATION_HOURS"
	EnvLegalDisclaimer    = "LEGAL_DISCLAIMER"
	EnvLegalDisclaimerSMS = "LEGAL_DISCLAIMER_SMS"
	EnvPort               = "PORT"
)

// Config is the full agent configuration
type Config struct {
	LogLevel    string            `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	DatabaseURL string            `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	LLM         LLMSettings       `json:"llm" yaml:"llm"`
	Planner     PlannerSettings   `json:"planner" yaml:"planner"`
	Kafka       KafkaSettings     `json:"kafka" yaml:"kafka"`
	Messaging   MessagingSettings `json:"messaging" yaml:"messaging"`
	Server      ServerSettings    `json:"server" yaml:"server"`
}

// LLMSettings selects the model provider and its credentials
type LLMSettings struct {
	Provider           string  `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model              string  `json:"model,omitempty" yaml:"model,omitempty"`
	OpenAIAPIKey       string  `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	OpenAIBaseURL      string  `json:"openai_base_url,omitempty" yaml:"openai_base_url,omitempty"`
	GeminiAPIKey       string  `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	AWSRegion          string  `json:"aws_region,omitempty" yaml:"aws_region,omitempty"`
	AWSAccessKeyID     string  `json:"aws_access_key_id,omitempty" yaml:"aws_access_key_id,omitempty"`
	AWSSecretAccessKey string  `json:"aws_secret_access_key,omitempty" yaml:"aws_secret_access_key,omitempty"`
	Temperature        float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens          int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// PlannerSettings holds plan generation defaults
type PlannerSettings struct {
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	SystemPrompt   string   `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	Objective      string   `json:"objective,omitempty" yaml:"objective,omitempty"`
	DurationDays   int      `json:"duration_days,omitempty" yaml:"duration_days,omitempty"`
	MaxActions     int      `json:"max_actions,omitempty" yaml:"max_actions,omitempty"`
	Docs           []string `json:"docs,omitempty" yaml:"docs,omitempty"`
}

// KafkaSettings configures plan publishing; empty brokers disables it
type KafkaSettings struct {
	Brokers []string `json:"brokers,omitempty" yaml:"brokers,omitempty"`
	Topic   string   `json:"topic,omitempty" yaml:"topic,omitempty"`
}

// MessagingSettings holds the legal copy appended to rendered messages
type MessagingSettings struct {
	LegalDisclaimer    string `json:"legal_disclaimer,omitempty" yaml:"legal_disclaimer,omitempty"`
	LegalDisclaimerSMS string `json:"legal_disclaimer_sms,omitempty" yaml:"legal_disclaimer_sms,omitempty"`
}

// ServerSettings configures the HTTP API
type ServerSettings struct {
	Port               int      `json:"port,omitempty" yaml:"port,omitempty"`
	JWTSecret          string   `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
	JWTExpirationHours int      `json:"jwt_expiration_hours,omitempty" yaml:"jwt_expiration_hours,omitempty"`
	RateLimitPerMinute int      `json:"rate_limit_per_minute,omitempty" yaml:"rate_limit_per_minute,omitempty"`
	CORSOrigins        []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Planner: PlannerSettings{
			TimeoutSeconds: int(planning.DefaultTimeout / time.Second),
			DurationDays:   planning.DefaultDurationDays,
			MaxActions:     300,
		},
		Kafka: KafkaSettings{
			Topic: "campaign-sends",
		},
		Server: ServerSettings{
			Port:               8080,
			JWTExpirationHours: 24,
			RateLimitPerMinute: 60,
		},
	}
}

// LoadConfig reads a config file, choosing YAML for .yaml/.yml and JSON otherwise.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load builds the effective configuration: file values (when path is set) over
// defaults, then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from non-empty environment variables. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&c.LLM.OpenAIAPIKey, EnvOpenAIAPIKey)
	setString(&c.LLM.OpenAIBaseURL, EnvOpenAIBaseURL)
	setString(&c.LLM.GeminiAPIKey, EnvGeminiAPIKey)
	setString(&c.LLM.Provider, EnvLLMProvider)
	setString(&c.LLM.Model, EnvModel)
	setString(&c.LLM.AWSRegion, EnvAWSRegion)
	setString(&c.LLM.AWSAccessKeyID, EnvAWSAccessKeyID)
	setString(&c.LLM.AWSSecretAccessKey, EnvAWSSecretAccessKey)
	setString(&c.DatabaseURL, EnvDatabaseURL)
	setString(&c.Kafka.Topic, EnvKafkaTopic)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.Server.JWTSecret, EnvJWTSecret)
	setString(&c.Messaging.LegalDisclaimer, EnvLegalDisclaimer)
	setString(&c.Messaging.LegalDisclaimerSMS, EnvLegalDisclaimerSMS)

	if v := strings.TrimSpace(getenv(EnvKafkaBrokers)); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := strings.TrimSpace(getenv(EnvAITimeout)); v != "" {
		if secs, ok := parseSeconds(v); ok {
			c.Planner.TimeoutSeconds = secs
		}
	}
	if v := strings.TrimSpace(getenv(EnvJWTExpirationHours)); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.Server.JWTExpirationHours = hours
		}
	}
	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate checks value ranges and provider names
func (c *Config) Validate() error {
	switch llm.Provider(strings.ToLower(c.LLM.Provider)) {
	case "", llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderBedrock:
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider)
	}

	if c.Planner.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	if c.Planner.DurationDays < 0 || c.Planner.DurationDays > 30 {
		return fmt.Errorf("config error: 'duration_days' must be between 1 and 30")
	}
	if c.Planner.MaxActions < 0 || c.Planner.MaxActions > 1000 {
		return fmt.Errorf("config error: 'max_actions' must be between 1 and 1000")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: invalid port %d", c.Server.Port)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("config error: kafka brokers set without a topic")
	}
	if c.Server.JWTSecret != "" && c.Server.JWTExpirationHours < 1 {
		return fmt.Errorf("config error: 'jwt_expiration_hours' must be at least 1")
	}

	return nil
}

// MergeWithDefaults returns a copy with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)

	mergeString(&result.LLM.Provider, defaults.LLM.Provider)
	mergeString(&result.LLM.Model, defaults.LLM.Model)
	mergeString(&result.LLM.OpenAIAPIKey, defaults.LLM.OpenAIAPIKey)
	mergeString(&result.LLM.OpenAIBaseURL, defaults.LLM.OpenAIBaseURL)
	mergeString(&result.LLM.GeminiAPIKey, defaults.LLM.GeminiAPIKey)
	mergeString(&result.LLM.AWSRegion, defaults.LLM.AWSRegion)
	mergeString(&result.LLM.AWSAccessKeyID, defaults.LLM.AWSAccessKeyID)
	mergeString(&result.LLM.AWSSecretAccessKey, defaults.LLM.AWSSecretAccessKey)
	if result.LLM.Temperature == 0 {
		result.LLM.Temperature = defaults.LLM.Temperature
	}
	mergeInt(&result.LLM.MaxTokens, defaults.LLM.MaxTokens)

	mergeInt(&result.Planner.TimeoutSeconds, defaults.Planner.TimeoutSeconds)
	mergeString(&result.Planner.SystemPrompt, defaults.Planner.SystemPrompt)
	mergeString(&result.Planner.Objective, defaults.Planner.Objective)
	mergeInt(&result.Planner.DurationDays, defaults.Planner.DurationDays)
	mergeInt(&result.Planner.MaxActions, defaults.Planner.MaxActions)
	if len(result.Planner.Docs) == 0 {
		result.Planner.Docs = defaults.Planner.Docs
	}

	if len(result.Kafka.Brokers) == 0 {
		result.Kafka.Brokers = defaults.Kafka.Brokers
	}
	mergeString(&result.Kafka.Topic, defaults.Kafka.Topic)

	mergeString(&result.Messaging.LegalDisclaimer, defaults.Messaging.LegalDisclaimer)
	mergeString(&result.Messaging.LegalDisclaimerSMS, defaults.Messaging.LegalDisclaimerSMS)

	mergeInt(&result.Server.Port, defaults.Server.Port)
	mergeString(&result.Server.JWTSecret, defaults.Server.JWTSecret)
	mergeInt(&result.Server.JWTExpirationHours, defaults.Server.JWTExpirationHours)
	mergeInt(&result.Server.RateLimitPerMinute, defaults.Server.RateLimitPerMinute)
	if len(result.Server.CORSOrigins) == 0 {
		result.Server.CORSOrigins = defaults.Server.CORSOrigins
	}

	return result
}

// Provider resolves the LLM provider. Without an explicit choice the first
// provider with a credential wins, in the order openai, gemini, bedrock.
func (c *Config) Provider() llm.Provider {
	if p := llm.Provider(strings.ToLower(c.LLM.Provider)); p != "" {
		return p
	}
	switch {
	case c.LLM.OpenAIAPIKey != "":
		return llm.ProviderOpenAI
	case c.LLM.GeminiAPIKey != "":
		return llm.ProviderGemini
	case c.LLM.AWSAccessKeyID != "" && c.LLM.AWSSecretAccessKey != "":
		return llm.ProviderBedrock
	default:
		return llm.ProviderOpenAI
	}
}

// LLMConfig builds the transport config for the resolved provider
func (c *Config) LLMConfig() *llm.Config {
	provider := c.Provider()
	cfg := llm.ConfigFor(provider)

	switch provider {
	case llm.ProviderOpenAI:
		cfg.APIKey = c.LLM.OpenAIAPIKey
		if c.LLM.OpenAIBaseURL != "" {
			cfg.BaseURL = c.LLM.OpenAIBaseURL
		}
	case llm.ProviderGemini:
		cfg.APIKey = c.LLM.GeminiAPIKey
	case llm.ProviderBedrock:
		cfg.AccessKeyID = c.LLM.AWSAccessKeyID
		cfg.SecretAccessKey = c.LLM.AWSSecretAccessKey
		if c.LLM.AWSRegion != "" {
			cfg.Region = c.LLM.AWSRegion
		}
	}

	if c.LLM.Model != "" {
		cfg = cfg.WithModel(llm.TierAdvanced, c.LLM.Model)
	}
	if c.LLM.Temperature > 0 {
		cfg.Temperature = c.LLM.Temperature
	}
	if c.LLM.MaxTokens > 0 {
		cfg.MaxTokens = c.LLM.MaxTokens
	}
	return cfg
}

// PlannerConfig builds the planner config
func (c *Config) PlannerConfig() planning.Config {
	return planning.Config{
		Timeout:          time.Duration(c.Planner.TimeoutSeconds) * time.Second,
		SystemPrompt:     c.Planner.SystemPrompt,
		DefaultObjective: c.Planner.Objective,
	}
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseSeconds accepts "45" or a Go duration such as "45s" or "2m".
func parseSeconds(v string) (int, bool) {
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return secs, true
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return int(d / time.Second), true
	}
	return 0, false
}
