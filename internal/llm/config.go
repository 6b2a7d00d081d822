// Package llm provides the model transports used for AI campaign planning and
// the CampaignPlanner that turns a planning request into a model call.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short, cheap completions
	TierLite ModelTier = "lite"
	// TierStandard is for ordinary structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for multi-day campaign planning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Supported providers
const (
	ProviderGemini  Provider = "gemini"
	ProviderOpenAI  Provider = "openai"
	ProviderBedrock Provider = "bedrock"
)

// Generation defaults
const (
	DefaultTemperature   float32 = 0.7
	DefaultMaxTokens             = 2000
	DefaultOpenAIBaseURL         = "https://api.openai.com/v1"
	DefaultBedrockRegion         = "us-east-1"
)

// Config holds provider selection, per-tier models and credentials.
// It is built by the caller and passed in; nothing here reads the environment.
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	APIKey      string
	Temperature float32
	MaxTokens   int

	// BaseURL overrides the OpenAI endpoint (OpenAI-compatible gateways, tests)
	BaseURL string

	// Bedrock
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o",
			TierAdvanced: "gpt-4-turbo-preview",
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		BaseURL:     DefaultOpenAIBaseURL,
	}
}

// DefaultBedrockConfig returns the default AWS Bedrock (Anthropic models) configuration
func DefaultBedrockConfig() *Config {
	return &Config{
		Provider: ProviderBedrock,
		Models: map[ModelTier]string{
			TierLite:     "anthropic.claude-3-haiku-20240307-v1:0",
			TierStandard: "anthropic.claude-3-sonnet-20240229-v1:0",
			TierAdvanced: "anthropic.claude-3-5-sonnet-20240620-v1:0",
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Region:      DefaultBedrockRegion,
	}
}

// ConfigFor returns the defaults of a provider; unknown providers get Gemini.
func ConfigFor(provider Provider) *Config {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIConfig()
	case ProviderBedrock:
		return DefaultBedrockConfig()
	default:
		return DefaultGeminiConfig()
	}
}

// HasCredential reports whether the provider's credential is configured.
// A missing credential is the normal "skip AI" signal, not an error.
func (c *Config) HasCredential() bool {
	if c == nil {
		return false
	}
	if c.Provider == ProviderBedrock {
		return c.AccessKeyID != "" && c.SecretAccessKey != ""
	}
	return c.APIKey != ""
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
