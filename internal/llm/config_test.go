package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, DefaultTemperature, config.Temperature)
	assert.Equal(t, DefaultMaxTokens, config.MaxTokens)
}

func TestConfigFor(t *testing.T) {
	assert.Equal(t, ProviderOpenAI, ConfigFor(ProviderOpenAI).Provider)
	assert.Equal(t, "gpt-4-turbo-preview", ConfigFor(ProviderOpenAI).GetModel(TierAdvanced))
	assert.Equal(t, DefaultOpenAIBaseURL, ConfigFor(ProviderOpenAI).BaseURL)

	bedrock := ConfigFor(ProviderBedrock)
	assert.Equal(t, ProviderBedrock, bedrock.Provider)
	assert.Equal(t, DefaultBedrockRegion, bedrock.Region)

	assert.Equal(t, ProviderGemini, ConfigFor("unknown").Provider)
}

func TestHasCredential(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   bool
	}{
		{"nil config", nil, false},
		{"gemini without key", &Config{Provider: ProviderGemini}, false},
		{"gemini with key", &Config{Provider: ProviderGemini, APIKey: "k"}, true},
		{"openai with key", &Config{Provider: ProviderOpenAI, APIKey: "sk-test"}, true},
		{"bedrock with api key only", &Config{Provider: ProviderBedrock, APIKey: "k"}, false},
		{"bedrock missing secret", &Config{Provider: ProviderBedrock, AccessKeyID: "AKIA"}, false},
		{"bedrock with keys", &Config{Provider: ProviderBedrock, AccessKeyID: "AKIA", SecretAccessKey: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.HasCredential())
		})
	}
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier falls back to standard, then lite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "", (&Config{Models: map[ModelTier]string{}}).GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultOpenAIConfig()
	config.APIKey = "sk-test"
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gpt-4-turbo-preview", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gpt-4o-mini", newConfig.GetModel(TierLite))
	assert.Equal(t, "sk-test", newConfig.APIKey)
}
