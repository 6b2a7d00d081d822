package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const bedrockAnthropicVersion = "bedrock-2023-05-31"

// bedrockInvoker is the slice of the Bedrock runtime API the client uses
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockMessage struct {
	Role    string                `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float32          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// BedrockClient implements Client for Anthropic models on AWS Bedrock
type BedrockClient struct {
	client bedrockInvoker
	config *Config
}

// NewBedrockClient loads AWS config for the configured region with static
// credentials from the config.
func NewBedrockClient(ctx context.Context, config *Config) (*BedrockClient, error) {
	if !config.HasCredential() {
		return nil, ErrMissingCredential
	}

	region := config.Region
	if region == "" {
		region = DefaultBedrockRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BedrockClient{
		client: bedrockruntime.NewFromConfig(cfg),
		config: config,
	}, nil
}

// GenerateJSON invokes the model with the Anthropic messages body. Bedrock has
// no JSON response mode, so the context is folded into the user turn and the
// text answer is cleaned.
func (c *BedrockClient) GenerateJSON(ctx context.Context, prompt Prompt, tier ModelTier) (string, error) {
	modelID := c.config.GetModel(tier)
	if modelID == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	userText := prompt.User
	if prompt.Context != "" {
		userText += "\n\n" + prompt.Context
	}

	maxTokens := c.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	requestBody, err := json.Marshal(bedrockRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        maxTokens,
		System:           prompt.System,
		Messages: []bedrockMessage{{
			Role:    "user",
			Content: []bedrockContentBlock{{Type: "text", Text: userText}},
		}},
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke failed: %w", err)
	}

	var response bedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", &ResponseError{Message: "failed to parse response", Cause: err}
	}

	var sb strings.Builder
	for _, content := range response.Content {
		if content.Type == "text" {
			sb.WriteString(content.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &ResponseError{Message: "no text content in response"}
	}

	return CleanJSONBlock(sb.String()), nil
}

// Close is a no-op for the Bedrock client
func (c *BedrockClient) Close() error {
	return nil
}
