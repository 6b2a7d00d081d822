package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// openAIChatMessage is one chat completions message
type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string               `json:"model"`
	Messages       []openAIChatMessage  `json:"messages"`
	ResponseFormat openAIResponseFormat `json:"response_format"`
	Temperature    float32              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int               `json:"index"`
		Message      openAIChatMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// OpenAIClient implements Client over the OpenAI chat completions endpoint
type OpenAIClient struct {
	config     *Config
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI client. Request deadlines come from the
// caller's context; the HTTP client timeout is only a backstop.
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, ErrMissingCredential
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	return &OpenAIClient{
		config:  config,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// GenerateJSON sends system, user and context messages with JSON response mode.
// The context goes in as an assistant message so the model treats it as prior grounding.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt Prompt, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	messages := make([]openAIChatMessage, 0, 3)
	if prompt.System != "" {
		messages = append(messages, openAIChatMessage{Role: "system", Content: prompt.System})
	}
	messages = append(messages, openAIChatMessage{Role: "user", Content: prompt.User})
	if prompt.Context != "" {
		messages = append(messages, openAIChatMessage{Role: "assistant", Content: prompt.Context})
	}

	response, err := c.call(ctx, openAIRequest{
		Model:          modelName,
		Messages:       messages,
		ResponseFormat: openAIResponseFormat{Type: "json_object"},
		Temperature:    c.config.Temperature,
		MaxTokens:      c.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", &ResponseError{Message: "no choices in response"}
	}
	return CleanJSONBlock(response.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) call(ctx context.Context, request openAIRequest) (*openAIResponse, error) {
	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, &ResponseError{Message: "failed to parse response", Cause: err}
	}

	if response.Error != nil {
		return nil, &APIError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode, Message: response.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return &response, nil
}

// Close is a no-op; the HTTP client holds no per-client resources
func (c *OpenAIClient) Close() error {
	return nil
}
