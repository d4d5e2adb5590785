package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/openai/openai-go"
	"go.uber.org/zap"

	"github.com/satriahrh/scorelink/domain"
	"github.com/satriahrh/scorelink/domain/repositories"
)

const (
	defaultOpenAIEndpoint  = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel     = "o1"
	defaultOpenAIAPIKeyEnv = "OPENAI_API_KEY"
	defaultTimeout         = 120 * time.Second
)

// OpenAIConfig holds configuration for the OpenAI-compatible completer.
// All fields are optional:
// - Endpoint: full chat completions URL, posted to as-is (default: OpenAI)
// - Model: model identifier (default: "o1")
// - APIKeyEnv: environment variable holding the bearer token (default: "OPENAI_API_KEY")
// - Timeout: HTTP client timeout, negative disables it (default: 120s)
type OpenAIConfig struct {
	Endpoint  string
	Model     string
	APIKeyEnv string
	Timeout   time.Duration
}

// OpenAICompleter implements TextCompleter against any endpoint speaking the
// chat completions wire format
type OpenAICompleter struct {
	endpoint   string
	model      string
	apiKeyEnv  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure OpenAICompleter implements the TextCompleter interface
var _ repositories.TextCompleter = (*OpenAICompleter)(nil)

// apiErrorBody is the optional error shape of a non-success response
type apiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAICompleter creates a new completer. The API key is not read here;
// it is looked up on every call.
func NewOpenAICompleter(config OpenAIConfig, logger *zap.Logger) *OpenAICompleter {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
		logger.Info("Using default completion endpoint", zap.String("endpoint", endpoint))
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default model", zap.String("model", model))
	}

	apiKeyEnv := config.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = defaultOpenAIAPIKeyEnv
	}

	return &OpenAICompleter{
		endpoint:   endpoint,
		model:      model,
		apiKeyEnv:  apiKeyEnv,
		httpClient: &http.Client{Timeout: clientTimeout(config.Timeout)},
		logger:     logger,
	}
}

// Complete sends prompt as the only user message. There is no system message:
// the reasoning models this targets do not reliably honor one. One attempt,
// no retries.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv(c.apiKeyEnv)
	if apiKey == "" {
		return "", domain.NewError(domain.ErrConfiguration, "%s is not set", c.apiKeyEnv)
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	requestBody, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	c.logger.Debug("Sending completion request",
		zap.String("endpoint", c.endpoint),
		zap.String("model", c.model))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Completion request failed", zap.Error(err))
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := "API error"
		var errBody apiErrorBody
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != nil && errBody.Error.Message != "" {
			reason = errBody.Error.Message
		}
		c.logger.Error("Completion API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("reason", reason),
			zap.String("response", string(body)))
		return "", domain.NewError(domain.ErrUpstream, "%s", reason)
	}

	var completion openai.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		c.logger.Error("Failed to decode completion", zap.String("response", string(body)), zap.Error(err))
		return "", domain.NewError(domain.ErrUpstream, "invalid completion payload: %v", err)
	}
	if len(completion.Choices) == 0 {
		c.logger.Error("Completion has no choices", zap.String("response", string(body)))
		return "", domain.NewError(domain.ErrUpstream, "no choices in completion")
	}

	return completion.Choices[0].Message.Content, nil
}

// clientTimeout applies the default to a zero timeout; negative disables it
func clientTimeout(timeout time.Duration) time.Duration {
	switch {
	case timeout == 0:
		return defaultTimeout
	case timeout < 0:
		return 0
	default:
		return timeout
	}
}
