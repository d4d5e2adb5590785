package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/scorelink/domain"
	"github.com/satriahrh/scorelink/domain/repositories"
)

const (
	defaultGeminiModel     = "gemini-2.0-flash"
	defaultGeminiAPIKeyEnv = "GEMINI_API_KEY"
)

// GeminiConfig holds configuration for the Gemini completer
type GeminiConfig struct {
	BaseURL   string // Optional: API base URL, SDK default when empty
	Model     string // Optional: model identifier (default: "gemini-2.0-flash")
	APIKeyEnv string // Optional: environment variable with the key (default: "GEMINI_API_KEY")
	Timeout   time.Duration
}

// GeminiCompleter implements TextCompleter using Google's Gemini API
type GeminiCompleter struct {
	baseURL    string
	model      string
	apiKeyEnv  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure GeminiCompleter implements the TextCompleter interface
var _ repositories.TextCompleter = (*GeminiCompleter)(nil)

// NewGeminiCompleter creates a new Gemini completer
func NewGeminiCompleter(config GeminiConfig, logger *zap.Logger) *GeminiCompleter {
	model := config.Model
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default model", zap.String("model", model))
	}

	apiKeyEnv := config.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = defaultGeminiAPIKeyEnv
	}

	return &GeminiCompleter{
		baseURL:    config.BaseURL,
		model:      model,
		apiKeyEnv:  apiKeyEnv,
		httpClient: &http.Client{Timeout: clientTimeout(config.Timeout)},
		logger:     logger,
	}
}

// Complete sends prompt as a single user turn and returns the response text
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv(g.apiKeyEnv)
	if apiKey == "" {
		return "", domain.NewError(domain.ErrConfiguration, "%s is not set", g.apiKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g.logger.Debug("Sending completion request", zap.String("model", g.model))

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			reason := apiErr.Message
			if reason == "" {
				reason = "API error"
			}
			g.logger.Error("Gemini API returned error",
				zap.Int("statusCode", apiErr.Code),
				zap.String("status", apiErr.Status),
				zap.String("reason", reason))
			return "", domain.NewError(domain.ErrUpstream, "%s", reason)
		}
		g.logger.Error("Gemini request failed", zap.Error(err))
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		g.logger.Error("Gemini returned empty completion")
		return "", domain.NewError(domain.ErrUpstream, "no choices in completion")
	}
	return text, nil
}
