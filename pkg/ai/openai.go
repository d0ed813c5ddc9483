package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
	"github.com/bymediadev/SoapBoxx/pkg/config"
)

const systemPrompt = "You are an expert podcast coach and communication specialist."

// Completer is the AI-completion collaborator consumed by the feedback
// engine. Implementations map transport failures onto the application
// error taxonomy (AUTH_FAILED, RATE_LIMITED, TIMEOUT, SERVICE_UNAVAILABLE).
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, tier entities.ModelTier) (string, error)
}

// Client is a minimal OpenAI chat-completions client.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a completion client using values from the provided
// config. Pass a nil config to fall back to environment variables.
func NewClient(cfg *config.FeedbackConfig) *Client {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.OpenAIAPIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("OPENAI_API_URL")
		if base == "" {
			base = "https://api.openai.com"
		}
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: base,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an API key is available. Without one the
// feedback engine runs on the local heuristic scorer only.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func modelForTier(tier entities.ModelTier) string {
	switch tier {
	case entities.TierFast:
		return "gpt-4o-mini"
	case entities.TierPremium:
		return "gpt-4-turbo"
	default:
		return "gpt-4o"
	}
}

// Complete sends the prompt and returns the assistant content.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, tier entities.ModelTier) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.ErrAuthFailed("openai")
	}

	reqBody := ChatRequest{
		Model: modelForTier(tier),
		Messages: []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.ErrTimeout("openai", err)
		}
		return "", apperrors.ErrServiceUnavailable("openai", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", apperrors.ErrAuthFailed("openai")
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.ErrRateLimited("openai")
	case resp.StatusCode >= 500:
		return "", apperrors.ErrServiceUnavailable("openai",
			fmt.Errorf("openai returned status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("openai returned status %d", resp.StatusCode)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", apperrors.ErrParseFailed(err)
	}
	if len(cr.Choices) == 0 {
		return "", apperrors.ErrParseFailed(fmt.Errorf("empty response from openai"))
	}
	return cr.Choices[0].Message.Content, nil
}
