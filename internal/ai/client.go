// Package ai asks an OpenAI-compatible chat-completions API for packing
// lists, itineraries and destination tips.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/metrics"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
)

// ErrNotConfigured means no active OPENAI_API key is stored.
var ErrNotConfigured = errors.New("AI not configured")

// KeySource reads API keys from api_configurations.
type KeySource interface {
	ActiveAPIKey(ctx context.Context, key string) (string, error)
}

type Client struct {
	baseURL    string
	model      string
	keys       KeySource
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(baseURL, model string, keys KeySource, timeout time.Duration, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		keys:       keys,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type chatCompletionRequest struct {
	Model          string                  `json:"model"`
	Messages       []chatCompletionMessage `json:"messages"`
	ResponseFormat responseFormat          `json:"response_format"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) apiKey(ctx context.Context) (string, error) {
	if c.keys == nil {
		return "", ErrNotConfigured
	}
	key, err := c.keys.ActiveAPIKey(ctx, models.APIKeyOpenAI)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && strings.TrimSpace(key) == "") {
		return "", ErrNotConfigured
	}
	if err != nil {
		return "", fmt.Errorf("load openai key: %w", err)
	}
	return strings.TrimSpace(key), nil
}

// complete sends prompt as a single user message and decodes the JSON answer into dst.
func (c *Client) complete(ctx context.Context, kind, prompt string, dst any) error {
	key, err := c.apiKey(ctx)
	if err != nil {
		metrics.ObserveProvider("llm", metrics.OutcomeSkipped)
		return err
	}

	err = c.do(ctx, key, prompt, dst)
	if err != nil {
		metrics.ObserveProvider("llm", metrics.OutcomeError)
		logger.L().Warnf("llm %s failed: %v", kind, err)
		return err
	}
	metrics.ObserveProvider("llm", metrics.OutcomeOK)
	return nil
}

func (c *Client) do(ctx context.Context, key, prompt string, dst any) error {
	payload := chatCompletionRequest{
		Model:          c.model,
		Messages:       []chatCompletionMessage{{Role: "user", Content: prompt}},
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal llm request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create llm request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request llm api failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.L().Warnf("llm response: status=%d body=%s", resp.StatusCode, truncate(string(data), 512))
		return fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return fmt.Errorf("decode llm response failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return fmt.Errorf("llm response has no choices")
	}

	content := stripFence(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), dst); err != nil {
		return fmt.Errorf("decode llm payload failed: %w", err)
	}
	return nil
}

// stripFence removes a ```json ... ``` wrapper some models add despite the prompt.
func stripFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```JSON")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
	}
	return strings.TrimSpace(trimmed)
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
