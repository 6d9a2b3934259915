package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tecnoloc-diag/providers"
)

// Client spricht die Chat-Completions-API an.
type Client struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  *zap.Logger
	// Ohne eigenes Timeout: die Laufzeit begrenzt der Context des Aufrufers (LLM_TIMEOUT).
	httpc   *http.Client
}

// NewClient erstellt einen neuen OpenAI-Client.
func NewClient(apiKey, model, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		APIKey:  strings.TrimSpace(apiKey),
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimRight(baseURL, "/"),
		Logger:  logger,
		httpc:   &http.Client{},
	}
}

func (c *Client) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete führt eine Chat-Completion im JSON-Modus aus.
func (c *Client) Complete(ctx context.Context, p providers.Prompt) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("openai: %w", providers.ErrMissingCredential)
	}

	var userContent any = p.User
	if p.ImageBase64 != "" {
		userContent = []map[string]any{
			{"type": "text", "text": p.User},
			{"type": "image_url", "image_url": map[string]string{
				"url":    "data:image/jpeg;base64," + p.ImageBase64,
				"detail": "high",
			}},
		}
	}

	body := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: userContent},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.2,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		if c.Logger != nil {
			c.Logger.Warn("OpenAI returned non-200", zap.Int("status", resp.StatusCode))
		}
		return "", fmt.Errorf("openai %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", fmt.Errorf("openai: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w", providers.ErrEmptyResponse)
	}
	return out.Choices[0].Message.Content, nil
}
