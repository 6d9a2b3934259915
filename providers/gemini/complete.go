package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"tecnoloc-diag/providers"
)

// Client nutzt das Gemini-SDK im JSON-Modus.
type Client struct {
	APIKey string
	Model  string
	Logger *zap.Logger
}

func NewClient(apiKey, model string, logger *zap.Logger) *Client {
	return &Client{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		Logger: logger,
	}
}

func (c *Client) Name() string { return "gemini" }

// Complete erzeugt eine Antwort mit application/json als Response-MIME-Type.
func (c *Client) Complete(ctx context.Context, p providers.Prompt) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("gemini: %w", providers.ErrMissingCredential)
	}

	parts, err := userParts(p)
	if err != nil {
		return "", err
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.2),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		if c.Logger != nil {
			c.Logger.Warn("Gemini returned no text part", zap.String("model", c.Model))
		}
		return "", fmt.Errorf("gemini: %w", providers.ErrEmptyResponse)
	}
	return txt, nil
}

// userParts baut Text- und optional Bild-Teil der Anfrage.
func userParts(p providers.Prompt) ([]genai.Part, error) {
	parts := []genai.Part{genai.Text(p.User)}
	if p.ImageBase64 == "" {
		return parts, nil
	}
	img, err := base64.StdEncoding.DecodeString(p.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("gemini: bad base64 image: %w", err)
	}
	parts = append(parts, &genai.Blob{MIMEType: http.DetectContentType(img), Data: img})
	return parts, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
