package registry

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tecnoloc-diag/config"
	"tecnoloc-diag/providers"
	"tecnoloc-diag/providers/gemini"
	"tecnoloc-diag/providers/openai"
)

// Settings enthält alles, was zum Erzeugen eines Providers nötig ist.
type Settings struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
}

// FromConfig übernimmt die Provider-Einstellungen aus der Konfiguration.
func FromConfig(cfg *config.LLM) Settings {
	return Settings{
		Provider:      cfg.Provider(),
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
	}
}

// New wählt den Provider anhand des Namens ("openai" oder "gemini").
func New(s Settings, log *zap.Logger) (providers.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "openai":
		return openai.NewClient(s.OpenAIAPIKey, s.OpenAIModel, s.OpenAIBaseURL, log), nil
	case "gemini":
		return gemini.NewClient(s.GeminiAPIKey, s.GeminiModel, log), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", s.Provider)
	}
}
