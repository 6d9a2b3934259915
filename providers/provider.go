package providers

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredential: für den gewählten Provider ist kein API-Key konfiguriert.
	ErrMissingCredential = errors.New("model API key is not configured")
	// ErrEmptyResponse: das Modell hat keinen Text geliefert.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Prompt bündelt System-Anweisung, Benutzertext und optional ein Foto (base64, ohne data:-Präfix).
type Prompt struct {
	System      string
	User        string
	ImageBase64 string
}

// Provider ist das Interface, das jeder Modell-Provider (z.B. OpenAI, Gemini) implementieren muss.
type Provider interface {
	// Complete schickt den Prompt an das Modell und gibt dessen Rohtext (erwartet: JSON) zurück.
	Complete(ctx context.Context, p Prompt) (string, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "openai").
	Name() string
}
