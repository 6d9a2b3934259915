package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tecnoloc-diag/config"
)

func TestNew(t *testing.T) {
	p, err := New(Settings{Provider: " Gemini "}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	p, err = New(Settings{Provider: "openai"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = New(Settings{Provider: "claude"}, zap.NewNop())
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	s := FromConfig(&config.LLM{LLMProvider: "GEMINI", GeminiAPIKey: "g", GeminiModel: "gemini-1.5-pro"})
	assert.Equal(t, "gemini", s.Provider)
	assert.Equal(t, "g", s.GeminiAPIKey)
	assert.Equal(t, "gemini-1.5-pro", s.GeminiModel)
}
