package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/review"
)

type stubAdapter struct {
	name  string
	model string
}

func (s *stubAdapter) Name() string  { return s.name }
func (s *stubAdapter) Model() string { return s.model }

func (s *stubAdapter) Review(_ context.Context, _ string, _ *review.Context) *review.Review {
	return &review.Review{Provider: s.name, Model: s.model, Verdict: review.VerdictApprove}
}

func TestBuildRegistryCredentialGating(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		enabled []string
	}{
		{
			name:    "no credentials",
			cfg:     &config.Config{},
			enabled: nil,
		},
		{
			name: "claude only",
			cfg: &config.Config{
				Claude: config.ClaudeConfig{APIKey: "sk-test", Timeout: time.Second},
			},
			enabled: []string{"claude"},
		},
		{
			name: "all backends",
			cfg: &config.Config{
				Claude: config.ClaudeConfig{APIKey: "sk-claude", Timeout: time.Second},
				Gemini: config.GeminiConfig{APIKey: "gm-key", Timeout: time.Second},
				OpenAI: config.OpenAIConfig{APIKey: "sk-openai", Timeout: time.Second},
				Ollama: config.OllamaConfig{Endpoint: "http://localhost:11434", Timeout: time.Second},
			},
			enabled: []string{"claude", "gemini", "ollama", "openai"},
		},
		{
			name: "ollama gated on endpoint not key",
			cfg: &config.Config{
				Ollama: config.OllamaConfig{Endpoint: "http://localhost:11434", Timeout: time.Second},
			},
			enabled: []string{"ollama"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BuildRegistry(tt.cfg, loggy.NewNoopLogger())
			if tt.enabled == nil {
				assert.Empty(t, r.Enabled())
				return
			}
			assert.Equal(t, tt.enabled, r.Enabled())
		})
	}
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	r := NewRegistry(loggy.NewNoopLogger())

	first := &stubAdapter{name: "claude", model: "model-a"}
	second := &stubAdapter{name: "claude", model: "model-b"}

	r.Register(first)
	r.Register(second)

	assert.Equal(t, []string{"claude"}, r.Enabled())

	resolved, err := r.Resolve("claude")
	require.NoError(t, err)
	assert.Equal(t, "model-a", resolved.Model())
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry(loggy.NewNoopLogger())
	r.Register(&stubAdapter{name: "gemini"})

	_, err := r.Resolve("claude")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderNotFound)
	assert.Contains(t, err.Error(), "claude")
}

func TestRegistryEnabledSorted(t *testing.T) {
	r := NewRegistry(loggy.NewNoopLogger())
	r.Register(&stubAdapter{name: "openai"})
	r.Register(&stubAdapter{name: "claude"})
	r.Register(&stubAdapter{name: "gemini"})

	assert.Equal(t, []string{"claude", "gemini", "openai"}, r.Enabled())
}
