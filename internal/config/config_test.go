package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Consensus: ConsensusConfig{
			Threshold:        0.6,
			ProviderTimeout:  120 * time.Second,
			RetryMaxAttempts: 3,
			RetryBaseDelay:   time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "zero threshold",
			mutate:      func(c *Config) { c.Consensus.Threshold = 0 },
			wantErr:     true,
			errContains: "threshold",
		},
		{
			name:        "threshold above one",
			mutate:      func(c *Config) { c.Consensus.Threshold = 1.5 },
			wantErr:     true,
			errContains: "threshold",
		},
		{
			name:        "zero provider timeout",
			mutate:      func(c *Config) { c.Consensus.ProviderTimeout = 0 },
			wantErr:     true,
			errContains: "timeout",
		},
		{
			name:        "negative retry attempts",
			mutate:      func(c *Config) { c.Consensus.RetryMaxAttempts = -1 },
			wantErr:     true,
			errContains: "retry",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			wantErr:     true,
			errContains: "log level",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			wantErr:     true,
			errContains: "log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv("")
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Consensus.Threshold)
	assert.Equal(t, 120*time.Second, cfg.Consensus.ProviderTimeout)
	assert.Equal(t, 3, cfg.Consensus.RetryMaxAttempts)
	assert.Equal(t, time.Second, cfg.Consensus.RetryBaseDelay)
	assert.Equal(t, "https://api.anthropic.com", cfg.Claude.BaseURL)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Gemini.BaseURL)
	assert.Equal(t, "https://api.openai.com", cfg.OpenAI.BaseURL)
	assert.Empty(t, cfg.DefaultProviders)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("REVMUX_CONSENSUS_THRESHOLD", "0.75")
	t.Setenv("REVMUX_PROVIDER_TIMEOUT", "30s")
	t.Setenv("REVMUX_DEFAULT_PROVIDERS", "claude, gemini")
	t.Setenv("REVMUX_CLAUDE_API_KEY", "test-key")

	cfg, err := LoadFromEnv("")
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.Consensus.Threshold)
	assert.Equal(t, 30*time.Second, cfg.Consensus.ProviderTimeout)
	assert.Equal(t, []string{"claude", "gemini"}, cfg.DefaultProviders)
	assert.Equal(t, "test-key", cfg.Claude.APIKey)
}

func TestGetSet(t *testing.T) {
	cfg := validConfig()
	Set(cfg)

	got, err := Get()
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
