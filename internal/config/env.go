package config

import (
	"time"

	"github.com/joho/godotenv"
)

// LoadFromEnv loads configuration from environment variables.
// envFilePath optionally points at a .env file; when empty, a .env in the
// current directory is loaded if present.
func LoadFromEnv(envFilePath string) (*Config, error) {
	cfg := New()

	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			return nil, err
		}
	} else {
		_ = godotenv.Load() // Ignore errors if no .env file exists
	}

	cfg.DefaultProviders = getEnvList("REVMUX_DEFAULT_PROVIDERS", nil)

	// Global retry knobs; per-provider variables may override the attempt cap.
	retryMaxAttempts := getEnvInt("REVMUX_RETRY_MAX_ATTEMPTS", 3)
	retryBaseDelay := getEnvDuration("REVMUX_RETRY_BASE_DELAY", time.Second)

	cfg.Claude = ClaudeConfig{
		APIKey:            getEnvString("REVMUX_CLAUDE_API_KEY", ""),
		BaseURL:           getEnvString("REVMUX_CLAUDE_BASE_URL", "https://api.anthropic.com"),
		APIVersion:        getEnvString("REVMUX_CLAUDE_API_VERSION", "2023-06-01"),
		Model:             getEnvString("REVMUX_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		Timeout:           getEnvDuration("REVMUX_CLAUDE_TIMEOUT", 120*time.Second),
		MaxRetries:        getEnvInt("REVMUX_CLAUDE_MAX_RETRIES", retryMaxAttempts),
		RetryBaseDelay:    retryBaseDelay,
		MaxTokens:         getEnvInt("REVMUX_CLAUDE_MAX_TOKENS", 4096),
		Temperature:       getEnvFloat("REVMUX_CLAUDE_TEMPERATURE", 0.1),
		RequestsPerMinute: getEnvInt("REVMUX_CLAUDE_REQUESTS_PER_MINUTE", 0),
		BurstLimit:        getEnvInt("REVMUX_CLAUDE_BURST_LIMIT", 1),
	}

	cfg.Gemini = GeminiConfig{
		APIKey:            getEnvString("REVMUX_GEMINI_API_KEY", ""),
		BaseURL:           getEnvString("REVMUX_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		APIVersion:        getEnvString("REVMUX_GEMINI_API_VERSION", "v1beta"),
		Model:             getEnvString("REVMUX_GEMINI_MODEL", "gemini-2.5-pro"),
		Timeout:           getEnvDuration("REVMUX_GEMINI_TIMEOUT", 120*time.Second),
		MaxRetries:        getEnvInt("REVMUX_GEMINI_MAX_RETRIES", retryMaxAttempts),
		RetryBaseDelay:    retryBaseDelay,
		MaxTokens:         getEnvInt("REVMUX_GEMINI_MAX_TOKENS", 8192),
		Temperature:       getEnvFloat("REVMUX_GEMINI_TEMPERATURE", 0.1),
		RequestsPerMinute: getEnvInt("REVMUX_GEMINI_REQUESTS_PER_MINUTE", 0),
		BurstLimit:        getEnvInt("REVMUX_GEMINI_BURST_LIMIT", 1),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey:            getEnvString("REVMUX_OPENAI_API_KEY", ""),
		BaseURL:           getEnvString("REVMUX_OPENAI_BASE_URL", "https://api.openai.com"),
		Model:             getEnvString("REVMUX_OPENAI_MODEL", "gpt-4o"),
		Timeout:           getEnvDuration("REVMUX_OPENAI_TIMEOUT", 120*time.Second),
		MaxRetries:        getEnvInt("REVMUX_OPENAI_MAX_RETRIES", retryMaxAttempts),
		RetryBaseDelay:    retryBaseDelay,
		MaxTokens:         getEnvInt("REVMUX_OPENAI_MAX_TOKENS", 4096),
		Temperature:       getEnvFloat("REVMUX_OPENAI_TEMPERATURE", 0.1),
		RequestsPerMinute: getEnvInt("REVMUX_OPENAI_REQUESTS_PER_MINUTE", 0),
		BurstLimit:        getEnvInt("REVMUX_OPENAI_BURST_LIMIT", 1),
	}

	cfg.Ollama = OllamaConfig{
		Endpoint:          getEnvString("REVMUX_OLLAMA_ENDPOINT", ""),
		Model:             getEnvString("REVMUX_OLLAMA_MODEL", "qwen2.5-coder"),
		Timeout:           getEnvDuration("REVMUX_OLLAMA_TIMEOUT", 600*time.Second),
		MaxRetries:        getEnvInt("REVMUX_OLLAMA_MAX_RETRIES", 3),
		MaxTokens:         getEnvInt("REVMUX_OLLAMA_MAX_TOKENS", 2048),
		Temperature:       getEnvFloat("REVMUX_OLLAMA_TEMPERATURE", 0.1),
		RequestsPerMinute: getEnvInt("REVMUX_OLLAMA_REQUESTS_PER_MINUTE", 0),
		BurstLimit:        getEnvInt("REVMUX_OLLAMA_BURST_LIMIT", 1),
	}

	cfg.Consensus = ConsensusConfig{
		Threshold:        getEnvFloat("REVMUX_CONSENSUS_THRESHOLD", 0.6),
		ProviderTimeout:  getEnvDuration("REVMUX_PROVIDER_TIMEOUT", 120*time.Second),
		RetryMaxAttempts: retryMaxAttempts,
		RetryBaseDelay:   retryBaseDelay,
	}

	cfg.GitHub = GitHubConfig{
		Token:          getEnvString("REVMUX_GITHUB_TOKEN", ""),
		APIURL:         getEnvString("REVMUX_GITHUB_API_URL", "https://api.github.com"),
		RequestTimeout: getEnvDuration("REVMUX_GITHUB_REQUEST_TIMEOUT", 30*time.Second),
	}

	cfg.Logging = LoggingConfig{
		Level:      getEnvString("REVMUX_LOG_LEVEL", "info"),
		Format:     getEnvString("REVMUX_LOG_FORMAT", "text"),
		Output:     getEnvString("REVMUX_LOG_OUTPUT", "stderr"),
		AddSource:  getEnvBool("REVMUX_LOG_ADD_SOURCE", true),
		TimeFormat: getEnvString("REVMUX_LOG_TIME_FORMAT", time.RFC3339),
	}

	return cfg, cfg.Validate()
}
