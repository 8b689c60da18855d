// Package config holds the application configuration, loaded from the
// environment with optional .env file support.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// Global configuration instance
	globalConfig *Config
	configMutex  sync.RWMutex
)

// Get returns the global configuration instance
// If the configuration has not been initialized, it will return an error
func Get() (*Config, error) {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	return globalConfig, nil
}

// Set sets the global configuration instance
func Set(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()

	globalConfig = cfg
}

// Config represents the complete application configuration
type Config struct {
	DefaultProviders []string // Providers dispatched when no explicit selection is given (empty = all enabled)
	Claude           ClaudeConfig
	Gemini           GeminiConfig
	OpenAI           OpenAIConfig
	Ollama           OllamaConfig
	Consensus        ConsensusConfig
	GitHub           GitHubConfig
	Logging          LoggingConfig
}

// ConsensusConfig controls dispatch, voting, and retry behavior
type ConsensusConfig struct {
	Threshold        float64       // Agreement ratio a verdict must reach (0.0-1.0)
	ProviderTimeout  time.Duration // Per-provider call timeout
	RetryMaxAttempts int           // Bounded retries on rate-limit classified failures
	RetryBaseDelay   time.Duration // Initial backoff delay for those retries
}

// ClaudeConfig holds Claude API configuration
type ClaudeConfig struct {
	APIKey         string        // Claude API key
	BaseURL        string        // Claude API base URL
	APIVersion     string        // API version header value
	Model          string        // Claude model to use
	Timeout        time.Duration // Request timeout
	MaxRetries     int           // Maximum number of retries on failure
	MaxTokens      int           // Max tokens to generate
	Temperature    float64       // Sampling temperature
	RetryBaseDelay time.Duration // Initial backoff delay for rate-limit retries

	// Rate limiting
	RequestsPerMinute int
	BurstLimit        int
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey         string        // Gemini API key
	BaseURL        string        // Gemini API base URL
	APIVersion     string        // API version path segment (v1 or v1beta)
	Model          string        // Gemini model to use
	Timeout        time.Duration // Request timeout
	MaxRetries     int           // Maximum number of retries on failure
	MaxTokens      int           // Max tokens to generate
	Temperature    float64       // Sampling temperature
	RetryBaseDelay time.Duration // Initial backoff delay for rate-limit retries

	// Rate limiting
	RequestsPerMinute int
	BurstLimit        int
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey         string        // OpenAI API key
	BaseURL        string        // OpenAI API base URL
	Model          string        // OpenAI model to use
	Timeout        time.Duration // Request timeout
	MaxRetries     int           // Maximum number of retries on failure
	MaxTokens      int           // Max tokens to generate
	Temperature    float64       // Sampling temperature
	RetryBaseDelay time.Duration // Initial backoff delay for rate-limit retries

	// Rate limiting
	RequestsPerMinute int
	BurstLimit        int
}

// OllamaConfig holds configuration for a local Ollama endpoint
type OllamaConfig struct {
	Endpoint    string        // Ollama API endpoint URL
	Model       string        // Default model to use
	Timeout     time.Duration // Request timeout
	MaxRetries  int           // Maximum number of retries on failure
	MaxTokens   int           // Max tokens to generate
	Temperature float64       // Sampling temperature

	// Rate limiting
	RequestsPerMinute int
	BurstLimit        int
}

// GitHubConfig represents GitHub-specific configuration
type GitHubConfig struct {
	Token          string        // GitHub Personal Access Token
	APIURL         string        // GitHub API base URL
	RequestTimeout time.Duration // Request timeout for GitHub API
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	Output     string // stdout, stderr, or file path
	AddSource  bool   // Include source code position in logs
	TimeFormat string // Time format for logs (empty uses RFC3339)
}

// New returns a new empty Config
func New() *Config {
	return &Config{}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateConsensus(); err != nil {
		return fmt.Errorf("consensus config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (c *Config) validateConsensus() error {
	if c.Consensus.Threshold <= 0 || c.Consensus.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0.0, 1.0], got %v", c.Consensus.Threshold)
	}

	if c.Consensus.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}

	if c.Consensus.RetryMaxAttempts < 0 {
		return fmt.Errorf("retry max attempts cannot be negative")
	}

	if c.Consensus.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry base delay must be positive")
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" && level != "none" {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// ParseLogLevel parses a log level string to a slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		// Set to a very high level that won't be triggered
		return slog.Level(9999)
	default:
		return slog.LevelInfo
	}
}

// getEnvString returns a string from the environment variable
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an int from the environment variable
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns a bool from the environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration returns a time.Duration from the environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvFloat returns a float64 from the environment variable
func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvList returns a comma-separated list from the environment variable
func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
