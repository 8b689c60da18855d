// Package provider implements the per-vendor review adapters and the
// registry that gates them on configured credentials.
package provider

import (
	"golang.org/x/time/rate"

	"github.com/revmux/revmux/internal/review"
)

// Canonical provider names used for selection and reporting.
const (
	NameClaude = "claude"
	NameGemini = "gemini"
	NameOpenAI = "openai"
	NameOllama = "ollama"
)

// newLimiter builds a per-provider rate limiter. A non-positive
// requests-per-minute value disables limiting entirely.
func newLimiter(requestsPerMinute, burst int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}

	if burst <= 0 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
}

// splitSystem separates the system instruction from the conversational
// messages, for vendors that carry the system prompt out of band.
func splitSystem(messages []review.Message) (string, []review.Message) {
	var system string
	rest := make([]review.Message, 0, len(messages))

	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}

	return system, rest
}
