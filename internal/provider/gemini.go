package provider

import (
	"context"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/gemini"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/review"
)

// Gemini signals bad credentials with API_KEY_INVALID inside a 400
// response, which the shared status rules would otherwise miss.
var geminiAuthPattern = regexp.MustCompile(`(?i)API_KEY_INVALID|API key not valid`)

// GeminiAdapter reviews diffs through the Google generateContent API.
type GeminiAdapter struct {
	client      *gemini.Client
	model       string
	temperature float64
	maxTokens   int
	limiter     *rate.Limiter
	normalizer  *review.Normalizer
	classifier  *Classifier
	logger      *loggy.Logger
}

// NewGeminiAdapter creates a Gemini-backed review adapter from config.
func NewGeminiAdapter(cfg config.GeminiConfig, logger *loggy.Logger) *GeminiAdapter {
	return &GeminiAdapter{
		client:      gemini.NewClient(cfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		limiter:     newLimiter(cfg.RequestsPerMinute, cfg.BurstLimit),
		normalizer:  review.NewNormalizer(logger),
		classifier: NewClassifier(
			Rule{Pattern: geminiAuthPattern, Verdict: review.VerdictErrorAuth},
		),
		logger: logger,
	}
}

// Name returns the canonical provider name.
func (a *GeminiAdapter) Name() string { return NameGemini }

// Model returns the configured model identifier.
func (a *GeminiAdapter) Model() string { return a.model }

// Review sends the diff to Gemini and normalizes whatever comes back.
func (a *GeminiAdapter) Review(ctx context.Context, diff string, rc *review.Context) *review.Review {
	started := time.Now()

	messages, err := review.BuildMessages(diff, rc)
	if err != nil {
		return review.NewErrorReview(NameGemini, a.model, review.VerdictErrorService, err.Error(), time.Since(started))
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return review.NewErrorReview(NameGemini, a.model, a.classifier.Classify(err), err.Error(), time.Since(started))
		}
	}

	system, rest := splitSystem(messages)
	contents := make([]gemini.Content, 0, len(rest))
	for _, m := range rest {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		contents = append(contents, gemini.Content{
			Role:  role,
			Parts: []gemini.Part{{Text: m.Content}},
		})
	}

	temperature := a.temperature
	req := gemini.GenerateRequest{
		Contents: contents,
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: a.maxTokens,
		},
	}
	if system != "" {
		req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: system}}}
	}

	resp, err := a.client.GenerateContent(ctx, a.model, req)
	if err != nil {
		verdict := a.classifier.Classify(err)
		a.logger.Warn("Gemini review failed", "verdict", verdict, "error", err)
		return review.NewErrorReview(NameGemini, a.model, verdict, err.Error(), time.Since(started))
	}

	return a.normalizer.Normalize(NameGemini, a.model, resp.Text(), time.Since(started))
}
