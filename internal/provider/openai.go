package provider

import (
	"context"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/openai"
	"github.com/revmux/revmux/internal/review"
)

// OpenAI reports exhausted billing quota as insufficient_quota under a
// 429 status. That key is unusable until the account is topped up, so
// it is treated as a credential problem rather than a transient one.
var quotaPattern = regexp.MustCompile(`(?i)insufficient_quota`)

// OpenAIAdapter reviews diffs through the OpenAI chat completions API.
type OpenAIAdapter struct {
	client      *openai.Client
	model       string
	temperature float64
	limiter     *rate.Limiter
	normalizer  *review.Normalizer
	classifier  *Classifier
	logger      *loggy.Logger
}

// NewOpenAIAdapter creates an OpenAI-backed review adapter from config.
func NewOpenAIAdapter(cfg config.OpenAIConfig, logger *loggy.Logger) *OpenAIAdapter {
	return &OpenAIAdapter{
		client:      openai.NewClient(cfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     newLimiter(cfg.RequestsPerMinute, cfg.BurstLimit),
		normalizer:  review.NewNormalizer(logger),
		classifier: NewClassifier(
			Rule{Pattern: quotaPattern, Verdict: review.VerdictErrorAuth},
		),
		logger: logger,
	}
}

// Name returns the canonical provider name.
func (a *OpenAIAdapter) Name() string { return NameOpenAI }

// Model returns the configured model identifier.
func (a *OpenAIAdapter) Model() string { return a.model }

// Review sends the diff to OpenAI and normalizes whatever comes back.
func (a *OpenAIAdapter) Review(ctx context.Context, diff string, rc *review.Context) *review.Review {
	started := time.Now()

	messages, err := review.BuildMessages(diff, rc)
	if err != nil {
		return review.NewErrorReview(NameOpenAI, a.model, review.VerdictErrorService, err.Error(), time.Since(started))
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return review.NewErrorReview(NameOpenAI, a.model, a.classifier.Classify(err), err.Error(), time.Since(started))
		}
	}

	chatMessages := make([]openai.Message, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.Message{Role: m.Role, Content: m.Content})
	}

	temperature := a.temperature
	resp, err := a.client.GenerateChat(ctx, openai.ChatRequest{
		Messages:    chatMessages,
		Temperature: &temperature,
	})
	if err != nil {
		verdict := a.classifier.Classify(err)
		a.logger.Warn("OpenAI review failed", "verdict", verdict, "error", err)
		return review.NewErrorReview(NameOpenAI, a.model, verdict, err.Error(), time.Since(started))
	}

	model := resp.Model
	if model == "" {
		model = a.model
	}

	return a.normalizer.Normalize(NameOpenAI, model, resp.Text(), time.Since(started))
}
