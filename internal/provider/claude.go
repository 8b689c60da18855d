package provider

import (
	"context"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/revmux/revmux/internal/claude"
	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/review"
)

// Anthropic reports capacity problems as overloaded_error; keep those
// classified as service failures even when the message mentions a retry
// deadline.
var overloadedPattern = regexp.MustCompile(`(?i)overloaded_error`)

// ClaudeAdapter reviews diffs through the Anthropic messages API.
type ClaudeAdapter struct {
	client      *claude.Client
	model       string
	temperature float64
	limiter     *rate.Limiter
	normalizer  *review.Normalizer
	classifier  *Classifier
	logger      *loggy.Logger
}

// NewClaudeAdapter creates a Claude-backed review adapter from config.
func NewClaudeAdapter(cfg config.ClaudeConfig, logger *loggy.Logger) *ClaudeAdapter {
	return &ClaudeAdapter{
		client:      claude.NewClient(cfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     newLimiter(cfg.RequestsPerMinute, cfg.BurstLimit),
		normalizer:  review.NewNormalizer(logger),
		classifier: NewClassifier(
			Rule{Pattern: overloadedPattern, Verdict: review.VerdictErrorService},
		),
		logger: logger,
	}
}

// Name returns the canonical provider name.
func (a *ClaudeAdapter) Name() string { return NameClaude }

// Model returns the configured model identifier.
func (a *ClaudeAdapter) Model() string { return a.model }

// Review sends the diff to Claude and normalizes whatever comes back.
// Failures are folded into an error review rather than returned.
func (a *ClaudeAdapter) Review(ctx context.Context, diff string, rc *review.Context) *review.Review {
	started := time.Now()

	messages, err := review.BuildMessages(diff, rc)
	if err != nil {
		return review.NewErrorReview(NameClaude, a.model, review.VerdictErrorService, err.Error(), time.Since(started))
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return review.NewErrorReview(NameClaude, a.model, a.classifier.Classify(err), err.Error(), time.Since(started))
		}
	}

	system, rest := splitSystem(messages)
	chatMessages := make([]claude.Message, 0, len(rest))
	for _, m := range rest {
		chatMessages = append(chatMessages, claude.Message{Role: m.Role, Content: m.Content})
	}

	temperature := a.temperature
	resp, err := a.client.GenerateChat(ctx, claude.ChatRequest{
		System:      system,
		Messages:    chatMessages,
		Temperature: &temperature,
	})
	if err != nil {
		verdict := a.classifier.Classify(err)
		a.logger.Warn("Claude review failed", "verdict", verdict, "error", err)
		return review.NewErrorReview(NameClaude, a.model, verdict, err.Error(), time.Since(started))
	}

	model := resp.Model
	if model == "" {
		model = a.model
	}

	return a.normalizer.Normalize(NameClaude, model, resp.Text(), time.Since(started))
}
