package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/ollama"
	"github.com/revmux/revmux/internal/review"
)

// OllamaAdapter reviews diffs through a local Ollama endpoint. Unlike
// the hosted backends there is no credential to gate on; the endpoint
// URL itself enables the provider.
type OllamaAdapter struct {
	client      *ollama.Client
	model       string
	temperature float64
	maxTokens   int
	limiter     *rate.Limiter
	normalizer  *review.Normalizer
	classifier  *Classifier
	logger      *loggy.Logger
}

// NewOllamaAdapter creates an Ollama-backed review adapter from config.
func NewOllamaAdapter(cfg config.OllamaConfig, logger *loggy.Logger) *OllamaAdapter {
	return &OllamaAdapter{
		client:      ollama.NewClient(cfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		limiter:     newLimiter(cfg.RequestsPerMinute, cfg.BurstLimit),
		normalizer:  review.NewNormalizer(logger),
		classifier:  NewClassifier(),
		logger:      logger,
	}
}

// Name returns the canonical provider name.
func (a *OllamaAdapter) Name() string { return NameOllama }

// Model returns the configured model identifier.
func (a *OllamaAdapter) Model() string { return a.model }

// Review sends the diff to the local model and normalizes the result.
func (a *OllamaAdapter) Review(ctx context.Context, diff string, rc *review.Context) *review.Review {
	started := time.Now()

	messages, err := review.BuildMessages(diff, rc)
	if err != nil {
		return review.NewErrorReview(NameOllama, a.model, review.VerdictErrorService, err.Error(), time.Since(started))
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return review.NewErrorReview(NameOllama, a.model, a.classifier.Classify(err), err.Error(), time.Since(started))
		}
	}

	chatMessages := make([]ollama.Message, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, ollama.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := a.client.GenerateChat(ctx, ollama.ChatRequest{
		Model:    a.model,
		Messages: chatMessages,
		Options: map[string]interface{}{
			"temperature": a.temperature,
			"num_predict": a.maxTokens,
		},
	})
	if err != nil {
		verdict := a.classifier.Classify(err)
		a.logger.Warn("Ollama review failed", "verdict", verdict, "error", err)
		return review.NewErrorReview(NameOllama, a.model, verdict, err.Error(), time.Since(started))
	}

	model := resp.Model
	if model == "" {
		model = a.model
	}

	return a.normalizer.Normalize(NameOllama, model, resp.Message.Content, time.Since(started))
}
