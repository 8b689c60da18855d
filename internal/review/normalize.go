package review

import (
	"strings"
	"time"

	"github.com/revmux/revmux/internal/extractor"
	"github.com/revmux/revmux/internal/loggy"
)

// Normalizer converts raw provider output into canonical Review records.
// Non-conforming output degrades to an abstain review; it is never dropped,
// since a reviewer's prose is still useful context even when it cannot vote.
type Normalizer struct {
	extractor *extractor.Extractor
	logger    *loggy.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *loggy.Logger) *Normalizer {
	return &Normalizer{
		extractor: extractor.New(logger),
		logger:    logger,
	}
}

// abstainConfidence marks "opinion present but unusable for structured
// aggregation".
const abstainConfidence = 0.5

// Normalize builds an immutable Review from a provider's raw text response.
func (n *Normalizer) Normalize(provider, model, content string, duration time.Duration) *Review {
	payload, err := n.extractor.ExtractReviewPayload(content)
	if err != nil {
		n.logger.Warn("provider output not parseable, degrading to abstain",
			"provider", provider,
			"error", err,
			"response_length", len(content))

		return &Review{
			Provider:   provider,
			Model:      model,
			Verdict:    VerdictAbstain,
			Confidence: abstainConfidence,
			Issues:     []Issue{},
			Summary:    strings.TrimSpace(content),
			Duration:   duration,
			DurationMS: duration.Milliseconds(),
		}
	}

	confidence := extractor.ClampConfidence(payload.Confidence)

	if payload.Model != "" {
		model = payload.Model
	}

	issues := make([]Issue, 0, len(payload.Issues))
	for _, raw := range payload.Issues {
		issues = append(issues, Issue{
			Severity:    MapStringToSeverity(raw.Severity),
			Category:    strings.ToLower(strings.TrimSpace(raw.Category)),
			File:        strings.TrimSpace(raw.File),
			Line:        extractor.ParseLineNumber(raw.Line),
			Title:       strings.TrimSpace(raw.Title),
			Description: strings.TrimSpace(raw.Description),
			Suggestion:  strings.TrimSpace(raw.Suggestion),
			Provider:    provider,
			Confidence:  confidence,
		})
	}

	return &Review{
		Provider:   provider,
		Model:      model,
		Verdict:    MapStringToVerdict(payload.Verdict),
		Confidence: confidence,
		Issues:     issues,
		Summary:    strings.TrimSpace(payload.Summary),
		Error:      payload.Error,
		Duration:   duration,
		DurationMS: duration.Milliseconds(),
	}
}
