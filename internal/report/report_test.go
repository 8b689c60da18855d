package report

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revmux/revmux/internal/review"
)

func sampleResult() *review.AggregatedResult {
	return &review.AggregatedResult{
		RunID: "run-01HTEST",
		Consensus: review.Consensus{
			Verdict:        review.VerdictNeedsReview,
			Confidence:     0.72,
			AgreementRatio: 2.0 / 3.0,
			VotingCount:    3,
			TotalCount:     4,
		},
		Issues: []review.MergedIssue{
			{
				ID:            "iss-01HTEST",
				File:          "auth/token.go",
				Line:          42,
				Category:      "security",
				Severity:      review.SeverityCritical,
				Title:         "Token accepted without verification",
				Description:   "The bearer token signature is never checked.",
				Suggestion:    "Verify the signature before trusting claims.",
				ReportedBy:    []string{"claude", "gemini"},
				ReporterCount: 2,
				Escalated:     true,
			},
			{
				ID:            "iss-01HTEST2",
				File:          "main.go",
				Line:          0,
				Category:      "style",
				Severity:      review.SeveritySuggestion,
				Title:         "Unused import",
				ReportedBy:    []string{"openai"},
				ReporterCount: 1,
			},
		},
		Providers: []review.ProviderSummary{
			{Provider: "claude", Model: "model-a", Verdict: review.VerdictNeedsReview, Confidence: 0.8, IssueCount: 1, DurationMS: 1200},
			{Provider: "gemini", Model: "model-b", Verdict: review.VerdictNeedsReview, Confidence: 0.7, IssueCount: 1, DurationMS: 900},
			{Provider: "ollama", Model: "model-c", Verdict: review.VerdictErrorTimeout, Error: "context deadline exceeded", DurationMS: 120000},
			{Provider: "openai", Model: "model-d", Verdict: review.VerdictApprove, Confidence: 0.9, IssueCount: 1, DurationMS: 1400},
		},
		CombinedSummary: "Consensus: needs_review.",
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult())

	assert.Contains(t, md, "## Multi-Model Review: ⚠️ Needs Review")
	assert.Contains(t, md, "3 of 4 providers voted")

	// Provider table rows.
	assert.Contains(t, md, "| claude | model-a | needs_review | 0.80 | 1 | 1200ms |")
	assert.Contains(t, md, "| ollama | model-c | error_timeout |")

	// Issues with location, reporters, and escalation marker.
	assert.Contains(t, md, "### Issues (2)")
	assert.Contains(t, md, "[CRITICAL] Token accepted without verification")
	assert.Contains(t, md, "`auth/token.go:42`")
	assert.Contains(t, md, "reported by claude, gemini")
	assert.Contains(t, md, "severity escalated by agreement")
	assert.Contains(t, md, "**Suggestion:** Verify the signature")

	// A zero line renders without the :0 suffix.
	assert.Contains(t, md, "`main.go`")
	assert.NotContains(t, md, "main.go:0")

	assert.Contains(t, md, "run `run-01HTEST`")
}

func TestMarkdownNoIssues(t *testing.T) {
	result := sampleResult()
	result.Issues = nil

	md := Markdown(result)
	assert.Contains(t, md, "No issues reported.")
}

func TestMarkdownNoConsensus(t *testing.T) {
	result := sampleResult()
	result.Consensus.NoConsensus = true

	md := Markdown(result)
	assert.Contains(t, md, "No consensus was reached")
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)

	require.NoError(t, r.Render(sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "Needs Review")
	assert.Contains(t, out, "3 of 4 providers voting")
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "auth/token.go:42")
	assert.Contains(t, out, "CRITICAL ↑")
	assert.Contains(t, out, "Consensus: needs_review.")
}

func TestRenderPlainNoIssues(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)

	result := sampleResult()
	result.Issues = nil
	require.NoError(t, r.Render(result))

	assert.Contains(t, buf.String(), "No issues reported.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))
	assert.Equal(t, "long…", truncate("longer text", 5))

	// Multi-byte characters count as one and are never split.
	out := truncate("héllo wörld über ätlas", 10)
	assert.Equal(t, "héllo wör…", out)
	assert.True(t, utf8.ValidString(out))
}

func TestVerdictLabels(t *testing.T) {
	assert.Contains(t, verdictLabel(review.VerdictApprove), "Approve")
	assert.Contains(t, verdictLabel(review.VerdictCriticalVulnerabilities), "Critical")
	assert.Contains(t, verdictLabel(review.VerdictAbstain), "Abstain")
	assert.Contains(t, verdictLabel(review.VerdictErrorTimeout), "error_timeout")
}
