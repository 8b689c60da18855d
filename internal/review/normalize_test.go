package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revmux/revmux/internal/loggy"
)

func TestNormalizeStructuredResponse(t *testing.T) {
	n := NewNormalizer(loggy.NewNoopLogger())

	content := `Here is my review:
` + "```json" + `
{
  "verdict": "needs_review",
  "confidence": 0.85,
  "issues": [
    {
      "severity": "major",
      "category": "Security",
      "file": "handlers/auth.go",
      "line": "42",
      "title": "Token not validated",
      "description": "The bearer token is used without signature verification.",
      "suggestion": "Verify the signature before trusting claims."
    }
  ],
  "summary": "One significant problem in auth handling."
}
` + "```"

	r := n.Normalize("claude", "claude-model", content, 1500*time.Millisecond)

	assert.Equal(t, "claude", r.Provider)
	assert.Equal(t, VerdictNeedsReview, r.Verdict)
	assert.InDelta(t, 0.85, r.Confidence, 1e-9)
	assert.Equal(t, "One significant problem in auth handling.", r.Summary)
	assert.Equal(t, int64(1500), r.DurationMS)

	require.Len(t, r.Issues, 1)
	issue := r.Issues[0]
	assert.Equal(t, SeverityMajor, issue.Severity)
	assert.Equal(t, "security", issue.Category)
	assert.Equal(t, "handlers/auth.go", issue.File)
	assert.Equal(t, 42, issue.Line)
	assert.Equal(t, "claude", issue.Provider)
}

func TestNormalizeUnparseableDegradesToAbstain(t *testing.T) {
	n := NewNormalizer(loggy.NewNoopLogger())

	content := "I could not produce a structured answer, but the change looks risky."
	r := n.Normalize("gemini", "gemini-model", content, time.Second)

	assert.Equal(t, VerdictAbstain, r.Verdict)
	assert.Equal(t, 0.5, r.Confidence)
	assert.Empty(t, r.Issues)
	// The prose is preserved as the summary rather than dropped.
	assert.Equal(t, content, r.Summary)
}

func TestNormalizeUnknownVerdictAndSeverity(t *testing.T) {
	n := NewNormalizer(loggy.NewNoopLogger())

	content := `{"verdict": "lgtm-ish", "confidence": 2.5, "issues": [{"severity": "catastrophic", "title": "x"}], "summary": "ok"}`
	r := n.Normalize("openai", "gpt", content, 0)

	assert.Equal(t, VerdictAbstain, r.Verdict)
	// Confidence clamps into [0, 1].
	assert.Equal(t, 1.0, r.Confidence)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, SeverityMinor, r.Issues[0].Severity)
}

func TestNormalizeVerdictAliases(t *testing.T) {
	n := NewNormalizer(loggy.NewNoopLogger())

	r := n.Normalize("ollama", "qwen", `{"verdict": "needs_work", "confidence": 0.6, "summary": "fix it"}`, 0)
	assert.Equal(t, VerdictNeedsReview, r.Verdict)
}
