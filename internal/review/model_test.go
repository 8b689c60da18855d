package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapStringToVerdict(t *testing.T) {
	tests := []struct {
		in   string
		want Verdict
	}{
		{"approve", VerdictApprove},
		{"APPROVED", VerdictApprove},
		{"lgtm", VerdictApprove},
		{"needs_review", VerdictNeedsReview},
		{"needs_work", VerdictNeedsReview},
		{"request_changes", VerdictNeedsReview},
		{"comment_only", VerdictCommentOnly},
		{"comment", VerdictCommentOnly},
		{"provide_feedback", VerdictProvideFeedback},
		{"critical_vulnerabilities", VerdictCriticalVulnerabilities},
		{"  approve  ", VerdictApprove},
		{"", VerdictAbstain},
		{"banana", VerdictAbstain},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStringToVerdict(tt.in))
		})
	}
}

func TestVerdictIsVoting(t *testing.T) {
	voting := []Verdict{
		VerdictCriticalVulnerabilities,
		VerdictNeedsReview,
		VerdictProvideFeedback,
		VerdictCommentOnly,
		VerdictApprove,
	}
	for _, v := range voting {
		assert.True(t, v.IsVoting(), "%s should vote", v)
	}

	nonVoting := []Verdict{
		VerdictAbstain,
		VerdictErrorTimeout,
		VerdictErrorNetwork,
		VerdictErrorAuth,
		VerdictErrorService,
	}
	for _, v := range nonVoting {
		assert.False(t, v.IsVoting(), "%s should not vote", v)
	}
}

func TestVerdictMoreSevere(t *testing.T) {
	assert.True(t, VerdictCriticalVulnerabilities.MoreSevere(VerdictNeedsReview))
	assert.True(t, VerdictNeedsReview.MoreSevere(VerdictApprove))
	assert.False(t, VerdictApprove.MoreSevere(VerdictCommentOnly))
	assert.False(t, VerdictApprove.MoreSevere(VerdictApprove))
}

func TestMapStringToSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"critical", SeverityCritical},
		{"blocker", SeverityCritical},
		{"major", SeverityMajor},
		{"HIGH", SeverityMajor},
		{"minor", SeverityMinor},
		{"medium", SeverityMinor},
		{"low", SeverityMinor},
		{"suggestion", SeveritySuggestion},
		{"nit", SeveritySuggestion},
		{"", SeverityMinor},
		{"unheard-of", SeverityMinor},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStringToSeverity(tt.in))
		})
	}
}

func TestNewErrorReview(t *testing.T) {
	r := NewErrorReview("claude", "model-x", VerdictErrorTimeout, "deadline exceeded", 2*time.Second)

	assert.Equal(t, "claude", r.Provider)
	assert.Equal(t, VerdictErrorTimeout, r.Verdict)
	assert.Equal(t, "deadline exceeded", r.Error)
	assert.Zero(t, r.Confidence)
	assert.Empty(t, r.Issues)
	assert.Equal(t, int64(2000), r.DurationMS)
}
