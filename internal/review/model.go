// Package review implements the multi-provider review pipeline: dispatch,
// normalization, consensus voting, and issue aggregation.
package review

import (
	"strings"
	"time"
)

// Verdict represents a provider's categorical judgment of a change.
type Verdict string

const (
	// VerdictCriticalVulnerabilities indicates security findings that block the change
	VerdictCriticalVulnerabilities Verdict = "critical_vulnerabilities"
	// VerdictNeedsReview indicates substantial problems requiring human review
	VerdictNeedsReview Verdict = "needs_review"
	// VerdictProvideFeedback indicates issues worth addressing before merge
	VerdictProvideFeedback Verdict = "provide_feedback"
	// VerdictCommentOnly indicates minor observations with no action required
	VerdictCommentOnly Verdict = "comment_only"
	// VerdictApprove indicates the change is acceptable as-is
	VerdictApprove Verdict = "approve"

	// VerdictAbstain indicates the provider produced no usable structured opinion
	VerdictAbstain Verdict = "abstain"
	// VerdictErrorTimeout indicates the provider call exceeded its deadline
	VerdictErrorTimeout Verdict = "error_timeout"
	// VerdictErrorNetwork indicates the provider was unreachable
	VerdictErrorNetwork Verdict = "error_network"
	// VerdictErrorAuth indicates missing or rejected credentials
	VerdictErrorAuth Verdict = "error_auth"
	// VerdictErrorService indicates a generic provider-side failure
	VerdictErrorService Verdict = "error_service"
)

// severityRank orders voting verdicts from most to least severe. Non-voting
// verdicts are absent; they never participate in severity comparisons.
var severityRank = map[Verdict]int{
	VerdictCriticalVulnerabilities: 0,
	VerdictNeedsReview:             1,
	VerdictProvideFeedback:         2,
	VerdictCommentOnly:             3,
	VerdictApprove:                 4,
}

// thresholdOrder is the order verdicts are checked against the agreement
// threshold: least severe first. This is intentionally the reverse of the
// severity fallback so agreement on "approve" needs a supermajority while
// failure to agree defaults to the more cautious outcome.
var thresholdOrder = []Verdict{
	VerdictApprove,
	VerdictCommentOnly,
	VerdictProvideFeedback,
	VerdictNeedsReview,
}

// IsVoting reports whether the verdict contributes to the consensus vote.
func (v Verdict) IsVoting() bool {
	_, ok := severityRank[v]
	return ok
}

// MoreSevere reports whether v is strictly more severe than other.
// Both verdicts must be voting verdicts.
func (v Verdict) MoreSevere(other Verdict) bool {
	return severityRank[v] < severityRank[other]
}

// MapStringToVerdict maps a raw string to a Verdict, defaulting to abstain
// for anything unrecognized.
func MapStringToVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical_vulnerabilities":
		return VerdictCriticalVulnerabilities
	case "needs_review", "needs_work", "request_changes":
		return VerdictNeedsReview
	case "provide_feedback":
		return VerdictProvideFeedback
	case "comment_only", "comment":
		return VerdictCommentOnly
	case "approve", "approved", "lgtm":
		return VerdictApprove
	case "abstain":
		return VerdictAbstain
	default:
		return VerdictAbstain
	}
}

// Severity represents the severity of a reported issue.
type Severity string

const (
	// SeverityCritical represents a critical issue
	SeverityCritical Severity = "critical"
	// SeverityMajor represents a major issue
	SeverityMajor Severity = "major"
	// SeverityMinor represents a minor issue
	SeverityMinor Severity = "minor"
	// SeveritySuggestion represents an optional improvement
	SeveritySuggestion Severity = "suggestion"
)

var issueSeverityRank = map[Severity]int{
	SeverityCritical:   0,
	SeverityMajor:      1,
	SeverityMinor:      2,
	SeveritySuggestion: 3,
}

// Rank returns the severity's position in the ordering, most severe first.
func (s Severity) Rank() int {
	if r, ok := issueSeverityRank[s]; ok {
		return r
	}
	return len(issueSeverityRank)
}

// MoreSevere reports whether s is strictly more severe than other.
func (s Severity) MoreSevere(other Severity) bool {
	return s.Rank() < other.Rank()
}

// MapStringToSeverity maps a raw string to a Severity, defaulting to minor.
func MapStringToSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "blocker":
		return SeverityCritical
	case "major", "high":
		return SeverityMajor
	case "minor", "medium", "low":
		return SeverityMinor
	case "suggestion", "info", "nit":
		return SeveritySuggestion
	default:
		return SeverityMinor
	}
}

// Context carries change metadata handed to every provider. All fields are
// optional; providers fold present fields into their prompts.
type Context struct {
	RepoName      string `json:"repo_name,omitempty"`
	PRTitle       string `json:"pr_title,omitempty"`
	PRDescription string `json:"pr_description,omitempty"`
	TargetBranch  string `json:"target_branch,omitempty"`
	FileCount     int    `json:"file_count,omitempty"`
	Platform      string `json:"platform,omitempty"`
}

// Issue is a single finding as reported by one provider. Raw issues are
// owned by their Review and never mutated; aggregation produces new
// MergedIssue records instead.
type Issue struct {
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`

	// Back-reference to the reporting provider
	Provider   string  `json:"provider"`
	Confidence float64 `json:"confidence"`
}

// Review is one provider's complete response for a run. Immutable once
// constructed by the normalizer.
type Review struct {
	Provider   string        `json:"provider"`
	Model      string        `json:"model,omitempty"`
	Verdict    Verdict       `json:"verdict"`
	Confidence float64       `json:"confidence"`
	Issues     []Issue       `json:"issues"`
	Summary    string        `json:"summary"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

// NewErrorReview builds a non-voting Review for a failed provider attempt.
func NewErrorReview(provider, model string, verdict Verdict, errMsg string, duration time.Duration) *Review {
	return &Review{
		Provider:   provider,
		Model:      model,
		Verdict:    verdict,
		Confidence: 0.0,
		Issues:     []Issue{},
		Summary:    "",
		Error:      errMsg,
		Duration:   duration,
		DurationMS: duration.Milliseconds(),
	}
}

// MergedIssue is the deduplicated form of issues reported by one or more
// providers for the same location and category.
type MergedIssue struct {
	ID            string   `json:"id"`
	File          string   `json:"file,omitempty"`
	Line          int      `json:"line,omitempty"`
	Category      string   `json:"category"`
	Severity      Severity `json:"severity"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Suggestion    string   `json:"suggestion,omitempty"`
	ReportedBy    []string `json:"reported_by"`
	ReporterCount int      `json:"reporter_count"`
	Confidence    float64  `json:"confidence"`
	Escalated     bool     `json:"escalated"`
}

// Consensus is the aggregate verdict derived from all voting reviews.
type Consensus struct {
	Verdict        Verdict         `json:"verdict"`
	Confidence     float64         `json:"confidence"`
	AgreementRatio float64         `json:"agreement_ratio"`
	VotingCount    int             `json:"voting_count"`
	AbstainCount   int             `json:"abstain_count"`
	TotalCount     int             `json:"total_count"`
	VerdictCounts  map[Verdict]int `json:"verdict_counts"`
	NoConsensus    bool            `json:"no_consensus"`
}

// IssueStats summarizes the merged issue list.
type IssueStats struct {
	Total              int            `json:"total"`
	BySeverity         map[string]int `json:"by_severity"`
	ByCategory         map[string]int `json:"by_category"`
	EscalatedCount     int            `json:"escalated_count"`
	MultiReporterCount int            `json:"multi_reporter_count"`
}

// ProviderSummary is the per-provider slice of the aggregated result,
// retained for observability even when the provider could not vote.
type ProviderSummary struct {
	Provider   string  `json:"provider"`
	Model      string  `json:"model,omitempty"`
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence"`
	IssueCount int     `json:"issue_count"`
	DurationMS int64   `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// AggregatedResult is the sole externally visible output of a run.
type AggregatedResult struct {
	RunID           string            `json:"run_id"`
	Consensus       Consensus         `json:"consensus"`
	Issues          []MergedIssue     `json:"issues"`
	IssueStats      IssueStats        `json:"issue_stats"`
	Providers       []ProviderSummary `json:"providers"`
	CombinedSummary string            `json:"combined_summary"`
}
