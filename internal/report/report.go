// Package report renders an aggregated review result as markdown for PR
// comments and as styled terminal output.
package report

import (
	"fmt"
	"strings"

	"github.com/revmux/revmux/internal/review"
)

// verdictLabel maps verdicts to a human-readable label with a marker.
func verdictLabel(v review.Verdict) string {
	switch v {
	case review.VerdictApprove:
		return "✅ Approve"
	case review.VerdictCommentOnly:
		return "💬 Comment Only"
	case review.VerdictProvideFeedback:
		return "📝 Provide Feedback"
	case review.VerdictNeedsReview:
		return "⚠️ Needs Review"
	case review.VerdictCriticalVulnerabilities:
		return "🚨 Critical Vulnerabilities"
	case review.VerdictAbstain:
		return "🤷 Abstain"
	default:
		return "❌ " + string(v)
	}
}

func severityLabel(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return "CRITICAL"
	case review.SeverityMajor:
		return "MAJOR"
	case review.SeverityMinor:
		return "MINOR"
	default:
		return "SUGGESTION"
	}
}

// Markdown renders the full result as a markdown document suitable for a
// pull request comment.
func Markdown(result *review.AggregatedResult) string {
	var b strings.Builder

	c := result.Consensus
	fmt.Fprintf(&b, "## Multi-Model Review: %s\n\n", verdictLabel(c.Verdict))

	if c.NoConsensus {
		fmt.Fprintf(&b, "No consensus was reached; showing the most severe verdict. ")
	}
	fmt.Fprintf(&b, "%d of %d providers voted (%.0f%% agreement, confidence %.2f).\n\n",
		c.VotingCount, c.TotalCount, c.AgreementRatio*100, c.Confidence)

	b.WriteString("### Providers\n\n")
	b.WriteString("| Provider | Model | Verdict | Confidence | Issues | Duration |\n")
	b.WriteString("|----------|-------|---------|-----------:|-------:|---------:|\n")
	for _, p := range result.Providers {
		fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %d | %dms |\n",
			p.Provider, p.Model, p.Verdict, p.Confidence, p.IssueCount, p.DurationMS)
	}
	b.WriteString("\n")

	if len(result.Issues) > 0 {
		fmt.Fprintf(&b, "### Issues (%d)\n\n", len(result.Issues))
		for i, issue := range result.Issues {
			location := issue.File
			if issue.Line > 0 {
				location = fmt.Sprintf("%s:%d", issue.File, issue.Line)
			}

			fmt.Fprintf(&b, "#### %d. [%s] %s\n\n", i+1, severityLabel(issue.Severity), issue.Title)
			if location != "" {
				fmt.Fprintf(&b, "`%s` — ", location)
			}
			fmt.Fprintf(&b, "reported by %s", strings.Join(issue.ReportedBy, ", "))
			if issue.Escalated {
				b.WriteString(" _(severity escalated by agreement)_")
			}
			b.WriteString("\n\n")

			if issue.Description != "" {
				b.WriteString(issue.Description)
				b.WriteString("\n\n")
			}
			if issue.Suggestion != "" {
				fmt.Fprintf(&b, "**Suggestion:** %s\n\n", issue.Suggestion)
			}
		}
	} else {
		b.WriteString("### Issues\n\nNo issues reported.\n\n")
	}

	if result.CombinedSummary != "" {
		b.WriteString("### Summary\n\n")
		b.WriteString(result.CombinedSummary)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n---\n_run `%s`_\n", result.RunID)

	return b.String()
}
