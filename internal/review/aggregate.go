package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/revmux/revmux/internal/ulid"
)

// lineWindow is the grouping granularity for line numbers: issues whose
// lines land in the same window are treated as the same underlying finding
// reported with slightly different positions.
const lineWindow = 5

// descriptionSeparator joins distinct descriptions of a merged issue.
const descriptionSeparator = "\n---\n"

// groupKey identifies the bucket an issue merges into.
type groupKey struct {
	file     string
	lineBand int
	category string
}

func keyFor(issue Issue) groupKey {
	return groupKey{
		file:     issue.File,
		lineBand: issue.Line / lineWindow,
		category: strings.ToLower(strings.TrimSpace(issue.Category)),
	}
}

// MergeIssues deduplicates the raw issues of all reviews into MergedIssue
// records, applies severity escalation, and returns them in deterministic
// order: severity first, then descending reporter count, then location.
func MergeIssues(reviews []*Review) []MergedIssue {
	groups := make(map[groupKey][]Issue)
	var order []groupKey

	for _, r := range reviews {
		for _, issue := range r.Issues {
			k := keyFor(issue)
			if _, seen := groups[k]; !seen {
				order = append(order, k)
			}
			groups[k] = append(groups[k], issue)
		}
	}

	merged := make([]MergedIssue, 0, len(order))
	for _, k := range order {
		merged = append(merged, mergeGroup(groups[k]))
	}

	Escalate(merged)
	sortMerged(merged)
	return merged
}

// mergeGroup folds one bucket of issues into a single MergedIssue. The
// first member supplies title, file, and line; severity is the most severe
// among members; descriptions are concatenated with distinct phrasing
// preserved.
func mergeGroup(issues []Issue) MergedIssue {
	first := issues[0]

	m := MergedIssue{
		ID:       ulid.IssueID(),
		File:     first.File,
		Line:     first.Line,
		Category: strings.ToLower(strings.TrimSpace(first.Category)),
		Severity: first.Severity,
		Title:    first.Title,
	}

	var descriptions []string
	seenDesc := make(map[string]bool)
	seenProvider := make(map[string]bool)
	var confidenceSum float64

	for _, issue := range issues {
		if issue.Severity.MoreSevere(m.Severity) {
			m.Severity = issue.Severity
		}

		if d := strings.TrimSpace(issue.Description); d != "" && !seenDesc[d] {
			seenDesc[d] = true
			descriptions = append(descriptions, d)
		}

		if m.Suggestion == "" && issue.Suggestion != "" {
			m.Suggestion = issue.Suggestion
		}

		confidenceSum += issue.Confidence

		if !seenProvider[issue.Provider] {
			seenProvider[issue.Provider] = true
			m.ReportedBy = append(m.ReportedBy, issue.Provider)
		}
	}

	sort.Strings(m.ReportedBy)
	m.ReporterCount = len(m.ReportedBy)
	m.Description = strings.Join(descriptions, descriptionSeparator)
	// Confidence averages every member report, including repeat reports
	// from the same provider.
	m.Confidence = confidenceSum / float64(len(issues))

	return m
}

// Escalate bumps the severity of issues that multiple independent providers
// agree on. Escalation only ever increases severity, and an already
// escalated issue is left alone so repeated passes are idempotent.
func Escalate(issues []MergedIssue) {
	for i := range issues {
		m := &issues[i]
		if m.Escalated {
			continue
		}

		switch {
		case m.Severity == SeverityMajor && m.ReporterCount >= 2:
			m.Severity = SeverityCritical
			m.Escalated = true
		case m.Severity == SeverityMinor && m.ReporterCount >= 2:
			m.Severity = SeverityMajor
			m.Escalated = true
		}
	}
}

func sortMerged(issues []MergedIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.ReporterCount != b.ReporterCount {
			return a.ReporterCount > b.ReporterCount
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
}

// ComputeIssueStats tallies the merged issue list by severity and category.
func ComputeIssueStats(issues []MergedIssue) IssueStats {
	stats := IssueStats{
		Total:      len(issues),
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
	}

	for _, m := range issues {
		stats.BySeverity[string(m.Severity)]++
		if m.Category != "" {
			stats.ByCategory[m.Category]++
		}
		if m.Escalated {
			stats.EscalatedCount++
		}
		if m.ReporterCount > 1 {
			stats.MultiReporterCount++
		}
	}

	return stats
}

// BuildCombinedSummary composes a human-readable digest of the run: the
// consensus line followed by each provider's own summary.
func BuildCombinedSummary(consensus Consensus, reviews []*Review) string {
	var b strings.Builder

	if consensus.NoConsensus {
		fmt.Fprintf(&b, "No consensus reached among %d voting providers; most severe verdict is %s.",
			consensus.VotingCount, consensus.Verdict)
	} else {
		fmt.Fprintf(&b, "Consensus: %s (%.0f%% agreement, %d of %d providers voting).",
			consensus.Verdict, consensus.AgreementRatio*100, consensus.VotingCount, consensus.TotalCount)
	}

	for _, r := range reviews {
		summary := strings.TrimSpace(r.Summary)
		if summary == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\n%s (%s): %s", r.Provider, r.Verdict, summary)
	}

	return b.String()
}
