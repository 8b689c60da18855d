package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/revmux/revmux/internal/review"
)

// Renderer writes a result to a terminal. Plain mode strips color and
// markdown styling for piped output.
type Renderer struct {
	out   io.Writer
	plain bool
}

// NewRenderer creates a terminal renderer.
func NewRenderer(out io.Writer, plain bool) *Renderer {
	return &Renderer{out: out, plain: plain}
}

func verdictColor(v review.Verdict) *color.Color {
	switch v {
	case review.VerdictApprove:
		return color.New(color.FgGreen, color.Bold)
	case review.VerdictCommentOnly, review.VerdictProvideFeedback:
		return color.New(color.FgYellow, color.Bold)
	case review.VerdictNeedsReview:
		return color.New(color.FgHiYellow, color.Bold)
	case review.VerdictCriticalVulnerabilities:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite, color.Bold)
	}
}

func severityColors(s review.Severity) text.Colors {
	switch s {
	case review.SeverityCritical:
		return text.Colors{text.FgRed, text.Bold}
	case review.SeverityMajor:
		return text.Colors{text.FgHiYellow}
	case review.SeverityMinor:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgCyan}
	}
}

// Render writes the whole result: consensus banner, provider table, issue
// table, then the combined summary rendered as markdown.
func (r *Renderer) Render(result *review.AggregatedResult) error {
	r.renderBanner(result.Consensus)
	r.renderProviders(result.Providers)
	r.renderIssues(result.Issues)
	return r.renderSummary(result)
}

func (r *Renderer) renderBanner(c review.Consensus) {
	label := verdictLabel(c.Verdict)
	if !r.plain {
		label = verdictColor(c.Verdict).Sprint(label)
	}

	fmt.Fprintf(r.out, "\n%s\n", label)
	if c.NoConsensus {
		fmt.Fprintf(r.out, "No consensus reached; most severe verdict shown.\n")
	}
	fmt.Fprintf(r.out, "%d of %d providers voting, %.0f%% agreement, confidence %.2f\n\n",
		c.VotingCount, c.TotalCount, c.AgreementRatio*100, c.Confidence)
}

func (r *Renderer) renderProviders(providers []review.ProviderSummary) {
	t := r.newTable("Providers")
	t.AppendHeader(table.Row{"Provider", "Model", "Verdict", "Confidence", "Issues", "Duration"})

	for _, p := range providers {
		verdict := string(p.Verdict)
		if p.Error != "" {
			verdict = verdict + " (" + truncate(p.Error, 40) + ")"
		}
		t.AppendRow(table.Row{
			p.Provider,
			p.Model,
			verdict,
			fmt.Sprintf("%.2f", p.Confidence),
			p.IssueCount,
			fmt.Sprintf("%dms", p.DurationMS),
		})
	}

	t.Render()
	fmt.Fprintln(r.out)
}

func (r *Renderer) renderIssues(issues []review.MergedIssue) {
	if len(issues) == 0 {
		fmt.Fprintf(r.out, "No issues reported.\n\n")
		return
	}

	t := r.newTable(fmt.Sprintf("Issues (%d)", len(issues)))
	t.AppendHeader(table.Row{"Severity", "Location", "Title", "Reported By"})

	for _, issue := range issues {
		location := issue.File
		if issue.Line > 0 {
			location = fmt.Sprintf("%s:%d", issue.File, issue.Line)
		}

		severity := severityLabel(issue.Severity)
		if issue.Escalated {
			severity += " ↑"
		}
		if !r.plain {
			severity = severityColors(issue.Severity).Sprint(severity)
		}

		t.AppendRow(table.Row{
			severity,
			location,
			truncate(issue.Title, 60),
			strings.Join(issue.ReportedBy, ", "),
		})
	}

	t.Render()
	fmt.Fprintln(r.out)
}

func (r *Renderer) renderSummary(result *review.AggregatedResult) error {
	if result.CombinedSummary == "" {
		return nil
	}

	md := "## Summary\n\n" + result.CombinedSummary + "\n"
	if r.plain {
		fmt.Fprintln(r.out, md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprintln(r.out, md)
		return nil
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		fmt.Fprintln(r.out, md)
		return nil
	}

	_, err = fmt.Fprint(r.out, rendered)
	return err
}

func (r *Renderer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)

	style := table.StyleLight
	if !r.plain {
		style.Color.Header = text.Colors{text.FgHiBlue, text.Bold}
		style.Color.Border = text.Colors{text.FgBlue}
		style.Title.Colors = text.Colors{text.FgHiCyan, text.Bold}
	}
	t.SetStyle(style)

	return t
}

// truncate shortens s to max runes so multi-byte characters in model output
// are never split mid-sequence.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
