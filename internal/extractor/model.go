package extractor

// ReviewPayload is the structured output expected from a review provider.
type ReviewPayload struct {
	Verdict    string         `json:"verdict"`
	Confidence float64        `json:"confidence"`
	Issues     []IssuePayload `json:"issues"`
	Summary    string         `json:"summary"`
	Model      string         `json:"model,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// IssuePayload is a single issue as emitted by a provider. Line is loosely
// typed because models emit both numbers and strings.
type IssuePayload struct {
	Severity    string      `json:"severity"`
	Category    string      `json:"category"`
	File        string      `json:"file"`
	Line        interface{} `json:"line"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Suggestion  string      `json:"suggestion"`
}
