package review

import (
	"bytes"
	"fmt"
	"text/template"
)

// Templates for building review prompts
const systemInstructionTemplate = `You are a senior code reviewer examining a unified diff. Your **PRIMARY GOAL** is to provide a **VALID JSON response**. The JSON **MUST** be a complete, parseable object as your final statement, even if other text precedes it.

Follow this schema **EXACTLY** without adding any additional fields:

{
  "verdict": "critical_vulnerabilities|needs_review|provide_feedback|comment_only|approve",
  "confidence": 0.8,
  "issues": [
    {
      "severity": "critical|major|minor|suggestion",
      "category": "security|logic|performance|style|documentation",
      "file": "path/to/file.go",
      "line": 42,
      "title": "Issue title",
      "description": "Issue explanation",
      "suggestion": "Fix suggestion"
    }
  ],
  "summary": "Brief findings overview"
}

IMPORTANT:
- "verdict" reflects your overall judgment: use "critical_vulnerabilities" **ONLY** for exploitable security problems, "needs_review" for substantial defects, "provide_feedback" for issues worth addressing, "comment_only" for minor observations, "approve" when the change is acceptable as-is.
- "confidence" is a number between 0.0 and 1.0.
- **INCLUDE** all required fields even when "issues" is empty.
- "line" refers to a line number in the new version of the file.
- Pay special attention to security issues such as injection, hardcoded credentials, and unsafe deserialization.

If no issues are found, respond with: {"verdict": "approve", "confidence": 0.9, "issues": [], "summary": "No issues found"}.

Provide the **JSON** response as your **LAST** statement.`

const userContextTemplate = `Please review the following change.
{{if .RepoName}}Repository: {{.RepoName}}{{end}}
{{if .PRTitle}}Title: {{.PRTitle}}{{end}}
{{if .PRDescription}}Description: {{.PRDescription}}{{end}}
{{if .TargetBranch}}Target branch: {{.TargetBranch}}{{end}}
{{if .FileCount}}Files changed: {{.FileCount}}{{end}}

## Diff:
{{.Diff}}
`

// Message is a single chat message handed to a provider client.
type Message struct {
	Role    string `json:"role"` // user, assistant, or system
	Content string `json:"content"`
}

// BuildSystemInstruction returns the system prompt shared by all providers.
func BuildSystemInstruction() string {
	return systemInstructionTemplate
}

// BuildUserPrompt renders the diff and its context into the user message.
func BuildUserPrompt(diff string, rc *Context) (string, error) {
	if rc == nil {
		rc = &Context{}
	}

	tmpl, err := template.New("user").Parse(userContextTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]interface{}{
		"RepoName":      rc.RepoName,
		"PRTitle":       rc.PRTitle,
		"PRDescription": rc.PRDescription,
		"TargetBranch":  rc.TargetBranch,
		"FileCount":     rc.FileCount,
		"Diff":          diff,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// BuildMessages builds the full message list for a review request.
func BuildMessages(diff string, rc *Context) ([]Message, error) {
	userPrompt, err := BuildUserPrompt(diff, rc)
	if err != nil {
		return nil, fmt.Errorf("building user prompt: %w", err)
	}

	return []Message{
		{Role: "system", Content: BuildSystemInstruction()},
		{Role: "user", Content: userPrompt},
	}, nil
}
