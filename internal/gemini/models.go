package gemini

import "fmt"

// Part represents a part of content in a chat message
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content represents content in a chat message
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig holds generation parameters
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// GenerateRequest represents a request to the generateContent endpoint
type GenerateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate represents a candidate response from the Gemini API
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// GenerateResponse represents a response from the generateContent endpoint
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Text returns the concatenated text of the first candidate
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, part := range r.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out
}

// ErrorDetails contains details about an API error
type ErrorDetails struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// APIError represents an error returned by the Gemini API
type APIError struct {
	StatusCode  int           `json:"-"`
	ErrorDetail *ErrorDetails `json:"error,omitempty"`
}

// Error implements the error interface for APIError
func (e *APIError) Error() string {
	if e.ErrorDetail != nil {
		return fmt.Sprintf("%s: %s (status %d)", e.ErrorDetail.Status, e.ErrorDetail.Message, e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}
