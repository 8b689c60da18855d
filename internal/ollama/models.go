package ollama

// Message represents a chat message
type Message struct {
	Role    string `json:"role"` // system, user, or assistant
	Content string `json:"content"`
}

// ChatRequest represents a chat request to the Ollama API
type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []Message              `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// ChatResponse represents a chat response from the Ollama API
type ChatResponse struct {
	Model     string  `json:"model"`
	Message   Message `json:"message"`
	Done      bool    `json:"done"`
	Error     string  `json:"error,omitempty"`
	EvalCount int     `json:"eval_count,omitempty"`
}

// VersionResponse represents the Ollama version endpoint response
type VersionResponse struct {
	Version string `json:"version"`
}
