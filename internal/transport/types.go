package transport

// Message is one role-tagged entry in a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the chat completions API request structure.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// ChatResponse represents the chat completions API response structure.
// Content is a pointer so a JSON null is distinguishable from an empty
// string; a null content is a structurally invalid success response.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Outcome is the tagged result of one logical call (all attempts included).
// Text is set only on success; Reason carries the caller's display label so
// failures are attributable without extra bookkeeping.
type Outcome struct {
	OK       bool
	Text     string
	Reason   string
	Attempts int
}

// Success builds a successful outcome.
func Success(text string, attempts int) Outcome {
	return Outcome{OK: true, Text: text, Attempts: attempts}
}

// Failure builds a failed outcome.
func Failure(reason string, attempts int) Outcome {
	return Outcome{OK: false, Reason: reason, Attempts: attempts}
}
