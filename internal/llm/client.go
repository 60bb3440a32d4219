// Package llm wraps the chat-completions provider shared by the generation
// services and the judge engine.
package llm

import "context"

// Request is one chat completion: a system prompt, a user prompt, and the
// model to route it to.
type Request struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Usage reports provider token counts for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Response carries the raw completion text plus usage accounting.
type Response struct {
	Text  string
	Usage Usage
}

// Client is the minimal provider surface the pipeline needs: one blocking
// completion per call. Implementations must honor ctx cancellation.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
