// Package llm abstracts the chat completion providers the reasoner can use.
package llm

import "context"

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest carries one chat exchange to a provider.
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float64
	// JSONMode asks the provider to constrain output to a JSON object,
	// where the backend supports it.
	JSONMode bool
}

// Message is one turn in the conversation. Role is "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// ChatResponse is the provider's reply plus accounting.
type ChatResponse struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption for cost monitoring.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
