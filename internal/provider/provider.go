// Package provider abstracts the LLM completion API used for replays and
// judge calls.
package provider

import (
	"context"

	"github.com/replaywise/replaywise/internal/models"
)

// Request is one chat completion request.
type Request struct {
	Model       string
	Provider    string
	Messages    []models.Message
	Temperature float64
	MaxTokens   int
}

// Completion is the provider's answer plus token accounting.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// CompletionProvider executes chat completions. Implementations must honor
// the context deadline.
type CompletionProvider interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}
