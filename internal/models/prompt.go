package models

import (
	"strings"

	"github.com/google/uuid"
)

// Message is a single chat message in the provider wire shape.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Prompt is a historical LLM call to replay and validate.
type Prompt struct {
	ID            string            `json:"id" yaml:"id"`
	Messages      []Message         `json:"messages" yaml:"messages"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	OriginalModel string            `json:"original_model,omitempty" yaml:"original_model,omitempty"`
	OriginalCost  float64           `json:"original_cost,omitempty" yaml:"original_cost,omitempty"`
}

// NewPrompt builds a Prompt with a generated ID.
func NewPrompt(messages ...Message) Prompt {
	return Prompt{
		ID:       uuid.NewString(),
		Messages: messages,
	}
}

// Text flattens the message contents into the single string used for
// classification, cache lookups, and storage.
func (p Prompt) Text() string {
	parts := make([]string, 0, len(p.Messages))
	for _, m := range p.Messages {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, " ")
}
