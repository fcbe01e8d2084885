package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "code generation",
			prompt: "Write a function to reverse a linked list in place",
			want:   CodeGeneration,
		},
		{
			name:   "factual qa",
			prompt: "What is the capital of France?",
			want:   FactualQA,
		},
		{
			name:   "creative writing",
			prompt: "Write a story about a lighthouse keeper who never sleeps",
			want:   CreativeWriting,
		},
		{
			name:   "translation",
			prompt: "Translate the following paragraph to Spanish",
			want:   Translation,
		},
		{
			name:   "summarization",
			prompt: "Summarize the key points of this meeting transcript",
			want:   Summarization,
		},
		{
			name:   "analysis",
			prompt: "Analyze the pros and cons of microservices versus monoliths",
			want:   Analysis,
		},
		{
			name:   "unmatched falls back to general",
			prompt: "qwerty asdf zxcv",
			want:   General,
		},
		{
			name:   "blank prompt",
			prompt: "   ",
			want:   General,
		},
		{
			name:   "empty prompt",
			prompt: "",
			want:   General,
		},
		{
			name:   "case insensitive",
			prompt: "WHAT IS a goroutine",
			want:   FactualQA,
		},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.Classify(tt.prompt))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier()
	prompt := "Compare and contrast these two implementations and summarize"
	first := c.Classify(prompt)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, c.Classify(prompt))
	}
}

func TestClassifyBatch(t *testing.T) {
	c := NewClassifier()
	got := c.ClassifyBatch([]string{
		"What is TLS?",
		"implement a binary search function",
		"",
	})
	require.Equal(t, []string{FactualQA, CodeGeneration, General}, got)
}
