package heuristics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replaywise/replaywise/internal/models"
)

func TestValidateEmptyOutput(t *testing.T) {
	for _, output := range []string{"", "   ", "\n\t"} {
		got := Validate(output, Options{})
		require.Equal(t, 0.0, got.Score)
		require.Equal(t, models.ConfidenceHigh, got.Confidence)
		require.Equal(t, []string{CheckNonEmpty}, got.ChecksFailed)
	}
}

func TestValidateRefusal(t *testing.T) {
	got := Validate("I cannot provide information about that topic.", Options{})
	require.Equal(t, 0.0, got.Score)
	require.Equal(t, models.ConfidenceHigh, got.Confidence)
	require.Equal(t, "Model refused to answer", got.Reasoning)
	require.Equal(t, []string{CheckRefusal}, got.ChecksFailed)
	require.Empty(t, got.ChecksPassed)
}

func TestValidateCleanOutput(t *testing.T) {
	output := "The quick brown fox jumps over the lazy dog. It was a bright day.\nAnother line follows here."
	got := Validate(output, Options{})
	require.Equal(t, 100.0, got.Score)
	require.Equal(t, models.ConfidenceHigh, got.Confidence)
	require.Empty(t, got.ChecksFailed)
	require.Len(t, got.ChecksPassed, 5)
}

func TestValidateShortOutput(t *testing.T) {
	got := Validate("Hi there.", Options{})
	require.InDelta(t, 66.0, got.Score, 1e-9)
	require.Equal(t, models.ConfidenceMedium, got.Confidence)
	require.Contains(t, got.ChecksFailed, CheckLength)
}

func TestValidateErrorOutput(t *testing.T) {
	got := Validate("Error: failed to connect to the database server today.", Options{})
	require.InDelta(t, 76.0, got.Score, 1e-9)
	// Scores in the (75, 85] gap carry low confidence.
	require.Equal(t, models.ConfidenceLow, got.Confidence)
	require.Contains(t, got.ChecksFailed, CheckError)
}

func TestValidateLanguageMismatch(t *testing.T) {
	got := Validate("这是一个中文回答，内容看起来足够长。", Options{})
	require.Contains(t, got.ChecksFailed, CheckLanguage)
	require.Less(t, got.Score, 80.0)
}

func TestValidateSchema(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []any{"name"},
	}

	t.Run("match earns bonus", func(t *testing.T) {
		got := Validate(`{"name": "test"}`, Options{ExpectedSchema: schema})
		require.Contains(t, got.ChecksPassed, CheckSchema)
		require.Equal(t, 100.0, got.Score)
	})

	t.Run("missing required field fails", func(t *testing.T) {
		got := Validate(`{"wrong": 1}`, Options{ExpectedSchema: schema})
		require.Contains(t, got.ChecksFailed, CheckSchema)
		require.InDelta(t, 82.0, got.Score, 1e-9)
	})

	t.Run("non-JSON output fails", func(t *testing.T) {
		got := Validate("This is plain prose, not JSON at all.", Options{ExpectedSchema: schema})
		require.Contains(t, got.ChecksFailed, CheckSchema)
	})
}

func TestValidateScoreBounds(t *testing.T) {
	outputs := []string{
		"x",
		"ERROR: TRACEBACK UNABLE TO COULD NOT",
		"短",
		"A perfectly ordinary sentence that passes everything. Twice over, even.\nWith a second paragraph.",
	}
	for _, out := range outputs {
		got := Validate(out, Options{})
		require.GreaterOrEqual(t, got.Score, 0.0)
		require.LessOrEqual(t, got.Score, 100.0)
	}
}

func TestIsRefusal(t *testing.T) {
	tests := []struct {
		output string
		want   bool
	}{
		{output: "I cannot help with that.", want: true},
		{output: "I'm sorry, but I cannot assist with this request.", want: true},
		{output: "As an AI, I should mention limitations.", want: true},
		{output: "Sure, here is the answer you asked for.", want: false},
		{output: "", want: false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, IsRefusal(tt.output), tt.output)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "plain english text", want: "en"},
		{text: "中文", want: "zh"},
		{text: "نص عربي", want: "ar"},
		{text: "русский текст", want: "ru"},
		{text: "これはテストです", want: "ja"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, DetectLanguage(tt.text), tt.text)
	}
}
