package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyTableDefaults(t *testing.T) {
	table := NewPolicyTable()

	code := table.Get(CodeGeneration)
	require.Equal(t, 0.20, code.LLMJudgeRate)
	require.Equal(t, JudgeTierHigh, code.JudgeTier)
	require.Equal(t, 0.40, code.HeuristicWeight)
	require.Equal(t, 0.60, code.DBWeight)

	facts := table.Get(FactualQA)
	require.Equal(t, 0.90, facts.SimilarityThreshold)
	require.Equal(t, 3, facts.MinSamplesForTransfer)
	require.Equal(t, 0.70, facts.DBWeight)
}

func TestPolicyTableUnknownFallsBackToGeneral(t *testing.T) {
	table := NewPolicyTable()
	got := table.Get("no_such_scenario")
	require.Equal(t, table.Get(General), got)
	require.Equal(t, 0.10, got.LLMJudgeRate)
	require.Equal(t, JudgeTierMedium, got.JudgeTier)
}

func TestApplyOverrides(t *testing.T) {
	table := NewPolicyTable()
	err := table.ApplyOverrides(map[string]map[string]any{
		CodeGeneration: {
			"llm_judge_rate": 0.5,
			"judge_tier":     "low",
		},
	})
	require.NoError(t, err)

	got := table.Get(CodeGeneration)
	require.Equal(t, 0.5, got.LLMJudgeRate)
	require.Equal(t, JudgeTierLow, got.JudgeTier)
	// Untouched fields keep their defaults.
	require.Equal(t, 0.40, got.HeuristicWeight)
	require.Equal(t, 85.0, got.MinConfidenceScore)
}

func TestApplyOverridesRejectsUnknownJudgeTier(t *testing.T) {
	table := NewPolicyTable()
	err := table.ApplyOverrides(map[string]map[string]any{
		FactualQA: {"judge_tier": "ultra"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown judge tier")
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	content := `
summarization:
  llm_judge_rate: 0.25
  similarity_threshold: 0.6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table := NewPolicyTable()
	require.NoError(t, table.LoadOverrides(path))

	got := table.Get(Summarization)
	require.Equal(t, 0.25, got.LLMJudgeRate)
	require.Equal(t, 0.6, got.SimilarityThreshold)
	require.Equal(t, 14, got.CacheTTLDays)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	table := NewPolicyTable()
	require.Error(t, table.LoadOverrides(filepath.Join(t.TempDir(), "nope.yaml")))
}
