package validator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replaywise/replaywise/internal/scenario"
)

func f(v float64) *float64 { return &v }

func TestCombineSingleSignalIdentity(t *testing.T) {
	policy := scenario.NewPolicyTable().Get(scenario.General)

	require.InDelta(t, 80.0, Combine(f(80), nil, nil, policy), 1e-9)
	require.InDelta(t, 42.0, Combine(nil, f(42), nil, policy), 1e-9)
	require.InDelta(t, 63.5, Combine(nil, nil, f(63.5), policy), 1e-9)
}

func TestCombineNoSignalsNeutral(t *testing.T) {
	policy := scenario.NewPolicyTable().Get(scenario.General)
	require.Equal(t, 50.0, Combine(nil, nil, nil, policy))
}

func TestCombineWeightedAverage(t *testing.T) {
	// general: judge 0.60, heuristic 0.25, db 0.50.
	policy := scenario.NewPolicyTable().Get(scenario.General)

	got := Combine(f(90), f(60), nil, policy)
	want := (90*0.60 + 60*0.25) / (0.60 + 0.25)
	require.InDelta(t, want, got, 1e-9)

	got = Combine(f(90), f(60), f(70), policy)
	want = (90*0.60 + 60*0.25 + 70*0.50) / (0.60 + 0.25 + 0.50)
	require.InDelta(t, want, got, 1e-9)
}

func TestCombineScenarioWeights(t *testing.T) {
	// code_generation weights heuristics more heavily (0.40 vs 0.25).
	table := scenario.NewPolicyTable()
	general := Combine(f(90), f(30), nil, table.Get(scenario.General))
	code := Combine(f(90), f(30), nil, table.Get(scenario.CodeGeneration))
	require.Less(t, code, general)
}

func TestCombineZeroWeightsFallsBackToMean(t *testing.T) {
	policy := scenario.Policy{}
	require.InDelta(t, 75.0, Combine(f(90), f(60), nil, policy), 1e-9)
}

func TestCombineBoundsFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		policy := scenario.Policy{
			LLMJudgeWeight:  rng.Float64(),
			HeuristicWeight: rng.Float64(),
			DBWeight:        rng.Float64(),
		}
		var j, h, d *float64
		if rng.Intn(2) == 0 {
			j = f(rng.Float64() * 100)
		}
		if rng.Intn(2) == 0 {
			h = f(rng.Float64() * 100)
		}
		if rng.Intn(2) == 0 {
			d = f(rng.Float64() * 100)
		}

		got := Combine(j, h, d, policy)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 100.0)
	}
}
