package validator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replaywise/replaywise/internal/judge"
	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/store"
)

type fakeJudge struct {
	mu    sync.Mutex
	score float64
	err   error
	calls int
}

func (j *fakeJudge) Evaluate(context.Context, string, string, string) (*judge.Evaluation, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls++
	if j.err != nil {
		return nil, j.err
	}
	return &judge.Evaluation{Score: j.score, Reasoning: "judge verdict"}, nil
}

func (j *fakeJudge) callCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls
}

func prompt(text string) models.Prompt {
	return models.NewPrompt(models.Message{Role: "user", Content: text})
}

// neverSample keeps the judge out of the pipeline unless forced.
func neverSample() float64 { return 0.999 }

func TestHybridRefusalShortCircuits(t *testing.T) {
	j := &fakeJudge{score: 90}
	h := NewHybrid(HybridConfig{Store: store.NewMemoryStore(), Judge: j, Rand: neverSample})

	got := h.Validate(context.Background(), prompt("qwerty asdf zxcv"), "I cannot provide information about that topic.", "gpt-4o", Options{})
	require.Equal(t, 0.0, got.Score)
	require.Equal(t, models.MethodHeuristics, got.Method)
	require.Equal(t, models.ConfidenceHigh, got.Confidence)
	require.Equal(t, 0, j.callCount())
	require.NotNil(t, got.HeuristicScore)
	require.Equal(t, 0.0, *got.HeuristicScore)
}

func TestHybridCacheHitShortCircuits(t *testing.T) {
	s := store.NewMemoryStore()
	j := &fakeJudge{score: 90}
	h := NewHybrid(HybridConfig{Store: s, Judge: j, Rand: neverSample})

	text := "What is the capital of France?"
	// First validation goes through heuristics and seeds the store.
	first := h.Validate(context.Background(), prompt(text), "The capital of France is Paris.", "gpt-4o", Options{})
	require.NotEqual(t, models.CacheSourceExactMatch, first.Method)

	// Second validation of the same prompt+model is answered by the cache.
	second := h.Validate(context.Background(), prompt(text), "The capital of France is Paris.", "gpt-4o", Options{})
	require.Equal(t, models.CacheSourceExactMatch, second.Method)
	require.Equal(t, models.ConfidenceHigh, second.Confidence)
	require.Equal(t, first.Score, second.Score)
	require.NotNil(t, second.DBScore)
	require.Equal(t, []string{models.CacheSourceExactMatch}, second.MethodsUsed)
	require.Equal(t, 0, j.callCount())

	stats := h.Stats()
	require.Equal(t, 1, stats.DBHits)
	require.Equal(t, 1, stats.DBMisses)
}

func TestHybridForcedJudgeEnsemble(t *testing.T) {
	j := &fakeJudge{score: 80}
	h := NewHybrid(HybridConfig{Store: store.NewMemoryStore(), Judge: j, Rand: neverSample})

	got := h.Validate(context.Background(), prompt("qwerty asdf zxcv"), "A detailed and well formed answer to the question.", "gpt-4o", Options{ForceJudge: true})
	require.Equal(t, models.MethodEnsemble, got.Method)
	require.Equal(t, models.ConfidenceHigh, got.Confidence)
	require.Equal(t, 1, j.callCount())
	require.NotNil(t, got.LLMJudgeScore)
	require.Equal(t, 80.0, *got.LLMJudgeScore)
	require.NotNil(t, got.HeuristicScore)
	require.Contains(t, got.MethodsUsed, models.MethodLLMJudge)
	require.Contains(t, got.MethodsUsed, models.MethodHeuristics)
	require.GreaterOrEqual(t, got.Score, 0.0)
	require.LessOrEqual(t, got.Score, 100.0)
}

func TestHybridSamplingSkipsJudge(t *testing.T) {
	j := &fakeJudge{score: 80}
	// general scenario rate is 0.10; a draw of 0.5 skips the judge.
	h := NewHybrid(HybridConfig{Store: store.NewMemoryStore(), Judge: j, Rand: func() float64 { return 0.5 }})

	got := h.Validate(context.Background(), prompt("qwerty asdf zxcv"), "A detailed and well formed answer to the question.", "gpt-4o", Options{})
	require.Equal(t, 0, j.callCount())
	require.Equal(t, models.MethodHeuristics, got.Method)
}

func TestHybridJudgeErrorDegrades(t *testing.T) {
	j := &fakeJudge{err: errors.New("judge upstream down")}
	h := NewHybrid(HybridConfig{Store: store.NewMemoryStore(), Judge: j, Rand: neverSample})

	got := h.Validate(context.Background(), prompt("qwerty asdf zxcv"), "A detailed and well formed answer to the question.", "gpt-4o", Options{ForceJudge: true})
	require.Equal(t, 1, j.callCount())
	require.Equal(t, models.MethodHeuristics, got.Method)
	require.Nil(t, got.LLMJudgeScore)
	require.NotContains(t, got.MethodsUsed, models.MethodLLMJudge)

	// A failed call refunds its reservation.
	stats := h.Stats()
	require.Zero(t, stats.JudgeSpendUSD)
	require.False(t, stats.JudgeDisabled)
}

func TestHybridBudgetEnforcement(t *testing.T) {
	j := &fakeJudge{score: 75}
	// Budget covers exactly two estimated calls.
	h := NewHybrid(HybridConfig{
		Store:          store.NewMemoryStore(),
		Judge:          j,
		JudgeBudgetUSD: 2 * estimatedJudgeCostUSD,
		Rand:           neverSample,
	})

	output := "A detailed and well formed answer to the question."
	for i := 0; i < 2; i++ {
		got := h.Validate(context.Background(), prompt("qwerty asdf zxcv"), output, "gpt-4o", Options{ForceJudge: true})
		require.Equal(t, models.MethodEnsemble, got.Method)
	}
	require.Equal(t, 2, j.callCount())

	// Budget crossed: even forced calls degrade to heuristics.
	got := h.Validate(context.Background(), prompt("qwerty asdf zxcv"), output, "gpt-4o", Options{ForceJudge: true})
	require.Equal(t, 2, j.callCount())
	require.NotEqual(t, models.MethodEnsemble, got.Method)

	stats := h.Stats()
	require.True(t, stats.JudgeDisabled)
	require.Equal(t, 2, stats.JudgeCalls)
	require.InDelta(t, 2*estimatedJudgeCostUSD, stats.JudgeSpendUSD, 1e-9)
}

// gatedJudge blocks inside Evaluate until released, holding its budget
// reservation open while other goroutines race the cap check.
type gatedJudge struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (j *gatedJudge) Evaluate(context.Context, string, string, string) (*judge.Evaluation, error) {
	j.mu.Lock()
	j.calls++
	j.mu.Unlock()
	j.entered <- struct{}{}
	<-j.release
	return &judge.Evaluation{Score: 70, Reasoning: "judge verdict"}, nil
}

func TestHybridBudgetConcurrentReservation(t *testing.T) {
	j := &gatedJudge{entered: make(chan struct{}, 1), release: make(chan struct{})}
	// Budget covers exactly one estimated call. The failing store keeps the
	// cache out of the picture so every goroutine reaches the budget check.
	h := NewHybrid(HybridConfig{
		Store:          failingStore{},
		Judge:          j,
		JudgeBudgetUSD: estimatedJudgeCostUSD,
		Rand:           neverSample,
	})

	output := "A detailed and well formed answer to the question."
	results := make(chan *models.ValidationScore, 5)
	for i := 0; i < 5; i++ {
		go func() {
			results <- h.Validate(context.Background(), prompt("qwerty asdf zxcv"), output, "gpt-4o", Options{ForceJudge: true})
		}()
	}

	// Exactly one goroutine wins the reservation and blocks in the judge;
	// the other four must degrade without touching the budget.
	<-j.entered
	for i := 0; i < 4; i++ {
		got := <-results
		require.NotEqual(t, models.MethodEnsemble, got.Method)
	}
	close(j.release)
	got := <-results
	require.Equal(t, models.MethodEnsemble, got.Method)

	stats := h.Stats()
	require.Equal(t, 1, stats.JudgeCalls)
	require.True(t, stats.JudgeDisabled)
	require.InDelta(t, estimatedJudgeCostUSD, stats.JudgeSpendUSD, 1e-9)
	require.LessOrEqual(t, stats.JudgeSpendUSD, h.budgetUSD)
}

// captureStore keeps the most recent persisted record for inspection.
type captureStore struct {
	mu   sync.Mutex
	last store.Record
}

func (s *captureStore) StoreValidation(_ context.Context, rec store.Record) error {
	s.mu.Lock()
	s.last = rec
	s.mu.Unlock()
	return nil
}
func (s *captureStore) FindSimilar(context.Context, store.Query) (*store.SimilarResult, error) {
	return nil, nil
}
func (s *captureStore) Stats(context.Context) (store.Stats, error) { return store.Stats{}, nil }
func (s *captureStore) Close() error                               { return nil }

func (s *captureStore) lastRecord() store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func TestHybridPersistsOutputText(t *testing.T) {
	s := &captureStore{}
	h := NewHybrid(HybridConfig{Store: s, Rand: neverSample})

	text := "What is the capital of France?"
	output := "The capital of France is Paris."
	h.Validate(context.Background(), prompt(text), output, "gpt-4o", Options{})

	rec := s.lastRecord()
	require.Equal(t, text, rec.PromptText)
	require.Equal(t, output, rec.Output)
	require.Equal(t, "gpt-4o", rec.Model)
	require.Equal(t, "openai", rec.Provider)
	require.Equal(t, "factual_qa", rec.Scenario)
}

func TestHybridPersistsOutcomes(t *testing.T) {
	s := store.NewMemoryStore()
	h := NewHybrid(HybridConfig{Store: s, Rand: neverSample})

	h.Validate(context.Background(), prompt("What is the capital of France?"), "The capital of France is Paris.", "gpt-4o", Options{})

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalRecords)
	require.Equal(t, 1, stats.ByScenario["factual_qa"])
	require.Equal(t, 1, stats.ByModel["gpt-4o"])
}

func TestHybridStoreFailureDoesNotCrash(t *testing.T) {
	h := NewHybrid(HybridConfig{Store: failingStore{}, Rand: neverSample})

	got := h.Validate(context.Background(), prompt("anything at all"), "A detailed and well formed answer to the question.", "gpt-4o", Options{})
	require.NotNil(t, got)
	require.GreaterOrEqual(t, got.Score, 0.0)
}

func TestHybridNilJudge(t *testing.T) {
	h := NewHybrid(HybridConfig{Store: store.NewMemoryStore(), Rand: func() float64 { return 0.0 }})

	got := h.Validate(context.Background(), prompt("qwerty asdf zxcv"), "A detailed and well formed answer to the question.", "gpt-4o", Options{ForceJudge: true})
	require.Equal(t, models.MethodHeuristics, got.Method)
}
