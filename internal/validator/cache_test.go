package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/store"
)

func seed(t *testing.T, s store.Store, promptText, model, scenarioTag string, score float64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.StoreValidation(context.Background(), store.Record{
			PromptText: promptText,
			Model:      model,
			Scenario:   scenarioTag,
			Score:      score,
			Method:     models.MethodEnsemble,
			Confidence: models.ConfidenceHigh,
		}))
	}
}

func TestCacheExactMatch(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "what is the capital of france", "gpt-4o", "factual_qa", 92, 1)

	c := NewCacheStrategy(s, nil)
	got := c.Lookup(context.Background(), "what is the capital of france", "gpt-4o", "factual_qa", models.ConfidenceMedium)
	require.NotNil(t, got)
	require.Equal(t, models.CacheSourceExactMatch, got.Source)
	require.Equal(t, models.MethodHistoricalDB, got.Method)
	require.Equal(t, models.ConfidenceHigh, got.Confidence)
	require.Equal(t, 92.0, got.Score)
}

func TestCacheScenarioSimilar(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "summarize the quarterly sales report for march", "gpt-4o", "summarization", 84, 1)

	c := NewCacheStrategy(s, nil)
	got := c.Lookup(context.Background(), "summarize the quarterly sales report for april", "gpt-4o", "summarization", models.ConfidenceMedium)
	require.NotNil(t, got)
	require.Equal(t, models.CacheSourceScenarioSimilar, got.Source)
	require.Equal(t, models.ConfidenceHigh, got.Confidence)
	require.Equal(t, 84.0, got.Score)
}

func TestCacheFamilyTransfer(t *testing.T) {
	s := store.NewMemoryStore()
	// Only a sibling model has evidence, three samples strong.
	seed(t, s, "what is the capital of france", "gpt-4o-mini", "factual_qa", 80, 3)

	c := NewCacheStrategy(s, nil)
	got := c.Lookup(context.Background(), "what is the capital of france", "gpt-4o", "factual_qa", models.ConfidenceMedium)
	require.NotNil(t, got)
	require.Equal(t, models.CacheSourceModelFamily, got.Source)
	require.Equal(t, models.MethodFamilyTransfer, got.Method)
	require.Equal(t, models.ConfidenceMedium, got.Confidence)
	// openai_gpt4 transfer confidence is 0.85.
	require.InDelta(t, 68.0, got.Score, 1e-9)
	require.InDelta(t, -12.0, got.Adjustment, 1e-9)
	require.Equal(t, 3, got.SampleCount)
	require.Contains(t, got.Reasoning, "gpt-4o-mini")
}

func TestCacheFamilyTransferNeedsSamples(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "what is the capital of france", "gpt-4o-mini", "factual_qa", 80, 2)

	c := NewCacheStrategy(s, nil)
	got := c.Lookup(context.Background(), "what is the capital of france", "gpt-4o", "factual_qa", models.ConfidenceMedium)
	require.Nil(t, got)
}

func TestCacheExactBeatsFamily(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "what is the capital of france", "gpt-4o", "factual_qa", 95, 1)
	seed(t, s, "what is the capital of france", "gpt-4o-mini", "factual_qa", 40, 5)

	c := NewCacheStrategy(s, nil)
	got := c.Lookup(context.Background(), "what is the capital of france", "gpt-4o", "factual_qa", models.ConfidenceMedium)
	require.NotNil(t, got)
	require.Equal(t, models.CacheSourceExactMatch, got.Source)
	require.Equal(t, 95.0, got.Score)
}

func TestCacheMinConfidenceRejectsFamily(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "what is the capital of france", "gpt-4o-mini", "factual_qa", 80, 3)

	c := NewCacheStrategy(s, nil)
	got := c.Lookup(context.Background(), "what is the capital of france", "gpt-4o", "factual_qa", models.ConfidenceHigh)
	require.Nil(t, got)
}

func TestCacheEmptyStoreMiss(t *testing.T) {
	c := NewCacheStrategy(store.NewMemoryStore(), nil)
	got := c.Lookup(context.Background(), "anything", "gpt-4o", "general", models.ConfidenceLow)
	require.Nil(t, got)
}

func TestCacheBaselineLookupCounter(t *testing.T) {
	c := NewCacheStrategy(store.NewMemoryStore(), nil)

	// A low-confidence lookup that misses everywhere reaches the baseline
	// level and is counted.
	got := c.Lookup(context.Background(), "anything", "gpt-4o", "general", models.ConfidenceLow)
	require.Nil(t, got)
	require.Equal(t, 1, c.BaselineLookups())

	// A medium-confidence lookup never reaches the baseline level.
	got = c.Lookup(context.Background(), "anything", "gpt-4o", "general", models.ConfidenceMedium)
	require.Nil(t, got)
	require.Equal(t, 1, c.BaselineLookups())
}

type failingStore struct{}

func (failingStore) StoreValidation(context.Context, store.Record) error { return errors.New("down") }
func (failingStore) FindSimilar(context.Context, store.Query) (*store.SimilarResult, error) {
	return nil, errors.New("down")
}
func (failingStore) Stats(context.Context) (store.Stats, error) {
	return store.Stats{}, errors.New("down")
}
func (failingStore) Close() error { return nil }

func TestCacheStoreErrorIsMiss(t *testing.T) {
	c := NewCacheStrategy(failingStore{}, nil)
	got := c.Lookup(context.Background(), "anything", "gpt-4o", "general", models.ConfidenceMedium)
	require.Nil(t, got)
}
