package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/replaywise/replaywise/internal/textsim"
)

// MemoryStore is an in-process Store for single-run and test use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// StoreValidation appends a record, assigning an ID when missing.
func (s *MemoryStore) StoreValidation(_ context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// FindSimilar averages the scores of the top q.Limit records for the same
// model and scenario, ranked by blended text similarity to q.PromptText.
// Returns (nil, nil) when no record matches the filters.
func (s *MemoryStore) FindSimilar(_ context.Context, q Query) (*SimilarResult, error) {
	if q.Limit <= 0 {
		q.Limit = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec Record
		sim float64
	}
	var candidates []scored
	for _, rec := range s.records {
		if rec.Model != q.Model || rec.Scenario != q.Scenario {
			continue
		}
		candidates = append(candidates, scored{
			rec: rec,
			sim: textsim.Blended(q.PromptText, rec.PromptText),
		})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})
	if len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}

	var sum float64
	for _, c := range candidates {
		sum += c.rec.Score
	}

	return &SimilarResult{
		AvgScore:   sum / float64(len(candidates)),
		Count:      len(candidates),
		Similarity: candidates[0].sim,
	}, nil
}

// Stats summarizes the current corpus.
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalRecords: len(s.records),
		ByScenario:   make(map[string]int),
		ByModel:      make(map[string]int),
	}
	for _, rec := range s.records {
		stats.ByScenario[rec.Scenario]++
		stats.ByModel[rec.Model]++
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
