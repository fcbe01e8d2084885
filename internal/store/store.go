// Package store persists validation outcomes and serves the similarity
// lookups that back the tiered cache. Two backends exist: an in-memory
// store for single-process runs and a Redis store for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/replaywise/replaywise/internal/models"
)

// Record is one persisted validation outcome. Records are append-only.
type Record struct {
	ID         string            `json:"id"`
	PromptText string            `json:"prompt_text"`
	Output     string            `json:"output,omitempty"`
	Model      string            `json:"model"`
	Provider   string            `json:"provider,omitempty"`
	Scenario   string            `json:"scenario"`
	Score      float64           `json:"score"`
	Method     string            `json:"method"`
	Confidence models.Confidence `json:"confidence"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Query selects candidate records for a similarity lookup. Model and
// Scenario are exact filters; PromptText is compared by similarity.
type Query struct {
	PromptText string
	Model      string
	Scenario   string
	// Limit caps how many of the most similar records are averaged.
	Limit int
}

// SimilarResult is a similarity lookup hit. Similarity is the best match's
// blended similarity; AvgScore averages the top Limit matches.
type SimilarResult struct {
	AvgScore   float64
	Count      int
	Similarity float64
}

// Stats summarizes the stored corpus.
type Stats struct {
	TotalRecords int
	ByScenario   map[string]int
	ByModel      map[string]int
}

// Store is the persistence boundary for validation outcomes. FindSimilar
// returns (nil, nil) on a miss; callers treat store errors as cache misses
// rather than failures.
type Store interface {
	StoreValidation(ctx context.Context, rec Record) error
	FindSimilar(ctx context.Context, q Query) (*SimilarResult, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
