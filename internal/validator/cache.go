// Package validator implements the tiered validation pipeline: cache
// lookup, heuristic gate, budget-gated LLM judge, and ensemble scoring.
package validator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/scenario"
	"github.com/replaywise/replaywise/internal/store"
)

// Similarity thresholds for the first two cache levels.
const (
	exactMatchSimilarity      = 0.95
	scenarioSimilarSimilarity = 0.85

	// minFamilySamples gates family transfer on having enough evidence
	// from the source model.
	minFamilySamples = 3
)

// CacheStrategy performs the four-level confidence-ranked cache lookup.
// Levels, most to least specific: exact match, similar prompt on the same
// model, family transfer from a sibling model, scenario baseline.
type CacheStrategy struct {
	store  store.Store
	logger *slog.Logger

	mu             sync.Mutex
	baselineLookups int
}

// NewCacheStrategy wraps a store. Store errors are treated as misses, not
// failures.
func NewCacheStrategy(s store.Store, logger *slog.Logger) *CacheStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheStrategy{store: s, logger: logger}
}

// Lookup walks the levels in order and returns the first hit whose
// confidence meets minConfidence, or nil.
func (c *CacheStrategy) Lookup(ctx context.Context, promptText, model, scenarioTag string, minConfidence models.Confidence) *models.CacheLookupResult {
	if result := c.exactMatch(ctx, promptText, model, scenarioTag); result != nil && result.Confidence.AtLeast(minConfidence) {
		return result
	}
	if result := c.scenarioSimilar(ctx, promptText, model, scenarioTag); result != nil && result.Confidence.AtLeast(minConfidence) {
		return result
	}
	if result := c.modelFamily(ctx, promptText, model, scenarioTag); result != nil && result.Confidence.AtLeast(minConfidence) {
		return result
	}
	if minConfidence == models.ConfidenceLow {
		if result := c.scenarioBaseline(ctx, scenarioTag); result != nil {
			return result
		}
	}
	return nil
}

func (c *CacheStrategy) findSimilar(ctx context.Context, q store.Query) *store.SimilarResult {
	result, err := c.store.FindSimilar(ctx, q)
	if err != nil {
		c.logger.Warn("cache lookup failed", "model", q.Model, "scenario", q.Scenario, "error", err)
		return nil
	}
	return result
}

func (c *CacheStrategy) exactMatch(ctx context.Context, promptText, model, scenarioTag string) *models.CacheLookupResult {
	result := c.findSimilar(ctx, store.Query{
		PromptText: promptText,
		Model:      model,
		Scenario:   scenarioTag,
		Limit:      1,
	})
	if result == nil || result.Similarity < exactMatchSimilarity {
		return nil
	}

	return &models.CacheLookupResult{
		Score:       result.AvgScore,
		Confidence:  models.ConfidenceHigh,
		Source:      models.CacheSourceExactMatch,
		Method:      models.MethodHistoricalDB,
		Reasoning:   fmt.Sprintf("Exact match found (similarity: %.2f)", result.Similarity),
		SampleCount: result.Count,
	}
}

func (c *CacheStrategy) scenarioSimilar(ctx context.Context, promptText, model, scenarioTag string) *models.CacheLookupResult {
	result := c.findSimilar(ctx, store.Query{
		PromptText: promptText,
		Model:      model,
		Scenario:   scenarioTag,
		Limit:      5,
	})
	if result == nil || result.Similarity < scenarioSimilarSimilarity {
		return nil
	}

	return &models.CacheLookupResult{
		Score:       result.AvgScore,
		Confidence:  models.ConfidenceHigh,
		Source:      models.CacheSourceScenarioSimilar,
		Method:      models.MethodHistoricalDB,
		Reasoning:   fmt.Sprintf("Similar prompt in same scenario (similarity: %.2f)", result.Similarity),
		SampleCount: result.Count,
	}
}

// modelFamily transfers evidence from sibling models, discounted by the
// family's transfer confidence.
func (c *CacheStrategy) modelFamily(ctx context.Context, promptText, model, scenarioTag string) *models.CacheLookupResult {
	family := scenario.Family(model)
	if family == scenario.FamilyUnknown {
		return nil
	}

	transferConfidence := scenario.TransferConfidence(family)

	for _, sibling := range scenario.FamilyModels(family) {
		if sibling == model {
			continue
		}

		result := c.findSimilar(ctx, store.Query{
			PromptText: promptText,
			Model:      sibling,
			Scenario:   scenarioTag,
			Limit:      3,
		})
		if result == nil || result.Count < minFamilySamples {
			continue
		}

		adjusted := result.AvgScore * transferConfidence
		return &models.CacheLookupResult{
			Score:       adjusted,
			Confidence:  models.ConfidenceMedium,
			Source:      models.CacheSourceModelFamily,
			Method:      models.MethodFamilyTransfer,
			Reasoning:   fmt.Sprintf("Transferred from %s (%d samples, %.0f%% confidence)", sibling, result.Count, transferConfidence*100),
			SampleCount: result.Count,
			Adjustment:  -(result.AvgScore - adjusted),
		}
	}
	return nil
}

// scenarioBaseline would answer from scenario-wide averages. The store does
// not aggregate those yet, so this level always misses; lookups reaching it
// are counted so Stats shows whether the level is ever reached.
// TODO: add a per-scenario average surface to store.Store and wire it here.
func (c *CacheStrategy) scenarioBaseline(context.Context, string) *models.CacheLookupResult {
	c.mu.Lock()
	c.baselineLookups++
	c.mu.Unlock()
	return nil
}

// BaselineLookups reports how often the scenario baseline level was reached.
func (c *CacheStrategy) BaselineLookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baselineLookups
}
