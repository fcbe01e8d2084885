// Package scoring aggregates replay results into per-model quality
// metrics and the composite quality score used for recommendations.
package scoring

import (
	"math"
	"sort"

	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/textsim"
)

// Quality score component weights.
const (
	weightConsistency = 0.40
	weightSchema      = 0.25
	weightSuccess     = 0.25
	weightLowRefusal  = 0.10
)

// AggregateMetrics rebuilds per-model QualityMetrics from scratch over a
// batch of replay results.
func AggregateMetrics(results []models.ReplayResult) map[string]models.QualityMetrics {
	byModel := make(map[string][]models.ReplayResult)
	for _, r := range results {
		byModel[r.Model] = append(byModel[r.Model], r)
	}

	metrics := make(map[string]models.QualityMetrics, len(byModel))
	for model, modelResults := range byModel {
		m := models.QualityMetrics{
			Model:      model,
			TotalCalls: len(modelResults),
		}

		var costs, latencies, validationScores []float64
		var refusals, schemaCompliant int

		for _, r := range modelResults {
			if r.IsRefusal {
				refusals++
			}
			if !r.Success {
				m.FailedCalls++
				continue
			}
			m.SuccessfulCalls++
			if r.CostUSD > 0 {
				costs = append(costs, r.CostUSD)
			}
			if r.LatencyMs > 0 {
				latencies = append(latencies, r.LatencyMs)
			}
			if r.SchemaValid {
				schemaCompliant++
			}
			if r.ValidationScore != nil {
				validationScores = append(validationScores, *r.ValidationScore)
			}
		}

		if m.TotalCalls > 0 {
			m.RefusalRate = float64(refusals) / float64(m.TotalCalls)
		}
		if len(costs) > 0 {
			m.AvgCostPerCall = mean(costs)
			for _, c := range costs {
				m.TotalCost += c
			}
		}
		if len(latencies) > 0 {
			m.AvgLatencyMs = mean(latencies)
			m.P50LatencyMs = percentile(latencies, 0.50)
			m.P95LatencyMs = percentile(latencies, 0.95)
		}
		if m.SuccessfulCalls > 0 {
			m.SchemaComplianceRate = float64(schemaCompliant) / float64(m.SuccessfulCalls)
		}
		if len(validationScores) > 0 {
			m.AvgValidationScore = mean(validationScores)
		}

		m.ConsistencyScore = consistencyScore(model, modelResults, results)

		metrics[model] = m
	}
	return metrics
}

// consistencyScore measures how closely a model's outputs track other
// models' outputs on the same prompts: the mean blended similarity over
// all cross-model pairs. A model with no peer to compare against scores
// 0.5; a model that never succeeded scores 0.0.
func consistencyScore(model string, modelResults, allResults []models.ReplayResult) float64 {
	succeeded := false
	for _, r := range modelResults {
		if r.Success && r.Output != "" {
			succeeded = true
			break
		}
	}
	if !succeeded {
		return 0.0
	}

	// Peer outputs per prompt, excluding this model.
	peers := make(map[string][]string)
	for _, r := range allResults {
		if r.Model == model || !r.Success || r.Output == "" {
			continue
		}
		peers[r.PromptID] = append(peers[r.PromptID], r.Output)
	}

	var sum float64
	var pairs int
	for _, r := range modelResults {
		if !r.Success || r.Output == "" {
			continue
		}
		for _, peer := range peers[r.PromptID] {
			sum += textsim.Blended(r.Output, peer)
			pairs++
		}
	}

	if pairs == 0 {
		return 0.5
	}
	return sum / float64(pairs)
}

// QualityScore folds a model's metrics into one [0, 1] score.
func QualityScore(m models.QualityMetrics) float64 {
	quality := m.ConsistencyScore*weightConsistency +
		m.SchemaComplianceRate*weightSchema +
		m.SuccessRate()*weightSuccess +
		(1.0-m.RefusalRate)*weightLowRefusal
	return models.ClampUnit(quality)
}

// percentile is nearest-rank: the value at rank ceil(p*N) of the sorted
// data.
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	sorted := append([]float64{}, data...)
	sort.Float64s(sorted)

	rank := int(math.Ceil(p * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

func mean(data []float64) float64 {
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}
