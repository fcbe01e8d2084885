// Package recommend turns per-model quality metrics into a cost-quality
// recommendation: the Pareto frontier plus a value-ranked switch
// suggestion.
package recommend

import (
	"errors"
	"fmt"
	"sort"

	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/scoring"
)

var (
	// ErrNoMetrics is returned when there is nothing to analyze.
	ErrNoMetrics = errors.New("no metrics to analyze")
	// ErrNoSuccessfulModel is returned when no model produced a single
	// successful call, so no baseline can be chosen.
	ErrNoSuccessfulModel = errors.New("no model with successful calls")
)

// DefaultMaxQualityLoss is the acceptable quality degradation when
// proposing a cheaper model.
const DefaultMaxQualityLoss = 0.05

// lowSampleThreshold flags candidates with too little evidence.
const lowSampleThreshold = 10

// Options tune the recommendation.
type Options struct {
	// MaxQualityLoss is the tolerated quality drop relative to the
	// baseline, as a fraction; 0 selects the default.
	MaxQualityLoss float64
}

// FindParetoFrontier marks the non-dominated cost-quality points. A point
// is dominated when another point is at least as good on both axes and
// strictly better on one. The result is sorted by ascending cost.
func FindParetoFrontier(metrics map[string]models.QualityMetrics) []models.ParetoPoint {
	points := make([]models.ParetoPoint, 0, len(metrics))
	for model, m := range metrics {
		points = append(points, models.ParetoPoint{
			Model:   model,
			Cost:    m.AvgCostPerCall,
			Quality: scoring.QualityScore(m),
		})
	}

	for i := range points {
		dominated := false
		for j := range points {
			if i == j {
				continue
			}
			other, point := points[j], points[i]
			if other.Cost <= point.Cost && other.Quality >= point.Quality &&
				(other.Cost < point.Cost || other.Quality > point.Quality) {
				dominated = true
				break
			}
		}
		points[i].IsOptimal = !dominated
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Cost != points[j].Cost {
			return points[i].Cost < points[j].Cost
		}
		return points[i].Model < points[j].Model
	})
	return points
}

type candidate struct {
	model               string
	cost                float64
	quality             float64
	savingsPct          float64
	qualityRetentionPct float64
	metrics             models.QualityMetrics
}

// Recommend picks the best value switch away from the baseline model. The
// baseline is the highest-quality model that succeeded at least once;
// candidates must be cheaper and retain quality within MaxQualityLoss.
// Candidates are ranked by value, quality times savings percentage.
func Recommend(metrics map[string]models.QualityMetrics, opts Options) (*models.Recommendation, error) {
	if len(metrics) == 0 {
		return nil, ErrNoMetrics
	}
	maxLoss := opts.MaxQualityLoss
	if maxLoss == 0 {
		maxLoss = DefaultMaxQualityLoss
	}

	baselineName, baselineMetrics, err := pickBaseline(metrics)
	if err != nil {
		return nil, err
	}
	baselineQuality := scoring.QualityScore(baselineMetrics)
	baselineCost := baselineMetrics.AvgCostPerCall

	minAcceptableQuality := baselineQuality * (1 - maxLoss)

	var candidates []candidate
	for model, m := range metrics {
		if model == baselineName {
			continue
		}
		quality := scoring.QualityScore(m)
		cost := m.AvgCostPerCall
		if quality < minAcceptableQuality || cost >= baselineCost {
			continue
		}

		c := candidate{
			model:      model,
			cost:       cost,
			quality:    quality,
			savingsPct: (baselineCost - cost) / baselineCost * 100,
			metrics:    m,
		}
		if baselineQuality > 0 {
			c.qualityRetentionPct = quality / baselineQuality * 100
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return &models.Recommendation{
			RecommendedModel:    baselineName,
			Confidence:          models.ConfidenceHigh,
			BaselineModel:       baselineName,
			CostSavingsPct:      0,
			QualityRetentionPct: 100,
			Reasoning:           fmt.Sprintf("%s is already the optimal choice. No cheaper alternatives maintain acceptable quality.", baselineName),
			TestedOnCalls:       baselineMetrics.TotalCalls,
		}, nil
	}

	// Best value first; ties broken by name for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		vi := candidates[i].quality * candidates[i].savingsPct
		vj := candidates[j].quality * candidates[j].savingsPct
		if vi != vj {
			return vi > vj
		}
		return candidates[i].model < candidates[j].model
	})
	best := candidates[0]

	return &models.Recommendation{
		RecommendedModel:    best.model,
		Confidence:          confidence(best.metrics, best.savingsPct),
		BaselineModel:       baselineName,
		CostSavingsPct:      best.savingsPct,
		CostSavingsUSDPer1K: (baselineCost - best.cost) * 1000,
		QualityRetentionPct: best.qualityRetentionPct,
		Reasoning: fmt.Sprintf(
			"%s offers %.1f%% cost savings while maintaining %.1f%% quality retention. Validated on %d test calls with %.1f%% success rate.",
			best.model, best.savingsPct, best.qualityRetentionPct, best.metrics.TotalCalls, best.metrics.SuccessRate()*100),
		TestedOnCalls: best.metrics.TotalCalls,
		Risks:         identifyRisks(best.metrics, baselineMetrics),
	}, nil
}

// pickBaseline selects the highest-quality model with at least one
// successful call; ties go to the cheaper model.
func pickBaseline(metrics map[string]models.QualityMetrics) (string, models.QualityMetrics, error) {
	var (
		bestName    string
		bestMetrics models.QualityMetrics
		bestQuality float64
		found       bool
	)
	for model, m := range metrics {
		if m.SuccessfulCalls == 0 {
			continue
		}
		quality := scoring.QualityScore(m)
		better := quality > bestQuality ||
			(quality == bestQuality && m.AvgCostPerCall < bestMetrics.AvgCostPerCall) ||
			(quality == bestQuality && m.AvgCostPerCall == bestMetrics.AvgCostPerCall && model < bestName)
		if !found || better {
			bestName, bestMetrics, bestQuality, found = model, m, quality, true
		}
	}
	if !found {
		return "", models.QualityMetrics{}, ErrNoSuccessfulModel
	}
	return bestName, bestMetrics, nil
}

func confidence(m models.QualityMetrics, savingsPct float64) models.Confidence {
	successRate := m.SuccessRate()
	switch {
	case m.TotalCalls >= 50 && m.RefusalRate < 0.05 && successRate > 0.9 && savingsPct > 30:
		return models.ConfidenceHigh
	case m.TotalCalls >= 20 && m.RefusalRate < 0.10 && successRate > 0.8:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func identifyRisks(candidate, baseline models.QualityMetrics) []string {
	var risks []string

	if candidate.AvgLatencyMs > baseline.AvgLatencyMs*1.5 {
		risks = append(risks, fmt.Sprintf(
			"Latency increase: %.0fms vs %.0fms baseline",
			candidate.AvgLatencyMs, baseline.AvgLatencyMs))
	}
	if candidate.RefusalRate > baseline.RefusalRate*2 {
		risks = append(risks, fmt.Sprintf(
			"Higher refusal rate: %.1f%% vs %.1f%% baseline",
			candidate.RefusalRate*100, baseline.RefusalRate*100))
	}
	if candidate.ConsistencyScore < baseline.ConsistencyScore*0.9 {
		risks = append(risks, fmt.Sprintf(
			"Lower output consistency: %.2f vs %.2f baseline",
			candidate.ConsistencyScore, baseline.ConsistencyScore))
	}
	if candidate.TotalCalls < lowSampleThreshold {
		risks = append(risks, fmt.Sprintf(
			"Limited test sample: Only %d calls analyzed", candidate.TotalCalls))
	}

	return risks
}
