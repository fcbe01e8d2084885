package validator

import (
	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/scenario"
)

// Combine merges the available signals into one 0-100 score using the
// scenario policy's weights. Absent signals drop out entirely: the
// denominator is the sum of the weights actually used. No signals at all
// yields the neutral 50. Pure function.
func Combine(judgeScore, heuristicScore, dbScore *float64, policy scenario.Policy) float64 {
	var scores, weights []float64

	if judgeScore != nil {
		scores = append(scores, *judgeScore)
		weights = append(weights, policy.LLMJudgeWeight)
	}
	if heuristicScore != nil {
		scores = append(scores, *heuristicScore)
		weights = append(weights, policy.HeuristicWeight)
	}
	if dbScore != nil {
		scores = append(scores, *dbScore)
		weights = append(weights, policy.DBWeight)
	}

	if len(scores) == 0 {
		return 50.0
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight == 0 {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		return models.ClampScore(sum / float64(len(scores)))
	}

	var weightedSum float64
	for i, s := range scores {
		weightedSum += s * weights[i]
	}
	return models.ClampScore(weightedSum / totalWeight)
}
