package recommend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/scoring"
)

// metricsWithQuality builds metrics whose QualityScore is exactly q, with
// full success and schema compliance and consistency chosen to fit.
func metricsWithQuality(t *testing.T, q, avgCost float64, calls int) models.QualityMetrics {
	t.Helper()
	// q = 0.40*consistency + 0.25 + 0.25 + 0.10
	consistency := (q - 0.60) / 0.40
	require.GreaterOrEqual(t, consistency, 0.0)
	require.LessOrEqual(t, consistency, 1.0)

	m := models.QualityMetrics{
		TotalCalls:           calls,
		SuccessfulCalls:      calls,
		AvgCostPerCall:       avgCost,
		ConsistencyScore:     consistency,
		SchemaComplianceRate: 1.0,
	}
	require.InDelta(t, q, scoring.QualityScore(m), 1e-9)
	return m
}

func TestFindParetoFrontier(t *testing.T) {
	metrics := map[string]models.QualityMetrics{
		"cheap-good":     metricsWithQuality(t, 0.90, 1, 50),
		"pricey-better":  metricsWithQuality(t, 0.95, 2, 50),
		"cheap-mediocre": {TotalCalls: 50, SuccessfulCalls: 50, AvgCostPerCall: 1, ConsistencyScore: 0, SchemaComplianceRate: 0},
	}

	points := FindParetoFrontier(metrics)
	require.Len(t, points, 3)

	byModel := make(map[string]models.ParetoPoint)
	for _, p := range points {
		byModel[p.Model] = p
	}
	require.True(t, byModel["cheap-good"].IsOptimal)
	require.True(t, byModel["pricey-better"].IsOptimal)
	// Same cost as cheap-good but strictly worse quality.
	require.False(t, byModel["cheap-mediocre"].IsOptimal)

	// Sorted by ascending cost.
	require.Equal(t, 1.0, points[0].Cost)
	require.Equal(t, 2.0, points[len(points)-1].Cost)
}

func TestRecommendRejectsBelowQualityFloor(t *testing.T) {
	metrics := map[string]models.QualityMetrics{
		"baseline": metricsWithQuality(t, 0.95, 10, 100),
		// 0.90 is below the 0.9025 floor (0.95 * 0.95).
		"too-lossy": metricsWithQuality(t, 0.90, 5, 100),
	}

	rec, err := Recommend(metrics, Options{})
	require.NoError(t, err)
	require.Equal(t, "baseline", rec.RecommendedModel)
	require.Equal(t, "baseline", rec.BaselineModel)
	require.Zero(t, rec.CostSavingsPct)
	require.Equal(t, 100.0, rec.QualityRetentionPct)
}

func TestRecommendAcceptsGoodCandidate(t *testing.T) {
	metrics := map[string]models.QualityMetrics{
		"baseline":  metricsWithQuality(t, 0.95, 10, 100),
		"too-lossy": metricsWithQuality(t, 0.90, 5, 100),
		"good-deal": metricsWithQuality(t, 0.93, 3, 60),
	}

	rec, err := Recommend(metrics, Options{})
	require.NoError(t, err)
	require.Equal(t, "good-deal", rec.RecommendedModel)
	require.Equal(t, "baseline", rec.BaselineModel)
	require.InDelta(t, 70.0, rec.CostSavingsPct, 1e-9)
	require.InDelta(t, 97.9, rec.QualityRetentionPct, 0.05)
	require.InDelta(t, 7000.0, rec.CostSavingsUSDPer1K, 1e-9)
	require.Equal(t, models.ConfidenceHigh, rec.Confidence)
	require.Equal(t, 60, rec.TestedOnCalls)
}

func TestRecommendRanksByValue(t *testing.T) {
	metrics := map[string]models.QualityMetrics{
		"baseline": metricsWithQuality(t, 0.95, 10, 100),
		// value = 0.94 * 50 = 47
		"modest-savings": metricsWithQuality(t, 0.94, 5, 100),
		// value = 0.91 * 80 = 72.8
		"deep-savings": metricsWithQuality(t, 0.91, 2, 100),
	}

	rec, err := Recommend(metrics, Options{})
	require.NoError(t, err)
	require.Equal(t, "deep-savings", rec.RecommendedModel)
}

func TestRecommendBaselineIsHighestQualityWithSuccess(t *testing.T) {
	neverSucceeded := models.QualityMetrics{TotalCalls: 10, AvgCostPerCall: 50, ConsistencyScore: 1, SchemaComplianceRate: 1}
	metrics := map[string]models.QualityMetrics{
		"broken-expensive": neverSucceeded,
		"works":            metricsWithQuality(t, 0.92, 4, 40),
		"works-cheaper":    metricsWithQuality(t, 0.90, 2, 40),
	}

	rec, err := Recommend(metrics, Options{})
	require.NoError(t, err)
	require.Equal(t, "works", rec.BaselineModel)
	require.Equal(t, "works-cheaper", rec.RecommendedModel)
}

func TestRecommendNoSuccessfulModel(t *testing.T) {
	metrics := map[string]models.QualityMetrics{
		"a": {TotalCalls: 5},
		"b": {TotalCalls: 5},
	}
	_, err := Recommend(metrics, Options{})
	require.ErrorIs(t, err, ErrNoSuccessfulModel)
}

func TestRecommendEmpty(t *testing.T) {
	_, err := Recommend(nil, Options{})
	require.ErrorIs(t, err, ErrNoMetrics)
}

func TestRecommendRisks(t *testing.T) {
	baseline := metricsWithQuality(t, 0.95, 10, 100)
	baseline.AvgLatencyMs = 400
	baseline.ConsistencyScore = (0.95 - 0.60) / 0.40

	risky := metricsWithQuality(t, 0.93, 3, 5)
	risky.AvgLatencyMs = 900

	rec, err := Recommend(map[string]models.QualityMetrics{
		"baseline": baseline,
		"risky":    risky,
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, "risky", rec.RecommendedModel)
	require.Equal(t, models.ConfidenceLow, rec.Confidence)

	var latencyRisk, sampleRisk bool
	for _, r := range rec.Risks {
		if r == "Latency increase: 900ms vs 400ms baseline" {
			latencyRisk = true
		}
		if r == "Limited test sample: Only 5 calls analyzed" {
			sampleRisk = true
		}
	}
	require.True(t, latencyRisk)
	require.True(t, sampleRisk)
}
