package models

import "time"

// ParetoPoint is one model's position on the cost-quality plane.
type ParetoPoint struct {
	Model     string  `json:"model"`
	Cost      float64 `json:"cost"`
	Quality   float64 `json:"quality"`
	IsOptimal bool    `json:"is_optimal"`
}

// Recommendation is the value-ranked model switch suggestion, annotated
// with supporting evidence and risks.
type Recommendation struct {
	RecommendedModel string     `json:"recommended_model"`
	Confidence       Confidence `json:"confidence"`

	BaselineModel      string  `json:"baseline_model"`
	CostSavingsPct     float64 `json:"cost_savings_pct"`
	CostSavingsUSDPer1K float64 `json:"cost_savings_usd_per_1k"`
	QualityRetentionPct float64 `json:"quality_retention_pct"`

	Reasoning     string   `json:"reasoning"`
	TestedOnCalls int      `json:"tested_on_calls"`
	Risks         []string `json:"risks"`
}

// AnalysisReport bundles everything a replay run produces.
type AnalysisReport struct {
	Summary        map[string]QualityMetrics `json:"summary"`
	ParetoFrontier []ParetoPoint             `json:"pareto_frontier"`
	Recommendation Recommendation            `json:"recommendation"`
	AllResults     []ReplayResult            `json:"all_results"`
	GeneratedAt    time.Time                 `json:"generated_at"`
}
