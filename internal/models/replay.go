package models

import "time"

// ReplayResult is the outcome of replaying one prompt against one model,
// including cost/latency accounting and the attached validation fields.
type ReplayResult struct {
	PromptID string `json:"prompt_id"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`

	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`

	LatencyMs float64 `json:"latency_ms"`

	IsRefusal   bool `json:"is_refusal"`
	SchemaValid bool `json:"schema_valid"`

	ValidationScore      *float64   `json:"validation_score,omitempty"`
	ValidationMethod     string     `json:"validation_method,omitempty"`
	ValidationConfidence Confidence `json:"validation_confidence,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// QualityMetrics is the per-model aggregate over a batch of replay results.
// It is rebuilt from scratch on every aggregation pass.
type QualityMetrics struct {
	Model           string  `json:"model"`
	TotalCalls      int     `json:"total_calls"`
	SuccessfulCalls int     `json:"successful_calls"`
	FailedCalls     int     `json:"failed_calls"`
	RefusalRate     float64 `json:"refusal_rate"`

	AvgCostPerCall float64 `json:"avg_cost_per_call"`
	TotalCost      float64 `json:"total_cost"`

	AvgLatencyMs float64 `json:"avg_latency_ms"`
	P50LatencyMs float64 `json:"p50_latency_ms"`
	P95LatencyMs float64 `json:"p95_latency_ms"`

	ConsistencyScore     float64 `json:"consistency_score"`
	SchemaComplianceRate float64 `json:"schema_compliance_rate"`
	AvgValidationScore   float64 `json:"avg_validation_score"`
}

// SuccessRate returns the fraction of calls that succeeded.
func (m QualityMetrics) SuccessRate() float64 {
	if m.TotalCalls == 0 {
		return 0
	}
	return float64(m.SuccessfulCalls) / float64(m.TotalCalls)
}
