// Package pricing computes per-call USD costs from token counts. The
// primary implementation asks a pricing API and caches answers; every path
// degrades to a static table so cost accounting never fails a replay.
package pricing

import (
	"context"
	"strings"
)

// Service turns token counts into a USD cost estimate. Implementations
// never fail; unknown models get a flat moderate estimate.
type Service interface {
	Cost(ctx context.Context, provider, model string, promptTokens, completionTokens, cacheReadTokens int) float64
}

// modelRate is USD per 1M tokens.
type modelRate struct {
	match  string
	input  float64
	output float64
}

// staticRates is ordered most-specific-first so "gpt-4o-mini" is not
// swallowed by the "gpt-4o" entry. Rates as of early 2026.
var staticRates = []modelRate{
	{match: "gpt-4o-mini", input: 0.15, output: 0.60},
	{match: "gpt-4o", input: 2.50, output: 10.00},
	{match: "gpt-4-turbo", input: 10.00, output: 30.00},
	{match: "gpt-4", input: 30.00, output: 60.00},
	{match: "gpt-3.5-turbo", input: 0.50, output: 1.50},
	{match: "claude-3-5-sonnet", input: 3.00, output: 15.00},
	{match: "claude-3-5-haiku", input: 0.80, output: 4.00},
	{match: "claude-3-opus", input: 15.00, output: 75.00},
	{match: "claude-3-sonnet", input: 3.00, output: 15.00},
	{match: "claude-3-haiku", input: 0.25, output: 1.25},
	{match: "gemini-2.0-flash", input: 0.075, output: 0.30},
	{match: "gemini-1.5-pro", input: 1.25, output: 5.00},
	{match: "gemini-1.5-flash", input: 0.075, output: 0.30},
}

// flatRateUSDPerMillion is the last-resort estimate for unknown models.
const flatRateUSDPerMillion = 2.0

// estimate prices a call from the static table, falling back to the flat
// rate when the model is unknown.
func estimate(model string, promptTokens, completionTokens int) float64 {
	lower := strings.ToLower(model)
	for _, rate := range staticRates {
		if strings.Contains(lower, rate.match) {
			return float64(promptTokens)/1e6*rate.input + float64(completionTokens)/1e6*rate.output
		}
	}
	return float64(promptTokens+completionTokens) / 1e6 * flatRateUSDPerMillion
}

// Static is an offline Service backed only by the static table.
type Static struct{}

// NewStatic returns the offline pricing service.
func NewStatic() Static { return Static{} }

func (Static) Cost(_ context.Context, _ string, model string, promptTokens, completionTokens, _ int) float64 {
	return estimate(model, promptTokens, completionTokens)
}
