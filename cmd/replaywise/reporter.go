package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/scoring"
)

// formatReport renders an analysis report for the terminal.
func formatReport(report *models.AnalysisReport) string {
	var b strings.Builder

	b.WriteString("\nModel Comparison\n")
	b.WriteString(fmt.Sprintf("%-28s %10s %8s %9s %9s %8s\n",
		"MODEL", "COST/CALL", "QUALITY", "SUCCESS", "LATENCY", "PARETO"))

	optimal := make(map[string]bool, len(report.ParetoFrontier))
	for _, p := range report.ParetoFrontier {
		optimal[p.Model] = p.IsOptimal
	}

	names := make([]string, 0, len(report.Summary))
	for model := range report.Summary {
		names = append(names, model)
	}
	sort.Strings(names)

	for _, model := range names {
		m := report.Summary[model]
		mark := ""
		if optimal[model] {
			mark = "*"
		}
		b.WriteString(fmt.Sprintf("%-28s %10s %8.3f %8.1f%% %7.0fms %8s\n",
			model,
			fmt.Sprintf("$%.6f", m.AvgCostPerCall),
			scoring.QualityScore(m),
			m.SuccessRate()*100,
			m.AvgLatencyMs,
			mark))
	}
	b.WriteString("\n* on the cost-quality Pareto frontier\n")

	rec := report.Recommendation
	b.WriteString("\nRecommendation\n")
	if rec.RecommendedModel == rec.BaselineModel {
		b.WriteString(fmt.Sprintf("  Keep %s. %s\n", rec.BaselineModel, rec.Reasoning))
	} else {
		b.WriteString(fmt.Sprintf("  Switch %s -> %s (%s confidence)\n",
			rec.BaselineModel, rec.RecommendedModel, rec.Confidence))
		b.WriteString(fmt.Sprintf("  Savings: %.1f%% ($%.2f per 1k calls), quality retention %.1f%%\n",
			rec.CostSavingsPct, rec.CostSavingsUSDPer1K, rec.QualityRetentionPct))
		b.WriteString(fmt.Sprintf("  %s\n", rec.Reasoning))
	}
	for _, risk := range rec.Risks {
		b.WriteString(fmt.Sprintf("  Risk: %s\n", risk))
	}
	b.WriteString("\n")

	return b.String()
}
