package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/replaywise/replaywise/internal/config"
	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/recommend"
	"github.com/replaywise/replaywise/internal/scoring"
)

var (
	analyzeModels         []string
	analyzeOutput         string
	analyzeWorkers        int
	analyzeMaxQualityLoss float64
	analyzeNoJudge        bool
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <prompts.yaml>",
		Short: "Replay prompts across models and recommend the best value",
		Long: `Replay a prompt set against candidate models, validate every output,
and produce a cost-quality analysis with a switch recommendation.

Models come from --model flags or the models list in .replaywise.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: analyzeCommandE,
	}

	cmd.Flags().StringArrayVarP(&analyzeModels, "model", "m", nil, "Candidate model (can be repeated, overrides config)")
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output JSON file for the analysis report")
	cmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Number of concurrent replay workers (overrides config)")
	cmd.Flags().Float64Var(&analyzeMaxQualityLoss, "max-quality-loss", 0, "Tolerated quality drop vs baseline, 0-1 (overrides config)")
	cmd.Flags().BoolVar(&analyzeNoJudge, "no-judge", false, "Disable LLM judge evaluation for this run")

	return cmd
}

func analyzeCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	// CLI flags override config
	if analyzeWorkers > 0 {
		cfg.Replay.Workers = analyzeWorkers
	}
	if analyzeMaxQualityLoss > 0 {
		cfg.Recommend.MaxQualityLoss = analyzeMaxQualityLoss
	}
	if analyzeNoJudge {
		disabled := false
		cfg.Judge.Enabled = &disabled
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	modelList := cfg.Models
	if len(analyzeModels) > 0 {
		modelList = analyzeModels
	}
	if len(modelList) == 0 {
		return fmt.Errorf("no candidate models: pass --model or set models in .replaywise.yaml")
	}

	prompts, err := loadPrompts(args[0])
	if err != nil {
		return err
	}

	logger := slog.Default()
	pipe, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer pipe.Close()

	results, err := pipe.engine.ReplayBatch(cmd.Context(), prompts, modelList)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	metrics := scoring.AggregateMetrics(results)
	frontier := recommend.FindParetoFrontier(metrics)
	rec, err := recommend.Recommend(metrics, recommend.Options{
		MaxQualityLoss: cfg.Recommend.MaxQualityLoss,
	})
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	report := &models.AnalysisReport{
		Summary:        metrics,
		ParetoFrontier: frontier,
		Recommendation: *rec,
		AllResults:     results,
		GeneratedAt:    time.Now().UTC(),
	}

	if analyzeOutput != "" {
		if err := saveReport(report, analyzeOutput); err != nil {
			return err
		}
		fmt.Printf("Report saved to: %s\n", analyzeOutput)
	}

	fmt.Print(formatReport(report))

	stats := pipe.validator.Stats()
	fmt.Printf("Validation: %d heuristic, %d judge ($%.2f spent), %d cache hits\n",
		stats.HeuristicCalls, stats.JudgeCalls, stats.JudgeSpendUSD, stats.DBHits)

	return nil
}

func saveReport(report *models.AnalysisReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
