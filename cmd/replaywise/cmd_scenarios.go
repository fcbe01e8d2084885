package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/replaywise/replaywise/internal/config"
	"github.com/replaywise/replaywise/internal/scenario"
)

func newScenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List scenario tags and their validation policies",
		Args:  cobra.NoArgs,
		RunE:  scenariosCommandE,
	}
}

func scenariosCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	policies := scenario.NewPolicyTable()
	if cfg.PolicyOverrides != "" {
		if err := policies.LoadOverrides(cfg.PolicyOverrides); err != nil {
			return fmt.Errorf("loading policy overrides: %w", err)
		}
	}

	for _, tag := range scenario.Scenarios() {
		p := policies.Get(tag)
		fmt.Printf("%s\n", tag)
		fmt.Printf("  cache TTL: %dd  similarity: %.2f  min samples: %d\n",
			p.CacheTTLDays, p.SimilarityThreshold, p.MinSamplesForTransfer)
		fmt.Printf("  judge: %s tier at %.0f%% sampling\n", p.JudgeTier, p.LLMJudgeRate*100)
		fmt.Printf("  weights: judge %.2f  heuristic %.2f  db %.2f\n",
			p.LLMJudgeWeight, p.HeuristicWeight, p.DBWeight)
		if len(p.PreferredModels) > 0 {
			fmt.Printf("  preferred: %s\n", strings.Join(p.PreferredModels, ", "))
		}
		if len(p.AvoidModels) > 0 {
			fmt.Printf("  avoid: %s\n", strings.Join(p.AvoidModels, ", "))
		}
	}
	return nil
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known model families and transfer confidence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, family := range scenario.Families() {
				fmt.Printf("%s (transfer confidence %.0f%%)\n",
					family, scenario.TransferConfidence(family)*100)
				for _, m := range scenario.FamilyModels(family) {
					fmt.Printf("  %s\n", m)
				}
			}
			return nil
		},
	}
}
