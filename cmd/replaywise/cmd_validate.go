package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/replaywise/replaywise/internal/config"
	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/validator"
)

var (
	validatePrompt     string
	validateModel      string
	validateOutputFile string
	validateForceJudge bool
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [output text]",
		Short: "Validate a single model output",
		Long: `Score one model output through the hybrid validation pipeline:
historical cache, heuristic checks, and an optional LLM judge.

The output comes from the argument or from --output-file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: validateCommandE,
	}

	cmd.Flags().StringVarP(&validatePrompt, "prompt", "p", "", "Prompt text the output answered (required)")
	cmd.Flags().StringVarP(&validateModel, "model", "m", "", "Model that produced the output (required)")
	cmd.Flags().StringVar(&validateOutputFile, "output-file", "", "Read the output text from a file")
	cmd.Flags().BoolVar(&validateForceJudge, "force-judge", false, "Always consult the LLM judge, bypassing sampling")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	output, err := resolveOutputText(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	pipe, err := buildPipeline(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer pipe.Close()

	prompt := models.NewPrompt(models.Message{Role: "user", Content: validatePrompt})
	score := pipe.validator.Validate(cmd.Context(), prompt, output, validateModel, validator.Options{
		ForceJudge: validateForceJudge,
	})

	data, err := json.MarshalIndent(score, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding score: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func resolveOutputText(args []string) (string, error) {
	if validateOutputFile != "" {
		data, err := os.ReadFile(validateOutputFile)
		if err != nil {
			return "", fmt.Errorf("reading output file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", fmt.Errorf("provide the output text as an argument or via --output-file")
}
