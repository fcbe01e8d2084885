package judge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/pricing"
	"github.com/replaywise/replaywise/internal/provider"
)

const (
	evaluationTimeout = 30 * time.Second

	evaluationMaxTokens = 500
	comparisonMaxTokens = 300
)

// LLMJudge evaluates outputs by asking a stronger model to grade them.
type LLMJudge struct {
	provider provider.CompletionProvider
	pricing  pricing.Service
	tier     string
	logger   *slog.Logger
}

// NewLLMJudge builds a judge using the given tier (Tier1..Tier3).
func NewLLMJudge(p provider.CompletionProvider, pr pricing.Service, tier string, logger *slog.Logger) (*LLMJudge, error) {
	if _, ok := tiers[tier]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMJudge{provider: p, pricing: pr, tier: tier, logger: logger}, nil
}

// Evaluate grades one output. Malformed judge responses are errors; callers
// decide whether to degrade to Fallback.
func (j *LLMJudge) Evaluate(ctx context.Context, promptText, output, modelName string) (*Evaluation, error) {
	cfg := tiers[j.tier]

	ctx, cancel := context.WithTimeout(ctx, evaluationTimeout)
	defer cancel()

	completion, err := j.provider.Complete(ctx, provider.Request{
		Model:    cfg.model,
		Provider: cfg.provider,
		Messages: []models.Message{
			{Role: "user", Content: evaluationPrompt(promptText, output, modelName)},
		},
		Temperature: 0,
		MaxTokens:   evaluationMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("judge completion failed: %w", err)
	}

	eval, err := parseEvaluation(completion.Text)
	if err != nil {
		return nil, err
	}

	if j.pricing != nil {
		eval.CostUSD = j.pricing.Cost(ctx, cfg.provider, cfg.model, completion.PromptTokens, completion.CompletionTokens, 0)
	}

	j.logger.Debug("judge evaluation complete",
		"judge_model", cfg.model,
		"evaluated_model", modelName,
		"score", eval.Score,
		"cost_usd", eval.CostUSD)

	return eval, nil
}

// ComparePair asks the judge which of two outputs answers the prompt
// better.
func (j *LLMJudge) ComparePair(ctx context.Context, promptText, modelA, outputA, modelB, outputB string) (*Comparison, error) {
	cfg := tiers[j.tier]

	ctx, cancel := context.WithTimeout(ctx, evaluationTimeout)
	defer cancel()

	completion, err := j.provider.Complete(ctx, provider.Request{
		Model:    cfg.model,
		Provider: cfg.provider,
		Messages: []models.Message{
			{Role: "user", Content: comparisonPrompt(promptText, modelA, outputA, modelB, outputB)},
		},
		Temperature: 0,
		MaxTokens:   comparisonMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("judge comparison failed: %w", err)
	}

	body := extractJSON(completion.Text)
	if !gjson.Valid(body) || !gjson.Get(body, "winner").Exists() {
		return nil, fmt.Errorf("judge returned unparseable comparison for %s vs %s", modelA, modelB)
	}

	winner, loser := modelA, modelB
	if strings.EqualFold(gjson.Get(body, "winner").String(), "model_b") {
		winner, loser = modelB, modelA
	}

	return &Comparison{
		Winner:     winner,
		Loser:      loser,
		Confidence: models.Confidence(strings.ToUpper(gjson.Get(body, "confidence").String())),
		Margin:     gjson.Get(body, "margin").Float(),
		Reasoning:  gjson.Get(body, "reasoning").String(),
	}, nil
}

// parseEvaluation reads the judge's JSON, tolerating fenced or
// prose-wrapped responses.
func parseEvaluation(text string) (*Evaluation, error) {
	body := extractJSON(text)
	if !gjson.Valid(body) || !gjson.Get(body, "score").Exists() {
		return nil, fmt.Errorf("judge returned unparseable evaluation")
	}

	eval := &Evaluation{
		Score:                models.ClampScore(gjson.Get(body, "score").Float()),
		Correctness:          models.ClampScore(gjson.Get(body, "correctness").Float()),
		Helpfulness:          models.ClampScore(gjson.Get(body, "helpfulness").Float()),
		InstructionFollowing: models.ClampScore(gjson.Get(body, "instruction_following").Float()),
		Reasoning:            gjson.Get(body, "reasoning").String(),
	}
	for _, s := range gjson.Get(body, "strengths").Array() {
		eval.Strengths = append(eval.Strengths, s.String())
	}
	for _, w := range gjson.Get(body, "weaknesses").Array() {
		eval.Weaknesses = append(eval.Weaknesses, w.String())
	}
	return eval, nil
}

// extractJSON pulls the outermost JSON object out of a judge response that
// may wrap it in markdown fences or prose.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}
