// Package judge implements LLM-as-a-judge evaluation of model outputs.
package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/scenario"
)

// ErrUnknownTier is returned for a judge tier outside the known set.
var ErrUnknownTier = errors.New("unknown judge tier")

// Evaluation is a judge's assessment of one output.
type Evaluation struct {
	Score                float64  `json:"score"`
	Correctness          float64  `json:"correctness"`
	Helpfulness          float64  `json:"helpfulness"`
	InstructionFollowing float64  `json:"instruction_following"`
	Strengths            []string `json:"strengths,omitempty"`
	Weaknesses           []string `json:"weaknesses,omitempty"`
	Reasoning            string   `json:"reasoning"`
	CostUSD              float64  `json:"cost_usd"`
}

// Comparison is the outcome of a pairwise output comparison.
type Comparison struct {
	Winner     string            `json:"winner"`
	Loser      string            `json:"loser"`
	Confidence models.Confidence `json:"confidence"`
	Margin     float64           `json:"margin"`
	Reasoning  string            `json:"reasoning"`
}

// Judge evaluates a single (prompt, output) pair.
type Judge interface {
	Evaluate(ctx context.Context, promptText, output, modelName string) (*Evaluation, error)
}

// Tier identifiers, strongest first.
const (
	Tier1 = "tier_1"
	Tier2 = "tier_2"
	Tier3 = "tier_3"
)

type tierConfig struct {
	model    string
	provider string
}

var tiers = map[string]tierConfig{
	Tier1: {model: "claude-3-5-sonnet-20250122", provider: "anthropic"},
	Tier2: {model: "gpt-4o", provider: "openai"},
	Tier3: {model: "gpt-4o-mini", provider: "openai"},
}

// ValidTier reports whether tier names a known judge tier.
func ValidTier(tier string) bool {
	_, ok := tiers[tier]
	return ok
}

// TierForPolicy maps a scenario policy judge tier (high, medium, low) to a
// concrete judge tier.
func TierForPolicy(policyTier string) (string, error) {
	switch policyTier {
	case scenario.JudgeTierHigh:
		return Tier1, nil
	case scenario.JudgeTierMedium:
		return Tier2, nil
	case scenario.JudgeTierLow:
		return Tier3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, policyTier)
	}
}

// Fallback is the neutral evaluation used when the judge is unavailable.
func Fallback(reason string) *Evaluation {
	return &Evaluation{
		Score:                50,
		Correctness:          50,
		Helpfulness:          50,
		InstructionFollowing: 50,
		Reasoning:            fmt.Sprintf("Evaluation failed: %s. Using neutral fallback score.", reason),
	}
}
