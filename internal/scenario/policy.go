package scenario

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Judge tiers selectable per scenario.
const (
	JudgeTierHigh   = "high"
	JudgeTierMedium = "medium"
	JudgeTierLow    = "low"
)

// Policy holds the per-scenario validation knobs. All weights are relative:
// the ensemble divides by the sum of the weights actually used.
type Policy struct {
	CacheTTLDays          int     `yaml:"cache_ttl_days" mapstructure:"cache_ttl_days"`
	MinSamplesForTransfer int     `yaml:"min_samples_for_transfer" mapstructure:"min_samples_for_transfer"`
	SimilarityThreshold   float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`

	LLMJudgeRate float64 `yaml:"llm_judge_rate" mapstructure:"llm_judge_rate"`
	JudgeTier    string  `yaml:"judge_tier" mapstructure:"judge_tier"`

	HeuristicWeight    float64 `yaml:"heuristic_weight" mapstructure:"heuristic_weight"`
	DBWeight           float64 `yaml:"db_weight" mapstructure:"db_weight"`
	LLMJudgeWeight     float64 `yaml:"llm_judge_weight" mapstructure:"llm_judge_weight"`
	MinConfidenceScore float64 `yaml:"min_confidence_score" mapstructure:"min_confidence_score"`

	PreferredModels []string `yaml:"preferred_models" mapstructure:"preferred_models"`
	AvoidModels     []string `yaml:"avoid_models" mapstructure:"avoid_models"`
}

// defaultPolicies is the built-in policy table. General is the mandatory
// fallback row and must always be present.
var defaultPolicies = map[string]Policy{
	CodeGeneration: {
		CacheTTLDays:          7,
		MinSamplesForTransfer: 5,
		SimilarityThreshold:   0.80,
		LLMJudgeRate:          0.20,
		JudgeTier:             JudgeTierHigh,
		HeuristicWeight:       0.40,
		DBWeight:              0.60,
		LLMJudgeWeight:        0.60,
		MinConfidenceScore:    85,
		PreferredModels:       []string{"gpt-4o", "claude-3-5-sonnet"},
	},
	FactualQA: {
		CacheTTLDays:          90,
		MinSamplesForTransfer: 3,
		SimilarityThreshold:   0.90,
		LLMJudgeRate:          0.15,
		JudgeTier:             JudgeTierHigh,
		HeuristicWeight:       0.30,
		DBWeight:              0.70,
		LLMJudgeWeight:        0.60,
		MinConfidenceScore:    90,
		PreferredModels:       []string{"gpt-4o", "gpt-4-turbo"},
	},
	CreativeWriting: {
		CacheTTLDays:          30,
		MinSamplesForTransfer: 10,
		SimilarityThreshold:   0.70,
		LLMJudgeRate:          0.05,
		JudgeTier:             JudgeTierMedium,
		HeuristicWeight:       0.20,
		DBWeight:              0.30,
		LLMJudgeWeight:        0.60,
		MinConfidenceScore:    60,
		PreferredModels:       []string{"claude-3-5-sonnet", "gpt-4o"},
		AvoidModels:           []string{"gpt-3.5-turbo"},
	},
	Translation: {
		CacheTTLDays:          60,
		MinSamplesForTransfer: 5,
		SimilarityThreshold:   0.85,
		LLMJudgeRate:          0.10,
		JudgeTier:             JudgeTierMedium,
		HeuristicWeight:       0.25,
		DBWeight:              0.50,
		LLMJudgeWeight:        0.60,
		MinConfidenceScore:    80,
		PreferredModels:       []string{"gpt-4o", "claude-3-5-sonnet"},
	},
	Summarization: {
		CacheTTLDays:          14,
		MinSamplesForTransfer: 5,
		SimilarityThreshold:   0.75,
		LLMJudgeRate:          0.10,
		JudgeTier:             JudgeTierMedium,
		HeuristicWeight:       0.30,
		DBWeight:              0.50,
		LLMJudgeWeight:        0.60,
		MinConfidenceScore:    75,
		PreferredModels:       []string{"gpt-4o", "claude-3-5-sonnet"},
	},
	Analysis: {
		CacheTTLDays:          30,
		MinSamplesForTransfer: 5,
		SimilarityThreshold:   0.80,
		LLMJudgeRate:          0.15,
		JudgeTier:             JudgeTierHigh,
		HeuristicWeight:       0.30,
		DBWeight:              0.60,
		LLMJudgeWeight:        0.60,
		MinConfidenceScore:    85,
		PreferredModels:       []string{"gpt-4o", "claude-3-5-sonnet"},
	},
	General: {
		CacheTTLDays:          30,
		MinSamplesForTransfer: 5,
		SimilarityThreshold:   0.80,
		LLMJudgeRate:          0.10,
		JudgeTier:             JudgeTierMedium,
		HeuristicWeight:       0.25,
		DBWeight:              0.50,
		LLMJudgeWeight:        0.60,
		MinConfidenceScore:    75,
	},
}

// PolicyTable resolves scenarios to policies. The zero value is not usable;
// construct with NewPolicyTable.
type PolicyTable struct {
	policies map[string]Policy
}

// NewPolicyTable returns the built-in policy table.
func NewPolicyTable() *PolicyTable {
	policies := make(map[string]Policy, len(defaultPolicies))
	for k, v := range defaultPolicies {
		policies[k] = v
	}
	return &PolicyTable{policies: policies}
}

// Get returns the policy for a scenario, falling back to the General row
// for unknown tags.
func (t *PolicyTable) Get(scenario string) Policy {
	if p, ok := t.policies[scenario]; ok {
		return p
	}
	return t.policies[General]
}

// ApplyOverrides merges partial per-scenario overrides into the table.
// Overrides are keyed by scenario tag; only the fields present in the map
// are changed. Unknown scenario keys create new rows.
func (t *PolicyTable) ApplyOverrides(overrides map[string]map[string]any) error {
	for tag, fields := range overrides {
		base := t.Get(tag)
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &base,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return fmt.Errorf("building decoder for scenario %q: %w", tag, err)
		}
		if err := dec.Decode(fields); err != nil {
			return fmt.Errorf("applying overrides for scenario %q: %w", tag, err)
		}
		switch base.JudgeTier {
		case JudgeTierHigh, JudgeTierMedium, JudgeTierLow:
		default:
			return fmt.Errorf("scenario %q: unknown judge tier %q", tag, base.JudgeTier)
		}
		t.policies[tag] = base
	}
	return nil
}

// LoadOverrides reads a YAML file of per-scenario policy overrides and
// applies it on top of the built-in table.
func (t *PolicyTable) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading policy overrides: %w", err)
	}

	var overrides map[string]map[string]any
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parsing policy overrides %s: %w", path, err)
	}
	return t.ApplyOverrides(overrides)
}
