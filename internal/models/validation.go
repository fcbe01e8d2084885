package models

// Cache lookup sources, in descending order of specificity.
const (
	CacheSourceExactMatch       = "exact_match"
	CacheSourceScenarioSimilar  = "scenario_similar"
	CacheSourceModelFamily      = "model_family"
	CacheSourceScenarioBaseline = "scenario_baseline"
)

// Validation methods recorded on scores and stored records.
const (
	MethodHistoricalDB   = "historical_db"
	MethodFamilyTransfer = "family_transfer"
	MethodHeuristics     = "heuristics"
	MethodHeuristicsDB   = "heuristics+db"
	MethodEnsemble       = "ensemble"
	MethodLLMJudge       = "llm_judge"
)

// CacheLookupResult is the transient outcome of a tiered cache lookup.
type CacheLookupResult struct {
	Score       float64    `json:"score"`
	Confidence  Confidence `json:"confidence"`
	Source      string     `json:"source"`
	Method      string     `json:"method"`
	Reasoning   string     `json:"reasoning"`
	SampleCount int        `json:"sample_count"`
	// Adjustment records how much the score was discounted by family
	// transfer (negative when a discount was applied, 0 otherwise).
	Adjustment float64 `json:"adjustment"`
}

// HeuristicResult is the outcome of the rule-based validator. It is a pure
// function of the output text.
type HeuristicResult struct {
	Score        float64    `json:"score"`
	Confidence   Confidence `json:"confidence"`
	Reasoning    string     `json:"reasoning"`
	ChecksPassed []string   `json:"checks_passed,omitempty"`
	ChecksFailed []string   `json:"checks_failed,omitempty"`
}

// ValidationScore is the consolidated result of validating one
// (prompt, output, model) triple.
type ValidationScore struct {
	Score      float64    `json:"score"`
	Method     string     `json:"method"`
	Confidence Confidence `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`

	// Individual signals, present only when the corresponding method ran.
	LLMJudgeScore  *float64 `json:"llm_judge_score,omitempty"`
	HeuristicScore *float64 `json:"heuristic_score,omitempty"`
	DBScore        *float64 `json:"db_score,omitempty"`

	MethodsUsed []string `json:"methods_used"`
}

// UsedMethod reports whether the named method contributed to this score.
func (v ValidationScore) UsedMethod(method string) bool {
	for _, m := range v.MethodsUsed {
		if m == method {
			return true
		}
	}
	return false
}

// ClampScore bounds a 0-100 score regardless of intermediate arithmetic.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ClampUnit bounds a 0-1 value.
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
