package validator

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/replaywise/replaywise/internal/heuristics"
	"github.com/replaywise/replaywise/internal/judge"
	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/scenario"
	"github.com/replaywise/replaywise/internal/store"
	"github.com/replaywise/replaywise/internal/telemetry"
)

// estimatedJudgeCostUSD is the per-call estimate charged against the judge
// budget before the real cost is known.
const estimatedJudgeCostUSD = 0.01

// highConfidenceJudgeRate is the residual sampling rate used to spot-check
// cache hits the pipeline already trusts.
const highConfidenceJudgeRate = 0.01

// heuristicFailureCutoff is the score below which a high-confidence
// heuristic verdict is final without consulting the judge.
const heuristicFailureCutoff = 30

// DefaultJudgeBudgetUSD caps judge spend per process unless overridden.
const DefaultJudgeBudgetUSD = 10.0

// HybridConfig wires a Hybrid validator.
type HybridConfig struct {
	Store    store.Store
	Judge    judge.Judge // nil disables judge evaluation entirely
	Policies *scenario.PolicyTable
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger

	// JudgeBudgetUSD caps total judge spend; 0 selects the default.
	JudgeBudgetUSD float64

	// Rand supplies sampling randomness; tests inject a deterministic one.
	Rand func() float64
}

// Options tune a single validation.
type Options struct {
	// ForceJudge bypasses sampling. The budget cap still applies.
	ForceJudge bool
	// Heuristics forwards per-call options to the rule-based checks.
	Heuristics heuristics.Options
}

// Stats is a snapshot of the process-wide pipeline counters.
type Stats struct {
	JudgeCalls     int
	HeuristicCalls int
	DBHits         int
	DBMisses       int
	// BaselineLookups counts lookups that fell through to the reserved
	// scenario baseline cache level.
	BaselineLookups int
	JudgeSpendUSD   float64
	JudgeDisabled   bool
}

// Hybrid runs the full validation pipeline: cache lookup, heuristics,
// budget-gated judge, ensemble. Every exit branch persists its outcome so
// future lookups get cheaper. Safe for concurrent use.
type Hybrid struct {
	classifier *scenario.Classifier
	policies   *scenario.PolicyTable
	cache      *CacheStrategy
	store      store.Store
	judge      judge.Judge
	metrics    *telemetry.Metrics
	logger     *slog.Logger

	budgetUSD float64
	randFloat func() float64

	mu             sync.Mutex
	judgeSpendUSD  float64
	judgeDisabled  bool
	judgeCalls     int
	heuristicCalls int
	dbHits         int
	dbMisses       int
}

// NewHybrid builds the pipeline.
func NewHybrid(cfg HybridConfig) *Hybrid {
	if cfg.Policies == nil {
		cfg.Policies = scenario.NewPolicyTable()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.JudgeBudgetUSD == 0 {
		cfg.JudgeBudgetUSD = DefaultJudgeBudgetUSD
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Float64
	}

	return &Hybrid{
		classifier: scenario.NewClassifier(),
		policies:   cfg.Policies,
		cache:      NewCacheStrategy(cfg.Store, cfg.Logger),
		store:      cfg.Store,
		judge:      cfg.Judge,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		budgetUSD:  cfg.JudgeBudgetUSD,
		randFloat:  cfg.Rand,
	}
}

// Validate scores one (prompt, output, model) triple using the cheapest
// sufficient evidence.
func (h *Hybrid) Validate(ctx context.Context, prompt models.Prompt, output, model string, opts Options) *models.ValidationScore {
	promptText := prompt.Text()
	scenarioTag := h.classifier.Classify(promptText)
	policy := h.policies.Get(scenarioTag)

	var methodsUsed []string

	// Level 1-4 cache lookup; MEDIUM or better is usable evidence.
	cacheResult := h.cache.Lookup(ctx, promptText, model, scenarioTag, models.ConfidenceMedium)

	if cacheResult != nil && cacheResult.Confidence == models.ConfidenceHigh {
		h.countDBHit()
		h.persist(ctx, promptText, output, model, scenarioTag, cacheResult.Score, cacheResult.Method, cacheResult.Confidence)
		h.metrics.Validation(cacheResult.Source)

		return &models.ValidationScore{
			Score:       cacheResult.Score,
			Method:      cacheResult.Source,
			Confidence:  cacheResult.Confidence,
			Reasoning:   cacheResult.Reasoning,
			DBScore:     &cacheResult.Score,
			MethodsUsed: []string{cacheResult.Source},
		}
	}

	if cacheResult != nil {
		methodsUsed = append(methodsUsed, cacheResult.Source)
	} else {
		h.countDBMiss()
	}

	var dbScore *float64
	if cacheResult != nil {
		dbScore = &cacheResult.Score
	}

	// Heuristics always run; they are free and catch obvious failures.
	heuristicResult := heuristics.Validate(output, opts.Heuristics)
	h.countHeuristicCall()
	methodsUsed = append(methodsUsed, models.MethodHeuristics)

	// A confident heuristic failure is final.
	if heuristicResult.Confidence == models.ConfidenceHigh && heuristicResult.Score < heuristicFailureCutoff {
		score := Combine(nil, &heuristicResult.Score, dbScore, policy)
		h.persist(ctx, promptText, output, model, scenarioTag, score, models.MethodHeuristics, models.ConfidenceHigh)
		h.metrics.Validation(models.MethodHeuristics)

		return &models.ValidationScore{
			Score:          score,
			Method:         models.MethodHeuristics,
			Confidence:     models.ConfidenceHigh,
			Reasoning:      heuristicResult.Reasoning,
			HeuristicScore: &heuristicResult.Score,
			DBScore:        dbScore,
			MethodsUsed:    methodsUsed,
		}
	}

	if h.shouldJudge(opts.ForceJudge, cacheResult, policy) {
		if eval := h.runJudge(ctx, promptText, output, model); eval != nil {
			methodsUsed = append(methodsUsed, models.MethodLLMJudge)

			score := Combine(&eval.Score, &heuristicResult.Score, dbScore, policy)
			h.persist(ctx, promptText, output, model, scenarioTag, score, models.MethodEnsemble, models.ConfidenceHigh)
			h.metrics.Validation(models.MethodEnsemble)

			return &models.ValidationScore{
				Score:          score,
				Method:         models.MethodEnsemble,
				Confidence:     models.ConfidenceHigh,
				Reasoning:      eval.Reasoning,
				LLMJudgeScore:  &eval.Score,
				HeuristicScore: &heuristicResult.Score,
				DBScore:        dbScore,
				MethodsUsed:    methodsUsed,
			}
		}
	}

	// Fallback: heuristics plus whatever the cache offered.
	score := Combine(nil, &heuristicResult.Score, dbScore, policy)

	method := models.MethodHeuristics
	confidence := heuristicResult.Confidence
	if cacheResult != nil {
		method = models.MethodHeuristicsDB
		confidence = models.ConfidenceMedium
	}

	h.persist(ctx, promptText, output, model, scenarioTag, score, models.MethodHeuristics, confidence)
	h.metrics.Validation(method)

	return &models.ValidationScore{
		Score:          score,
		Method:         method,
		Confidence:     confidence,
		Reasoning:      heuristicResult.Reasoning,
		HeuristicScore: &heuristicResult.Score,
		DBScore:        dbScore,
		MethodsUsed:    methodsUsed,
	}
}

// shouldJudge applies sampling and the configured judge availability.
// Forced calls skip sampling but not the budget check in runJudge.
func (h *Hybrid) shouldJudge(force bool, cacheResult *models.CacheLookupResult, policy scenario.Policy) bool {
	if h.judge == nil {
		return false
	}
	if force {
		return true
	}

	rate := policy.LLMJudgeRate
	if cacheResult != nil && cacheResult.Confidence == models.ConfidenceHigh {
		rate = highConfidenceJudgeRate
	}
	return h.randFloat() < rate
}

// runJudge evaluates under the budget cap. Any failure returns nil and the
// pipeline degrades to the heuristic fallback.
func (h *Hybrid) runJudge(ctx context.Context, promptText, output, model string) *judge.Evaluation {
	if !h.reserveJudgeBudget() {
		return nil
	}

	eval, err := h.judge.Evaluate(ctx, promptText, output, model)
	if err != nil {
		h.logger.Warn("llm judge evaluation failed", "model", model, "error", err)
		h.refundJudgeReservation()
		return nil
	}

	// The estimate stays charged when the actual cost is lower or unknown;
	// only an overrun is added on top.
	charged := estimatedJudgeCostUSD
	if eval.CostUSD > estimatedJudgeCostUSD {
		charged = eval.CostUSD
	}
	h.mu.Lock()
	h.judgeCalls++
	h.judgeSpendUSD += charged - estimatedJudgeCostUSD
	h.mu.Unlock()
	h.metrics.JudgeCall(charged)

	return eval
}

// reserveJudgeBudget charges the per-call estimate against the cap,
// atomically with the check, so concurrent callers cannot overshoot the
// budget. Crossing the cap disables the judge for the rest of the process,
// logged once.
func (h *Hybrid) reserveJudgeBudget() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.judgeDisabled {
		return false
	}
	if h.judgeSpendUSD+estimatedJudgeCostUSD > h.budgetUSD {
		h.judgeDisabled = true
		h.logger.Warn("llm judge budget exhausted; judge disabled for remainder of run",
			"spent_usd", h.judgeSpendUSD,
			"budget_usd", h.budgetUSD)
		return false
	}
	h.judgeSpendUSD += estimatedJudgeCostUSD
	return true
}

// refundJudgeReservation returns the estimate charged for a call that
// never produced a verdict.
func (h *Hybrid) refundJudgeReservation() {
	h.mu.Lock()
	h.judgeSpendUSD -= estimatedJudgeCostUSD
	h.mu.Unlock()
}

// persist stores the outcome best-effort; failures are logged, never
// propagated.
func (h *Hybrid) persist(ctx context.Context, promptText, output, model, scenarioTag string, score float64, method string, confidence models.Confidence) {
	if h.store == nil {
		return
	}

	err := h.store.StoreValidation(ctx, store.Record{
		PromptText: promptText,
		Output:     output,
		Model:      model,
		Provider:   scenario.Provider(model),
		Scenario:   scenarioTag,
		Score:      score,
		Method:     method,
		Confidence: confidence,
		Timestamp:  time.Now(),
	})
	if err != nil {
		h.logger.Warn("storing validation result failed", "model", model, "error", err)
	}
}

func (h *Hybrid) countDBHit() {
	h.mu.Lock()
	h.dbHits++
	h.mu.Unlock()
	h.metrics.DBHit()
}

func (h *Hybrid) countDBMiss() {
	h.mu.Lock()
	h.dbMisses++
	h.mu.Unlock()
	h.metrics.DBMiss()
}

func (h *Hybrid) countHeuristicCall() {
	h.mu.Lock()
	h.heuristicCalls++
	h.mu.Unlock()
	h.metrics.HeuristicCall()
}

// Stats snapshots the pipeline counters.
func (h *Hybrid) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		JudgeCalls:     h.judgeCalls,
		HeuristicCalls: h.heuristicCalls,
		DBHits:         h.dbHits,
		DBMisses:       h.dbMisses,
		BaselineLookups: h.cache.BaselineLookups(),
		JudgeSpendUSD:  h.judgeSpendUSD,
		JudgeDisabled:  h.judgeDisabled,
	}
}
