// Package replay executes historical prompts against alternative models,
// recording cost, latency, and refusal signals on every call.
package replay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/replaywise/replaywise/internal/heuristics"
	"github.com/replaywise/replaywise/internal/models"
	"github.com/replaywise/replaywise/internal/pricing"
	"github.com/replaywise/replaywise/internal/provider"
	"github.com/replaywise/replaywise/internal/scenario"
	"github.com/replaywise/replaywise/internal/validator"
)

var (
	// ErrNoPrompts is returned by ReplayBatch when there is nothing to run.
	ErrNoPrompts = errors.New("no prompts to replay")
	// ErrNoModels is returned by ReplayBatch when no target models are given.
	ErrNoModels = errors.New("no models to replay against")
)

const (
	defaultConcurrency = 4
	defaultMaxTokens   = 1000
	defaultCallTimeout = 30 * time.Second
)

// Config wires an Engine. Provider is required; everything else has a
// usable default or is optional.
type Config struct {
	Provider provider.CompletionProvider
	Pricing  pricing.Service

	// Validator, when non-nil, scores each successful output and attaches
	// the result to the ReplayResult.
	Validator *validator.Hybrid

	// ExpectedSchema, when non-nil, is checked against every successful
	// output and recorded as SchemaValid.
	ExpectedSchema map[string]any

	Logger *slog.Logger

	// Concurrency bounds in-flight calls during batch replay.
	Concurrency int
	Temperature float64
	MaxTokens   int
	CallTimeout time.Duration
}

// Engine replays prompts against models one call at a time or as a
// bounded-concurrency batch.
type Engine struct {
	provider  provider.CompletionProvider
	pricing   pricing.Service
	validator *validator.Hybrid
	schema    map[string]any
	logger    *slog.Logger

	concurrency int
	temperature float64
	maxTokens   int
	callTimeout time.Duration
}

// NewEngine builds an Engine from cfg, filling in defaults.
func NewEngine(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Engine{
		provider:    cfg.Provider,
		pricing:     cfg.Pricing,
		validator:   cfg.Validator,
		schema:      cfg.ExpectedSchema,
		logger:      logger,
		concurrency: concurrency,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		callTimeout: callTimeout,
	}
}

// ReplaySingle runs one prompt against one model. Call failures are not
// errors; they come back as a failed ReplayResult so batch aggregation
// counts them.
func (e *Engine) ReplaySingle(ctx context.Context, prompt models.Prompt, model string) models.ReplayResult {
	providerName := scenario.Provider(model)

	result := models.ReplayResult{
		PromptID:  prompt.ID,
		Model:     model,
		Provider:  providerName,
		Timestamp: time.Now().UTC(),
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	start := time.Now()
	completion, err := e.provider.Complete(callCtx, provider.Request{
		Model:       model,
		Provider:    providerName,
		Messages:    prompt.Messages,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	result.LatencyMs = float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		result.Error = err.Error()
		e.logger.Warn("replay call failed",
			"prompt_id", prompt.ID,
			"model", model,
			"error", err)
		return result
	}

	result.Success = true
	result.Output = completion.Text
	result.PromptTokens = completion.PromptTokens
	result.CompletionTokens = completion.CompletionTokens
	result.TotalTokens = completion.PromptTokens + completion.CompletionTokens
	result.IsRefusal = heuristics.IsRefusal(completion.Text)

	if e.schema != nil {
		result.SchemaValid = heuristics.MatchesSchema(completion.Text, e.schema)
		if !result.SchemaValid {
			e.logger.Debug("output failed schema check",
				"prompt_id", prompt.ID,
				"model", model,
				"errors", heuristics.SchemaErrors(completion.Text, e.schema))
		}
	} else {
		result.SchemaValid = true
	}

	if e.pricing != nil {
		result.CostUSD = e.pricing.Cost(ctx, providerName, model,
			completion.PromptTokens, completion.CompletionTokens, 0)
	}

	if e.validator != nil {
		score := e.validator.Validate(ctx, prompt, completion.Text, model, validator.Options{
			Heuristics: heuristics.Options{ExpectedSchema: e.schema},
		})
		result.ValidationScore = &score.Score
		result.ValidationMethod = score.Method
		result.ValidationConfidence = score.Confidence
	}

	e.logger.Debug("replayed prompt",
		"prompt_id", prompt.ID,
		"model", model,
		"latency_ms", result.LatencyMs,
		"cost_usd", result.CostUSD,
		"refusal", result.IsRefusal)

	return result
}

// ReplayBatch runs every prompt against every model with bounded
// concurrency. Per-call failures land in the result slice; only empty
// inputs and context cancellation return an error. Results are ordered
// prompt-major, matching the input order.
func (e *Engine) ReplayBatch(ctx context.Context, prompts []models.Prompt, modelList []string) ([]models.ReplayResult, error) {
	if len(prompts) == 0 {
		return nil, ErrNoPrompts
	}
	if len(modelList) == 0 {
		return nil, ErrNoModels
	}

	e.logger.Info("starting batch replay",
		"prompts", len(prompts),
		"models", len(modelList),
		"concurrency", e.concurrency)

	results := make([]models.ReplayResult, len(prompts)*len(modelList))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, prompt := range prompts {
		for j, model := range modelList {
			idx := i*len(modelList) + j
			prompt, model := prompt, model
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[idx] = e.ReplaySingle(gctx, prompt, model)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("batch replay complete", "results", len(results))
	return results, nil
}
