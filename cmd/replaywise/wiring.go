package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/replaywise/replaywise/internal/config"
	"github.com/replaywise/replaywise/internal/judge"
	"github.com/replaywise/replaywise/internal/pricing"
	"github.com/replaywise/replaywise/internal/provider"
	"github.com/replaywise/replaywise/internal/replay"
	"github.com/replaywise/replaywise/internal/scenario"
	"github.com/replaywise/replaywise/internal/store"
	"github.com/replaywise/replaywise/internal/telemetry"
	"github.com/replaywise/replaywise/internal/validator"
)

// pipeline bundles the wired components for one CLI invocation.
type pipeline struct {
	cfg       *config.Config
	store     store.Store
	validator *validator.Hybrid
	engine    *replay.Engine
	logger    *slog.Logger
}

func (p *pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// buildPipeline wires store, judge, validator, and replay engine from the
// loaded configuration.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	policies := scenario.NewPolicyTable()
	if cfg.PolicyOverrides != "" {
		if err := policies.LoadOverrides(cfg.PolicyOverrides); err != nil {
			return nil, fmt.Errorf("loading policy overrides: %w", err)
		}
	}

	st, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	completions := provider.NewHTTPProvider(cfg.Provider.BaseURL, cfg.APIKey())
	priced := buildPricing(cfg, logger)

	j, err := buildJudge(cfg, completions, priced, policies, logger)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	hybrid := validator.NewHybrid(validator.HybridConfig{
		Store:          st,
		Judge:          j,
		Policies:       policies,
		Metrics:        metrics,
		Logger:         logger,
		JudgeBudgetUSD: cfg.Judge.BudgetUSD,
	})

	engine := replay.NewEngine(replay.Config{
		Provider:    completions,
		Pricing:     priced,
		Validator:   hybrid,
		Logger:      logger,
		Concurrency: cfg.Replay.Workers,
		Temperature: cfg.Replay.Temperature,
		MaxTokens:   cfg.Replay.MaxTokens,
		CallTimeout: time.Duration(cfg.Replay.CallTimeout) * time.Second,
	})

	return &pipeline{
		cfg:       cfg,
		store:     st,
		validator: hybrid,
		engine:    engine,
		logger:    logger,
	}, nil
}

func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		s, err := store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

func buildPricing(cfg *config.Config, logger *slog.Logger) pricing.Service {
	if cfg.Pricing.BaseURL != "" {
		return pricing.NewClient(cfg.Pricing.BaseURL, logger)
	}
	return pricing.NewStatic()
}

// buildJudge constructs the LLM judge, or nil when disabled. An explicit
// tier in the config wins; otherwise the general scenario policy decides.
func buildJudge(cfg *config.Config, p provider.CompletionProvider, pr pricing.Service, policies *scenario.PolicyTable, logger *slog.Logger) (judge.Judge, error) {
	if cfg.Judge.Enabled != nil && !*cfg.Judge.Enabled {
		return nil, nil
	}

	tier := cfg.Judge.Tier
	if tier == "" {
		var err error
		tier, err = judge.TierForPolicy(policies.Get(scenario.General).JudgeTier)
		if err != nil {
			return nil, fmt.Errorf("resolving judge tier: %w", err)
		}
	}

	j, err := judge.NewLLMJudge(p, pr, tier, logger)
	if err != nil {
		return nil, fmt.Errorf("building judge: %w", err)
	}
	return j, nil
}
