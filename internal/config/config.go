// Package config provides the Config struct and loader for
// .replaywise.yaml project-level configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/replaywise/replaywise/internal/judge"
	"github.com/replaywise/replaywise/internal/recommend"
)

// Default values for configuration. These are the single source of truth;
// New() references them and no other code should duplicate them.
const (
	DefaultWorkers     = 4
	DefaultMaxTokens   = 1000
	DefaultCallTimeout = 30

	DefaultJudgeBudgetUSD = 10.0

	DefaultProviderBaseURL = "https://api.openai.com/v1"
	DefaultAPIKeyEnv       = "OPENAI_API_KEY"

	DefaultStoreBackend = "memory"
	DefaultRedisAddr    = "localhost:6379"

	DefaultMaxQualityLoss = recommend.DefaultMaxQualityLoss
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ReplayConfig holds replay execution parameters.
type ReplayConfig struct {
	Workers     int     `yaml:"workers,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
	// CallTimeout is the per-call timeout in seconds.
	CallTimeout int `yaml:"call_timeout,omitempty"`
}

// JudgeConfig holds LLM judge settings. Tier, when set, overrides the
// per-scenario policy tier for every call.
type JudgeConfig struct {
	Enabled   *bool   `yaml:"enabled,omitempty"`
	BudgetUSD float64 `yaml:"budget_usd,omitempty"`
	Tier      string  `yaml:"tier,omitempty"`
}

// ProviderConfig holds completion API settings. The API key is read from
// the environment variable named by APIKeyEnv, never from the file.
type ProviderConfig struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// PricingConfig holds pricing lookup settings. An empty BaseURL selects
// the static offline table.
type PricingConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// StoreConfig holds validation store settings.
type StoreConfig struct {
	Backend       string `yaml:"backend,omitempty"`
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
}

// RecommendConfig holds recommendation thresholds.
type RecommendConfig struct {
	MaxQualityLoss float64 `yaml:"max_quality_loss,omitempty"`
}

// Config is the top-level configuration loaded from .replaywise.yaml.
type Config struct {
	// Models are the candidate models to replay against.
	Models []string `yaml:"models,omitempty"`

	// PolicyOverrides is a path to a YAML file of per-scenario policy
	// overrides, resolved relative to the config file's directory.
	PolicyOverrides string `yaml:"policy_overrides,omitempty"`

	Replay    ReplayConfig    `yaml:"replay,omitempty"`
	Judge     JudgeConfig     `yaml:"judge,omitempty"`
	Provider  ProviderConfig  `yaml:"provider,omitempty"`
	Pricing   PricingConfig   `yaml:"pricing,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Recommend RecommendConfig `yaml:"recommend,omitempty"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Replay: ReplayConfig{
			Workers:     DefaultWorkers,
			Temperature: 0,
			MaxTokens:   DefaultMaxTokens,
			CallTimeout: DefaultCallTimeout,
		},
		Judge: JudgeConfig{
			Enabled:   boolPtr(true),
			BudgetUSD: DefaultJudgeBudgetUSD,
		},
		Provider: ProviderConfig{
			BaseURL:   DefaultProviderBaseURL,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		Store: StoreConfig{
			Backend:   DefaultStoreBackend,
			RedisAddr: DefaultRedisAddr,
		},
		Recommend: RecommendConfig{
			MaxQualityLoss: DefaultMaxQualityLoss,
		},
	}
}

// Load finds .replaywise.yaml by walking up from startDir (max 10 levels),
// unmarshals it, fills in missing fields with defaults, and validates the
// result. If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, dir, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found, defaults apply
		}
		return nil, fmt.Errorf("loading .replaywise.yaml: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .replaywise.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)

	if cfg.PolicyOverrides != "" && !filepath.IsAbs(cfg.PolicyOverrides) {
		cfg.PolicyOverrides = filepath.Join(dir, cfg.PolicyOverrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that the loader cannot express
// through defaults alone.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Judge.Tier != "" {
		if !judge.ValidTier(c.Judge.Tier) {
			return fmt.Errorf("unknown judge tier %q", c.Judge.Tier)
		}
	}
	if c.Judge.BudgetUSD < 0 {
		return fmt.Errorf("judge budget must be non-negative, got %v", c.Judge.BudgetUSD)
	}

	if c.Recommend.MaxQualityLoss < 0 || c.Recommend.MaxQualityLoss >= 1 {
		return fmt.Errorf("max_quality_loss must be in [0, 1), got %v", c.Recommend.MaxQualityLoss)
	}

	if c.Replay.Workers < 1 {
		return fmt.Errorf("replay workers must be at least 1, got %d", c.Replay.Workers)
	}

	return nil
}

// APIKey reads the provider API key from the configured environment
// variable. An empty result is valid for keyless local endpoints.
func (c *Config) APIKey() string {
	if c.Provider.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Provider.APIKeyEnv)
}

// findConfigFile walks up from dir looking for .replaywise.yaml (max 10
// levels). Returns the file contents and the directory it was found in, or
// os.ErrNotExist if no config file is found. Propagates real I/O errors
// instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".replaywise.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	if len(src.Models) > 0 {
		dst.Models = src.Models
	}
	if src.PolicyOverrides != "" {
		dst.PolicyOverrides = src.PolicyOverrides
	}

	// Replay
	if src.Replay.Workers != 0 {
		dst.Replay.Workers = src.Replay.Workers
	}
	if src.Replay.Temperature != 0 {
		dst.Replay.Temperature = src.Replay.Temperature
	}
	if src.Replay.MaxTokens != 0 {
		dst.Replay.MaxTokens = src.Replay.MaxTokens
	}
	if src.Replay.CallTimeout != 0 {
		dst.Replay.CallTimeout = src.Replay.CallTimeout
	}

	// Judge
	if src.Judge.Enabled != nil {
		dst.Judge.Enabled = src.Judge.Enabled
	}
	if src.Judge.BudgetUSD != 0 {
		dst.Judge.BudgetUSD = src.Judge.BudgetUSD
	}
	if src.Judge.Tier != "" {
		dst.Judge.Tier = src.Judge.Tier
	}

	// Provider
	if src.Provider.BaseURL != "" {
		dst.Provider.BaseURL = src.Provider.BaseURL
	}
	if src.Provider.APIKeyEnv != "" {
		dst.Provider.APIKeyEnv = src.Provider.APIKeyEnv
	}

	// Pricing
	if src.Pricing.BaseURL != "" {
		dst.Pricing.BaseURL = src.Pricing.BaseURL
	}

	// Store
	if src.Store.Backend != "" {
		dst.Store.Backend = src.Store.Backend
	}
	if src.Store.RedisAddr != "" {
		dst.Store.RedisAddr = src.Store.RedisAddr
	}
	if src.Store.RedisPassword != "" {
		dst.Store.RedisPassword = src.Store.RedisPassword
	}
	if src.Store.RedisDB != 0 {
		dst.Store.RedisDB = src.Store.RedisDB
	}

	// Recommend
	if src.Recommend.MaxQualityLoss != 0 {
		dst.Recommend.MaxQualityLoss = src.Recommend.MaxQualityLoss
	}
}

func boolPtr(b bool) *bool {
	return &b
}
