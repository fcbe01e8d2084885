package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/replaywise/replaywise/internal/textsim"
)

const (
	redisKeyPrefix = "replaywise:validations"
	redisStatsKey  = "replaywise:stats"

	// maxRecordsPerKey bounds each model+scenario list so a busy pair
	// cannot grow without limit.
	maxRecordsPerKey = 500
)

// RedisStore is a Redis-backed Store for shared deployments. Records live
// in one bounded list per (model, scenario) pair; similarity ranking
// happens client-side.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("redis database number must be >= 0")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client}, nil
}

func recordKey(model, scenario string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, model, scenario)
}

// StoreValidation pushes the record onto its model+scenario list, trims
// the list, and bumps the stats counters.
func (s *RedisStore) StoreValidation(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling validation record: %w", err)
	}

	key := recordKey(rec.Model, rec.Scenario)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, maxRecordsPerKey-1)
	pipe.HIncrBy(ctx, redisStatsKey, "total", 1)
	pipe.HIncrBy(ctx, redisStatsKey, "scenario:"+rec.Scenario, 1)
	pipe.HIncrBy(ctx, redisStatsKey, "model:"+rec.Model, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing validation record: %w", err)
	}
	return nil
}

// FindSimilar loads the model+scenario list and ranks it client-side,
// mirroring the in-memory store's semantics.
func (s *RedisStore) FindSimilar(ctx context.Context, q Query) (*SimilarResult, error) {
	if q.Limit <= 0 {
		q.Limit = 1
	}

	raw, err := s.client.LRange(ctx, recordKey(q.Model, q.Scenario), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading validation records: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	type scored struct {
		rec Record
		sim float64
	}
	candidates := make([]scored, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// Skip records written by incompatible versions.
			continue
		}
		candidates = append(candidates, scored{
			rec: rec,
			sim: textsim.Blended(q.PromptText, rec.PromptText),
		})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})
	if len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}

	var sum float64
	for _, c := range candidates {
		sum += c.rec.Score
	}

	return &SimilarResult{
		AvgScore:   sum / float64(len(candidates)),
		Count:      len(candidates),
		Similarity: candidates[0].sim,
	}, nil
}

// Stats reads the counter hash maintained by StoreValidation.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	fields, err := s.client.HGetAll(ctx, redisStatsKey).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("reading stats: %w", err)
	}

	stats := Stats{
		ByScenario: make(map[string]int),
		ByModel:    make(map[string]int),
	}
	for field, value := range fields {
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch {
		case field == "total":
			stats.TotalRecords = n
		case strings.HasPrefix(field, "scenario:"):
			stats.ByScenario[strings.TrimPrefix(field, "scenario:")] = n
		case strings.HasPrefix(field, "model:"):
			stats.ByModel[strings.TrimPrefix(field, "model:")] = n
		}
	}
	return stats, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
