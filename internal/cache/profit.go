// Package cache holds the optional redis caches in front of the profit
// table and the admin analytics summary. When caching is disabled both
// fall back to no-op implementations and every read hits Postgres.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cdirx/decision-tool/internal/config"
	"github.com/cdirx/decision-tool/internal/domain"
)

const (
	profitTableKey    = "profit:table"
	summaryKeyPrefix  = "logs:summary"
	scanBatchSize     = 100
	defaultProfitTTL  = 5 * time.Minute
	defaultSummaryTTL = time.Minute
)

// ProfitCache caches the pre-normalized profit table between sheet syncs.
type ProfitCache interface {
	GetTable(ctx context.Context) ([]domain.ProfitRow, bool, error)
	SetTable(ctx context.Context, rows []domain.ProfitRow) error
	Invalidate(ctx context.Context) error
}

// SummaryCache caches admin analytics summaries keyed by filter.
type SummaryCache interface {
	GetSummary(ctx context.Context, filter domain.LogFilter) (*domain.AnalyticsSummary, bool, error)
	SetSummary(ctx context.Context, filter domain.LogFilter, summary *domain.AnalyticsSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisCaches struct {
	client     *redis.Client
	profitTTL  time.Duration
	summaryTTL time.Duration
}

// New builds both caches from one redis client, or no-ops when caching is
// disabled.
func New(cfg config.CacheConfig) (ProfitCache, SummaryCache, error) {
	if !cfg.Enabled {
		return &noopProfitCache{}, &noopSummaryCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	profitTTL := time.Duration(cfg.ProfitTTLSeconds) * time.Second
	if profitTTL <= 0 {
		profitTTL = defaultProfitTTL
	}
	summaryTTL := time.Duration(cfg.SummaryTTLSeconds) * time.Second
	if summaryTTL <= 0 {
		summaryTTL = defaultSummaryTTL
	}

	c := &redisCaches{client: client, profitTTL: profitTTL, summaryTTL: summaryTTL}
	return c, c, nil
}

func (c *redisCaches) GetTable(ctx context.Context) ([]domain.ProfitRow, bool, error) {
	payload, err := c.client.Get(ctx, profitTableKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []domain.ProfitRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode profit table cache: %w", err)
	}
	return rows, true, nil
}

func (c *redisCaches) SetTable(ctx context.Context, rows []domain.ProfitRow) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode profit table cache: %w", err)
	}
	if err := c.client.Set(ctx, profitTableKey, payload, c.profitTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisCaches) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, profitTableKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisCaches) GetSummary(ctx context.Context, filter domain.LogFilter) (*domain.AnalyticsSummary, bool, error) {
	payload, err := c.client.Get(ctx, buildSummaryKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.AnalyticsSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode summary cache: %w", err)
	}
	return &summary, true, nil
}

func (c *redisCaches) SetSummary(ctx context.Context, filter domain.LogFilter, summary *domain.AnalyticsSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary cache: %w", err)
	}
	if err := c.client.Set(ctx, buildSummaryKey(filter), payload, c.summaryTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisCaches) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, summaryKeyPrefix, scanBatchSize)
}

func buildSummaryKey(filter domain.LogFilter) string {
	raw := strings.Join([]string{
		filter.GuestName, filter.Decision, filter.DateFrom, filter.DateTo,
	}, "|")
	sum := sha1.Sum([]byte(raw))
	return summaryKeyPrefix + ":" + hex.EncodeToString(sum[:])
}

type noopProfitCache struct{}

func (noopProfitCache) GetTable(context.Context) ([]domain.ProfitRow, bool, error) {
	return nil, false, nil
}
func (noopProfitCache) SetTable(context.Context, []domain.ProfitRow) error { return nil }
func (noopProfitCache) Invalidate(context.Context) error                   { return nil }

type noopSummaryCache struct{}

func (noopSummaryCache) GetSummary(context.Context, domain.LogFilter) (*domain.AnalyticsSummary, bool, error) {
	return nil, false, nil
}
func (noopSummaryCache) SetSummary(context.Context, domain.LogFilter, *domain.AnalyticsSummary) error {
	return nil
}
func (noopSummaryCache) InvalidateAll(context.Context) error { return nil }
