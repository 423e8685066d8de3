package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/application/tariff"
	"github.com/powergrid/backend/internal/infrastructure/config"
	domaintariff "github.com/powergrid/backend/internal/domain/tariff"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTariffCache caches resolved tariff versions in Redis so the billing
// hot path does not hit the tariff table for every bill. Suitable for
// distributed deployments where multiple instances share the cache.
//
// The cache is best effort: read and write failures are logged and treated
// as misses, a broken Redis never breaks billing.
type RedisTariffCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisTariffCache creates a tariff cache against a fresh Redis connection
func NewRedisTariffCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisTariffCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTariffCacheWithClient(client, ttl, logger), nil
}

// NewRedisTariffCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisTariffCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisTariffCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisTariffCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: "tariff:resolved:",
		logger:    logger,
	}
}

// GetResolved returns the cached tariff for the category and date, if present
func (c *RedisTariffCache) GetResolved(ctx context.Context, category domaintariff.Category, asOf time.Time) (*domaintariff.Tariff, bool) {
	raw, err := c.client.Get(ctx, c.key(category, asOf)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("tariff cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var t domaintariff.Tariff
	if err := json.Unmarshal(raw, &t); err != nil {
		c.logger.Warn("tariff cache entry corrupt, discarding", zap.Error(err))
		return nil, false
	}
	return &t, true
}

// SetResolved stores the resolved tariff for the category and date
func (c *RedisTariffCache) SetResolved(ctx context.Context, category domaintariff.Category, asOf time.Time, t *domaintariff.Tariff) {
	raw, err := json.Marshal(t)
	if err != nil {
		c.logger.Warn("tariff cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(category, asOf), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("tariff cache write failed", zap.Error(err))
	}
}

// InvalidateCategory drops every cached resolution for the category. Called
// when a new tariff version is created so stale prices never outlive the
// version that produced them.
func (c *RedisTariffCache) InvalidateCategory(ctx context.Context, category domaintariff.Category) {
	pattern := c.keyPrefix + string(category) + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("tariff cache invalidation failed",
				zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("tariff cache scan failed", zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisTariffCache) Close() error {
	return c.client.Close()
}

func (c *RedisTariffCache) key(category domaintariff.Category, asOf time.Time) string {
	return c.keyPrefix + string(category) + ":" + asOf.Format("2006-01-02")
}

// Ensure RedisTariffCache implements the application cache port
var _ tariff.Cache = (*RedisTariffCache)(nil)
