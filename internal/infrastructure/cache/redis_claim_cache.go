// Package cache provides read caches backed by Redis or process memory.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	expenseapp "github.com/farmops/backend/internal/application/expense"
)

const defaultClaimKeyPrefix = "claim:"

// RedisClaimCache caches claim read responses in Redis. Keys are scoped to a
// single claim id, so a mutation invalidates exactly the entry it touched.
// Payment summaries are never cached here; they are always derived fresh
// from the ledger.
type RedisClaimCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisClaimCacheConfig holds Redis connection configuration
type RedisClaimCacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisClaimCache creates a new Redis-backed claim cache
func NewRedisClaimCache(cfg RedisClaimCacheConfig, logger *zap.Logger) (*RedisClaimCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisClaimCache{
		client:    client,
		keyPrefix: defaultClaimKeyPrefix,
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// NewRedisClaimCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisClaimCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisClaimCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisClaimCache{
		client:    client,
		keyPrefix: defaultClaimKeyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

func (c *RedisClaimCache) key(id uuid.UUID) string {
	return c.keyPrefix + id.String()
}

// GetClaim returns the cached response for a claim, if present.
// Cache failures degrade to a miss; the caller falls through to the database.
func (c *RedisClaimCache) GetClaim(ctx context.Context, id uuid.UUID) (*expenseapp.ClaimResponse, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("claim cache read failed", zap.String("claim_id", id.String()), zap.Error(err))
		}
		return nil, false
	}

	var resp expenseapp.ClaimResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("claim cache entry corrupt, dropping", zap.String("claim_id", id.String()), zap.Error(err))
		c.client.Del(ctx, c.key(id))
		return nil, false
	}

	return &resp, true
}

// SetClaim stores the response for a claim with the configured TTL
func (c *RedisClaimCache) SetClaim(ctx context.Context, id uuid.UUID, claim *expenseapp.ClaimResponse) {
	if claim == nil {
		return
	}

	data, err := json.Marshal(claim)
	if err != nil {
		c.logger.Warn("claim cache marshal failed", zap.String("claim_id", id.String()), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, c.key(id), data, c.ttl).Err(); err != nil {
		c.logger.Warn("claim cache write failed", zap.String("claim_id", id.String()), zap.Error(err))
	}
}

// InvalidateClaim drops the cached entry for the given claim only
func (c *RedisClaimCache) InvalidateClaim(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.logger.Warn("claim cache invalidation failed", zap.String("claim_id", id.String()), zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisClaimCache) Close() error {
	return c.client.Close()
}

// Ensure RedisClaimCache implements ClaimCache
var _ expenseapp.ClaimCache = (*RedisClaimCache)(nil)
