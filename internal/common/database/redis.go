// internal/common/database/redis.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-policy-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client and owns the key layout the workers
// share: resolved age tiers, the latest decision per piece of content, and
// delivered notifications.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	return &RedisClient{Client: rdb}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

func TierKey(userID string) string {
	return "agetier:" + userID
}

// LatestDecisionKey holds the most recent decision for a piece of content
// under one review type.
func LatestDecisionKey(contentID, reviewType string) string {
	return fmt.Sprintf("decision:latest:%s:%s", contentID, reviewType)
}

// NotificationKey records that one channel already delivered a decision.
func NotificationKey(decisionID, channel string) string {
	return fmt.Sprintf("notify:%s:%s", decisionID, channel)
}

// GetBytes returns the value stored at key. A miss is not an error.
func (c *RedisClient) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set sets a value with optional expiration
func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

func (c *RedisClient) CachedTier(ctx context.Context, userID string) ([]byte, bool, error) {
	return c.GetBytes(ctx, TierKey(userID))
}

func (c *RedisClient) CacheTier(ctx context.Context, userID string, data []byte, ttl time.Duration) error {
	return c.Set(ctx, TierKey(userID), data, ttl)
}

func (c *RedisClient) CacheLatestDecision(ctx context.Context, contentID, reviewType string, data []byte, ttl time.Duration) error {
	return c.Set(ctx, LatestDecisionKey(contentID, reviewType), data, ttl)
}

// SentNotification returns the message ID of an earlier delivery of
// decisionID on channel.
func (c *RedisClient) SentNotification(ctx context.Context, decisionID, channel string) (string, bool, error) {
	val, found, err := c.GetBytes(ctx, NotificationKey(decisionID, channel))
	if err != nil || !found {
		return "", false, err
	}
	return string(val), true, nil
}

func (c *RedisClient) RecordNotification(ctx context.Context, decisionID, channel, messageID string, ttl time.Duration) error {
	return c.Set(ctx, NotificationKey(decisionID, channel), messageID, ttl)
}
