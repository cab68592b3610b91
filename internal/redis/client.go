package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradeboard/suggestion-service/internal/config"
)

// Client wraps the Redis client with point-balance projection operations.
// Everything cached here is derived from the ledger; the database remains
// the only source of truth.
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Balance projection caching

func balanceKey(userID string) string {
	return fmt.Sprintf("user:%s:balance", userID)
}

// SetBalance caches a user's computed balance with TTL
func (c *Client) SetBalance(ctx context.Context, userID string, balance int, ttl time.Duration) error {
	return c.rdb.Set(ctx, balanceKey(userID), balance, ttl).Err()
}

// GetBalance retrieves a cached balance. Returns redis.Nil when absent.
func (c *Client) GetBalance(ctx context.Context, userID string) (int, error) {
	val, err := c.rdb.Get(ctx, balanceKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	balance, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt cached balance for %s: %w", userID, err)
	}
	return balance, nil
}

// InvalidateBalance drops the cached balance after a ledger write so the
// next read recomputes from the entries.
func (c *Client) InvalidateBalance(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, balanceKey(userID)).Err()
}

// IsCacheMiss reports whether err is the cache-miss sentinel
func IsCacheMiss(err error) bool {
	return err == redis.Nil
}

// Generic operations

// Set stores a value with optional TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a string value
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Delete removes a key
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}
