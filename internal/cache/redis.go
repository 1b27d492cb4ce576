// Package cache keeps recently synced quotes in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/gold-quote-crawler/internal/config"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
)

// ErrMiss is returned when the requested quote is not cached
var ErrMiss = errors.New("quote not cached")

const (
	keyPrefix = "goldquote:"
	datesKey  = keyPrefix + "dates"
)

func dateKey(date string) string {
	return keyPrefix + "date:" + date
}

// dateScore orders ISO dates in the index; 2024-03-05 scores 20240305
func dateScore(date string) (float64, bool) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return 0, false
	}
	return float64(t.Year()*10000 + int(t.Month())*100 + t.Day()), true
}

// RedisCache stores quotes by date with a TTL and indexes their dates
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// SetQuote caches q under its date. Quotes without an ISO date are stored
// but never become the latest.
func (c *RedisCache) SetQuote(ctx context.Context, q models.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, dateKey(q.Date), data, c.ttl)
	if score, ok := dateScore(q.Date); ok {
		pipe.ZAdd(ctx, datesKey, redis.Z{Score: score, Member: q.Date})
		if c.ttl > 0 {
			pipe.Expire(ctx, datesKey, c.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache quote %s: %w", q.Date, err)
	}
	return nil
}

// QuoteSynced caches every quote the store accepted
func (c *RedisCache) QuoteSynced(ctx context.Context, q models.Quote, _ bool) error {
	return c.SetQuote(ctx, q)
}

// GetQuote returns the cached quote for date
func (c *RedisCache) GetQuote(ctx context.Context, date string) (*models.Quote, error) {
	data, err := c.client.Get(ctx, dateKey(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get quote from redis: %w", err)
	}

	var q models.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &q, nil
}

// GetLatest returns the newest cached quote. Index entries whose quote has
// expired are dropped on the way.
func (c *RedisCache) GetLatest(ctx context.Context) (*models.Quote, error) {
	for {
		dates, err := c.client.ZRevRange(ctx, datesKey, 0, 0).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read date index: %w", err)
		}
		if len(dates) == 0 {
			return nil, ErrMiss
		}

		q, err := c.GetQuote(ctx, dates[0])
		if !errors.Is(err, ErrMiss) {
			return q, err
		}
		if err := c.client.ZRem(ctx, datesKey, dates[0]).Err(); err != nil {
			return nil, fmt.Errorf("failed to drop expired date %s: %w", dates[0], err)
		}
	}
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
