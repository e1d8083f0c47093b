// Package cache keeps computed JSON documents in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"charity-events/internal/logger"
	"charity-events/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	KeyEventStats      = "stats:events"
	KeyCategoryStats   = "stats:categories"
	KeyStatsGeneration = "stats:gen"
)

var (
	// ErrMiss is returned by GetJSON when the key is absent.
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by SetJSONAt when an invalidation happened after
	// the caller read the generation.
	ErrStale = errors.New("stale cache generation")
)

type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	return &Redis{Client: client, TTL: ttl, Logger: log}
}

// GetJSON decodes the value at key into dst.
func (c *Redis) GetJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// Generation is the invalidation counter bumped by Publish, 0 before the
// first change.
func (c *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := c.Client.Get(ctx, KeyStatsGeneration).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", KeyStatsGeneration, err)
	}
	return gen, nil
}

// SetJSONAt stores v at key with the configured TTL, but only while the
// generation still equals gen. A document computed before an invalidation
// is rejected with ErrStale.
func (c *Redis) SetJSONAt(ctx context.Context, key string, v interface{}, gen int64) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, KeyStatsGeneration).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.TTL)
			return nil
		})
		return err
	}, KeyStatsGeneration)

	if errors.Is(err, ErrStale) || errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Publish bumps the generation and drops the stats documents after any
// change, so the next read recomputes them and reads already in flight
// cannot store what they computed.
func (c *Redis) Publish(ctx context.Context, change models.Change) {
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, KeyStatsGeneration)
		pipe.Del(ctx, KeyEventStats, KeyCategoryStats)
		return nil
	})
	if err != nil && c.Logger != nil {
		c.Logger.Warn("REDIS", fmt.Sprintf("Failed to invalidate stats after %s %s: %v", change.Entity, change.Action, err))
	}
}
