// Package cache provides a redis read-through decorator for feedback
// aggregates. When redis is unreachable every call falls through to the
// wrapped repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL bounds how stale cached aggregates may be.
	DefaultTTL = 60 * time.Second

	countsKeyPrefix = "scout:feedback:counts:"
	tagsKeyPrefix   = "scout:feedback:tags:"
)

// Config holds redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect returns a client for cfg, or nil when redis does not answer a ping.
// A nil client puts FeedbackCache in bypass mode.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger != nil {
			logger.Warn("redis unavailable, bypassing cache", "addr", cfg.Addr, "err", err)
		}
		_ = client.Close()
		return nil
	}
	return client
}

// FeedbackCache wraps a FeedbackRepository and caches per-candidate counts
// and tag statistics. Writes invalidate the affected entries.
type FeedbackCache struct {
	inner  storage.FeedbackRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger

	warnedUnavailable atomic.Bool
}

var _ storage.FeedbackRepository = (*FeedbackCache)(nil)

// Option configures a FeedbackCache.
type Option func(*FeedbackCache) error

// WithTTL sets the cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *FeedbackCache) error {
		if ttl <= 0 {
			return errors.New("cache ttl must be positive")
		}
		c.ttl = ttl
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *FeedbackCache) error {
		c.logger = logger
		return nil
	}
}

// NewFeedbackCache wraps inner. client may be nil.
func NewFeedbackCache(inner storage.FeedbackRepository, client *redis.Client, opts ...Option) (*FeedbackCache, error) {
	if inner == nil {
		return nil, errors.New("feedback repository is required")
	}
	c := &FeedbackCache{
		inner:  inner,
		client: client,
		ttl:    DefaultTTL,
		logger: slog.Default().With("component", "feedback_cache"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *FeedbackCache) isUnavailable() bool {
	return c.client == nil
}

func (c *FeedbackCache) warnUnavailableOnce(err error) {
	if c.warnedUnavailable.CompareAndSwap(false, true) {
		c.logger.Warn("redis unavailable, bypassing cache", "err", err)
	}
}

func countsKey(candidateID string) string {
	return countsKeyPrefix + candidateID
}

func tagsKey(feedbackType core.FeedbackType) string {
	if feedbackType == "" {
		return tagsKeyPrefix + "all"
	}
	return tagsKeyPrefix + string(feedbackType)
}

// AddFeedback writes through and drops the cached aggregates the event changes.
func (c *FeedbackCache) AddFeedback(ctx context.Context, event *core.FeedbackEvent) (*core.FeedbackEvent, error) {
	stored, err := c.inner.AddFeedback(ctx, event)
	if err != nil {
		return nil, err
	}
	if c.isUnavailable() {
		return stored, nil
	}
	keys := []string{countsKey(stored.CandidateID), tagsKey(""), tagsKey(stored.Type)}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.warnUnavailableOnce(err)
	}
	return stored, nil
}

// CountsByCandidate serves cached counts and loads the rest from the wrapped repository.
func (c *FeedbackCache) CountsByCandidate(ctx context.Context, candidateIDs ...string) (map[string]core.FeedbackCounts, error) {
	if c.isUnavailable() || len(candidateIDs) == 0 {
		return c.inner.CountsByCandidate(ctx, candidateIDs...)
	}

	keys := make([]string, len(candidateIDs))
	for i, id := range candidateIDs {
		keys[i] = countsKey(id)
	}
	cached, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.warnUnavailableOnce(err)
		return c.inner.CountsByCandidate(ctx, candidateIDs...)
	}

	result := make(map[string]core.FeedbackCounts, len(candidateIDs))
	var missing []string
	for i, id := range candidateIDs {
		raw, ok := cached[i].(string)
		if !ok {
			missing = append(missing, id)
			continue
		}
		var counts core.FeedbackCounts
		if err := json.Unmarshal([]byte(raw), &counts); err != nil {
			missing = append(missing, id)
			continue
		}
		result[id] = counts
	}
	if len(missing) == 0 {
		return result, nil
	}

	loaded, err := c.inner.CountsByCandidate(ctx, missing...)
	if err != nil {
		return nil, err
	}
	pipe := c.client.Pipeline()
	for id, counts := range loaded {
		result[id] = counts
		if data, err := json.Marshal(counts); err == nil {
			pipe.Set(ctx, countsKey(id), data, c.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.warnUnavailableOnce(err)
	}
	return result, nil
}

// TagStats serves cached statistics, loading them on a miss.
func (c *FeedbackCache) TagStats(ctx context.Context, feedbackType core.FeedbackType) ([]core.TagCount, error) {
	if c.isUnavailable() {
		return c.inner.TagStats(ctx, feedbackType)
	}

	key := tagsKey(feedbackType)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var stats []core.TagCount
		if json.Unmarshal(data, &stats) == nil {
			return stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.warnUnavailableOnce(err)
		return c.inner.TagStats(ctx, feedbackType)
	}

	stats, err := c.inner.TagStats(ctx, feedbackType)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(stats); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.warnUnavailableOnce(err)
		}
	}
	return stats, nil
}

// Close closes the redis client and the wrapped repository.
func (c *FeedbackCache) Close() error {
	var errs []error
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	errs = append(errs, c.inner.Close())
	return errors.Join(errs...)
}
