package cache

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage/badger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInnerRepo(t *testing.T) *badger.FeedbackRepository {
	t.Helper()
	_, feedbackRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return feedbackRepo
}

func exercise(t *testing.T, c *FeedbackCache) {
	t.Helper()
	ctx := context.Background()

	_, err := c.AddFeedback(ctx, &core.FeedbackEvent{CandidateID: "A", Type: core.FeedbackUp})
	require.NoError(t, err)
	_, err = c.AddFeedback(ctx, &core.FeedbackEvent{CandidateID: "A", Type: core.FeedbackDown, Tags: []string{"salary"}})
	require.NoError(t, err)

	counts, err := c.CountsByCandidate(ctx, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, core.FeedbackCounts{Up: 1, Down: 1}, counts["A"])
	assert.Equal(t, core.FeedbackCounts{}, counts["B"])

	stats, err := c.TagStats(ctx, core.FeedbackDown)
	require.NoError(t, err)
	assert.Equal(t, []core.TagCount{{Tags: []string{"salary"}, Count: 1}}, stats)
}

func TestFeedbackCache_Bypass(t *testing.T) {
	c, err := NewFeedbackCache(newInnerRepo(t), nil)
	require.NoError(t, err)
	exercise(t, c)
	require.NoError(t, c.Close())
}

func TestFeedbackCache_UnreachableRedisFallsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c, err := NewFeedbackCache(newInnerRepo(t), client)
	require.NoError(t, err)
	exercise(t, c)
	assert.True(t, c.warnedUnavailable.Load())
	c.Close()
}

func TestConnect_Unreachable(t *testing.T) {
	client := Connect(context.Background(), Config{Addr: "127.0.0.1:1"}, nil)
	assert.Nil(t, client)
}

func TestNewFeedbackCache_Options(t *testing.T) {
	_, err := NewFeedbackCache(nil, nil)
	assert.Error(t, err)

	_, err = NewFeedbackCache(newInnerRepo(t), nil, WithTTL(0))
	assert.Error(t, err)

	c, err := NewFeedbackCache(newInnerRepo(t), nil, WithTTL(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, c.ttl)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "scout:feedback:counts:cand-1", countsKey("cand-1"))
	assert.Equal(t, "scout:feedback:tags:all", tagsKey(""))
	assert.Equal(t, "scout:feedback:tags:down", tagsKey(core.FeedbackDown))
}
