package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeedbackRepo(t *testing.T) *FeedbackRepository {
	t.Helper()
	_, feedbackRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		feedbackRepo.Close()
		backend.Close()
	})
	return feedbackRepo
}

func vote(candidateID string, typ core.FeedbackType, tags ...string) *core.FeedbackEvent {
	return &core.FeedbackEvent{CandidateID: candidateID, Type: typ, Tags: tags}
}

func TestFeedbackRepository_AddFeedback(t *testing.T) {
	ctx := context.Background()
	repo := newTestFeedbackRepo(t)

	first, err := repo.AddFeedback(ctx, vote("cand-1", core.FeedbackUp))
	require.NoError(t, err)
	second, err := repo.AddFeedback(ctx, vote("cand-1", core.FeedbackDown, "salary"))
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.NotNil(t, first.Tags)
}

func TestFeedbackRepository_CountsByCandidate(t *testing.T) {
	ctx := context.Background()
	repo := newTestFeedbackRepo(t)

	for range 3 {
		_, err := repo.AddFeedback(ctx, vote("A", core.FeedbackUp))
		require.NoError(t, err)
	}
	_, err := repo.AddFeedback(ctx, vote("A", core.FeedbackDown))
	require.NoError(t, err)
	_, err = repo.AddFeedback(ctx, vote("B", core.FeedbackDown))
	require.NoError(t, err)

	counts, err := repo.CountsByCandidate(ctx, "A", "B", "C")
	require.NoError(t, err)
	assert.Equal(t, map[string]core.FeedbackCounts{
		"A": {Up: 3, Down: 1},
		"B": {Up: 0, Down: 1},
		"C": {},
	}, counts)

	empty, err := repo.CountsByCandidate(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFeedbackRepository_ConcurrentVotes(t *testing.T) {
	ctx := context.Background()
	repo := newTestFeedbackRepo(t)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddFeedback(ctx, vote("A", core.FeedbackUp))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	counts, err := repo.CountsByCandidate(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 4, counts["A"].Up)
}

func TestFeedbackRepository_TagStats(t *testing.T) {
	ctx := context.Background()
	repo := newTestFeedbackRepo(t)

	events := []*core.FeedbackEvent{
		vote("A", core.FeedbackDown, "salary"),
		vote("B", core.FeedbackDown, "salary"),
		vote("C", core.FeedbackDown, "salary", "distance"),
		vote("D", core.FeedbackDown),
		vote("E", core.FeedbackUp, "skills"),
		vote("F", core.FeedbackUp, "skills"),
		vote("G", core.FeedbackUp, "skills"),
	}
	for _, e := range events {
		_, err := repo.AddFeedback(ctx, e)
		require.NoError(t, err)
	}

	t.Run("down only", func(t *testing.T) {
		stats, err := repo.TagStats(ctx, core.FeedbackDown)
		require.NoError(t, err)
		assert.Equal(t, []core.TagCount{
			{Tags: []string{"salary"}, Count: 2},
			{Tags: []string{}, Count: 1},
			{Tags: []string{"salary", "distance"}, Count: 1},
		}, stats)
	})

	t.Run("all types", func(t *testing.T) {
		stats, err := repo.TagStats(ctx, "")
		require.NoError(t, err)
		require.Len(t, stats, 4)
		assert.Equal(t, []string{"skills"}, stats[0].Tags)
		assert.Equal(t, 3, stats[0].Count)
	})
}

func TestFeedbackRepository_Closed(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	repo, err := NewFeedbackRepository(backend)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	require.NoError(t, backend.Close())

	_, err = repo.CountsByCandidate(context.Background(), "A")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestFeedbackRepository_StoredRecordsDecode(t *testing.T) {
	ctx := context.Background()
	repo := newTestFeedbackRepo(t)

	event, err := repo.AddFeedback(ctx, vote("cand-9", core.FeedbackDown, "salary", "location"))
	require.NoError(t, err)

	err = repo.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFeedbackKey(event.ID))
		require.NoError(t, err)
		require.NoError(t, item.Value(func(val []byte) error {
			stored, err := storage.UnmarshalFeedback(val)
			require.NoError(t, err)
			assert.Equal(t, "cand-9", stored.CandidateID)
			assert.Equal(t, core.FeedbackDown, stored.Type)
			assert.Equal(t, []string{"salary", "location"}, stored.Tags)
			assert.True(t, event.CreatedAt.Truncate(time.Microsecond).Equal(stored.CreatedAt))
			return nil
		}))

		item, err = tx.Get(makeFeedbackCountKey("cand-9"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			counts, err := storage.UnmarshalFeedbackCounts(val)
			require.NoError(t, err)
			assert.Equal(t, core.FeedbackCounts{Down: 1}, counts)
			return nil
		})
	}, false)
	require.NoError(t, err)
}

func TestFeedbackRepository_CorruptCounts(t *testing.T) {
	ctx := context.Background()
	repo := newTestFeedbackRepo(t)

	err := repo.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeFeedbackCountKey("cand-x"), []byte{}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = repo.CountsByCandidate(ctx, "cand-x")
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}
