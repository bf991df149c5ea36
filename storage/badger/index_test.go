package badger

import (
	"context"
	"testing"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *VectorIndex {
	t.Helper()
	index, feedbackRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		feedbackRepo.Close()
		backend.Close()
	})
	return index
}

func candidatePoint(id string, vector []float32, industry string, salary int, lat, lon float64) *storage.Point {
	return &storage.Point{
		ID:     core.IDFromContent(id),
		Vector: vector,
		Payload: map[string]any{
			"id":       id,
			"industry": industry,
			"salary":   salary,
			"location": map[string]any{
				"city":        "Lahti",
				"coordinates": map[string]any{"lat": lat, "lon": lon},
			},
		},
	}
}

func TestVectorIndex_EnsureCollection(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	t.Run("creates once", func(t *testing.T) {
		require.NoError(t, index.EnsureCollection(ctx, "candidates", 2))
		require.NoError(t, index.EnsureCollection(ctx, "candidates", 2))
	})

	t.Run("size mismatch", func(t *testing.T) {
		err := index.EnsureCollection(ctx, "candidates", 3)
		assert.ErrorIs(t, err, storage.ErrVectorSizeMismatch)
	})

	t.Run("invalid name", func(t *testing.T) {
		assert.Error(t, index.EnsureCollection(ctx, "bad:name", 2))
		assert.Error(t, index.EnsureCollection(ctx, "", 2))
	})
}

func TestVectorIndex_MissingCollection(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	_, err := index.Query(ctx, "nope", &storage.QueryRequest{Limit: 5})
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)

	_, err = index.CollectionInfo(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)

	err = index.Upsert(ctx, "nope", candidatePoint("a", []float32{1, 0}, "x", 1, 0, 0))
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
}

func TestVectorIndex_UpsertRejectsWrongDimension(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)
	require.NoError(t, index.EnsureCollection(ctx, "candidates", 2))

	err := index.Upsert(ctx, "candidates", candidatePoint("a", []float32{1, 0, 0}, "x", 1, 0, 0))
	assert.ErrorIs(t, err, storage.ErrVectorSizeMismatch)
}

func TestVectorIndex_Query(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)
	require.NoError(t, index.EnsureCollection(ctx, "candidates", 2))

	// Reference point for the geo filter is Kouvola (60.9634, 25.6712).
	require.NoError(t, index.Upsert(ctx, "candidates",
		candidatePoint("close-match", []float32{1, 0}, "Construction", 3000, 60.98, 25.66),
		candidatePoint("mid-match", []float32{0.8, 0.6}, "Construction", 4500, 60.17, 24.94),
		candidatePoint("far-match", []float32{0, 1}, "Logistics", 2800, 60.97, 25.67),
	))

	t.Run("orders by similarity", func(t *testing.T) {
		results, err := index.Query(ctx, "candidates", &storage.QueryRequest{Vector: []float32{1, 0}, Limit: 10})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "close-match", results[0].Payload["id"])
		assert.Equal(t, "mid-match", results[1].Payload["id"])
		assert.Equal(t, "far-match", results[2].Payload["id"])
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		assert.InDelta(t, 0.8, results[1].Score, 1e-6)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := index.Query(ctx, "candidates", &storage.QueryRequest{Vector: []float32{1, 0}, Limit: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.IDFromContent("close-match"), results[0].ID)
	})

	t.Run("match filter", func(t *testing.T) {
		filter := &storage.Filter{Must: []storage.Condition{storage.NewMatch("industry", "Logistics")}}
		results, err := index.Query(ctx, "candidates", &storage.QueryRequest{Vector: []float32{1, 0}, Filter: filter, Limit: 10})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "far-match", results[0].Payload["id"])
	})

	t.Run("range and geo filter", func(t *testing.T) {
		filter := &storage.Filter{Must: []storage.Condition{
			storage.NewRange("salary", 2500, 4000),
			storage.NewGeoRadius("location.coordinates", 60.9634, 25.6712, 50_000),
		}}
		results, err := index.Query(ctx, "candidates", &storage.QueryRequest{Vector: []float32{1, 0}, Filter: filter, Limit: 10})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "close-match", results[0].Payload["id"])
		assert.Equal(t, "far-match", results[1].Payload["id"])
	})

	t.Run("no vector returns filtered points unscored", func(t *testing.T) {
		filter := &storage.Filter{Must: []storage.Condition{storage.NewMatch("industry", "Construction")}}
		results, err := index.Query(ctx, "candidates", &storage.QueryRequest{Filter: filter, Limit: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Construction", results[0].Payload["industry"])
		assert.Zero(t, results[0].Score)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, index.Upsert(ctx, "candidates",
			candidatePoint("far-match", []float32{1, 0.01}, "Logistics", 2800, 60.97, 25.67)))
		info, err := index.CollectionInfo(ctx, "candidates")
		require.NoError(t, err)
		assert.Equal(t, uint64(3), info.PointsCount)
		assert.Equal(t, uint64(2), info.VectorSize)
	})
}

func TestVectorIndex_CancelledContext(t *testing.T) {
	index := newTestIndex(t)
	require.NoError(t, index.EnsureCollection(context.Background(), "candidates", 2))
	require.NoError(t, index.Upsert(context.Background(), "candidates",
		candidatePoint("a", []float32{1, 0}, "x", 1, 0, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := index.Query(ctx, "candidates", &storage.QueryRequest{Vector: []float32{1, 0}, Limit: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVectorIndex_Closed(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	index := NewVectorIndex(backend)
	require.NoError(t, backend.Close())

	_, err = index.Query(context.Background(), "candidates", &storage.QueryRequest{})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
