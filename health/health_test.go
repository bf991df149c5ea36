package health

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/scout/storage"
	"github.com/poiesic/scout/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newIndex(t *testing.T) *badger.VectorIndex {
	t.Helper()
	index, repo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return index
}

func TestNewChecker(t *testing.T) {
	_, err := NewChecker(nil)
	assert.Equal(t, ErrIndexRequired, err)
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	index := newIndex(t)

	t.Run("missing collections", func(t *testing.T) {
		checker, err := NewChecker(index)
		require.NoError(t, err)

		report := checker.Check(ctx)
		assert.Equal(t, "healthy", report.Status)
		assert.Equal(t, Version, report.Version)
		assert.Equal(t, StatusError, report.IndexStatus.Status)
		assert.Contains(t, report.IndexStatus.Error, storage.ErrCollectionNotFound.Error())
		assert.Nil(t, report.IndexStatus.CandidatesCollection)
	})

	require.NoError(t, index.EnsureCollection(ctx, "candidates", 2))
	require.NoError(t, index.EnsureCollection(ctx, "professional_standards", 2))
	require.NoError(t, index.Upsert(ctx, "candidates", &storage.Point{ID: 1, Vector: []float32{1, 0}}))

	t.Run("both collections", func(t *testing.T) {
		checker, err := NewChecker(index, WithVersion("2.0.0"))
		require.NoError(t, err)

		report := checker.Check(ctx)
		assert.Equal(t, "2.0.0", report.Version)
		assert.Equal(t, StatusOK, report.IndexStatus.Status)
		require.NotNil(t, report.IndexStatus.CandidatesCollection)
		assert.Equal(t, uint64(1), report.IndexStatus.CandidatesCollection.PointsCount)
		require.NotNil(t, report.IndexStatus.ProfessionalStandardsCollection)
		assert.Equal(t, uint64(0), report.IndexStatus.ProfessionalStandardsCollection.PointsCount)
		assert.Empty(t, report.IndexStatus.Error)
		assert.Nil(t, report.Dependencies)
	})

	t.Run("custom collection names", func(t *testing.T) {
		checker, err := NewChecker(index, WithCollections("people", ""))
		require.NoError(t, err)
		assert.Equal(t, StatusError, checker.Check(ctx).IndexStatus.Status)
	})

	t.Run("dependencies", func(t *testing.T) {
		checker, err := NewChecker(index,
			WithDependency("feedback_store", pingFunc(func(context.Context) error { return nil })),
			WithDependency("cache", pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })),
			WithDependency("ignored", nil),
		)
		require.NoError(t, err)

		report := checker.Check(ctx)
		assert.Equal(t, map[string]string{
			"feedback_store": StatusOK,
			"cache":          "dial tcp: refused",
		}, report.Dependencies)
	})
}
