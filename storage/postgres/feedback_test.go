package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/poiesic/scout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := Config{Host: " db ", User: "scout", Password: "p w", Name: "recruitment"}
		assert.Equal(t, "host=db port=5432 user=scout password=p w dbname=recruitment sslmode=disable", cfg.DSN())
	})

	t.Run("explicit", func(t *testing.T) {
		cfg := Config{Host: "db", Port: "6543", User: "u", Name: "n", SSLMode: "require"}
		assert.Equal(t, "host=db port=6543 user=u password= dbname=n sslmode=require", cfg.DSN())
	})
}

// newTestRepository connects to the database named by SCOUT_TEST_POSTGRES_HOST.
// The tests are skipped when it is unset.
func newTestRepository(t *testing.T) *FeedbackRepository {
	t.Helper()
	host := os.Getenv("SCOUT_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("SCOUT_TEST_POSTGRES_HOST not set")
	}
	cfg := Config{
		Host:     host,
		Port:     os.Getenv("SCOUT_TEST_POSTGRES_PORT"),
		User:     os.Getenv("SCOUT_TEST_POSTGRES_USER"),
		Password: os.Getenv("SCOUT_TEST_POSTGRES_PASSWORD"),
		Name:     os.Getenv("SCOUT_TEST_POSTGRES_DB"),
	}
	repo, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	_, err = repo.pool.Exec(context.Background(), "TRUNCATE feedback")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestFeedbackRepository_Integration(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	events := []*core.FeedbackEvent{
		{CandidateID: "A", Type: core.FeedbackUp},
		{CandidateID: "A", Type: core.FeedbackUp},
		{CandidateID: "A", Type: core.FeedbackDown, Tags: []string{"salary"}},
		{CandidateID: "B", Type: core.FeedbackDown, Tags: []string{"salary"}},
	}
	for _, e := range events {
		stored, err := repo.AddFeedback(ctx, e)
		require.NoError(t, err)
		assert.NotZero(t, stored.ID)
	}

	counts, err := repo.CountsByCandidate(ctx, "A", "B", "C")
	require.NoError(t, err)
	assert.Equal(t, core.FeedbackCounts{Up: 2, Down: 1}, counts["A"])
	assert.Equal(t, core.FeedbackCounts{Down: 1}, counts["B"])
	assert.Equal(t, core.FeedbackCounts{}, counts["C"])

	stats, err := repo.TagStats(ctx, core.FeedbackDown)
	require.NoError(t, err)
	assert.Equal(t, []core.TagCount{{Tags: []string{"salary"}, Count: 2}}, stats)
}
