package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/poiesic/scout"
	"github.com/poiesic/scout/ai"
	"github.com/poiesic/scout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// captureConfig runs the global flags and returns the resulting config.
func captureConfig(t *testing.T, args ...string) (*scout.Config, error) {
	t.Helper()
	var cfg *scout.Config
	app := &cli.App{
		Name:  "scout",
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			var err error
			cfg, err = configFromContext(c)
			return err
		},
	}
	err := app.Run(append([]string{"scout"}, args...))
	return cfg, err
}

func TestConfigFromContext(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := captureConfig(t)
		require.NoError(t, err)
		require.NotNil(t, cfg.Qdrant)
		assert.Equal(t, "localhost", cfg.Qdrant.Host)
		assert.Equal(t, 6334, cfg.Qdrant.Port)
		assert.Equal(t, "candidates", cfg.CandidatesCollection)
		assert.Equal(t, "professional_standards", cfg.StandardsCollection)
		assert.Equal(t, uint64(1024), cfg.VectorSize)
		assert.Equal(t, 0.1, cfg.MinWeight)
		assert.Nil(t, cfg.Postgres, "feedback defaults to the embedded store")
		assert.Nil(t, cfg.Redis)
		assert.Equal(t, ai.BackendGemini, cfg.AI.GeneratorBackend)
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("QDRANT_HOST", "qdrant.internal")
		t.Setenv("QDRANT_PORT", "7334")
		t.Setenv("QDRANT_COLLECTION_NAME", "people")
		t.Setenv("QDRANT_COLLECTION_PROFESSIONALSTANDARD", "standards")
		t.Setenv("DB_HOST", "pg.internal")
		t.Setenv("DB_NAME", "recruit")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("GEMINI_API_KEY", "secret")
		t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")

		cfg, err := captureConfig(t)
		require.NoError(t, err)
		assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
		assert.Equal(t, 7334, cfg.Qdrant.Port)
		assert.Equal(t, "people", cfg.CandidatesCollection)
		assert.Equal(t, "standards", cfg.StandardsCollection)
		require.NotNil(t, cfg.Postgres)
		assert.Equal(t, "pg.internal", cfg.Postgres.Host)
		assert.Equal(t, "5432", cfg.Postgres.Port)
		assert.Equal(t, "recruit", cfg.Postgres.Name)
		require.NotNil(t, cfg.Redis)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, "secret", cfg.AI.GeneratorAPIKey)
		assert.Equal(t, "gemini-2.0-flash", cfg.AI.GeneratorModel)
	})

	t.Run("badger index", func(t *testing.T) {
		cfg, err := captureConfig(t, "--index-backend", "badger", "--data-path", "/tmp/scout")
		require.NoError(t, err)
		assert.Nil(t, cfg.Qdrant)
		assert.Equal(t, "/tmp/scout", cfg.DataPath)
	})

	t.Run("invalid index backend", func(t *testing.T) {
		_, err := captureConfig(t, "--index-backend", "faiss")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "faiss")
	})
}

func TestSetupLogger(t *testing.T) {
	app := &cli.App{
		Name:   "scout",
		Flags:  globalFlags(),
		Before: setupLogger,
		Action: func(*cli.Context) error { return nil },
	}

	for _, level := range []string{"debug", "info", "WARN", "error"} {
		t.Run(level, func(t *testing.T) {
			assert.NoError(t, app.Run([]string{"scout", "--log-level", level}))
		})
	}

	t.Run("invalid", func(t *testing.T) {
		err := app.Run([]string{"scout", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestSearchRequestFromContext(t *testing.T) {
	run := func(args ...string) (core.SearchRequest, error) {
		var (
			req core.SearchRequest
			err error
		)
		app := &cli.App{
			Name: "scout",
			Commands: []*cli.Command{{
				Name:  "search",
				Flags: searchFlags(),
				Action: func(c *cli.Context) error {
					req, err = searchRequestFromContext(c)
					return nil
				},
			}},
		}
		require.NoError(t, app.Run(append([]string{"scout", "search"}, args...)))
		return req, err
	}

	t.Run("query and defaults", func(t *testing.T) {
		req, err := run("forklift", "driver")
		require.NoError(t, err)
		assert.Equal(t, "forklift driver", req.Query)
		assert.Equal(t, 5, req.TopK)
		assert.Nil(t, req.SalaryRange)
		assert.Nil(t, req.LocationFilter)
	})

	t.Run("filters", func(t *testing.T) {
		req, err := run("--top-k", "3", "--industry", "Logistiikka",
			"--salary-min", "2500", "--salary-max", "3500", "--radius", "50", "nurse")
		require.NoError(t, err)
		assert.Equal(t, 3, req.TopK)
		assert.Equal(t, "Logistiikka", req.Industry)
		require.NotNil(t, req.SalaryRange)
		assert.Equal(t, core.SalaryRange{Min: 2500, Max: 3500}, *req.SalaryRange)
		require.NotNil(t, req.LocationFilter)
		assert.Equal(t, 50.0, *req.LocationFilter)
	})

	t.Run("missing query", func(t *testing.T) {
		_, err := run()
		assert.ErrorIs(t, err, errQueryRequired)
	})

	t.Run("half salary range", func(t *testing.T) {
		_, err := run("--salary-min", "2500", "nurse")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "together")
	})
}

func TestIndexCommandValidation(t *testing.T) {
	t.Run("requires an input file", func(t *testing.T) {
		err := newApp().Run([]string{"scout", "index"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--candidates or --standards")
	})

	t.Run("batch size must be positive", func(t *testing.T) {
		err := newApp().Run([]string{"scout", "index", "--candidates", "c.json", "--batch-size", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})
}

func TestFeedbackAndStatsCommands(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "scout.db")
	base := []string{"scout", "--log-level", "error",
		"--index-backend", "badger", "--data-path", dataPath, "--generator", "openai"}

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run(append(base, "feedback", "--candidate", "cand-1", "--type", "DOWN", "--reason", "Salary too high"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Feedback saved (tags: salary)")

	t.Run("invalid type", func(t *testing.T) {
		err := newApp().Run(append(base, "feedback", "--candidate", "cand-1", "--type", "sideways"))
		assert.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("stats", func(t *testing.T) {
		out.Reset()
		app := newApp()
		app.Writer = &out
		require.NoError(t, app.Run(append(base, "stats")))
		assert.Contains(t, out.String(), "COUNT")
		assert.Contains(t, out.String(), "salary")
	})
}
