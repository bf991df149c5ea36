// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/scout/ai"
	"github.com/poiesic/scout/ai/gemini"
	"github.com/poiesic/scout/ai/openai"
	"github.com/poiesic/scout/api"
	"github.com/poiesic/scout/feedback"
	"github.com/poiesic/scout/health"
	"github.com/poiesic/scout/indexer"
	"github.com/poiesic/scout/search"
	"github.com/poiesic/scout/storage"
	"github.com/poiesic/scout/storage/badger"
	"github.com/poiesic/scout/storage/cache"
	"github.com/poiesic/scout/storage/postgres"
	"github.com/poiesic/scout/storage/qdrant"
	"github.com/redis/go-redis/v9"
)

// Config selects and configures the backends of an App.
type Config struct {
	AppName string
	Version string

	CandidatesCollection string
	StandardsCollection  string
	VectorSize           uint64

	// DataPath is the badger directory used by every embedded backend.
	// Ignored when InMemory is set.
	DataPath string
	InMemory bool

	// Qdrant selects the Qdrant vector index. Nil uses badger.
	Qdrant *qdrant.Config
	// Postgres selects the PostgreSQL feedback store. Nil uses badger.
	Postgres *postgres.Config
	// Redis enables the feedback aggregate cache.
	Redis    *cache.Config
	CacheTTL time.Duration

	AI *ai.Config

	// MinWeight is the floor applied to feedback weights in the narrow pass.
	// Negative disables it.
	MinWeight         float64
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
}

// DefaultConfig returns a Config with the defaults of the recruitment service.
func DefaultConfig() *Config {
	return &Config{
		AppName:              api.DefaultAppName,
		Version:              api.DefaultVersion,
		CandidatesCollection: search.DefaultCandidatesCollection,
		StandardsCollection:  search.DefaultStandardsCollection,
		VectorSize:           1024,
		DataPath:             "scout.db",
		Qdrant:               &qdrant.Config{Host: "localhost", Port: 6334},
		CacheTTL:             cache.DefaultTTL,
		AI:                   ai.DefaultConfig(),
		MinWeight:            search.DefaultMinWeight,
		RetrievalTimeout:     search.DefaultRetrievalTimeout,
		GenerationTimeout:    search.DefaultGenerationTimeout,
	}
}

// App owns the backends and builds the services that use them.
type App struct {
	config       *Config
	backend      *badger.Backend
	index        storage.VectorIndex
	feedbackRepo storage.FeedbackRepository
	provider     ai.AIProvider
	scorer       *feedback.Scorer
	service      *feedback.Service
	dependencies map[string]health.Pinger
	logger       *slog.Logger
}

// Option configures an App.
type Option func(*App) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithAIProvider uses provider instead of building one from Config.AI.
// The App closes it.
func WithAIProvider(provider ai.AIProvider) Option {
	return func(a *App) error {
		if provider == nil {
			return errors.New("ai provider cannot be nil")
		}
		a.provider = provider
		return nil
	}
}

// Open connects every backend named by cfg. A nil cfg uses DefaultConfig.
func Open(ctx context.Context, cfg *Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	a := &App{
		config:       cfg,
		dependencies: make(map[string]health.Pinger),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if err := a.open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	cfg := a.config

	if cfg.Qdrant != nil {
		index, err := qdrant.NewVectorIndex(*cfg.Qdrant, qdrant.WithLogger(a.logger.With("component", "qdrant")))
		if err != nil {
			return err
		}
		a.index = index
		a.dependencies["qdrant"] = index
	} else {
		backend, err := a.badgerBackend()
		if err != nil {
			return err
		}
		a.index = badger.NewVectorIndex(backend)
	}

	var repo storage.FeedbackRepository
	if cfg.Postgres != nil {
		pg, err := postgres.Connect(ctx, *cfg.Postgres, postgres.WithLogger(a.logger.With("component", "postgres")))
		if err != nil {
			return err
		}
		repo = pg
		a.dependencies["postgres"] = pg
	} else {
		backend, err := a.badgerBackend()
		if err != nil {
			return err
		}
		embedded, err := badger.NewFeedbackRepository(backend)
		if err != nil {
			return err
		}
		repo = embedded
	}
	a.feedbackRepo = repo

	if cfg.Redis != nil {
		client := cache.Connect(ctx, *cfg.Redis, a.logger)
		cacheOpts := []cache.Option{cache.WithLogger(a.logger.With("component", "feedback_cache"))}
		if cfg.CacheTTL > 0 {
			cacheOpts = append(cacheOpts, cache.WithTTL(cfg.CacheTTL))
		}
		cached, err := cache.NewFeedbackCache(repo, client, cacheOpts...)
		if err != nil {
			if client != nil {
				_ = client.Close()
			}
			return err
		}
		// The cache owns the client from here on.
		a.feedbackRepo = cached
		if client != nil {
			a.dependencies["redis"] = redisPinger{client}
		}
	}

	if a.provider == nil {
		provider, err := newProvider(ctx, cfg.AI)
		if err != nil {
			return err
		}
		a.provider = provider
	}

	scorer, err := feedback.NewScorer(a.feedbackRepo, feedback.WithLogger(a.logger.With("component", "feedback_scorer")))
	if err != nil {
		return err
	}
	a.scorer = scorer

	a.service, err = feedback.NewService(a.feedbackRepo, feedback.WithServiceLogger(a.logger.With("component", "feedback_service")))
	return err
}

// badgerBackend opens the shared embedded backend on first use.
func (a *App) badgerBackend() (*badger.Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	backend, err := badger.OpenBackend(a.config.DataPath, a.config.InMemory)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", a.config.DataPath, err)
	}
	a.backend = backend
	return backend, nil
}

func newProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	config.Normalize()
	if config.GeneratorBackend != ai.BackendGemini {
		return openai.NewProvider(config)
	}
	generator, err := gemini.NewGenerator(ctx, config)
	if err != nil {
		return nil, err
	}
	return openai.NewProvider(config, openai.WithGenerator(generator))
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close releases every backend. The first error is returned after all
// of them have been closed.
func (a *App) Close() error {
	var errs []error
	if a.scorer != nil {
		a.scorer.Release()
	}
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if a.feedbackRepo != nil {
		if err := a.feedbackRepo.Close(); err != nil {
			a.logger.Error("error closing feedback repository", "err", err)
			errs = append(errs, err)
		}
	}
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			a.logger.Error("error closing vector index", "err", err)
			errs = append(errs, err)
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Config returns the configuration the App was opened with.
func (a *App) Config() *Config {
	return a.config
}

// VectorIndex returns the configured candidate and standards index.
func (a *App) VectorIndex() storage.VectorIndex {
	return a.index
}

// FeedbackRepository returns the configured feedback store.
func (a *App) FeedbackRepository() storage.FeedbackRepository {
	return a.feedbackRepo
}

// AIProvider returns the embedding and generation provider.
func (a *App) AIProvider() ai.AIProvider {
	return a.provider
}

// FeedbackService returns the service recording and summarizing votes.
func (a *App) FeedbackService() *feedback.Service {
	return a.service
}

// NewSearcher builds a searcher over the configured collections with
// feedback weights and prompt adjustment. opts are applied last.
func (a *App) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	cfg := a.config
	base := []search.Option{
		search.WithLogger(a.logger),
		search.WithCollections(cfg.CandidatesCollection, cfg.StandardsCollection),
		search.WithPromptAdjuster(a.service),
		search.WithRankerOptions(search.WithMinWeight(cfg.MinWeight)),
	}
	if cfg.RetrievalTimeout > 0 {
		base = append(base, search.WithRankerOptions(search.WithRetrievalTimeout(cfg.RetrievalTimeout)))
	}
	if cfg.GenerationTimeout > 0 {
		base = append(base, search.WithExplainerOptions(search.WithGenerationTimeout(cfg.GenerationTimeout)))
	}
	return search.NewSearcher(a.index, a.provider, a.scorer, append(base, opts...)...)
}

// HealthChecker builds a checker over the index and every networked backend.
func (a *App) HealthChecker() (*health.Checker, error) {
	opts := []health.Option{
		health.WithCollections(a.config.CandidatesCollection, a.config.StandardsCollection),
		health.WithVersion(a.config.Version),
		health.WithLogger(a.logger.With("component", "health")),
	}
	for name, p := range a.dependencies {
		opts = append(opts, health.WithDependency(name, p))
	}
	return health.NewChecker(a.index, opts...)
}

// NewIndexer builds an indexer writing through the configured embedder.
// A nil config uses indexer.DefaultConfig with the App's vector size.
func (a *App) NewIndexer(config *indexer.Config, progress io.Writer) (*indexer.Indexer, error) {
	if config == nil {
		config = indexer.DefaultConfig()
		config.VectorSize = a.config.VectorSize
	}
	return indexer.NewIndexer(a.index, a.provider.Embedder(), config, progress,
		indexer.WithLogger(a.logger))
}

// NewServer builds the HTTP server over a fresh searcher.
func (a *App) NewServer(opts ...api.Option) (*api.Server, error) {
	searcher, err := a.NewSearcher()
	if err != nil {
		return nil, err
	}
	checker, err := a.HealthChecker()
	if err != nil {
		return nil, err
	}
	base := []api.Option{
		api.WithLogger(a.logger.With("component", "api")),
		api.WithIdentity(a.config.AppName, a.config.Version),
	}
	return api.NewServer(searcher, a.service, checker, append(base, opts...)...)
}
