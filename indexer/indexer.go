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

package indexer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/scout/ai"
	"github.com/poiesic/scout/storage"
)

// Config holds configuration for an indexing run.
type Config struct {
	// BatchSize is the number of documents embedded per call.
	BatchSize int

	// ReportInterval is how often to report progress, in documents.
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// Workers is the number of batches embedded concurrently.
	Workers int

	// VectorSize is the embedding dimension used when creating a collection.
	VectorSize uint64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Workers:        4,
		VectorSize:     1024,
	}
}

// Indexer writes documents into a vector index collection.
type Indexer struct {
	index     storage.VectorIndex
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger.With("component", "indexer")
		return nil
	}
}

// NewIndexer creates a new indexer. Progress is written to progress,
// typically os.Stderr; nil discards it. Call Release when done.
func NewIndexer(index storage.VectorIndex, embedder ai.Embedder, config *Config, progress io.Writer, opts ...Option) (*Indexer, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	i := &Indexer{
		index:    index,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(max(config.Workers, 1))
	if err != nil {
		return nil, err
	}
	i.pool = pool

	retry := RetryPolicy{
		MaxAttempts: max(config.MaxRetries, 1),
		BaseDelay:   config.RetryDelay,
		MaxDelay:    30 * time.Second,
	}
	i.processor = NewBatchProcessor(index, embedder, retry, i.logger)
	return i, nil
}

// Release stops the worker pool.
func (i *Indexer) Release() {
	if i.pool != nil {
		i.pool.Release()
	}
}

// Run ensures collection exists and upserts every document into it.
// The first failing batch cancels the remaining ones and its error is returned.
func (i *Indexer) Run(ctx context.Context, collection string, docs []Document) error {
	if err := i.index.EnsureCollection(ctx, collection, i.config.VectorSize); err != nil {
		return fmt.Errorf("failed to prepare collection %s: %w", collection, err)
	}

	total := len(docs)
	if total == 0 {
		fmt.Fprintf(i.progress, "No documents to index into %s (0 documents)\n", collection)
		return nil
	}

	batchSize := max(i.config.BatchSize, 1)
	fmt.Fprintf(i.progress, "Indexing %d documents into %s (batch size: %d)\n", total, collection, batchSize)

	tracker := NewProgressTracker(i.progress, collection, total, i.config.ReportInterval)
	tracker.Start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for start := 0; start < total; start += batchSize {
		batch := docs[start:min(start+batchSize, total)]
		offset := start

		wg.Add(1)
		err := i.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := i.processor.Process(ctx, collection, batch); err != nil {
				fail(fmt.Errorf("failed to process batch at %d: %w", offset, err))
				return
			}
			tracker.Add(len(batch))
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		i.logger.Error("indexing failed", "collection", collection, "indexed", tracker.Current(), "err", firstErr)
		return firstErr
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	i.logger.Info("indexing complete", "collection", collection, "documents", total, "elapsed", elapsed)
	fmt.Fprintf(i.progress, "Indexing complete. Indexed %d documents in %v\n", total, elapsed.Round(time.Millisecond))
	return nil
}
