package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/scout/ai"
	"github.com/poiesic/scout/storage"
)

// BatchProcessor embeds one batch of documents and upserts it.
type BatchProcessor struct {
	index    storage.VectorIndex
	embedder ai.Embedder
	retry    RetryPolicy
	logger   *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(index storage.VectorIndex, embedder ai.Embedder, retry RetryPolicy, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		index:    index,
		embedder: embedder,
		retry:    retry,
		logger:   logger,
	}
}

// Process embeds docs as passages and upserts them into collection.
// Vectors are normalized so cosine and dot product agree.
func (bp *BatchProcessor) Process(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text
	}

	var embeddings [][]float32
	err := bp.retry.Do(ctx, bp.logger, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.retry.MaxAttempts, err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(docs), len(embeddings))
	}

	points := make([]*storage.Point, len(docs))
	for i := range docs {
		points[i] = &storage.Point{
			ID:      docs[i].ID,
			Vector:  NormalizeVector(embeddings[i]),
			Payload: docs[i].Payload,
		}
	}
	if err := bp.index.Upsert(ctx, collection, points...); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}
