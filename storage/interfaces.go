package storage

import (
	"context"

	"github.com/poiesic/scout/core"
)

// Point is a record stored in a vector index collection.
// Payload is an open JSON-style document (maps, slices, strings, float64, bool).
type Point struct {
	ID      core.ID
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a point returned by a query together with its similarity.
// Score is the raw cosine similarity in [-1, 1]; zero when the query had no vector.
type ScoredPoint struct {
	ID      core.ID
	Score   float32
	Payload map[string]any
}

// QueryRequest describes a nearest-neighbor query against one collection.
// When Vector is empty, points matching Filter are returned in storage order.
type QueryRequest struct {
	Vector []float32
	Filter *Filter
	Limit  int
}

// CollectionInfo summarizes the state of one collection.
type CollectionInfo struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	PointsCount uint64 `json:"points_count"`
	VectorSize  uint64 `json:"vector_size"`
}

// VectorIndex provides filtered nearest-neighbor search over named collections.
// Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// EnsureCollection creates the collection if it does not exist.
	// vectorSize is the embedding dimension; distance is always cosine.
	EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error

	// Upsert inserts or replaces points in a collection.
	Upsert(ctx context.Context, collection string, points ...*Point) error

	// Query returns up to req.Limit points ordered by similarity (highest first).
	// Returns ErrCollectionNotFound if the collection does not exist.
	Query(ctx context.Context, collection string, req *QueryRequest) ([]*ScoredPoint, error)

	// CollectionInfo reports point count and status of a collection.
	// Returns ErrCollectionNotFound if the collection does not exist.
	CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)

	// Close releases resources held by the index.
	Close() error
}

// FeedbackRepository persists feedback events and serves aggregates over them.
// Implementations must be thread-safe and support concurrent access.
type FeedbackRepository interface {
	// AddFeedback appends a feedback event.
	// Sets ID and CreatedAt if not already set and returns the stored event.
	AddFeedback(ctx context.Context, event *core.FeedbackEvent) (*core.FeedbackEvent, error)

	// CountsByCandidate returns up/down vote counts for each of the given candidates.
	// Candidates without feedback are present with zero counts.
	CountsByCandidate(ctx context.Context, candidateIDs ...string) (map[string]core.FeedbackCounts, error)

	// TagStats groups feedback events by their exact tag set and counts them.
	// When feedbackType is non-empty only events of that type are counted.
	// Results are ordered by count descending, then by tag key.
	TagStats(ctx context.Context, feedbackType core.FeedbackType) ([]core.TagCount, error)

	// Close releases resources held by the repository.
	Close() error
}
