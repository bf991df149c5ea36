package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/scout/ai"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

// DefaultCandidatesCollection is the collection holding candidate profiles.
const DefaultCandidatesCollection = "candidates"

// Reference point for location filters (Kouvola).
const (
	ReferenceLat = 60.9634
	ReferenceLon = 25.6712
)

// Retrieval runs one retrieval pass.
type Retrieval interface {
	Search(ctx context.Context, q core.Query) ([]core.Hit, error)
}

// Retriever runs retrieval passes against the candidate collection.
type Retriever struct {
	index      storage.VectorIndex
	embedder   ai.Embedder
	collection string
	logger     *slog.Logger
}

var _ Retrieval = (*Retriever)(nil)

// NewRetriever creates a retriever. An empty collection name selects
// DefaultCandidatesCollection; a nil logger selects the default.
func NewRetriever(index storage.VectorIndex, embedder ai.Embedder, collection string, logger *slog.Logger) (*Retriever, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == "" {
		collection = DefaultCandidatesCollection
	}
	if logger == nil {
		logger = slog.Default().With("component", "retriever")
	}
	return &Retriever{index: index, embedder: embedder, collection: collection, logger: logger}, nil
}

// BuildFilter translates the filters of q into index conditions.
// Returns nil when q sets no filter.
func BuildFilter(q core.Query) *storage.Filter {
	var must []storage.Condition
	if q.RadiusKm != nil {
		must = append(must, storage.NewGeoRadius("location.coordinates", ReferenceLat, ReferenceLon, *q.RadiusKm*1000))
	}
	if q.Salary != nil {
		must = append(must, storage.NewRange("salary", float64(q.Salary.Min), float64(q.Salary.Max)))
	}
	if q.Industry != "" {
		must = append(must, storage.NewMatch("industry", q.Industry))
	}
	if len(must) == 0 {
		return nil
	}
	return &storage.Filter{Must: must}
}

// Search embeds q.Text, queries the top q.Limit candidates and scores
// them as round2(similarity*100*weight). Rank follows index order.
func (r *Retriever) Search(ctx context.Context, q core.Query) ([]core.Hit, error) {
	vector, err := r.embedder.EmbedQuery(ctx, q.Text)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("%w: embed query: %w", core.ErrUpstreamUnavailable, err)
	}

	points, err := r.index.Query(ctx, r.collection, &storage.QueryRequest{
		Vector: vector,
		Filter: BuildFilter(q),
		Limit:  q.Limit,
	})
	if err != nil {
		r.logger.Error("error querying candidates", "collection", r.collection, "err", err)
		return nil, fmt.Errorf("%w: query candidates: %w", core.ErrUpstreamUnavailable, err)
	}

	hits := make([]core.Hit, 0, len(points))
	for i, point := range points {
		candidate, err := decodeCandidate(point)
		if err != nil {
			return nil, fmt.Errorf("%w: decode candidate %d: %w", core.ErrUpstreamUnavailable, point.ID, err)
		}
		hits = append(hits, core.Hit{
			Candidate: candidate,
			Score:     core.Round2(float64(point.Score) * 100 * q.Weights.Weight(candidate.ID)),
			Rank:      i + 1,
		})
	}
	r.logger.Debug("retrieval pass complete", "limit", q.Limit, "hits", len(hits), "weighted", q.Weights != nil)
	return hits, nil
}
