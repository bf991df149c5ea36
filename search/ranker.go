package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/scout/core"
)

const (
	// DefaultBroadLimit is the size of the unweighted first pass.
	DefaultBroadLimit = 100

	// DefaultMinWeight is the smallest multiplier applied to a similarity score.
	DefaultMinWeight = 0.1

	// DefaultRetrievalTimeout bounds each retrieval pass.
	DefaultRetrievalTimeout = 10 * time.Second
)

// WeightSource produces feedback weights for a set of candidates.
type WeightSource interface {
	Weights(ctx context.Context, ids []string) (core.WeightMap, error)
}

// Ranker runs the broad and narrow retrieval passes.
type Ranker struct {
	retriever        Retrieval
	weights          WeightSource
	broadLimit       int
	minWeight        float64
	retrievalTimeout time.Duration
	feedbackTimeout  time.Duration
	logger           *slog.Logger
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker) error

// WithBroadLimit sets the size of the first pass. Default is DefaultBroadLimit.
func WithBroadLimit(limit int) RankerOption {
	return func(r *Ranker) error {
		if limit < 1 {
			return fmt.Errorf("broad limit must be positive, got %d", limit)
		}
		r.broadLimit = limit
		return nil
	}
}

// WithMinWeight sets the floor applied to feedback weights at scoring time.
// A negative value disables the floor, letting weights scale scores to zero
// or below. Default is DefaultMinWeight.
func WithMinWeight(minWeight float64) RankerOption {
	return func(r *Ranker) error {
		r.minWeight = minWeight
		return nil
	}
}

// WithRetrievalTimeout bounds each retrieval pass. Default is DefaultRetrievalTimeout.
func WithRetrievalTimeout(timeout time.Duration) RankerOption {
	return func(r *Ranker) error {
		if timeout <= 0 {
			return fmt.Errorf("retrieval timeout must be positive, got %s", timeout)
		}
		r.retrievalTimeout = timeout
		return nil
	}
}

// WithFeedbackTimeout bounds the feedback weight computation between the
// two passes. When unset the retrieval timeout applies.
func WithFeedbackTimeout(timeout time.Duration) RankerOption {
	return func(r *Ranker) error {
		if timeout <= 0 {
			return fmt.Errorf("feedback timeout must be positive, got %s", timeout)
		}
		r.feedbackTimeout = timeout
		return nil
	}
}

// WithRankerLogger sets a custom logger.
func WithRankerLogger(logger *slog.Logger) RankerOption {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a ranker.
func NewRanker(retriever Retrieval, weights WeightSource, opts ...RankerOption) (*Ranker, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if weights == nil {
		return nil, ErrWeightSourceRequired
	}
	r := &Ranker{
		retriever:        retriever,
		weights:          weights,
		broadLimit:       DefaultBroadLimit,
		minWeight:        DefaultMinWeight,
		retrievalTimeout: DefaultRetrievalTimeout,
		logger:           slog.Default().With("component", "ranker"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// EffectiveWeight returns the multiplier applied for a raw feedback weight.
func (r *Ranker) EffectiveWeight(weight float64) float64 {
	if r.minWeight < 0 {
		return weight
	}
	return max(weight, r.minWeight)
}

// Rank returns up to req.TopK candidates ordered by feedback-adjusted score.
func (r *Ranker) Rank(ctx context.Context, req core.SearchRequest) ([]core.Hit, error) {
	return r.RankWithMonitor(ctx, req, nil)
}

// RankWithMonitor is Rank with stage callbacks. The monitor sees the raw
// feedback weights; scoring uses EffectiveWeight of each.
func (r *Ranker) RankWithMonitor(ctx context.Context, req core.SearchRequest, monitor SearchMonitor) ([]core.Hit, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	topK := req.TopK
	if topK <= 0 {
		topK = core.DefaultTopK
	}
	base := core.Query{
		Text:     req.Query,
		Industry: req.Industry,
		Salary:   req.SalaryRange,
		RadiusKm: req.LocationFilter,
	}

	broadQuery := base
	broadQuery.Limit = r.broadLimit
	broad, err := r.retrieve(ctx, broadQuery)
	if err != nil {
		return nil, err
	}
	monitor.AfterBroadPass(broad)
	if len(broad) == 0 {
		return nil, core.ErrNotFound
	}

	ids := make([]string, len(broad))
	for i, hit := range broad {
		ids[i] = hit.Candidate.ID
	}
	weights, err := r.feedbackWeights(ctx, ids)
	if err != nil {
		return nil, err
	}
	monitor.AfterFeedbackWeights(weights)

	effective := make(core.WeightMap, len(weights))
	for id, w := range weights {
		effective[id] = r.EffectiveWeight(w)
	}

	narrowQuery := base
	narrowQuery.Limit = topK
	narrowQuery.Weights = effective
	narrow, err := r.retrieve(ctx, narrowQuery)
	if err != nil {
		return nil, err
	}
	if len(narrow) == 0 {
		return nil, core.ErrNotFound
	}

	// Ties keep retrieval order.
	slices.SortStableFunc(narrow, func(a, b core.Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	monitor.AfterNarrowPass(narrow)

	r.logger.Debug("ranking complete", "broad", len(broad), "narrow", len(narrow))
	return narrow, nil
}

func (r *Ranker) feedbackWeights(ctx context.Context, ids []string) (core.WeightMap, error) {
	timeout := r.feedbackTimeout
	if timeout == 0 {
		timeout = r.retrievalTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	weights, err := r.weights.Weights(ctx, ids)
	if err != nil {
		r.logger.Error("error computing feedback weights", "candidates", len(ids), "err", err)
		if !errors.Is(err, core.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: feedback weights: %w", core.ErrUpstreamUnavailable, err)
		}
		return nil, err
	}
	return weights, nil
}

func (r *Ranker) retrieve(ctx context.Context, q core.Query) ([]core.Hit, error) {
	ctx, cancel := context.WithTimeout(ctx, r.retrievalTimeout)
	defer cancel()

	hits, err := r.retriever.Search(ctx, q)
	if err != nil {
		if !errors.Is(err, core.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", core.ErrUpstreamUnavailable, err)
		}
		return nil, err
	}
	return hits, nil
}
