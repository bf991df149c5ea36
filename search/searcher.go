package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/scout/ai"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

// PromptAdjuster supplies extra generation instructions learned from feedback.
type PromptAdjuster interface {
	PromptAdjustment(ctx context.Context) (string, error)
}

// Searcher runs the full candidate search pipeline.
type Searcher struct {
	lookup    *StandardLookup
	ranker    *Ranker
	explainer *Explainer
	adjuster  PromptAdjuster
	logger    *slog.Logger

	candidatesCollection string
	standardsCollection  string
	rankerOpts           []RankerOption
	explainerOpts        []ExplainerOption
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCollections overrides the candidate and standard collection names.
// Empty names keep the defaults.
func WithCollections(candidates, standards string) Option {
	return func(s *Searcher) error {
		if candidates != "" {
			s.candidatesCollection = candidates
		}
		if standards != "" {
			s.standardsCollection = standards
		}
		return nil
	}
}

// WithPromptAdjuster appends feedback-derived instructions to the
// explanation prompt.
func WithPromptAdjuster(adjuster PromptAdjuster) Option {
	return func(s *Searcher) error {
		s.adjuster = adjuster
		return nil
	}
}

// WithRankerOptions passes options through to the Ranker.
func WithRankerOptions(opts ...RankerOption) Option {
	return func(s *Searcher) error {
		s.rankerOpts = append(s.rankerOpts, opts...)
		return nil
	}
}

// WithExplainerOptions passes options through to the Explainer.
func WithExplainerOptions(opts ...ExplainerOption) Option {
	return func(s *Searcher) error {
		s.explainerOpts = append(s.explainerOpts, opts...)
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	index storage.VectorIndex,
	provider ai.AIProvider,
	weights WeightSource,
	opts ...Option,
) (*Searcher, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if weights == nil {
		return nil, ErrWeightSourceRequired
	}

	s := &Searcher{
		logger:               slog.Default().With("component", "searcher"),
		candidatesCollection: DefaultCandidatesCollection,
		standardsCollection:  DefaultStandardsCollection,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	var err error
	s.lookup, err = NewStandardLookup(index, s.standardsCollection, s.logger)
	if err != nil {
		return nil, err
	}
	retriever, err := NewRetriever(index, provider.Embedder(), s.candidatesCollection, s.logger)
	if err != nil {
		return nil, err
	}
	s.ranker, err = NewRanker(retriever, weights, append([]RankerOption{WithRankerLogger(s.logger)}, s.rankerOpts...)...)
	if err != nil {
		return nil, err
	}
	s.explainer, err = NewExplainer(provider.Generator(), append([]ExplainerOption{WithExplainerLogger(s.logger)}, s.explainerOpts...)...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Search returns up to req.TopK candidates for req.Query, ranked by
// feedback-adjusted similarity and explained by the generator.
func (s *Searcher) Search(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor is Search with stage callbacks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req core.SearchRequest, monitor SearchMonitor) (*core.SearchResponse, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := core.ValidateSearchRequest(&req); err != nil {
		return nil, err
	}
	monitor.Start(req)

	std := s.lookup.Lookup(ctx, req.Industry)
	monitor.AfterStandardLookup(std)

	enriched := req
	enriched.Query = EnrichQuery(req.Query, std)
	monitor.AfterEnrichment(enriched.Query)

	hits, err := s.ranker.RankWithMonitor(ctx, enriched, monitor)
	if err != nil {
		return nil, err
	}

	explanation := s.explainer.Explain(ctx, s.explanationQuery(ctx, enriched.Query), hits)
	monitor.AfterExplanation(explanation)
	if explanation.Degraded {
		s.logger.Warn("serving results without explanations", "reason", explanation.Reason)
	}

	names := make([]string, len(hits))
	for i, hit := range hits {
		names[i] = hit.Candidate.Name
	}
	resp := &core.SearchResponse{
		Query:   req.Query,
		Results: Assemble(hits, AlignExplanations(explanation.Text, names)),
	}
	monitor.Finish(resp)

	s.logger.Info("search complete", "results", len(resp.Results), "industry", req.Industry, "degraded", explanation.Degraded)
	return resp, nil
}

// explanationQuery appends the feedback prompt adjustment to query.
// Adjustment failures are logged and skipped.
func (s *Searcher) explanationQuery(ctx context.Context, query string) string {
	if s.adjuster == nil {
		return query
	}
	adjustment, err := s.adjuster.PromptAdjustment(ctx)
	if err != nil {
		s.logger.Warn("skipping feedback prompt adjustment", "err", err)
		return query
	}
	if adjustment == "" {
		return query
	}
	return query + "\n" + adjustment
}
