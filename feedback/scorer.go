package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

const (
	// UpVoteBonus is added per up vote.
	UpVoteBonus = 2.0
	// DownVotePenalty is subtracted per down vote.
	DownVotePenalty = 3.0

	// DefaultChunkSize is the number of candidates per aggregate lookup.
	DefaultChunkSize = 25
)

// ErrRepositoryRequired is returned when a Scorer or Service has no feedback store.
var ErrRepositoryRequired = errors.New("feedback repository is required")

// Bonus converts vote counts into a ranking bonus.
func Bonus(counts core.FeedbackCounts) float64 {
	return UpVoteBonus*float64(counts.Up) - DownVotePenalty*float64(counts.Down)
}

// Scorer builds feedback weight maps from the feedback store.
// Lookups are chunked and fanned out on a bounded worker pool.
type Scorer struct {
	repo      storage.FeedbackRepository
	pool      *ants.Pool
	chunkSize int
	logger    *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer) error

// WithPoolSize sets the number of concurrent aggregate lookups.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Scorer) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithChunkSize sets how many candidates one lookup covers.
func WithChunkSize(size int) Option {
	return func(s *Scorer) error {
		if size < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		s.chunkSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewScorer creates a Scorer over repo. Call Release when done.
func NewScorer(repo storage.FeedbackRepository, opts ...Option) (*Scorer, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	s := &Scorer{
		repo:      repo,
		pool:      pool,
		chunkSize: DefaultChunkSize,
		logger:    slog.Default().With("component", "feedback_scorer"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}
	return s, nil
}

// Release stops the worker pool.
func (s *Scorer) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Bonus returns the feedback bonus of one candidate.
func (s *Scorer) Bonus(ctx context.Context, candidateID string) (float64, error) {
	counts, err := s.repo.CountsByCandidate(ctx, candidateID)
	if err != nil {
		return 0, fmt.Errorf("%w: feedback counts: %w", core.ErrUpstreamUnavailable, err)
	}
	return Bonus(counts[candidateID]), nil
}

// Weights returns 1.0 + bonus for every id. The map holds exactly the
// given ids; duplicates collapse into one entry.
func (s *Scorer) Weights(ctx context.Context, ids []string) (core.WeightMap, error) {
	weights := make(core.WeightMap, len(ids))
	if len(ids) == 0 {
		return weights, nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	for start := 0; start < len(ids); start += s.chunkSize {
		chunk := ids[start:min(start+s.chunkSize, len(ids))]
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			counts, err := s.repo.CountsByCandidate(ctx, chunk...)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for _, id := range chunk {
				weights[id] = 1.0 + Bonus(counts[id])
			}
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		s.logger.Error("feedback lookup failed", "candidates", len(ids), "err", firstErr)
		return nil, fmt.Errorf("%w: feedback counts: %w", core.ErrUpstreamUnavailable, firstErr)
	}
	return weights, nil
}
