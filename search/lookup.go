package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

const (
	// DefaultStandardsCollection is the collection holding professional standards.
	DefaultStandardsCollection = "professional_standards"

	// DefaultLookupTimeout bounds a single standard lookup.
	DefaultLookupTimeout = 3 * time.Second
)

// StandardLookup finds the professional standard of an industry.
type StandardLookup struct {
	index      storage.VectorIndex
	collection string
	timeout    time.Duration
	logger     *slog.Logger
}

// LookupOption configures a StandardLookup.
type LookupOption func(*StandardLookup) error

// WithLookupTimeout bounds each lookup. Default is DefaultLookupTimeout.
func WithLookupTimeout(timeout time.Duration) LookupOption {
	return func(l *StandardLookup) error {
		if timeout <= 0 {
			return fmt.Errorf("lookup timeout must be positive, got %s", timeout)
		}
		l.timeout = timeout
		return nil
	}
}

// NewStandardLookup creates a lookup over collection. An empty collection
// name selects DefaultStandardsCollection; a nil logger selects the default.
func NewStandardLookup(index storage.VectorIndex, collection string, logger *slog.Logger, opts ...LookupOption) (*StandardLookup, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if collection == "" {
		collection = DefaultStandardsCollection
	}
	if logger == nil {
		logger = slog.Default().With("component", "standard_lookup")
	}
	l := &StandardLookup{index: index, collection: collection, timeout: DefaultLookupTimeout, logger: logger}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Lookup returns the first standard whose industry equals industry.
// Lookup never fails: a missing industry, an empty result, an index error
// or a timeout yields the empty standard.
func (l *StandardLookup) Lookup(ctx context.Context, industry string) core.Standard {
	if industry == "" {
		return core.Standard{}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	points, err := l.index.Query(ctx, l.collection, &storage.QueryRequest{
		Filter: &storage.Filter{Must: []storage.Condition{storage.NewMatch("industry", industry)}},
		Limit:  1,
	})
	if err != nil {
		l.logger.Warn("standard lookup failed", "industry", industry, "err", err)
		return core.Standard{}
	}
	if len(points) == 0 {
		l.logger.Warn("no professional standard for industry", "industry", industry)
		return core.Standard{}
	}

	var std core.Standard
	if err := decodePayload(points[0].Payload, &std); err != nil {
		l.logger.Warn("undecodable professional standard", "industry", industry, "err", err)
		return core.Standard{}
	}
	bare := std
	bare.Industry = ""
	if bare.IsEmpty() {
		l.logger.Warn("professional standard carries no enrichment data", "industry", industry)
	}
	return std
}
