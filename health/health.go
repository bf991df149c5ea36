// Package health reports the state of the search backends.
package health

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/scout/storage"
)

// Version is reported by Check when no other version is configured.
const Version = "1.0.0"

// Index status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrIndexRequired is returned when a Checker has no vector index.
var ErrIndexRequired = errors.New("vector index required")

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexStatus describes both search collections.
type IndexStatus struct {
	Status                          string                  `json:"status"`
	CandidatesCollection            *storage.CollectionInfo `json:"candidates_collection,omitempty"`
	ProfessionalStandardsCollection *storage.CollectionInfo `json:"professional_standards_collection,omitempty"`
	Error                           string                  `json:"error,omitempty"`
}

// Report is the result of a health check.
type Report struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	IndexStatus  IndexStatus       `json:"index_status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Checker inspects the vector index and optional dependencies.
type Checker struct {
	index                storage.VectorIndex
	candidatesCollection string
	standardsCollection  string
	version              string
	dependencies         map[string]Pinger
	logger               *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker) error

// WithCollections overrides the collection names. Empty names keep the defaults.
func WithCollections(candidates, standards string) Option {
	return func(c *Checker) error {
		if candidates != "" {
			c.candidatesCollection = candidates
		}
		if standards != "" {
			c.standardsCollection = standards
		}
		return nil
	}
}

// WithVersion sets the reported version.
func WithVersion(version string) Option {
	return func(c *Checker) error {
		c.version = version
		return nil
	}
}

// WithDependency adds a named dependency to the report.
func WithDependency(name string, p Pinger) Option {
	return func(c *Checker) error {
		if p == nil {
			return nil
		}
		c.dependencies[name] = p
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChecker creates a Checker over index.
func NewChecker(index storage.VectorIndex, opts ...Option) (*Checker, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	c := &Checker{
		index:                index,
		candidatesCollection: "candidates",
		standardsCollection:  "professional_standards",
		version:              Version,
		dependencies:         make(map[string]Pinger),
		logger:               slog.Default().With("component", "health"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Check reports the service as healthy and describes the index. A failing
// collection lookup marks only the index status as an error.
func (c *Checker) Check(ctx context.Context) *Report {
	report := &Report{
		Status:      "healthy",
		Version:     c.version,
		IndexStatus: c.indexStatus(ctx),
	}
	if len(c.dependencies) > 0 {
		report.Dependencies = make(map[string]string, len(c.dependencies))
		for name, p := range c.dependencies {
			if err := p.Ping(ctx); err != nil {
				c.logger.Warn("dependency unreachable", "dependency", name, "err", err)
				report.Dependencies[name] = err.Error()
				continue
			}
			report.Dependencies[name] = StatusOK
		}
	}
	return report
}

func (c *Checker) indexStatus(ctx context.Context) IndexStatus {
	candidates, err := c.index.CollectionInfo(ctx, c.candidatesCollection)
	if err != nil {
		c.logger.Warn("candidate collection unavailable", "collection", c.candidatesCollection, "err", err)
		return IndexStatus{Status: StatusError, Error: err.Error()}
	}
	standards, err := c.index.CollectionInfo(ctx, c.standardsCollection)
	if err != nil {
		c.logger.Warn("standards collection unavailable", "collection", c.standardsCollection, "err", err)
		return IndexStatus{Status: StatusError, Error: err.Error()}
	}
	return IndexStatus{
		Status:                          StatusOK,
		CandidatesCollection:            candidates,
		ProfessionalStandardsCollection: standards,
	}
}
