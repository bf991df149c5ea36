// Package postgres implements storage.FeedbackRepository on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS feedback (
	id            SERIAL PRIMARY KEY,
	candidate_id  VARCHAR(100) NOT NULL,
	feedback_type VARCHAR(10)  NOT NULL,
	reason        TEXT,
	auto_tags     TEXT[]       NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_feedback_candidate_id ON feedback (candidate_id);
`

// Config holds PostgreSQL connection settings.
type Config struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	ConnectTimeout time.Duration
	MaxConns       int32
}

// DSN renders the keyword/value connection string.
func (c Config) DSN() string {
	sslMode := strings.TrimSpace(c.SSLMode)
	if sslMode == "" {
		sslMode = "disable"
	}
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		strings.TrimSpace(c.Host),
		port,
		strings.TrimSpace(c.User),
		c.Password,
		strings.TrimSpace(c.Name),
		sslMode,
	)
}

// FeedbackRepository implements storage.FeedbackRepository over a pgx pool.
type FeedbackRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ storage.FeedbackRepository = (*FeedbackRepository)(nil)

// Option configures a FeedbackRepository.
type Option func(*FeedbackRepository) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *FeedbackRepository) error {
		r.logger = logger
		return nil
	}
}

// Connect opens a pool, verifies connectivity and creates the feedback table
// when missing.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*FeedbackRepository, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres: %w", core.ErrUpstreamUnavailable, err)
	}

	r := &FeedbackRepository{
		pool:   pool,
		logger: slog.Default().With("component", "postgres"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			pool.Close()
			return nil, err
		}
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create feedback schema: %w", err)
	}
	r.logger.Info("connected", "host", cfg.Host, "database", cfg.Name)
	return r, nil
}

// AddFeedback inserts an event. The database assigns the ID.
func (r *FeedbackRepository) AddFeedback(ctx context.Context, event *core.FeedbackEvent) (*core.FeedbackEvent, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO feedback (candidate_id, feedback_type, reason, auto_tags, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		event.CandidateID, string(event.Type), event.Reason, event.Tags, event.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert feedback: %w", err)
	}
	event.ID = uint64(id)
	return event, nil
}

// CountsByCandidate aggregates votes for the given candidates in one query.
func (r *FeedbackRepository) CountsByCandidate(ctx context.Context, candidateIDs ...string) (map[string]core.FeedbackCounts, error) {
	result := make(map[string]core.FeedbackCounts, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return result, nil
	}
	for _, id := range candidateIDs {
		result[id] = core.FeedbackCounts{}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT candidate_id,
		        COUNT(*) FILTER (WHERE feedback_type = 'up'),
		        COUNT(*) FILTER (WHERE feedback_type = 'down')
		 FROM feedback
		 WHERE candidate_id = ANY($1)
		 GROUP BY candidate_id`,
		candidateIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       string
			up, down int64
		)
		if err := rows.Scan(&id, &up, &down); err != nil {
			return nil, err
		}
		result[id] = core.FeedbackCounts{Up: int(up), Down: int(down)}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TagStats groups events by their tag array.
func (r *FeedbackRepository) TagStats(ctx context.Context, feedbackType core.FeedbackType) ([]core.TagCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT auto_tags, COUNT(*)
		 FROM feedback
		 WHERE $1 = '' OR feedback_type = $1
		 GROUP BY auto_tags`,
		string(feedbackType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag stats: %w", err)
	}
	defer rows.Close()

	groups := make(map[string]*core.TagCount)
	for rows.Next() {
		var (
			tags  []string
			count int64
		)
		if err := rows.Scan(&tags, &count); err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []string{}
		}
		key := storage.TagKey(tags)
		if g, ok := groups[key]; ok {
			g.Count += int(count)
			continue
		}
		groups[key] = &core.TagCount{Tags: tags, Count: int(count)}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return storage.SortTagCounts(groups), nil
}

// Ping checks the connection pool.
func (r *FeedbackRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the pool.
func (r *FeedbackRepository) Close() error {
	r.pool.Close()
	return nil
}
