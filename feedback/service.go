package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

// RecordResult is returned after a vote is stored.
type RecordResult struct {
	Message  string   `json:"message"`
	AutoTags []string `json:"auto_tags"`
}

// Service records votes and reports statistics over them.
type Service struct {
	repo   storage.FeedbackRepository
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service) error

// WithServiceLogger sets a custom logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) error {
		s.logger = logger
		return nil
	}
}

// NewService creates a Service over repo.
func NewService(repo storage.FeedbackRepository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Service{
		repo:   repo,
		logger: slog.Default().With("component", "feedback_service"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Record validates and stores a vote, tagging it from reason.
func (s *Service) Record(ctx context.Context, candidateID string, feedbackType core.FeedbackType, reason string) (*RecordResult, error) {
	event := &core.FeedbackEvent{
		CandidateID: strings.TrimSpace(candidateID),
		Type:        feedbackType,
		Reason:      reason,
		Tags:        AutoTags(reason),
	}
	if err := core.ValidateFeedback(event); err != nil {
		return nil, err
	}

	stored, err := s.repo.AddFeedback(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("%w: store feedback: %w", core.ErrUpstreamUnavailable, err)
	}
	s.logger.Info("feedback recorded",
		"id", stored.ID,
		"candidate_id", stored.CandidateID,
		"type", stored.Type,
		"tags", stored.Tags)

	return &RecordResult{Message: "Feedback saved", AutoTags: stored.Tags}, nil
}

// Stats groups all votes by their tag set.
func (s *Service) Stats(ctx context.Context) ([]core.TagCount, error) {
	stats, err := s.repo.TagStats(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%w: tag stats: %w", core.ErrUpstreamUnavailable, err)
	}
	return stats, nil
}

// PromptAdjustment builds prompt instructions from down-vote statistics.
func (s *Service) PromptAdjustment(ctx context.Context) (string, error) {
	stats, err := s.repo.TagStats(ctx, core.FeedbackDown)
	if err != nil {
		return "", fmt.Errorf("%w: tag stats: %w", core.ErrUpstreamUnavailable, err)
	}
	return PromptAdjustment(stats), nil
}
