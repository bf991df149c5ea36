// Package api exposes candidate search and feedback over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/feedback"
	"github.com/poiesic/scout/health"
	"github.com/poiesic/scout/report"
)

// PrefixV1 is the route prefix of the versioned API.
const PrefixV1 = "/api/v1"

// Default application identity.
const (
	DefaultAppName = "Recruitment AI Bot"
	DefaultVersion = "1.0.0"
)

// xlsxContentType is the media type of exported workbooks.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Searcher runs candidate searches.
type Searcher interface {
	Search(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error)
}

// FeedbackService records votes and reports statistics.
type FeedbackService interface {
	Record(ctx context.Context, candidateID string, feedbackType core.FeedbackType, reason string) (*feedback.RecordResult, error)
	Stats(ctx context.Context) ([]core.TagCount, error)
}

// HealthChecker reports backend health.
type HealthChecker interface {
	Check(ctx context.Context) *health.Report
}

// ErrDependencyRequired is returned when a Server is missing a collaborator.
var ErrDependencyRequired = errors.New("server dependency required")

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	searcher Searcher
	feedback FeedbackService
	health   HealthChecker
	appName  string
	version  string
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithIdentity sets the application name and version reported at "/".
func WithIdentity(appName, version string) Option {
	return func(s *Server) error {
		if appName != "" {
			s.appName = appName
		}
		if version != "" {
			s.version = version
		}
		return nil
	}
}

// NewServer creates a Server.
func NewServer(searcher Searcher, fb FeedbackService, checker HealthChecker, opts ...Option) (*Server, error) {
	if searcher == nil || fb == nil || checker == nil {
		return nil, ErrDependencyRequired
	}
	s := &Server{
		searcher: searcher,
		feedback: fb,
		health:   checker,
		appName:  DefaultAppName,
		version:  DefaultVersion,
		logger:   slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// App builds the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{AppName: s.appName})
	app.Use(accessLogMiddleware(s.logger))
	app.Use(errorMiddleware(s.logger))

	app.Get("/", s.root)
	s.RegisterRoutes(app.Group(PrefixV1))
	return app
}

// RegisterRoutes mounts the versioned routes on r.
func (s *Server) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/search", s.search)
	r.Post("/search/export", s.export)
	r.Post("/feedback", s.recordFeedback)
	r.Get("/feedback/stats", s.feedbackStats)
	r.Get("/health", s.checkHealth)
}

func (s *Server) root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"app":     s.appName,
		"version": s.version,
		"health":  PrefixV1 + "/health",
	})
}

func (s *Server) bindSearch(c fiber.Ctx) (core.SearchRequest, error) {
	var req core.SearchRequest
	if err := c.Bind().Body(&req); err != nil {
		return req, NewAppError(fiber.StatusBadRequest, "invalid request body", err)
	}
	return req, nil
}

func (s *Server) search(c fiber.Ctx) error {
	req, err := s.bindSearch(c)
	if err != nil {
		return err
	}
	resp, err := s.searcher.Search(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (s *Server) export(c fiber.Ctx) error {
	req, err := s.bindSearch(c)
	if err != nil {
		return err
	}
	resp, err := s.searcher.Search(c.Context(), req)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteExcel(&buf, resp.Query, resp.Results); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="candidates.xlsx"`)
	return c.Send(buf.Bytes())
}

type feedbackRequest struct {
	CandidateID  string `json:"candidate_id"`
	FeedbackType string `json:"feedback_type"`
	Reason       string `json:"reason"`
}

func (s *Server) recordFeedback(c fiber.Ctx) error {
	var req feedbackRequest
	if err := c.Bind().Body(&req); err != nil {
		return NewAppError(fiber.StatusBadRequest, "invalid request body", err)
	}
	ft := core.FeedbackType(strings.ToLower(strings.TrimSpace(req.FeedbackType)))
	result, err := s.feedback.Record(c.Context(), req.CandidateID, ft, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) feedbackStats(c fiber.Ctx) error {
	stats, err := s.feedback.Stats(c.Context())
	if err != nil {
		return err
	}
	if stats == nil {
		stats = []core.TagCount{}
	}
	return c.JSON(stats)
}

func (s *Server) checkHealth(c fiber.Ctx) error {
	return c.JSON(s.health.Check(c.Context()))
}
