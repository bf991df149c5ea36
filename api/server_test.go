package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/feedback"
	"github.com/poiesic/scout/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubSearcher struct {
	SearchFunc func(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error)
}

func (s *stubSearcher) Search(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
	return s.SearchFunc(ctx, req)
}

type stubFeedback struct {
	RecordFunc func(ctx context.Context, id string, ft core.FeedbackType, reason string) (*feedback.RecordResult, error)
	StatsFunc  func(ctx context.Context) ([]core.TagCount, error)
}

func (s *stubFeedback) Record(ctx context.Context, id string, ft core.FeedbackType, reason string) (*feedback.RecordResult, error) {
	return s.RecordFunc(ctx, id, ft, reason)
}

func (s *stubFeedback) Stats(ctx context.Context) ([]core.TagCount, error) {
	return s.StatsFunc(ctx)
}

type stubHealth struct{ report *health.Report }

func (s *stubHealth) Check(_ context.Context) *health.Report { return s.report }

func newTestServer(t *testing.T, searcher *stubSearcher, fb *stubFeedback) *Server {
	t.Helper()
	if searcher == nil {
		searcher = &stubSearcher{}
	}
	if fb == nil {
		fb = &stubFeedback{}
	}
	checker := &stubHealth{report: &health.Report{
		Status:      "healthy",
		Version:     "1.0.0",
		IndexStatus: health.IndexStatus{Status: health.StatusOK},
	}}
	server, err := NewServer(searcher, fb, checker)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, &stubFeedback{}, &stubHealth{})
	assert.ErrorIs(t, err, ErrDependencyRequired)
}

func TestSearchRoute(t *testing.T) {
	var got core.SearchRequest
	searcher := &stubSearcher{SearchFunc: func(_ context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
		got = req
		return &core.SearchResponse{
			Query: req.Query,
			Results: []core.RankedResult{{
				Candidate:   core.Candidate{ID: "c1", Name: "Aino", Skills: []string{}},
				MatchScore:  88.5,
				Explanation: "fits",
			}},
		}, nil
	}}
	server := newTestServer(t, searcher, nil)

	resp, body := doJSON(t, server, http.MethodPost, "/api/v1/search", map[string]any{
		"query":           "welder",
		"top_k":           3,
		"industry":        "Construction",
		"salary_range":    map[string]int{"min": 2000, "max": 4000},
		"location_filter": 30,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	assert.Equal(t, "welder", got.Query)
	assert.Equal(t, 3, got.TopK)
	assert.Equal(t, "Construction", got.Industry)
	require.NotNil(t, got.SalaryRange)
	assert.Equal(t, 4000, got.SalaryRange.Max)
	require.NotNil(t, got.LocationFilter)
	assert.Equal(t, 30.0, *got.LocationFilter)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "welder", decoded["query"])
	results := decoded["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "c1", first["id"])
	assert.Equal(t, 88.5, first["match_score"])
	assert.Equal(t, "fits", first["explanation"])
}

func TestSearchRoute_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"validation", fmt.Errorf("%w: %w", core.ErrValidation, core.ErrEmptyQuery), http.StatusBadRequest, "invalid request: query cannot be empty"},
		{"not found", core.ErrNotFound, http.StatusNotFound, MessageNotFound},
		{"upstream", fmt.Errorf("%w: dial tcp 10.0.0.3:6334", core.ErrUpstreamUnavailable), http.StatusServiceUnavailable, MessageUnavailable},
		{"unexpected", errors.New("secret internals"), http.StatusInternalServerError, MessageInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{SearchFunc: func(_ context.Context, _ core.SearchRequest) (*core.SearchResponse, error) {
				return nil, tt.err
			}}
			resp, body := doJSON(t, newTestServer(t, searcher, nil), http.MethodPost, "/api/v1/search", map[string]any{"query": "x"})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var decoded errorBody
			require.NoError(t, json.Unmarshal(body, &decoded))
			assert.Equal(t, tt.wantDetail, decoded.Detail)
		})
	}

	t.Run("panic is recovered", func(t *testing.T) {
		searcher := &stubSearcher{SearchFunc: func(_ context.Context, _ core.SearchRequest) (*core.SearchResponse, error) {
			panic("boom")
		}}
		resp, _ := doJSON(t, newTestServer(t, searcher, nil), http.MethodPost, "/api/v1/search", map[string]any{"query": "x"})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := newTestServer(t, nil, nil).App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestExportRoute(t *testing.T) {
	searcher := &stubSearcher{SearchFunc: func(_ context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
		return &core.SearchResponse{Query: req.Query, Results: []core.RankedResult{
			{Candidate: core.Candidate{Name: "Aino"}, MatchScore: 88.5},
		}}, nil
	}}
	resp, body := doJSON(t, newTestServer(t, searcher, nil), http.MethodPost, "/api/v1/search/export", map[string]any{"query": "welder"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Ranked Candidates", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Aino", name)
}

func TestFeedbackRoutes(t *testing.T) {
	var gotID, gotReason string
	var gotType core.FeedbackType
	fb := &stubFeedback{
		RecordFunc: func(_ context.Context, id string, ft core.FeedbackType, reason string) (*feedback.RecordResult, error) {
			gotID, gotType, gotReason = id, ft, reason
			if ft != core.FeedbackUp && ft != core.FeedbackDown {
				return nil, fmt.Errorf("%w: %w", core.ErrValidation, core.ErrInvalidFeedbackType)
			}
			return &feedback.RecordResult{Message: "Feedback saved", AutoTags: feedback.AutoTags(reason)}, nil
		},
		StatsFunc: func(_ context.Context) ([]core.TagCount, error) {
			return []core.TagCount{{Tags: []string{"salary"}, Count: 2}, {Tags: []string{}, Count: 1}}, nil
		},
	}
	server := newTestServer(t, nil, fb)

	t.Run("record", func(t *testing.T) {
		resp, body := doJSON(t, server, http.MethodPost, "/api/v1/feedback", map[string]string{
			"candidate_id":  "c1",
			"feedback_type": "Down",
			"reason":        "salary too low",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "c1", gotID)
		assert.Equal(t, core.FeedbackDown, gotType)
		assert.Equal(t, "salary too low", gotReason)
		assert.JSONEq(t, `{"message":"Feedback saved","auto_tags":["salary"]}`, string(body))
	})

	t.Run("invalid type", func(t *testing.T) {
		resp, _ := doJSON(t, server, http.MethodPost, "/api/v1/feedback", map[string]string{
			"candidate_id":  "c1",
			"feedback_type": "sideways",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("stats", func(t *testing.T) {
		resp, body := doJSON(t, server, http.MethodGet, "/api/v1/feedback/stats", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[{"tags":["salary"],"count":2},{"tags":[],"count":1}]`, string(body))
	})

	t.Run("stats unavailable", func(t *testing.T) {
		broken := newTestServer(t, nil, &stubFeedback{StatsFunc: func(context.Context) ([]core.TagCount, error) {
			return nil, fmt.Errorf("%w: connection reset", core.ErrUpstreamUnavailable)
		}})
		resp, _ := doJSON(t, broken, http.MethodGet, "/api/v1/feedback/stats", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestHealthAndRootRoutes(t *testing.T) {
	server := newTestServer(t, nil, nil)

	resp, body := doJSON(t, server, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0","index_status":{"status":"ok"}}`, string(body))

	resp, body = doJSON(t, server, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"app":"Recruitment AI Bot","version":"1.0.0","health":"/api/v1/health"}`, string(body))
}

func TestRequestIDPropagation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	resp, err := newTestServer(t, nil, nil).App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(RequestIDHeader))
}
