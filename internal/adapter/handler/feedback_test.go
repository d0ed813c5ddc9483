package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/cache"
	"github.com/bymediadev/SoapBoxx/internal/usecase/feedback"
	pkgvalidator "github.com/bymediadev/SoapBoxx/pkg/validator"
)

// fakeService scripts feedback engine behavior for handler tests.
type fakeService struct {
	analyzeErr error
	cleared    bool
}

func (f *fakeService) Analyze(ctx context.Context, transcript string, opts feedback.AnalyzeOptions) (*entities.AnalysisResult, error) {
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return &entities.AnalysisResult{
		Depth:       entities.DepthStandard,
		FocusArea:   opts.FocusArea,
		Source:      entities.AnalysisSourceAI,
		GeneratedAt: time.Now(),
	}, nil
}

func (f *fakeService) GetSpecificFeedback(ctx context.Context, transcript, focusArea string, depth entities.AnalysisDepth) (*entities.AnalysisResult, error) {
	return f.Analyze(ctx, transcript, feedback.AnalyzeOptions{Depth: depth, FocusArea: focusArea})
}

func (f *fakeService) GetComparativeAnalysis(ctx context.Context, a, b string) (*entities.ComparativeAnalysis, error) {
	ra, _ := f.Analyze(ctx, a, feedback.AnalyzeOptions{})
	rb, _ := f.Analyze(ctx, b, feedback.AnalyzeOptions{})
	return &entities.ComparativeAnalysis{ResultA: ra, ResultB: rb, Summary: "comparable"}, nil
}

func (f *fakeService) CacheStats() cache.Stats { return cache.Stats{Hits: 3, Misses: 1, Size: 2} }
func (f *fakeService) ClearCache()             { f.cleared = true }

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAnalyzeHandler(t *testing.T) {
	h := NewFeedback(&fakeService{}, nil)
	c, rec := newTestContext(t, http.MethodPost, "/v1/feedback/analyze",
		`{"transcript": "Welcome to the show.", "depth": "standard"}`)

	if err := h.Analyze(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result entities.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Source != entities.AnalysisSourceAI {
		t.Errorf("unexpected source: %s", result.Source)
	}
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	h := NewFeedback(&fakeService{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing transcript", `{"depth": "standard"}`},
		{"unknown depth", `{"transcript": "hi", "depth": "forensic"}`},
		{"unknown focus", `{"transcript": "hi", "focus_area": "charisma"}`},
		{"malformed json", `{"transcript": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(t, http.MethodPost, "/v1/feedback/analyze", tt.body)
			if err := h.Analyze(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}

			var body struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.Code != string(apperrors.ErrorCode_INVALID_INPUT) {
				t.Errorf("expected INVALID_INPUT, got %s", body.Code)
			}
		})
	}
}

func TestAnalyzeHandlerRateLimited(t *testing.T) {
	h := NewFeedback(&fakeService{analyzeErr: apperrors.ErrRateLimited("feedback")}, nil)
	c, rec := newTestContext(t, http.MethodPost, "/v1/feedback/analyze",
		`{"transcript": "Welcome to the show."}`)

	if err := h.Analyze(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}

func TestCompareHandler(t *testing.T) {
	h := NewFeedback(&fakeService{}, nil)
	c, rec := newTestContext(t, http.MethodPost, "/v1/feedback/compare",
		`{"transcript_a": "First take.", "transcript_b": "Second take."}`)

	if err := h.Compare(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var comparison entities.ComparativeAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &comparison); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if comparison.Summary == "" {
		t.Error("expected a summary")
	}
}

func TestCacheEndpoints(t *testing.T) {
	svc := &fakeService{}
	h := NewFeedback(svc, nil)

	c, rec := newTestContext(t, http.MethodGet, "/v1/feedback/cache/stats", "")
	if err := h.CacheStats(c); err != nil {
		t.Fatalf("stats handler returned error: %v", err)
	}
	var stats cache.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.Hits != 3 || stats.Size != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	c, rec = newTestContext(t, http.MethodPost, "/v1/feedback/cache/clear", "")
	if err := h.CacheClear(c); err != nil {
		t.Fatalf("clear handler returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if !svc.cleared {
		t.Error("clear endpoint should reach the service")
	}
}
