package feedback

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
	pkgai "github.com/bymediadev/SoapBoxx/pkg/ai"
	"github.com/bymediadev/SoapBoxx/pkg/config"
)

// fakeCompleter scripts completion responses per call.
type fakeCompleter struct {
	mu        sync.Mutex
	calls     int
	responses []string
	err       error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, maxTokens int, tier entities.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return assessmentJSON(7), nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func assessmentJSON(rating float64) string {
	return fmt.Sprintf(`{
		"clarity": %[1]f, "engagement": %[1]f, "structure": %[1]f,
		"energy": %[1]f, "professionalism": %[1]f,
		"listener_feedback": "Scripted feedback.",
		"coaching_suggestions": ["Scripted suggestion"],
		"confidence": 0.8
	}`, rating)
}

func testFeedbackConfig() *config.FeedbackConfig {
	return &config.FeedbackConfig{
		DefaultDepth: "standard",
		BlendRatio:   0.5,
		CacheTTL:     time.Minute,
		CacheMaxSize: 16,
	}
}

func newTestEngine(t *testing.T, completer pkgai.Completer, cfg *config.FeedbackConfig) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = testFeedbackConfig()
	}
	engine, err := NewEngine(completer, cfg, entities.DefaultScoringWeights(), nil)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

const sampleTranscript = "Welcome to the show. Today we cover microphones. Which microphone should you buy first?"

func TestAnalyzeRejectsEmptyTranscript(t *testing.T) {
	engine := newTestEngine(t, &fakeCompleter{}, nil)

	for _, input := range []string{"", "   \n\t"} {
		_, err := engine.Analyze(context.Background(), input, AnalyzeOptions{})
		if err == nil {
			t.Fatalf("expected error for input %q", input)
		}
		if !apperrors.IsCode(err, apperrors.ErrorCode_INVALID_INPUT) {
			t.Errorf("expected INVALID_INPUT, got %v", err)
		}
	}
}

func TestAnalyzeRejectsUnknownDepth(t *testing.T) {
	engine := newTestEngine(t, &fakeCompleter{}, nil)

	_, err := engine.Analyze(context.Background(), sampleTranscript,
		AnalyzeOptions{Depth: "forensic"})
	if !apperrors.IsCode(err, apperrors.ErrorCode_INVALID_INPUT) {
		t.Errorf("expected INVALID_INPUT for unknown depth, got %v", err)
	}
}

func TestAnalyzeUsesAIAndCaches(t *testing.T) {
	completer := &fakeCompleter{}
	engine := newTestEngine(t, completer, nil)

	first, err := engine.Analyze(context.Background(), sampleTranscript, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if first.Source != entities.AnalysisSourceAI {
		t.Errorf("expected AI source, got %s", first.Source)
	}
	if first.NarrativeFeedback != "Scripted feedback." {
		t.Errorf("unexpected narrative: %q", first.NarrativeFeedback)
	}

	second, err := engine.Analyze(context.Background(), sampleTranscript, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("second analyze failed: %v", err)
	}
	if completer.callCount() != 1 {
		t.Errorf("expected one backend call for identical input, got %d", completer.callCount())
	}
	if second.GeneratedAt != first.GeneratedAt {
		t.Error("second call should return the cached result")
	}

	stats := engine.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("unexpected cache stats: %+v", stats)
	}
}

func TestAnalyzeDepthChangesCacheKey(t *testing.T) {
	completer := &fakeCompleter{}
	engine := newTestEngine(t, completer, nil)

	if _, err := engine.Analyze(context.Background(), sampleTranscript,
		AnalyzeOptions{Depth: entities.DepthBasic}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if _, err := engine.Analyze(context.Background(), sampleTranscript,
		AnalyzeOptions{Depth: entities.DepthExpert}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if completer.callCount() != 2 {
		t.Errorf("different depths must not share cache entries, got %d calls", completer.callCount())
	}
}

func TestAnalyzeRateLimited(t *testing.T) {
	cfg := testFeedbackConfig()
	cfg.RatePerMinute = 1
	engine := newTestEngine(t, &fakeCompleter{}, cfg)

	if _, err := engine.Analyze(context.Background(), sampleTranscript, AnalyzeOptions{}); err != nil {
		t.Fatalf("first analyze failed: %v", err)
	}

	_, err := engine.Analyze(context.Background(), "A different transcript entirely.", AnalyzeOptions{})
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	if !apperrors.IsCode(err, apperrors.ErrorCode_RATE_LIMITED) {
		t.Fatalf("expected RATE_LIMITED, got %v", err)
	}
	var appErr apperrors.AppError
	if !stderrors.As(err, &appErr) || appErr.Details["retry_after"] == "" {
		t.Error("rate limit error should carry retry_after detail")
	}
}

func TestAnalyzeFallsBackOnUnparseableResponse(t *testing.T) {
	completer := &fakeCompleter{responses: []string{"I refuse to answer in JSON."}}
	engine := newTestEngine(t, completer, nil)

	result, err := engine.Analyze(context.Background(), sampleTranscript, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("analyze should degrade, not fail: %v", err)
	}
	if result.Source != entities.AnalysisSourceFallback {
		t.Errorf("expected fallback source, got %s", result.Source)
	}
	if len(result.Suggestions) == 0 {
		t.Error("fallback result should carry suggestions")
	}
	if result.NarrativeFeedback == "" {
		t.Error("fallback result should carry a narrative")
	}
}

func TestAnalyzeFallsBackOnCompleterError(t *testing.T) {
	completer := &fakeCompleter{err: apperrors.ErrAuthFailed("openai")}
	engine := newTestEngine(t, completer, nil)

	result, err := engine.Analyze(context.Background(), sampleTranscript, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("analyze should degrade, not fail: %v", err)
	}
	if result.Source != entities.AnalysisSourceFallback {
		t.Errorf("expected fallback source, got %s", result.Source)
	}
	// Auth failures are permanent; no retry burns a second call.
	if completer.callCount() != 1 {
		t.Errorf("expected a single attempt for auth failure, got %d", completer.callCount())
	}
}

func TestAnalyzeWithoutCompleter(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	result, err := engine.Analyze(context.Background(), sampleTranscript, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if result.Source != entities.AnalysisSourceFallback {
		t.Errorf("expected fallback source, got %s", result.Source)
	}
	if result.Scores.Overall < 0 || result.Scores.Overall > 100 {
		t.Errorf("overall out of range: %f", result.Scores.Overall)
	}
}

func TestGetSpecificFeedbackCoercesUnknownFocus(t *testing.T) {
	engine := newTestEngine(t, &fakeCompleter{}, nil)

	result, err := engine.GetSpecificFeedback(context.Background(), sampleTranscript,
		"charisma", entities.DepthStandard)
	if err != nil {
		t.Fatalf("feedback failed: %v", err)
	}
	if result.FocusArea != entities.DimensionClarity {
		t.Errorf("unknown focus should coerce to clarity, got %q", result.FocusArea)
	}
}

func TestGetComparativeAnalysis(t *testing.T) {
	completer := &fakeCompleter{responses: []string{assessmentJSON(3), assessmentJSON(9)}}
	engine := newTestEngine(t, completer, nil)

	comparison, err := engine.GetComparativeAnalysis(context.Background(),
		"The first recording rambles on and on about nothing in particular today.",
		"The second recording is focused. What improved? Everything improved!")
	if err != nil {
		t.Fatalf("comparison failed: %v", err)
	}

	if len(comparison.Deltas) != len(entities.Dimensions) {
		t.Fatalf("expected %d deltas, got %d", len(entities.Dimensions), len(comparison.Deltas))
	}
	if comparison.OverallDelta <= 0 {
		t.Errorf("expected improvement, got delta %f", comparison.OverallDelta)
	}
	if len(comparison.Improvements) == 0 {
		t.Error("expected at least one improving dimension")
	}
	if comparison.Summary == "" {
		t.Error("expected a summary")
	}
}

func TestClearCache(t *testing.T) {
	completer := &fakeCompleter{}
	engine := newTestEngine(t, completer, nil)

	if _, err := engine.Analyze(context.Background(), sampleTranscript, AnalyzeOptions{}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	engine.ClearCache()
	if _, err := engine.Analyze(context.Background(), sampleTranscript, AnalyzeOptions{}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if completer.callCount() != 2 {
		t.Errorf("clear should force a recompute, got %d calls", completer.callCount())
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	limiter := newRateLimiter(2, 50*time.Millisecond)

	if !limiter.Allow() || !limiter.Allow() {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow() {
		t.Fatal("third request inside the window should be rejected")
	}
	if limiter.WaitTime() <= 0 {
		t.Error("expected a positive wait time while saturated")
	}

	time.Sleep(60 * time.Millisecond)
	if !limiter.Allow() {
		t.Error("request after the window slid should pass")
	}
}

func TestNormalizeFocus(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"clarity", "clarity"},
		{" Energy ", "energy"},
		{"PROFESSIONALISM", "professionalism"},
		{"charisma", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeFocus(tt.in); got != tt.want {
			t.Errorf("normalizeFocus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
