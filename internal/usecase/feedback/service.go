package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/cache"
	pkgai "github.com/bymediadev/SoapBoxx/pkg/ai"
	"github.com/bymediadev/SoapBoxx/pkg/config"
)

// Service defines the feedback engine surface consumed by the
// presentation layer.
type Service interface {
	Analyze(ctx context.Context, transcript string, opts AnalyzeOptions) (*entities.AnalysisResult, error)
	GetSpecificFeedback(ctx context.Context, transcript, focusArea string, depth entities.AnalysisDepth) (*entities.AnalysisResult, error)
	GetComparativeAnalysis(ctx context.Context, transcriptA, transcriptB string) (*entities.ComparativeAnalysis, error)
	CacheStats() cache.Stats
	ClearCache()
}

// AnalyzeOptions tunes a single analysis call. Zero values fall back to
// configured defaults.
type AnalyzeOptions struct {
	Depth     entities.AnalysisDepth
	FocusArea string
	// Duration of the underlying recording, for the speaking pace
	// estimate. Zero omits the pace.
	Duration time.Duration
}

// Engine orchestrates metrics extraction, AI invocation, scoring and
// caching. AI failures degrade to the local heuristic scorer; the only
// analysis errors surfaced to callers are invalid input and rate
// limiting, both caller-correctable.
type Engine struct {
	completer    pkgai.Completer
	extractor    *MetricsExtractor
	scoring      *ScoringModel
	parser       *Parser
	cache        *cache.AnalysisCache
	limiter      *rateLimiter
	defaultDepth entities.AnalysisDepth
	maxRetries   uint64
	logger       *zap.Logger
}

// NewEngine constructs the feedback engine. It owns its cache: the cache
// is created here and torn down with Close, no process-wide singleton.
func NewEngine(completer pkgai.Completer, cfg *config.FeedbackConfig, weights entities.ScoringWeights, logger *zap.Logger) (*Engine, error) {
	scoring, err := NewScoringModel(weights, cfg.BlendRatio)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		completer:    completer,
		extractor:    NewMetricsExtractor(),
		scoring:      scoring,
		parser:       NewParser(),
		cache:        cache.NewAnalysisCache(cfg.CacheTTL, cfg.CacheMaxSize),
		limiter:      newRateLimiter(cfg.RatePerMinute, time.Minute),
		defaultDepth: entities.AnalysisDepth(cfg.DefaultDepth),
		maxRetries:   2,
		logger:       logger,
	}, nil
}

// Close releases the engine's cache resources.
func (e *Engine) Close() {
	e.cache.Close()
}

// Analyze produces a full analysis of the transcript. Results are cached
// on (transcript, depth, focus) within the TTL; concurrent calls with
// the same key share a single backend invocation.
func (e *Engine) Analyze(ctx context.Context, transcript string, opts AnalyzeOptions) (*entities.AnalysisResult, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, apperrors.ErrInvalidInput("transcript is empty")
	}

	depth := opts.Depth
	if depth == "" {
		depth = e.defaultDepth
	}
	if !depth.Valid() {
		return nil, apperrors.ErrInvalidInput(fmt.Sprintf("unknown analysis depth: %s", depth))
	}

	focus := normalizeFocus(opts.FocusArea)

	if !e.limiter.Allow() {
		return nil, apperrors.ErrRateLimited("feedback").
			WithDetail("retry_after", e.limiter.WaitTime().String())
	}

	key := cache.Key(transcript, depth, focus)
	return e.cache.GetOrCompute(ctx, key, func() (*entities.AnalysisResult, error) {
		return e.compute(ctx, transcript, depth, focus, opts.Duration), nil
	})
}

// GetSpecificFeedback narrows the analysis to one dimension. An unknown
// focus area falls back to clarity.
func (e *Engine) GetSpecificFeedback(ctx context.Context, transcript, focusArea string, depth entities.AnalysisDepth) (*entities.AnalysisResult, error) {
	focus := normalizeFocus(focusArea)
	if focus == "" {
		focus = entities.DimensionClarity
	}
	return e.Analyze(ctx, transcript, AnalyzeOptions{Depth: depth, FocusArea: focus})
}

// GetComparativeAnalysis analyzes both transcripts (cache-aware) and
// returns the per-dimension delta with a regression/improvement summary.
func (e *Engine) GetComparativeAnalysis(ctx context.Context, transcriptA, transcriptB string) (*entities.ComparativeAnalysis, error) {
	resultA, err := e.Analyze(ctx, transcriptA, AnalyzeOptions{})
	if err != nil {
		return nil, err
	}
	resultB, err := e.Analyze(ctx, transcriptB, AnalyzeOptions{})
	if err != nil {
		return nil, err
	}

	const significant = 2.0

	comparison := &entities.ComparativeAnalysis{
		ResultA:      resultA,
		ResultB:      resultB,
		Deltas:       make([]entities.DimensionDelta, 0, len(entities.Dimensions)),
		OverallDelta: resultB.Scores.Overall - resultA.Scores.Overall,
		Improvements: make([]string, 0),
		Regressions:  make([]string, 0),
	}

	for _, dim := range entities.Dimensions {
		a, _ := resultA.Scores.Dimension(dim)
		b, _ := resultB.Scores.Dimension(dim)
		delta := b - a
		comparison.Deltas = append(comparison.Deltas, entities.DimensionDelta{
			Dimension: dim,
			ScoreA:    a,
			ScoreB:    b,
			Delta:     delta,
		})
		if delta >= significant {
			comparison.Improvements = append(comparison.Improvements, dim)
		} else if delta <= -significant {
			comparison.Regressions = append(comparison.Regressions, dim)
		}
	}

	switch {
	case comparison.OverallDelta >= significant:
		comparison.Summary = fmt.Sprintf("Overall improvement of %.1f points, strongest in %s.",
			comparison.OverallDelta, strings.Join(comparison.Improvements, ", "))
	case comparison.OverallDelta <= -significant:
		comparison.Summary = fmt.Sprintf("Overall regression of %.1f points, weakest in %s.",
			-comparison.OverallDelta, strings.Join(comparison.Regressions, ", "))
	default:
		comparison.Summary = "Both recordings score at a comparable level."
	}

	return comparison, nil
}

// CacheStats returns the analysis cache counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache drops all cached analyses.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// compute runs the full analysis pipeline for a cache miss. It never
/// returns an error: AI and parse failures degrade to the local heuristic
// result.
func (e *Engine) compute(ctx context.Context, transcript string, depth entities.AnalysisDepth, focus string, duration time.Duration) *entities.AnalysisResult {
	metrics := e.extractor.ExtractWithDuration(transcript, duration)

	if e.completer == nil {
		return e.localAnalysis(metrics, depth, focus)
	}

	completion, err := e.completeWithRetry(ctx, transcript, metrics, depth, focus)
	if err != nil {
		e.logger.Warn("AI completion failed, using local fallback",
			zap.String("depth", string(depth)),
			zap.String("code", apperrors.CodeOf(err).String()),
			zap.Error(err),
		)
		return e.localAnalysis(metrics, depth, focus)
	}

	assessment, err := e.parser.ParseAssessment(completion)
	if err != nil {
		e.logger.Warn("AI response did not parse, using local fallback",
			zap.String("depth", string(depth)),
			zap.Error(err),
		)
		return e.localAnalysis(metrics, depth, focus)
	}

	return &entities.AnalysisResult{
		Metrics:           metrics,
		Scores:            e.scoring.Score(metrics, assessment),
		NarrativeFeedback: assessment.ListenerFeedback,
		Suggestions:       assessment.CoachingSuggestions,
		Depth:             depth,
		FocusArea:         focus,
		Source:            entities.AnalysisSourceAI,
		GeneratedAt:       time.Now(),
	}
}

// completeWithRetry invokes the completion backend with bounded
// exponential backoff. Auth failures are permanent; retrying them only
// burns quota.
func (e *Engine) completeWithRetry(ctx context.Context, transcript string, metrics entities.ContentMetrics, depth entities.AnalysisDepth, focus string) (string, error) {
	prompt := buildPrompt(transcript, metrics, depth, focus)

	var completion string
	operation := func() error {
		result, err := e.completer.Complete(ctx, prompt, depth.TokenBudget(), depth.Tier())
		if err != nil {
			if apperrors.IsCode(err, apperrors.ErrorCode_AUTH_FAILED) {
				return backoff.Permanent(err)
			}
			return err
		}
		completion = result
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return completion, nil
}

// normalizeFocus maps a focus string onto a known dimension name, or
// empty for none.
func normalizeFocus(focus string) string {
	focus = strings.ToLower(strings.TrimSpace(focus))
	for _, dim := range entities.Dimensions {
		if focus == dim {
			return focus
		}
	}
	return ""
}
