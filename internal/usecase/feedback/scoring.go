package feedback

import (
	"fmt"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// ScoringModel blends metrics-derived components with AI-assessment
// ratings into the final 0-100 multi-dimension score.
//
// Each dimension is mapped to exactly one metric component:
//
//	clarity         <- avg sentence length (shorter reads clearer)
//	engagement      <- engagement signals per sentence
//	structure       <- topic coherence
//	energy          <- speaking pace (neutral 50 when pace unknown)
//	professionalism <- vocabulary diversity
//
// Every component is monotonic in its metric: improving the metric can
// never lower the dimension score while the AI assessment is held fixed.
type ScoringModel struct {
	weights entities.ScoringWeights
	// blend is the metrics share of each dimension score; the AI
	// assessment contributes the remaining 1-blend.
	blend float64
}

// NewScoringModel constructs a scoring model. Weight-sum violations are
// rejected here so they can never surface during scoring.
func NewScoringModel(weights entities.ScoringWeights, blend float64) (*ScoringModel, error) {
	if !weights.Valid() {
		return nil, apperrors.ErrScoringConfig(
			fmt.Sprintf("scoring weights must sum to 1.0, got %.6f", weights.Sum()))
	}
	if blend < 0 || blend > 1 {
		return nil, apperrors.ErrScoringConfig(
			fmt.Sprintf("blend ratio must be in [0,1], got %.2f", blend))
	}
	return &ScoringModel{weights: weights, blend: blend}, nil
}

// Score combines metrics and the qualitative assessment into a
// FeedbackScore. All outputs are clamped to [0, 100].
func (sm *ScoringModel) Score(metrics entities.ContentMetrics, assessment entities.AIAssessment) entities.FeedbackScore {
	score := entities.FeedbackScore{
		Clarity:         sm.blendDimension(clarityComponent(metrics), assessment.Clarity),
		Engagement:      sm.blendDimension(engagementComponent(metrics), assessment.Engagement),
		Structure:       sm.blendDimension(structureComponent(metrics), assessment.Structure),
		Energy:          sm.blendDimension(energyComponent(metrics), assessment.Energy),
		Professionalism: sm.blendDimension(professionalismComponent(metrics), assessment.Professionalism),
	}
	score.Overall = clamp(sm.weights.WeightedOverall(score))
	return score
}

// MetricScores returns the pure metrics-derived scores, used by the
// local fallback path when no AI assessment is available.
func (sm *ScoringModel) MetricScores(metrics entities.ContentMetrics) entities.FeedbackScore {
	score := entities.FeedbackScore{
		Clarity:         clarityComponent(metrics),
		Engagement:      engagementComponent(metrics),
		Structure:       structureComponent(metrics),
		Energy:          energyComponent(metrics),
		Professionalism: professionalismComponent(metrics),
	}
	score.Overall = clamp(sm.weights.WeightedOverall(score))
	return score
}

func (sm *ScoringModel) blendDimension(metricComponent, aiRating float64) float64 {
	return clamp(sm.blend*metricComponent + (1-sm.blend)*clamp(aiRating*10))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clarityComponent decreases as sentences grow past a conversational
// length of ~8 words; a 38-word average bottoms out at zero.
func clarityComponent(m entities.ContentMetrics) float64 {
	if m.WordCount == 0 {
		return 0
	}
	return clamp(100 * (1 - (m.AvgSentenceLength-8)/30))
}

// engagementComponent rises with question/exclamation density, saturating
// at one signal per two sentences.
func engagementComponent(m entities.ContentMetrics) float64 {
	if m.SentenceCount == 0 {
		return 0
	}
	density := float64(m.EngagementSignals) / float64(m.SentenceCount)
	return clamp(200 * density)
}

// structureComponent follows topic coherence directly.
func structureComponent(m entities.ContentMetrics) float64 {
	if m.WordCount == 0 {
		return 0
	}
	return clamp(100 * m.TopicCoherence)
}

// energyComponent rises with speaking pace, saturating at a brisk 160
// words per minute. Without a pace estimate the component is neutral.
func energyComponent(m entities.ContentMetrics) float64 {
	if m.SpeakingPaceWPM <= 0 {
		return 50
	}
	return clamp(100 * m.SpeakingPaceWPM / 160)
}

// professionalismComponent follows vocabulary diversity.
func professionalismComponent(m entities.ContentMetrics) float64 {
	if m.WordCount == 0 {
		return 0
	}
	return clamp(100 * m.VocabularyDiversity)
}
