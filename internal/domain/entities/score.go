package entities

import "math"

// Score dimension names, used as focus areas and map keys throughout.
const (
	DimensionClarity         = "clarity"
	DimensionEngagement      = "engagement"
	DimensionStructure       = "structure"
	DimensionEnergy          = "energy"
	DimensionProfessionalism = "professionalism"
)

// Dimensions lists all score dimensions in display order.
var Dimensions = []string{
	DimensionClarity,
	DimensionEngagement,
	DimensionStructure,
	DimensionEnergy,
	DimensionProfessionalism,
}

// FeedbackScore is the normalized multi-dimension coaching score. Every
// value, including Overall, lies in [0, 100].
type FeedbackScore struct {
	Clarity         float64 `json:"clarity"`
	Engagement      float64 `json:"engagement"`
	Structure       float64 `json:"structure"`
	Energy          float64 `json:"energy"`
	Professionalism float64 `json:"professionalism"`
	Overall         float64 `json:"overall"`
}

// Dimension returns the score for a named dimension, false for unknown
// names.
func (s FeedbackScore) Dimension(name string) (float64, bool) {
	switch name {
	case DimensionClarity:
		return s.Clarity, true
	case DimensionEngagement:
		return s.Engagement, true
	case DimensionStructure:
		return s.Structure, true
	case DimensionEnergy:
		return s.Energy, true
	case DimensionProfessionalism:
		return s.Professionalism, true
	}
	return 0, false
}

// ScoringWeights configures the weighted average behind Overall. The sum
// must equal 1.0 within WeightSumTolerance; violations are fatal at
// configuration load.
type ScoringWeights struct {
	Clarity         float64 `json:"clarity"`
	Engagement      float64 `json:"engagement"`
	Structure       float64 `json:"structure"`
	Energy          float64 `json:"energy"`
	Professionalism float64 `json:"professionalism"`
}

// WeightSumTolerance is the allowed deviation of the weight sum from 1.0.
const WeightSumTolerance = 1e-6

// DefaultScoringWeights returns the default dimension weighting.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Clarity:         0.25,
		Engagement:      0.25,
		Structure:       0.20,
		Energy:          0.15,
		Professionalism: 0.15,
	}
}

// Sum returns the total of all weights.
func (w ScoringWeights) Sum() float64 {
	return w.Clarity + w.Engagement + w.Structure + w.Energy + w.Professionalism
}

// Valid reports whether the weights sum to 1.0 within tolerance.
func (w ScoringWeights) Valid() bool {
	return math.Abs(w.Sum()-1.0) <= WeightSumTolerance
}

// WeightedOverall computes the overall score from dimension scores.
func (w ScoringWeights) WeightedOverall(s FeedbackScore) float64 {
	return s.Clarity*w.Clarity +
		s.Engagement*w.Engagement +
		s.Structure*w.Structure +
		s.Energy*w.Energy +
		s.Professionalism*w.Professionalism
}

// DimensionDelta is one row of a comparative analysis: how a dimension
// moved between transcript A and transcript B.
type DimensionDelta struct {
	Dimension string  `json:"dimension"`
	ScoreA    float64 `json:"score_a"`
	ScoreB    float64 `json:"score_b"`
	Delta     float64 `json:"delta"` // B - A
}
