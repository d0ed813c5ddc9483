package entities

import "time"

// AnalysisDepth controls prompt verbosity, token budget and model tier.
type AnalysisDepth string

const (
	DepthBasic         AnalysisDepth = "basic"
	DepthStandard      AnalysisDepth = "standard"
	DepthComprehensive AnalysisDepth = "comprehensive"
	DepthExpert        AnalysisDepth = "expert"
)

// ModelTier selects the completion model class for a depth.
type ModelTier string

const (
	TierFast     ModelTier = "fast"
	TierStandard ModelTier = "standard"
	TierPremium  ModelTier = "premium"
)

// Valid reports whether d is a known depth.
func (d AnalysisDepth) Valid() bool {
	switch d {
	case DepthBasic, DepthStandard, DepthComprehensive, DepthExpert:
		return true
	}
	return false
}

// TokenBudget returns the completion token budget bound to the depth.
func (d AnalysisDepth) TokenBudget() int {
	switch d {
	case DepthBasic:
		return 300
	case DepthStandard:
		return 600
	case DepthExpert:
		return 1600
	default: // comprehensive
		return 1000
	}
}

// Tier returns the model tier bound to the depth.
func (d AnalysisDepth) Tier() ModelTier {
	switch d {
	case DepthBasic, DepthStandard:
		return TierFast
	case DepthExpert:
		return TierPremium
	default:
		return TierStandard
	}
}

// AIAssessment is the structured qualitative assessment parsed out of the
// AI completion. Ratings are 0-10 per dimension.
type AIAssessment struct {
	Clarity             float64  `json:"clarity"`
	Engagement          float64  `json:"engagement"`
	Structure           float64  `json:"structure"`
	Energy              float64  `json:"energy"`
	Professionalism     float64  `json:"professionalism"`
	ListenerFeedback    string   `json:"listener_feedback"`
	CoachingSuggestions []string `json:"coaching_suggestions"`
	KeyStrengths        []string `json:"key_strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	Confidence          float64  `json:"confidence"`
}

// Rating returns the 0-10 rating for a named dimension, false for
// unknown names.
func (a AIAssessment) Rating(name string) (float64, bool) {
	switch name {
	case DimensionClarity:
		return a.Clarity, true
	case DimensionEngagement:
		return a.Engagement, true
	case DimensionStructure:
		return a.Structure, true
	case DimensionEnergy:
		return a.Energy, true
	case DimensionProfessionalism:
		return a.Professionalism, true
	}
	return 0, false
}

// Analysis sources.
const (
	AnalysisSourceAI       = "ai"
	AnalysisSourceFallback = "local_fallback"
)

// AnalysisResult is the immutable aggregate handed to the presentation
// layer and retained in the analysis cache.
type AnalysisResult struct {
	Metrics           ContentMetrics `json:"metrics"`
	Scores            FeedbackScore  `json:"scores"`
	NarrativeFeedback string         `json:"narrative_feedback"`
	Suggestions       []string       `json:"suggestions"`
	Depth             AnalysisDepth  `json:"depth"`
	FocusArea         string         `json:"focus_area,omitempty"`
	Source            string         `json:"source"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// ComparativeAnalysis is the structural diff between two analyses.
type ComparativeAnalysis struct {
	ResultA      *AnalysisResult  `json:"result_a"`
	ResultB      *AnalysisResult  `json:"result_b"`
	Deltas       []DimensionDelta `json:"deltas"`
	OverallDelta float64          `json:"overall_delta"`
	Improvements []string         `json:"improvements"`
	Regressions  []string         `json:"regressions"`
	Summary      string           `json:"summary"`
}
