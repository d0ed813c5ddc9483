package feedback

import (
	"time"

	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// Templated suggestions keyed by the dimension they address, used when
// the AI collaborator is unavailable or its response can't be parsed.
var fallbackSuggestions = map[string][]string{
	entities.DimensionClarity: {
		"Shorten long sentences and pause between ideas",
		"Define jargon the first time you use it",
	},
	entities.DimensionEngagement: {
		"Ask your audience direct questions",
		"Include examples or stories to illustrate your points",
	},
	entities.DimensionStructure: {
		"Add transitions between topics",
		"Open each segment by saying where it is going",
	},
	entities.DimensionEnergy: {
		"Vary your tone and pace",
		"Stand up while recording to lift vocal energy",
	},
	entities.DimensionProfessionalism: {
		"Trim filler words in editing",
		"Close with a clear call to action",
	},
}

// localAnalysis builds a deterministic best-effort result from metrics
// alone. Used whenever the AI path fails; the caller always receives a
// valid AnalysisResult, never an error screen.
func (e *Engine) localAnalysis(metrics entities.ContentMetrics, depth entities.AnalysisDepth, focusArea string) *entities.AnalysisResult {
	scores := e.scoring.MetricScores(metrics)

	// Suggest against the two weakest dimensions, in stable order.
	type dimScore struct {
		name  string
		score float64
	}
	ranked := make([]dimScore, 0, len(entities.Dimensions))
	for _, dim := range entities.Dimensions {
		v, _ := scores.Dimension(dim)
		ranked = append(ranked, dimScore{dim, v})
	}
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			if ranked[j].score < ranked[i].score {
				ranked[i], ranked[j] = ranked[j], ranked[i]
			}
		}
	}

	suggestions := make([]string, 0, 4)
	for _, weak := range ranked[:2] {
		suggestions = append(suggestions, fallbackSuggestions[weak.name]...)
	}
	if focusArea != "" {
		if focused, ok := fallbackSuggestions[focusArea]; ok {
			suggestions = append(focused, suggestions...)
		}
	}

	return &entities.AnalysisResult{
		Metrics:           metrics,
		Scores:            scores,
		NarrativeFeedback: fallbackNarrative(metrics),
		Suggestions:       suggestions,
		Depth:             depth,
		FocusArea:         focusArea,
		Source:            entities.AnalysisSourceFallback,
		GeneratedAt:       time.Now(),
	}
}

// fallbackNarrative mirrors the word-count buckets the product has
// always used for offline feedback.
func fallbackNarrative(metrics entities.ContentMetrics) string {
	switch {
	case metrics.WordCount < 50:
		return "Very brief content. Consider expanding your points."
	case metrics.WordCount < 200:
		return "Moderate content length. Good for concise communication."
	default:
		return "Substantial content. Good for detailed discussions."
	}
}
