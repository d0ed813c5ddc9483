package feedback

import (
	"fmt"
	"strings"

	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

var focusInstructions = map[string]string{
	entities.DimensionClarity:         "Focus on how clear and understandable the speech is",
	entities.DimensionEngagement:      "Focus on how engaging and interesting the content is",
	entities.DimensionStructure:       "Focus on the organization and flow of ideas",
	entities.DimensionEnergy:          "Focus on vocal energy and enthusiasm",
	entities.DimensionProfessionalism: "Focus on professional delivery and polish",
}

var depthInstructions = map[entities.AnalysisDepth]string{
	entities.DepthBasic:         "Give a brief assessment with one suggestion per area.",
	entities.DepthStandard:      "Give a focused assessment with two or three concrete suggestions.",
	entities.DepthComprehensive: "Give a thorough assessment covering every dimension, with specific transcript references where useful.",
	entities.DepthExpert:        "Give an in-depth coaching assessment: cover every dimension, cite specific passages, and explain how a professional host would handle each weakness.",
}

// buildPrompt assembles the analysis prompt. Metrics are included as
// context so the model grounds its ratings in measurable properties of
// the transcript.
func buildPrompt(transcript string, metrics entities.ContentMetrics, depth entities.AnalysisDepth, focusArea string) string {
	var b strings.Builder

	b.WriteString("Analyze this podcast transcript and provide constructive feedback for the host.\n\n")
	fmt.Fprintf(&b, "TRANSCRIPT:\n%s\n\n", transcript)

	fmt.Fprintf(&b, "CONTENT METRICS (computed):\n")
	fmt.Fprintf(&b, "- words: %d, sentences: %d, avg sentence length: %.1f\n",
		metrics.WordCount, metrics.SentenceCount, metrics.AvgSentenceLength)
	fmt.Fprintf(&b, "- vocabulary diversity: %.2f, reading level: %s\n",
		metrics.VocabularyDiversity, metrics.ReadingLevel)
	fmt.Fprintf(&b, "- topic coherence: %.2f, engagement signals: %d\n",
		metrics.TopicCoherence, metrics.EngagementSignals)
	if metrics.SpeakingPaceWPM > 0 {
		fmt.Fprintf(&b, "- speaking pace: %.0f words/minute\n", metrics.SpeakingPaceWPM)
	}
	b.WriteString("\n")

	b.WriteString(depthInstructions[depth])
	b.WriteString("\n")
	if instruction, ok := focusInstructions[focusArea]; ok {
		b.WriteString(instruction)
		b.WriteString(".\n")
	}

	b.WriteString(`
Respond with JSON only, in this exact format:
{
    "clarity": 7,
    "engagement": 6,
    "structure": 7,
    "energy": 5,
    "professionalism": 8,
    "listener_feedback": "Brief assessment of how engaging and clear the content is",
    "coaching_suggestions": ["Specific suggestion 1", "Specific suggestion 2"],
    "key_strengths": ["Strength 1", "Strength 2"],
    "areas_for_improvement": ["Area 1", "Area 2"],
    "confidence": 0.85
}
Ratings are integers from 0 (poor) to 10 (excellent).
`)

	return b.String()
}
