package feedback

import (
	"strings"
	"time"
	"unicode"

	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// MetricsExtractor derives quantitative text statistics from a
// transcript. Pure and deterministic: no I/O, no errors, empty input
// yields all-zero metrics.
type MetricsExtractor struct{}

// NewMetricsExtractor creates a new MetricsExtractor instance
func NewMetricsExtractor() *MetricsExtractor {
	return &MetricsExtractor{}
}

// Extract computes metrics without a duration; speaking pace is omitted.
func (m *MetricsExtractor) Extract(transcript string) entities.ContentMetrics {
	return m.ExtractWithDuration(transcript, 0)
}

// ExtractWithDuration computes metrics including a words-per-minute
// estimate when duration is positive.
func (m *MetricsExtractor) ExtractWithDuration(transcript string, duration time.Duration) entities.ContentMetrics {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return entities.ContentMetrics{ReadingLevel: entities.ReadingLevelUndetermined}
	}

	words := tokenize(transcript)
	sentences := splitSentences(transcript)

	metrics := entities.ContentMetrics{
		WordCount:     len(words),
		SentenceCount: len(sentences),
	}

	if len(words) == 0 {
		metrics.ReadingLevel = entities.ReadingLevelUndetermined
		return metrics
	}

	unique := make(map[string]struct{}, len(words))
	syllables := 0
	for _, w := range words {
		unique[w] = struct{}{}
		syllables += countSyllables(w)
	}
	metrics.UniqueWords = len(unique)
	metrics.VocabularyDiversity = float64(len(unique)) / float64(len(words))

	if len(sentences) > 0 {
		metrics.AvgSentenceLength = float64(len(words)) / float64(len(sentences))
	}

	metrics.ReadingLevel = readingLevel(len(words), len(sentences), syllables)
	metrics.EngagementSignals = strings.Count(transcript, "?") + strings.Count(transcript, "!")
	metrics.TopicCoherence = topicCoherence(sentences)

	if duration > 0 {
		metrics.SpeakingPaceWPM = float64(len(words)) / duration.Minutes()
	}

	return metrics
}

// tokenize lowercases and splits on anything that is not a letter, digit
// or in-word apostrophe.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// splitSentences splits on terminal punctuation runs and drops empty
// fragments.
func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// countSyllables estimates syllables as vowel groups, with a silent-e
// adjustment. Every word counts at least one.
func countSyllables(word string) int {
	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// readingLevel buckets the Flesch-Kincaid grade estimate.
func readingLevel(words, sentences, syllables int) string {
	if words == 0 || sentences == 0 {
		return entities.ReadingLevelUndetermined
	}
	grade := 0.39*(float64(words)/float64(sentences)) +
		11.8*(float64(syllables)/float64(words)) - 15.59

	switch {
	case grade < 6:
		return entities.ReadingLevelElementary
	case grade < 9:
		return entities.ReadingLevelMiddleSchool
	case grade < 13:
		return entities.ReadingLevelHighSchool
	case grade < 16:
		return entities.ReadingLevelCollege
	default:
		return entities.ReadingLevelGraduate
	}
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "that": {}, "this": {}, "with": {}, "for": {},
	"are": {}, "was": {}, "were": {}, "have": {}, "has": {}, "had": {},
	"you": {}, "your": {}, "but": {}, "not": {}, "they": {}, "them": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "about": {},
	"from": {}, "into": {}, "just": {}, "like": {}, "really": {},
}

// topicCoherence is the mean Jaccard overlap of content-word sets between
// adjacent sentences, clamped to [0, 1]. The measure rises monotonically
// with repeated-topic-word density: the more topic words consecutive
// sentences share, the higher the overlap. A single sentence is trivially
// coherent (1.0); no sentences yield 0.
func topicCoherence(sentences []string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	if len(sentences) == 1 {
		return 1.0
	}

	sets := make([]map[string]struct{}, len(sentences))
	for i, s := range sentences {
		set := make(map[string]struct{})
		for _, w := range tokenize(s) {
			if len(w) <= 3 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			set[w] = struct{}{}
		}
		sets[i] = set
	}

	var total float64
	pairs := 0
	for i := 1; i < len(sets); i++ {
		total += jaccard(sets[i-1], sets[i])
		pairs++
	}
	coherence := total / float64(pairs)
	if coherence > 1 {
		coherence = 1
	}
	return coherence
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
