package entities

// ReadingLevel buckets derived from the Flesch-Kincaid grade estimate.
const (
	ReadingLevelUndetermined = "undetermined"
	ReadingLevelElementary   = "elementary"
	ReadingLevelMiddleSchool = "middle_school"
	ReadingLevelHighSchool   = "high_school"
	ReadingLevelCollege      = "college"
	ReadingLevelGraduate     = "graduate"
)

// ContentMetrics holds the quantitative text statistics derived from a
// transcript. Computed once per analysis call, never mutated afterwards.
type ContentMetrics struct {
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	UniqueWords         int     `json:"unique_words"`
	VocabularyDiversity float64 `json:"vocabulary_diversity"` // type-token ratio, 0-1
	ReadingLevel        string  `json:"reading_level"`
	SpeakingPaceWPM     float64 `json:"speaking_pace_wpm,omitempty"` // 0 when duration unknown
	TopicCoherence      float64 `json:"topic_coherence"`             // 0-1
	EngagementSignals   int     `json:"engagement_signals"`          // questions + exclamations
}
