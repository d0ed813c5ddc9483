package feedback

import (
	"strings"
	"testing"
	"time"

	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

func TestExtractEmptyTranscript(t *testing.T) {
	extractor := NewMetricsExtractor()

	for _, input := range []string{"", "   ", "\n\t"} {
		metrics := extractor.Extract(input)
		if metrics.WordCount != 0 || metrics.SentenceCount != 0 {
			t.Errorf("input %q: expected zero counts, got %+v", input, metrics)
		}
		if metrics.ReadingLevel != entities.ReadingLevelUndetermined {
			t.Errorf("input %q: expected undetermined reading level, got %s", input, metrics.ReadingLevel)
		}
	}
}

func TestExtractSentencesAndEngagement(t *testing.T) {
	extractor := NewMetricsExtractor()

	metrics := extractor.Extract("Hello. Is this working? Great!")
	if metrics.SentenceCount != 3 {
		t.Errorf("expected 3 sentences, got %d", metrics.SentenceCount)
	}
	if metrics.WordCount != 5 {
		t.Errorf("expected 5 words, got %d", metrics.WordCount)
	}
	if metrics.EngagementSignals < 1 {
		t.Errorf("expected at least one engagement signal, got %d", metrics.EngagementSignals)
	}
}

func TestExtractVocabularyDiversity(t *testing.T) {
	extractor := NewMetricsExtractor()

	repetitive := extractor.Extract("go go go go go go.")
	varied := extractor.Extract("every single word here differs completely.")

	if repetitive.VocabularyDiversity <= 0 || repetitive.VocabularyDiversity > 1 {
		t.Errorf("diversity out of range: %f", repetitive.VocabularyDiversity)
	}
	if varied.VocabularyDiversity != 1 {
		t.Errorf("all-unique transcript should have diversity 1, got %f", varied.VocabularyDiversity)
	}
	if repetitive.VocabularyDiversity >= varied.VocabularyDiversity {
		t.Errorf("repetition should lower diversity: %f >= %f",
			repetitive.VocabularyDiversity, varied.VocabularyDiversity)
	}
}

func TestTopicCoherence(t *testing.T) {
	extractor := NewMetricsExtractor()

	single := extractor.Extract("One lone sentence here.")
	if single.TopicCoherence != 1.0 {
		t.Errorf("single sentence should be trivially coherent, got %f", single.TopicCoherence)
	}

	focused := extractor.Extract(
		"Podcasting equipment matters enormously. Good podcasting equipment improves audio.")
	scattered := extractor.Extract(
		"Bananas ripen quickly outdoors. Computers calculate numbers silently.")

	if scattered.TopicCoherence != 0 {
		t.Errorf("disjoint sentences should score 0, got %f", scattered.TopicCoherence)
	}
	if focused.TopicCoherence <= scattered.TopicCoherence {
		t.Errorf("shared topic words should raise coherence: %f <= %f",
			focused.TopicCoherence, scattered.TopicCoherence)
	}
	if focused.TopicCoherence > 1 {
		t.Errorf("coherence must stay within [0,1], got %f", focused.TopicCoherence)
	}
}

func TestExtractSpeakingPace(t *testing.T) {
	extractor := NewMetricsExtractor()
	transcript := strings.TrimSpace(strings.Repeat("steady talking pace word ", 30)) + "."

	withPace := extractor.ExtractWithDuration(transcript, time.Minute)
	if withPace.SpeakingPaceWPM != 120 {
		t.Errorf("expected 120 wpm, got %f", withPace.SpeakingPaceWPM)
	}

	withoutPace := extractor.Extract(transcript)
	if withoutPace.SpeakingPaceWPM != 0 {
		t.Errorf("pace should be omitted without a duration, got %f", withoutPace.SpeakingPaceWPM)
	}
}

func TestReadingLevelBuckets(t *testing.T) {
	extractor := NewMetricsExtractor()

	simple := extractor.Extract("The cat sat. The dog ran.")
	if simple.ReadingLevel != entities.ReadingLevelElementary {
		t.Errorf("expected elementary, got %s", simple.ReadingLevel)
	}

	dense := extractor.Extract(
		"Organizational infrastructure necessitates comprehensive institutional accountability.")
	if dense.ReadingLevel != entities.ReadingLevelGraduate {
		t.Errorf("expected graduate, got %s", dense.ReadingLevel)
	}
}
