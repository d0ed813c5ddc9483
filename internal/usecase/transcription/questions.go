package transcription

import (
	"strings"
)

// interrogativeLeads mark sentences that read as questions even without
// a question mark. Speech-to-text output frequently loses terminal
// punctuation, so lead-word matching catches what punctuation misses.
var interrogativeLeads = map[string]bool{
	"what":   true,
	"why":    true,
	"how":    true,
	"when":   true,
	"where":  true,
	"who":    true,
	"which":  true,
	"can":    true,
	"could":  true,
	"would":  true,
	"should": true,
	"do":     true,
	"does":   true,
	"did":    true,
	"is":     true,
	"are":    true,
	"was":    true,
	"were":   true,
	"will":   true,
	"have":   true,
	"has":    true,
}

// QuestionCandidates extracts sentences from transcribed text that look
// like questions a host might want to surface: sentences ending with a
// question mark, or starting with an interrogative lead word. Results
// keep their original casing and are trimmed.
func QuestionCandidates(text string) []string {
	candidates := make([]string, 0)
	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if strings.HasSuffix(sentence, "?") {
			candidates = append(candidates, sentence)
			continue
		}
		lead := strings.ToLower(firstWord(sentence))
		if interrogativeLeads[lead] && wordCount(sentence) >= 3 {
			candidates = append(candidates, sentence)
		}
	}
	return candidates
}

// splitSentences cuts text on terminal punctuation, keeping the
// punctuation attached to its sentence.
func splitSentences(text string) []string {
	sentences := make([]string, 0)
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentences = append(sentences, b.String())
			b.Reset()
		}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func firstWord(sentence string) string {
	fields := strings.Fields(sentence)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!?;:\"'")
}

func wordCount(sentence string) int {
	return len(strings.Fields(sentence))
}
