package feedback

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// Parser handles parsing and validation of AI completion responses
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseAssessment parses the JSON assessment out of a completion. The
// model sometimes wraps the payload in markdown code fences or leading
// prose; both are tolerated. A PARSE_FAILED error signals the engine to
// fall back to the local heuristic scorer.
func (p *Parser) ParseAssessment(response string) (entities.AIAssessment, error) {
	jsonString := extractJSON(response)
	if jsonString == "" {
		return entities.AIAssessment{}, apperrors.ErrParseFailed(
			fmt.Errorf("no JSON object in response"))
	}

	var assessment entities.AIAssessment
	if err := json.Unmarshal([]byte(jsonString), &assessment); err != nil {
		return entities.AIAssessment{}, apperrors.ErrParseFailed(err)
	}

	if err := p.validate(&assessment); err != nil {
		return entities.AIAssessment{}, err
	}
	return assessment, nil
}

// validate checks required fields and normalizes optional ones in place.
func (p *Parser) validate(a *entities.AIAssessment) error {
	for _, dim := range entities.Dimensions {
		rating, _ := a.Rating(dim)
		if rating < 0 || rating > 10 {
			return apperrors.ErrParseFailed(
				fmt.Errorf("rating for %s out of range: %.2f", dim, rating))
		}
	}
	if a.ListenerFeedback == "" {
		return apperrors.ErrParseFailed(fmt.Errorf("missing listener_feedback"))
	}

	// Suggestions and strengths can be empty for short transcripts.
	// Just ensure they're initialized.
	if a.CoachingSuggestions == nil {
		a.CoachingSuggestions = make([]string, 0)
	}
	if a.KeyStrengths == nil {
		a.KeyStrengths = make([]string, 0)
	}
	if a.AreasForImprovement == nil {
		a.AreasForImprovement = make([]string, 0)
	}
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 1 {
		a.Confidence = 1
	}
	return nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	// The model may precede or follow the object with prose; keep the
	// outermost braces only.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
