package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// ValidateTopics checks a candidate topics payload against the quiz schema and
// returns the decoded topics on success. Checks run in order and stop at the
// first violation; indices in error messages are 1-based. The same function
// guards both the authoring path and the persistence path, so the two can
// never drift apart.
func ValidateTopics(raw json.RawMessage) ([]Topic, error) {
	if !json.Valid(raw) {
		return nil, invalidf("Invalid JSON format")
	}
	// json.Unmarshal would quietly turn null into a nil slice, so the array
	// check has to happen on the raw bytes.
	if !isArray(raw) {
		return nil, invalidf("JSON must be an array")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, invalidf("JSON must be an array")
	}

	for i, element := range elements {
		var topic struct {
			Reading json.RawMessage `json:"reading"`
			Test    json.RawMessage `json:"test"`
		}
		if err := json.Unmarshal(element, &topic); err != nil || isAbsent(topic.Reading) || isAbsent(topic.Test) {
			return nil, invalidf("Topic %d must have both 'reading' and 'test'", i+1)
		}

		var reading struct {
			Heading string          `json:"heading"`
			Points  json.RawMessage `json:"points"`
		}
		if err := json.Unmarshal(topic.Reading, &reading); err != nil || reading.Heading == "" || !isArray(reading.Points) {
			return nil, invalidf("Topic %d reading must have 'heading' and 'points' array", i+1)
		}

		var questions []json.RawMessage
		if !isArray(topic.Test) || json.Unmarshal(topic.Test, &questions) != nil {
			return nil, invalidf("Topic %d test must be an array", i+1)
		}

		for j, rawQuestion := range questions {
			var question struct {
				Question      string          `json:"question"`
				Options       json.RawMessage `json:"options"`
				CorrectAnswer *float64        `json:"correctAnswer"`
			}
			var options []string
			if err := json.Unmarshal(rawQuestion, &question); err != nil ||
				question.Question == "" ||
				!isArray(question.Options) ||
				json.Unmarshal(question.Options, &options) != nil ||
				question.CorrectAnswer == nil {
				return nil, invalidf("Topic %d, Question %d must have 'question', 'options' array, and 'correctAnswer' number", i+1, j+1)
			}
			if len(options) < 2 {
				return nil, invalidf("Topic %d, Question %d must have at least 2 options", i+1, j+1)
			}
			answer := *question.CorrectAnswer
			if answer != float64(int(answer)) || int(answer) < 0 || int(answer) >= len(options) {
				return nil, invalidf("Topic %d, Question %d has invalid correctAnswer index", i+1, j+1)
			}
		}
	}

	var topics []Topic
	if err := json.Unmarshal(raw, &topics); err != nil {
		return nil, invalidf("Invalid JSON format")
	}
	return topics, nil
}

// isAbsent treats a missing or JSON null member as not provided.
func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

var (
	nameStripPattern = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// NormalizeName turns a user-entered quiz name into its storage slug: trim
// surrounding whitespace, drop everything outside letters, digits, spaces,
// underscores and hyphens, collapse whitespace runs to a single underscore,
// lowercase. The result is stable under re-normalization. An empty result
// means the name is unusable.
func NormalizeName(name string) string {
	clean := strings.TrimSpace(name)
	clean = nameStripPattern.ReplaceAllString(clean, "")
	clean = whitespaceRuns.ReplaceAllString(clean, "_")
	return strings.ToLower(clean)
}
