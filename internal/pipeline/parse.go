package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"study-mcq-backend/internal/models"
)

// The model is told to answer with a bare JSON array but routinely wraps it
// in a markdown fence or surrounding prose anyway. Extraction tries the
// strictest reading first and degrades from there.
var (
	fencedBlockRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")
	embeddedArrayRe = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
)

// ExtractQuestions recovers the question array from raw model output.
// Strategies, in order: direct parse of the whole text, parse of a fenced
// ```json block, parse of the first embedded array-of-objects pattern.
// When none succeeds the error carries the raw text for diagnosis.
func ExtractQuestions(text string) ([]models.GeneratedQuestion, error) {
	if questions, err := decodeQuestions(strings.TrimSpace(text)); err == nil {
		return questions, nil
	}

	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if questions, err := decodeQuestions(m[1]); err == nil {
			return questions, nil
		}
	}

	if m := embeddedArrayRe.FindString(text); m != "" {
		if questions, err := decodeQuestions(m); err == nil {
			return questions, nil
		}
	}

	return nil, fmt.Errorf("no JSON question array found in model output: %s", text)
}

func decodeQuestions(s string) ([]models.GeneratedQuestion, error) {
	var questions []models.GeneratedQuestion
	if err := json.Unmarshal([]byte(s), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
