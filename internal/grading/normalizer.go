package grading

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
)

const (
	// FallbackRating is the sentinel stored when the model output cannot be read.
	FallbackRating  = 5.0
	MaxRating       = 10.0
	DefaultFeedback = "The system was unable to generate specific feedback. Please review the model answer to improve your response."
)

var (
	fenceMarkers = regexp.MustCompile("```(?:json|JSON)?")
	objectBlock  = regexp.MustCompile(`(?s)\{.*\}`)
	arrayBlock   = regexp.MustCompile(`(?s)\[.*\]`)

	ErrNoQuestions = errors.New("no question array found in model output")
)

// Grade is the normalized result of grading one answer.
type Grade struct {
	Rating   float64 `json:"ratings"`
	Feedback string  `json:"feedback"`
}

type rawGrade struct {
	Ratings  json.RawMessage `json:"ratings"`
	Rating   json.RawMessage `json:"rating"`
	Feedback *string         `json:"feedback"`
}

// FallbackGrade is returned for output that cannot be parsed.
func FallbackGrade() Grade {
	return Grade{Rating: FallbackRating, Feedback: DefaultFeedback}
}

// NormalizeGrade turns free model text into a Grade. The second return value
// is false when the fallback grade was used. It never fails.
func NormalizeGrade(raw string) (Grade, bool) {
	cleaned := stripFences(raw)

	parsed, ok := parseGrade(cleaned)
	if !ok {
		if block := objectBlock.FindString(cleaned); block != "" {
			parsed, ok = parseGrade(block)
		}
	}
	if !ok {
		return FallbackGrade(), false
	}
	return parsed, true
}

func parseGrade(text string) (Grade, bool) {
	var rg rawGrade
	if err := json.Unmarshal([]byte(text), &rg); err != nil {
		return Grade{}, false
	}

	ratingField := rg.Ratings
	if len(ratingField) == 0 {
		ratingField = rg.Rating
	}
	rating, ok := parseRating(ratingField)
	if !ok || rg.Feedback == nil {
		return Grade{}, false
	}

	feedback := strings.TrimSpace(*rg.Feedback)
	if feedback == "" {
		feedback = DefaultFeedback
	}
	return Grade{Rating: rating, Feedback: feedback}, true
}

// parseRating accepts a JSON number or a numeric string and clamps it to [0,10].
func parseRating(field json.RawMessage) (float64, bool) {
	if len(field) == 0 {
		return 0, false
	}

	var value float64
	if err := json.Unmarshal(field, &value); err != nil {
		var text string
		if err := json.Unmarshal(field, &text); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return math.Max(0, math.Min(MaxRating, value)), true
}

// ExtractQuestions parses the generated question array. Unlike grading there
// is no fallback: an interview without questions cannot be practiced.
func ExtractQuestions(raw string) ([]models.QuestionAnswer, error) {
	cleaned := stripFences(raw)

	block := arrayBlock.FindString(cleaned)
	if block == "" {
		return nil, ErrNoQuestions
	}

	var questions []models.QuestionAnswer
	if err := json.Unmarshal([]byte(block), &questions); err != nil {
		return nil, errors.Join(ErrNoQuestions, err)
	}

	out := questions[:0]
	for _, qa := range questions {
		qa.Question = strings.TrimSpace(qa.Question)
		qa.Answer = strings.TrimSpace(qa.Answer)
		if qa.Question == "" {
			continue
		}
		out = append(out, qa)
	}
	if len(out) == 0 {
		return nil, ErrNoQuestions
	}
	return out, nil
}

func stripFences(raw string) string {
	return strings.TrimSpace(fenceMarkers.ReplaceAllString(strings.TrimSpace(raw), ""))
}
