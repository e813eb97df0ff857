package models

import (
	"strings"
	"unicode/utf8"
)

const minDescriptionLength = 10

// InterviewForm is the create/edit payload for an interview definition.
type InterviewForm struct {
	Position    string `json:"position"`
	Description string `json:"description"`
	Experience  int    `json:"experience"`
	TechStack   string `json:"techStack"`
}

// implements the Validator interface
func (f *InterviewForm) Validate() error {
	f.Position = strings.TrimSpace(f.Position)
	f.Description = strings.TrimSpace(f.Description)
	f.TechStack = strings.TrimSpace(f.TechStack)

	var details []ValidationErrorDetail
	if f.Position == "" {
		details = append(details, ValidationErrorDetail{Field: "position", Reason: "Position is required"})
	}
	if utf8.RuneCountInString(f.Description) < minDescriptionLength {
		details = append(details, ValidationErrorDetail{Field: "description", Reason: "Description should be at least 10 characters"})
	}
	if f.Experience < 0 {
		details = append(details, ValidationErrorDetail{Field: "experience", Reason: "Experience cannot be empty or negative"})
	}
	if f.TechStack == "" {
		details = append(details, ValidationErrorDetail{Field: "techStack", Reason: "Tech stack must be at least a character"})
	}

	if len(details) > 0 {
		return &ErrorResponse{
			Code:    "invalid_interview",
			Message: details[0].Reason,
			Details: details,
		}
	}
	return nil
}

// SubmitAnswerRequest submits a typed or transcribed answer for one question.
type SubmitAnswerRequest struct {
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if r.QuestionIndex < 0 {
		return &ErrorResponse{
			Code:    "invalid_question_index",
			Message: "Question index cannot be negative",
		}
	}
	if strings.TrimSpace(r.Answer) == "" {
		return &ErrorResponse{
			Code:    "missing_answer",
			Message: "Answer field is required",
		}
	}
	return nil
}
