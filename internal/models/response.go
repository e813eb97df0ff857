package models

// GenerationResponse is the raw text returned by an AI provider.
type GenerationResponse struct {
	Content   string             `json:"content"`
	RequestID string             `json:"request_id"`
	Metadata  GenerationMetadata `json:"metadata"`
}

type GenerationMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

type DashboardResponse struct {
	Interviews []InterviewView `json:"interviews"`
	Total      int             `json:"total"`
}

type InterviewListResponse struct {
	Interviews []InterviewView `json:"interviews"`
}

type AnswerListResponse struct {
	Answers []UserAnswer `json:"answers"`
}
