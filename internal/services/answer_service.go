package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/grading"
	"github.com/adityavardhansharma/ai-mock-interview/internal/live"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories"
)

// AnswerGrader rates one answer. Gateway failures are errors, never grades.
type AnswerGrader interface {
	Grade(ctx context.Context, input grading.GradeInput, requestID string) (*grading.Grade, error)
}

type AnswerService struct {
	interviews *InterviewService
	answers    repositories.AnswerRepository
	grader     AnswerGrader
	publisher  live.Publisher
	logger     *zap.Logger
}

func NewAnswerService(
	interviews *InterviewService,
	answers repositories.AnswerRepository,
	grader AnswerGrader,
	publisher live.Publisher,
	logger *zap.Logger,
) *AnswerService {
	return &AnswerService{
		interviews: interviews,
		answers:    answers,
		grader:     grader,
		publisher:  publisher,
		logger:     logger,
	}
}

// Submit grades the answer to question index and stores it, replacing any
// earlier answer to the same question. If ctx ends while grading, the
// result is discarded and nothing is written.
func (s *AnswerService) Submit(ctx context.Context, ownerID, interviewID string, index int, answer, requestID string) (*models.UserAnswer, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthorized("Sign in to submit an answer", nil)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, apperrors.InvalidInput("Answer cannot be empty", nil)
	}

	interview, err := s.interviews.Get(ctx, ownerID, interviewID)
	if err != nil {
		return nil, err
	}
	qa, ok := interview.QuestionAt(index)
	if !ok {
		return nil, apperrors.InvalidInput("Question index is out of range", nil)
	}

	grade, err := s.grader.Grade(ctx, grading.GradeInput{
		Question:        qa.Question,
		ReferenceAnswer: qa.Answer,
		UserAnswer:      answer,
	}, requestID)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		s.logger.Info("Discarding grade for abandoned submission",
			zap.String("request_id", requestID),
			zap.String("interview_id", interviewID))
		return nil, apperrors.Unavailable("Submission was cancelled", err)
	}

	now := time.Now().UTC()
	stored, err := s.answers.Upsert(ctx, &models.UserAnswer{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		InterviewID:     interviewID,
		Question:        qa.Question,
		ReferenceAnswer: qa.Answer,
		UserAnswerText:  answer,
		Rating:          grade.Rating,
		Feedback:        grade.Feedback,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		s.logger.Error("Failed to store answer", zap.Error(err), zap.String("request_id", requestID))
		return nil, apperrors.Internal("Failed to save answer", err)
	}

	s.logger.Info("Answer saved",
		zap.String("request_id", requestID),
		zap.String("interview_id", interviewID),
		zap.Int("question_index", index),
		zap.Float64("rating", stored.Rating))

	publishEvent(ctx, s.publisher, s.logger, live.AnswersTopic(ownerID, interviewID), live.Event{
		Kind:        live.AnswerUpserted,
		OwnerID:     ownerID,
		InterviewID: interviewID,
	})
	publishEvent(ctx, s.publisher, s.logger, live.InterviewsTopic(ownerID), live.Event{
		Kind:        live.AnswerUpserted,
		OwnerID:     ownerID,
		InterviewID: interviewID,
	})
	return stored, nil
}

// List returns the owner's answers for the interview in question order of
// the interview. Answers to questions no longer present keep their stored order.
func (s *AnswerService) List(ctx context.Context, ownerID, interviewID string) ([]models.UserAnswer, error) {
	interview, err := s.interviews.Get(ctx, ownerID, interviewID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByInterview(ctx, ownerID, interviewID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load answers", err)
	}
	return orderByQuestion(interview, answers), nil
}

func orderByQuestion(interview *models.Interview, answers []models.UserAnswer) []models.UserAnswer {
	position := make(map[string]int, len(interview.Questions))
	for i, qa := range interview.Questions {
		if _, seen := position[qa.Question]; !seen {
			position[qa.Question] = i
		}
	}

	ordered := make([]models.UserAnswer, 0, len(answers))
	var rest []models.UserAnswer
	byIndex := make(map[int]models.UserAnswer, len(answers))
	for _, a := range answers {
		if i, ok := position[a.Question]; ok {
			byIndex[i] = a
		} else {
			rest = append(rest, a)
		}
	}
	for i := range interview.Questions {
		if a, ok := byIndex[i]; ok {
			ordered = append(ordered, a)
		}
	}
	return append(ordered, rest...)
}
