package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/live"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories"
)

// QuestionSource generates the question set for a form.
type QuestionSource interface {
	Generate(ctx context.Context, form *models.InterviewForm, requestID string) ([]models.QuestionAnswer, error)
}

type InterviewService struct {
	interviews repositories.InterviewRepository
	answers    repositories.AnswerRepository
	questions  QuestionSource
	publisher  live.Publisher
	logger     *zap.Logger
}

// NewInterviewService accepts a nil publisher when live updates are off.
func NewInterviewService(
	interviews repositories.InterviewRepository,
	answers repositories.AnswerRepository,
	questions QuestionSource,
	publisher live.Publisher,
	logger *zap.Logger,
) *InterviewService {
	return &InterviewService{
		interviews: interviews,
		answers:    answers,
		questions:  questions,
		publisher:  publisher,
		logger:     logger,
	}
}

// Create generates questions first; nothing is stored if generation fails.
func (s *InterviewService) Create(ctx context.Context, ownerID string, form *models.InterviewForm, requestID string) (*models.Interview, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthorized("Sign in to create an interview", nil)
	}

	questions, err := s.questions.Generate(ctx, form, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	interview := &models.Interview{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Position:        form.Position,
		Description:     form.Description,
		ExperienceYears: form.Experience,
		TechStack:       form.TechStack,
		Questions:       questions,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.interviews.Create(ctx, interview); err != nil {
		s.logger.Error("Failed to store interview", zap.Error(err), zap.String("request_id", requestID))
		return nil, apperrors.Internal("Failed to save interview", err)
	}

	s.logger.Info("Interview created",
		zap.String("request_id", requestID),
		zap.String("interview_id", interview.ID),
		zap.Int("questions", len(questions)))

	s.publish(ctx, live.InterviewsTopic(ownerID), live.InterviewCreated, ownerID, interview.ID)
	return interview, nil
}

// Get returns the interview only to its owner. Someone else's interview is
// reported as not found.
func (s *InterviewService) Get(ctx context.Context, ownerID, id string) (*models.Interview, error) {
	interview, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Interview not found", err)
		}
		return nil, apperrors.Internal("Failed to load interview", err)
	}
	if interview.OwnerID != ownerID {
		return nil, apperrors.NotFound("Interview not found", nil)
	}
	return interview, nil
}

func (s *InterviewService) List(ctx context.Context, ownerID string) ([]models.Interview, error) {
	interviews, err := s.interviews.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list interviews", err)
	}
	if interviews == nil {
		interviews = []models.Interview{}
	}
	return interviews, nil
}

// Update edits the definition and regenerates its question set from the
// edited form. The stored interview is left untouched if generation fails.
func (s *InterviewService) Update(ctx context.Context, ownerID, id string, form *models.InterviewForm, requestID string) (*models.Interview, error) {
	interview, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.Generate(ctx, form, requestID)
	if err != nil {
		return nil, err
	}

	interview.Questions = questions
	interview.Position = form.Position
	interview.Description = form.Description
	interview.ExperienceYears = form.Experience
	interview.TechStack = form.TechStack
	interview.UpdatedAt = time.Now().UTC()

	if err := s.interviews.Update(ctx, interview); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Interview not found", err)
		}
		return nil, apperrors.Internal("Failed to update interview", err)
	}

	s.logger.Info("Interview updated",
		zap.String("request_id", requestID),
		zap.String("interview_id", id),
		zap.Int("questions", len(questions)))

	s.publish(ctx, live.InterviewsTopic(ownerID), live.InterviewUpdated, ownerID, id)
	return interview, nil
}

// Delete removes the interview and every answer recorded against it.
func (s *InterviewService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.answers.DeleteByInterview(ctx, ownerID, id); err != nil {
		return apperrors.Internal("Failed to delete interview answers", err)
	}
	if err := s.interviews.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Interview not found", err)
		}
		return apperrors.Internal("Failed to delete interview", err)
	}

	s.logger.Info("Interview deleted", zap.String("interview_id", id))
	s.publish(ctx, live.InterviewsTopic(ownerID), live.InterviewDeleted, ownerID, id)
	s.publish(ctx, live.AnswersTopic(ownerID, id), live.InterviewDeleted, ownerID, id)
	return nil
}

func (s *InterviewService) publish(ctx context.Context, topic, kind, ownerID, interviewID string) {
	publishEvent(ctx, s.publisher, s.logger, topic, live.Event{Kind: kind, OwnerID: ownerID, InterviewID: interviewID})
}

// publishEvent is best effort; a stored change is never rolled back because
// the notification failed.
func publishEvent(ctx context.Context, publisher live.Publisher, logger *zap.Logger, topic string, event live.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(context.WithoutCancel(ctx), topic, event); err != nil {
		logger.Warn("Failed to publish live event", zap.String("topic", topic), zap.Error(err))
	}
}
