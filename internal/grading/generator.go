package grading

import (
	"context"

	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/llm"
	"github.com/adityavardhansharma/ai-mock-interview/internal/metrics"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/prompts"
)

// QuestionGenerator produces the question set for an interview form.
type QuestionGenerator struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	count         int
	logger        *zap.Logger
}

func NewQuestionGenerator(provider llm.Provider, promptManager prompts.PromptProvider, count int, logger *zap.Logger) *QuestionGenerator {
	if count < 1 {
		count = 5
	}
	return &QuestionGenerator{
		provider:      provider,
		promptManager: promptManager,
		count:         count,
		logger:        logger,
	}
}

func (g *QuestionGenerator) Generate(ctx context.Context, form *models.InterviewForm, requestID string) ([]models.QuestionAnswer, error) {
	prompt, err := g.promptManager.BuildPrompt(prompts.ModeQuestions, prompts.DefaultVariant, prompts.QuestionsData{
		Count:       g.count,
		Position:    form.Position,
		Description: form.Description,
		Experience:  form.Experience,
		TechStack:   form.TechStack,
	})
	if err != nil {
		derr := apperrors.Internal("Failed to build AI prompt", err)
		g.logger.Error("Failed to build prompt",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.ByteString("stack", derr.StackTrace()))
		return nil, derr
	}

	resp, err := callProvider(ctx, g.provider, g.logger, prompt, requestID)
	if err != nil {
		metrics.ObserveAIResult(metrics.KindQuestions, metrics.OutcomeError)
		return nil, err
	}

	questions, err := ExtractQuestions(resp.Content)
	if err != nil {
		metrics.ObserveAIResult(metrics.KindQuestions, metrics.OutcomeFallback)
		g.logger.Warn("Model returned no usable questions",
			zap.String("request_id", requestID),
			zap.String("raw", truncate(resp.Content, 512)))
		return nil, apperrors.Unavailable("AI service returned no questions, please try again", err)
	}
	metrics.ObserveAIResult(metrics.KindQuestions, metrics.OutcomeParsed)

	if len(questions) > g.count {
		questions = questions[:g.count]
	}

	g.logger.Info("Questions generated",
		zap.String("request_id", requestID),
		zap.Int("count", len(questions)),
		zap.Int("processing_time_ms", resp.Metadata.ProcessingTime))

	return questions, nil
}
