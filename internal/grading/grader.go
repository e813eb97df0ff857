package grading

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/llm"
	"github.com/adityavardhansharma/ai-mock-interview/internal/metrics"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/prompts"
)

// GradeInput is one candidate answer to grade against its reference.
type GradeInput struct {
	Question        string
	ReferenceAnswer string
	UserAnswer      string
}

// Grader runs prompt building, the gateway call and normalization.
type Grader struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	variant       string
	logger        *zap.Logger
}

func NewGrader(provider llm.Provider, promptManager prompts.PromptProvider, logger *zap.Logger) *Grader {
	return &Grader{
		provider:      provider,
		promptManager: promptManager,
		variant:       prompts.DefaultVariant,
		logger:        logger,
	}
}

// WithVariant selects a different grade prompt variant; "" keeps the default.
func (g *Grader) WithVariant(variant string) *Grader {
	clone := *g
	if variant != "" {
		clone.variant = variant
	}
	return &clone
}

// Grade asks the model to rate the answer. Gateway failures are returned as
// errors and never converted into a grade; malformed output degrades to
// FallbackGrade.
func (g *Grader) Grade(ctx context.Context, input GradeInput, requestID string) (*Grade, error) {
	prompt, err := g.promptManager.BuildPrompt(prompts.ModeGrade, g.variant, prompts.GradeData{
		Question:        input.Question,
		ReferenceAnswer: input.ReferenceAnswer,
		UserAnswer:      input.UserAnswer,
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
		metrics.ObserveAIResult(metrics.KindGrade, metrics.OutcomeError)
		return nil, err
	}

	grade, parsed := NormalizeGrade(resp.Content)
	if !parsed {
		metrics.ObserveAIResult(metrics.KindGrade, metrics.OutcomeFallback)
		g.logger.Warn("Model returned unparseable grade, using fallback",
			zap.String("request_id", requestID),
			zap.String("raw", truncate(resp.Content, 512)))
	} else {
		metrics.ObserveAIResult(metrics.KindGrade, metrics.OutcomeParsed)
	}

	g.logger.Info("Answer graded",
		zap.String("request_id", requestID),
		zap.String("provider", resp.Metadata.Provider),
		zap.Float64("rating", grade.Rating),
		zap.Int("processing_time_ms", resp.Metadata.ProcessingTime))

	return &grade, nil
}

func callProvider(ctx context.Context, provider llm.Provider, logger *zap.Logger, prompt, requestID string) (*models.GenerationResponse, error) {
	start := time.Now()
	resp, err := provider.GenerateContent(ctx, prompt, requestID)
	status := "ok"
	if err != nil {
		status = llm.ErrorCode(err)
		if status == "" {
			status = "error"
		}
	}
	metrics.ObserveAICall(provider.GetProviderName(), status, time.Since(start))

	if err != nil {
		logger.Error("AI provider error", zap.Error(err), zap.String("request_id", requestID))
		return nil, GatewayError(err)
	}
	return resp, nil
}

// GatewayError maps provider failures onto the domain error taxonomy.
func GatewayError(err error) error {
	switch llm.ErrorCode(err) {
	case llm.ErrCodeRateLimit:
		return apperrors.RateLimit("AI service is busy, please try again shortly", err)
	case llm.ErrCodeTimeout:
		return apperrors.Unavailable("AI service timed out", err)
	default:
		return apperrors.Unavailable("AI service unavailable", err)
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
