package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adityavardhansharma/ai-mock-interview/internal/auth"
	"github.com/adityavardhansharma/ai-mock-interview/internal/feedback"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/utils"
)

// FeedbackHandler serves the read-only feedback and dashboard views.
type FeedbackHandler struct {
	interviews InterviewService
	answers    AnswerService
	logger     *zap.Logger
}

func NewFeedbackHandler(interviews InterviewService, answers AnswerService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{interviews: interviews, answers: answers, logger: logger}
}

func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summary(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err, requestID(r))
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *FeedbackHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboard(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, requestID(r))
		return
	}
	utils.JSON(w, http.StatusOK, dashboard)
}

// summary loads the interview and its answers concurrently.
func (h *FeedbackHandler) summary(ctx context.Context, ownerID, interviewID string) (*feedback.Summary, error) {
	var (
		interview *models.Interview
		answers   []models.UserAnswer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interview, err = h.interviews.Get(gctx, ownerID, interviewID)
		return err
	})
	g.Go(func() error {
		var err error
		answers, err = h.answers.List(gctx, ownerID, interviewID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := feedback.NewSummary(interview, answers)
	return &summary, nil
}

func (h *FeedbackHandler) dashboard(ctx context.Context, ownerID string) (*models.DashboardResponse, error) {
	interviews, err := h.interviews.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &models.DashboardResponse{Interviews: toViews(interviews), Total: len(interviews)}, nil
}
