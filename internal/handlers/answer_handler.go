package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/auth"
	"github.com/adityavardhansharma/ai-mock-interview/internal/middleware"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/utils"
)

type AnswerHandler struct {
	answers AnswerService
	logger  *zap.Logger
}

func NewAnswerHandler(answers AnswerService, logger *zap.Logger) *AnswerHandler {
	return &AnswerHandler{answers: answers, logger: logger}
}

// SubmitAnswer grades a typed answer. A first save returns 201, a
// resubmission of the same question 200.
func (h *AnswerHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)
	reqID := requestID(r)

	answer, err := h.answers.Submit(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), req.QuestionIndex, req.Answer, reqID)
	if err != nil {
		writeError(w, h.logger, err, reqID)
		return
	}

	status := http.StatusCreated
	if answer.UpdatedAt.After(answer.CreatedAt) {
		status = http.StatusOK
	}
	utils.JSON(w, status, answer)
}

func (h *AnswerHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.answers.List(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err, requestID(r))
		return
	}
	utils.JSON(w, http.StatusOK, models.AnswerListResponse{Answers: answers})
}
