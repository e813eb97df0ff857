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

type InterviewHandler struct {
	interviews InterviewService
	logger     *zap.Logger
}

func NewInterviewHandler(interviews InterviewService, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, logger: logger}
}

func (h *InterviewHandler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	form := middleware.GetValidatedRequest[*models.InterviewForm](r)
	reqID := requestID(r)

	interview, err := h.interviews.Create(r.Context(), auth.UserID(r.Context()), form, reqID)
	if err != nil {
		writeError(w, h.logger, err, reqID)
		return
	}
	utils.JSON(w, http.StatusCreated, models.NewInterviewView(interview))
}

func (h *InterviewHandler) ListInterviews(w http.ResponseWriter, r *http.Request) {
	interviews, err := h.interviews.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, requestID(r))
		return
	}
	utils.JSON(w, http.StatusOK, models.InterviewListResponse{Interviews: toViews(interviews)})
}

func (h *InterviewHandler) GetInterview(w http.ResponseWriter, r *http.Request) {
	interview, err := h.interviews.Get(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err, requestID(r))
		return
	}
	utils.JSON(w, http.StatusOK, models.NewInterviewView(interview))
}

func (h *InterviewHandler) UpdateInterview(w http.ResponseWriter, r *http.Request) {
	form := middleware.GetValidatedRequest[*models.InterviewForm](r)
	reqID := requestID(r)

	interview, err := h.interviews.Update(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), form, reqID)
	if err != nil {
		writeError(w, h.logger, err, reqID)
		return
	}
	utils.JSON(w, http.StatusOK, models.NewInterviewView(interview))
}

func (h *InterviewHandler) DeleteInterview(w http.ResponseWriter, r *http.Request) {
	if err := h.interviews.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err, requestID(r))
		return
	}
	utils.NoContent(w)
}

func toViews(interviews []models.Interview) []models.InterviewView {
	views := make([]models.InterviewView, 0, len(interviews))
	for i := range interviews {
		views = append(views, models.NewInterviewView(&interviews[i]))
	}
	return views
}
