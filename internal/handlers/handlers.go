package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/utils"
)

// InterviewService is the interview use-case surface the handlers need.
type InterviewService interface {
	Create(ctx context.Context, ownerID string, form *models.InterviewForm, requestID string) (*models.Interview, error)
	Get(ctx context.Context, ownerID, id string) (*models.Interview, error)
	List(ctx context.Context, ownerID string) ([]models.Interview, error)
	Update(ctx context.Context, ownerID, id string, form *models.InterviewForm, requestID string) (*models.Interview, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type AnswerService interface {
	Submit(ctx context.Context, ownerID, interviewID string, index int, answer, requestID string) (*models.UserAnswer, error)
	List(ctx context.Context, ownerID, interviewID string) ([]models.UserAnswer, error)
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.New().String()
}

// writeError renders a domain error with its HTTP status. Internal details
// are logged, never sent.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error, reqID string) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logFailure(logger, "Request failed", err, reqID)
	}
	utils.JSON(w, status, models.ErrorResponse{
		Code:    strings.ToLower(string(apperrors.TypeOf(err))),
		Message: apperrors.PublicMessage(err),
	})
}

// logFailure logs err with the stack captured where it was raised.
func logFailure(logger *zap.Logger, msg string, err error, reqID string) {
	fields := []zap.Field{zap.String("request_id", reqID), zap.Error(err)}
	if stack := apperrors.StackOf(err); len(stack) > 0 {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	logger.Error(msg, fields...)
}

// answerMessage tells a first save from a resubmission.
func answerMessage(answer *models.UserAnswer) string {
	if answer.UpdatedAt.After(answer.CreatedAt) {
		return "Answer Updated"
	}
	return "Answer Saved"
}

// NewUpgrader accepts the configured browser origins; "*" or an empty list
// allows any origin.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
		},
	}
}
