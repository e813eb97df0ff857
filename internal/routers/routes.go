package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/adityavardhansharma/ai-mock-interview/internal/handlers"
	"github.com/adityavardhansharma/ai-mock-interview/internal/metrics"
	"github.com/adityavardhansharma/ai-mock-interview/internal/middleware"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
)

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	Interviews *handlers.InterviewHandler
	Answers    *handlers.AnswerHandler
	Feedback   *handlers.FeedbackHandler
	Capture    *handlers.CaptureHandler
	Live       *handlers.LiveHandler
}

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Handle("/metrics", metrics.Handler())
}

// APIRoutes mounts the authenticated API. REST calls get a request timeout;
// the socket routes are long-lived and do not.
func APIRoutes(router *chi.Mux, authMiddleware func(http.Handler) http.Handler, h Handlers) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(60 * time.Second))

			r.With(middleware.ValidateRequest[*models.InterviewForm]()).Post("/interviews", h.Interviews.CreateInterview)
			r.Get("/interviews", h.Interviews.ListInterviews)
			r.Get("/interviews/{id}", h.Interviews.GetInterview)
			r.With(middleware.ValidateRequest[*models.InterviewForm]()).Put("/interviews/{id}", h.Interviews.UpdateInterview)
			r.Delete("/interviews/{id}", h.Interviews.DeleteInterview)
			r.Get("/interviews/{id}/feedback", h.Feedback.GetFeedback)
			r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/interviews/{id}/answers", h.Answers.SubmitAnswer)
			r.Get("/interviews/{id}/answers", h.Answers.ListAnswers)
			r.Get("/dashboard", h.Feedback.GetDashboard)
		})

		r.Get("/interviews/{id}/capture", h.Capture.Capture)
		r.Get("/live/interviews", h.Live.Interviews)
		r.Get("/live/interviews/{id}/feedback", h.Live.Feedback)
	})
}
