package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/auth"
	"github.com/adityavardhansharma/ai-mock-interview/internal/middleware"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
)

type fakeInterviews struct {
	mu         sync.Mutex
	interviews map[string]*models.Interview
	createErr  error
	deleted    []string
}

func newFakeInterviews(interviews ...*models.Interview) *fakeInterviews {
	f := &fakeInterviews{interviews: map[string]*models.Interview{}}
	for _, iv := range interviews {
		f.interviews[iv.ID] = iv
	}
	return f
}

func (f *fakeInterviews) Create(_ context.Context, ownerID string, form *models.InterviewForm, _ string) (*models.Interview, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	iv := &models.Interview{
		ID:              "iv-new",
		OwnerID:         ownerID,
		Position:        form.Position,
		Description:     form.Description,
		ExperienceYears: form.Experience,
		TechStack:       form.TechStack,
		Questions:       []models.QuestionAnswer{{Question: "q1", Answer: "a1"}},
	}
	f.interviews[iv.ID] = iv
	return iv, nil
}

func (f *fakeInterviews) Get(_ context.Context, ownerID, id string) (*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.interviews[id]
	if !ok || iv.OwnerID != ownerID {
		return nil, apperrors.NotFound("Interview not found", nil)
	}
	copied := *iv
	return &copied, nil
}

func (f *fakeInterviews) List(_ context.Context, ownerID string) ([]models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Interview{}
	for _, iv := range f.interviews {
		if iv.OwnerID == ownerID {
			out = append(out, *iv)
		}
	}
	return out, nil
}

func (f *fakeInterviews) Update(ctx context.Context, ownerID, id string, form *models.InterviewForm, _ string) (*models.Interview, error) {
	if _, err := f.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	iv := f.interviews[id]
	iv.Position = form.Position
	iv.TechStack = form.TechStack
	return iv, nil
}

func (f *fakeInterviews) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := f.Get(ctx, ownerID, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.interviews, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type submission struct {
	interviewID string
	index       int
	answer      string
}

type fakeAnswers struct {
	mu          sync.Mutex
	answers     []models.UserAnswer
	submissions []submission
	submitErr   error
	// block, when set, holds Submit until ctx ends
	block bool
}

func (f *fakeAnswers) Submit(ctx context.Context, ownerID, interviewID string, index int, answer, _ string) (*models.UserAnswer, error) {
	if f.block {
		<-ctx.Done()
		return nil, apperrors.Unavailable("Submission was cancelled", ctx.Err())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, submission{interviewID: interviewID, index: index, answer: answer})
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	now := time.Now().UTC()
	stored := models.UserAnswer{
		ID:             "ans-1",
		OwnerID:        ownerID,
		InterviewID:    interviewID,
		Question:       "q1",
		UserAnswerText: answer,
		Rating:         8,
		Feedback:       "Good",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.answers = append(f.answers, stored)
	return &stored, nil
}

func (f *fakeAnswers) List(context.Context, string, string) ([]models.UserAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.UserAnswer{}, f.answers...), nil
}

func (f *fakeAnswers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions)
}

type mockProvider struct{}

func (mockProvider) GenerateContent(context.Context, string, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{}, nil
}

func (mockProvider) GetProviderName() string { return "mock" }

type mockPromptManager struct {
	templates map[string]map[string]*template.Template
}

func (m *mockPromptManager) BuildPrompt(string, string, interface{}) (string, error) {
	return "mock prompt", nil
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	return m.templates
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func sampleInterview() *models.Interview {
	return &models.Interview{
		ID:        "iv-1",
		OwnerID:   "user-1",
		Position:  "Backend Engineer",
		TechStack: "Go, PostgreSQL",
		Questions: []models.QuestionAnswer{
			{Question: "q1", Answer: "a1"},
			{Question: "q2", Answer: "a2"},
		},
	}
}

// asUser injects an authenticated user the way the auth middleware does.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// addURLParam sets a chi URL parameter on a request built outside a router.
func addURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newRequest(method, target, body, userID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func serveValidated[T middleware.Validator](handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	middleware.ValidateRequest[T]()(handler).ServeHTTP(rec, req)
	return rec
}
