package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/grading"
	"github.com/adityavardhansharma/ai-mock-interview/internal/live"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories"
	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories/gormstore"
	"github.com/adityavardhansharma/ai-mock-interview/internal/testhelpers"
)

type stubQuestions struct {
	questions []models.QuestionAnswer
	err       error
	calls     int
}

func (s *stubQuestions) Generate(context.Context, *models.InterviewForm, string) ([]models.QuestionAnswer, error) {
	s.calls++
	return s.questions, s.err
}

type stubGrader struct {
	gradeFn func(ctx context.Context, input grading.GradeInput) (*grading.Grade, error)
	inputs  []grading.GradeInput
}

func (s *stubGrader) Grade(ctx context.Context, input grading.GradeInput, _ string) (*grading.Grade, error) {
	s.inputs = append(s.inputs, input)
	return s.gradeFn(ctx, input)
}

func fixedGrade(rating float64, feedback string) *stubGrader {
	return &stubGrader{gradeFn: func(context.Context, grading.GradeInput) (*grading.Grade, error) {
		return &grading.Grade{Rating: rating, Feedback: feedback}, nil
	}}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []live.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event live.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return p.err
}

type fixture struct {
	store      *repositories.Store
	questions  *stubQuestions
	grader     *stubGrader
	publisher  *recordingPublisher
	interviews *InterviewService
	answers    *AnswerService
}

func newFixture(t *testing.T, grader *stubGrader) *fixture {
	t.Helper()
	store := gormstore.NewStore(testhelpers.SetupTestDB(t))
	questions := &stubQuestions{questions: []models.QuestionAnswer{
		{Question: "What is a goroutine?", Answer: "A lightweight thread managed by the Go runtime."},
		{Question: "What does a buffered channel do?", Answer: "It queues sends up to its capacity."},
	}}
	publisher := &recordingPublisher{}
	interviews := NewInterviewService(store.Interviews, store.Answers, questions, publisher, zap.NewNop())
	return &fixture{
		store:      store,
		questions:  questions,
		grader:     grader,
		publisher:  publisher,
		interviews: interviews,
		answers:    NewAnswerService(interviews, store.Answers, grader, publisher, zap.NewNop()),
	}
}

func form() *models.InterviewForm {
	return &models.InterviewForm{
		Position:    "Backend Engineer",
		Description: "Build and operate Go services",
		Experience:  3,
		TechStack:   "Go, PostgreSQL",
	}
}

// ============================================================================
// InterviewService
// ============================================================================

func TestInterviewService_Create(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	ctx := context.Background()

	interview, err := f.interviews.Create(ctx, "user-1", form(), "req-1")
	require.NoError(t, err)
	assert.NotEmpty(t, interview.ID)
	assert.Equal(t, "user-1", interview.OwnerID)
	assert.Len(t, interview.Questions, 2)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, interview.TechStackBadges())

	stored, err := f.interviews.Get(ctx, "user-1", interview.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", stored.Position)
	assert.Len(t, stored.Questions, 2)

	require.Len(t, f.publisher.topics, 1)
	assert.Equal(t, live.InterviewsTopic("user-1"), f.publisher.topics[0])
	assert.Equal(t, live.InterviewCreated, f.publisher.events[0].Kind)
}

func TestInterviewService_CreateGenerationFailureStoresNothing(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	f.questions.err = apperrors.Unavailable("AI service unavailable", errors.New("down"))

	_, err := f.interviews.Create(context.Background(), "user-1", form(), "req-1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeUnavailable))

	list, err := f.interviews.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.publisher.topics)
}

func TestInterviewService_CreateRequiresOwner(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	_, err := f.interviews.Create(context.Background(), "", form(), "req-1")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeUnauthorized))
	assert.Zero(t, f.questions.calls)
}

func TestInterviewService_GetOtherOwnerIsNotFound(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	interview, err := f.interviews.Create(context.Background(), "user-1", form(), "req-1")
	require.NoError(t, err)

	_, err = f.interviews.Get(context.Background(), "user-2", interview.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))

	_, err = f.interviews.Get(context.Background(), "user-1", "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
}

func TestInterviewService_ListEmptyIsNotNil(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	list, err := f.interviews.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestInterviewService_UpdateRegeneratesQuestions(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	ctx := context.Background()
	interview, err := f.interviews.Create(ctx, "user-1", form(), "req-1")
	require.NoError(t, err)

	f.questions.questions = []models.QuestionAnswer{{Question: "Explain React hooks", Answer: "State in function components."}}
	edited := form()
	edited.Position = "Frontend Engineer"
	edited.TechStack = "React"

	updated, err := f.interviews.Update(ctx, "user-1", interview.ID, edited, "req-2")
	require.NoError(t, err)
	assert.Equal(t, "Frontend Engineer", updated.Position)

	stored, err := f.interviews.Get(ctx, "user-1", interview.ID)
	require.NoError(t, err)
	assert.Equal(t, "React", stored.TechStack)
	require.Len(t, stored.Questions, 1)
	assert.Equal(t, "Explain React hooks", stored.Questions[0].Question)
	assert.Equal(t, live.InterviewUpdated, f.publisher.events[len(f.publisher.events)-1].Kind)
}

func TestInterviewService_UpdateOtherOwner(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	interview, err := f.interviews.Create(context.Background(), "user-1", form(), "req-1")
	require.NoError(t, err)

	_, err = f.interviews.Update(context.Background(), "user-2", interview.ID, form(), "req-2")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
	assert.Equal(t, 1, f.questions.calls)
}

func TestInterviewService_DeleteCascadesAnswers(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	ctx := context.Background()
	interview, err := f.interviews.Create(ctx, "user-1", form(), "req-1")
	require.NoError(t, err)
	_, err = f.answers.Submit(ctx, "user-1", interview.ID, 0, "A green thread", "req-2")
	require.NoError(t, err)

	require.NoError(t, f.interviews.Delete(ctx, "user-1", interview.ID))

	_, err = f.interviews.Get(ctx, "user-1", interview.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
	left, err := f.store.Answers.ListByInterview(ctx, "user-1", interview.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestInterviewService_PublishFailureIsIgnored(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	f.publisher.err = errors.New("redis down")

	_, err := f.interviews.Create(context.Background(), "user-1", form(), "req-1")
	assert.NoError(t, err)
}

func TestInterviewService_NilPublisher(t *testing.T) {
	store := gormstore.NewStore(testhelpers.SetupTestDB(t))
	svc := NewInterviewService(store.Interviews, store.Answers, &stubQuestions{
		questions: []models.QuestionAnswer{{Question: "q", Answer: "a"}},
	}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), "user-1", form(), "req-1")
	assert.NoError(t, err)
}

// ============================================================================
// AnswerService
// ============================================================================

func TestAnswerService_SubmitStoresGrade(t *testing.T) {
	f := newFixture(t, fixedGrade(7, "Mention the scheduler."))
	ctx := context.Background()
	interview, err := f.interviews.Create(ctx, "user-1", form(), "req-1")
	require.NoError(t, err)

	answer, err := f.answers.Submit(ctx, "user-1", interview.ID, 1, "  It blocks when full  ", "req-2")
	require.NoError(t, err)
	assert.Equal(t, "What does a buffered channel do?", answer.Question)
	assert.Equal(t, "It queues sends up to its capacity.", answer.ReferenceAnswer)
	assert.Equal(t, "It blocks when full", answer.UserAnswerText)
	assert.Equal(t, 7.0, answer.Rating)
	assert.Equal(t, "Mention the scheduler.", answer.Feedback)

	require.Len(t, f.grader.inputs, 1)
	assert.Equal(t, "It blocks when full", f.grader.inputs[0].UserAnswer)
	assert.Contains(t, f.publisher.topics, live.AnswersTopic("user-1", interview.ID))
}

func TestAnswerService_ResubmitReplaces(t *testing.T) {
	f := newFixture(t, fixedGrade(4, "first"))
	ctx := context.Background()
	interview, err := f.interviews.Create(ctx, "user-1", form(), "req-1")
	require.NoError(t, err)

	first, err := f.answers.Submit(ctx, "user-1", interview.ID, 0, "first try", "req-2")
	require.NoError(t, err)

	f.grader.gradeFn = func(context.Context, grading.GradeInput) (*grading.Grade, error) {
		return &grading.Grade{Rating: 9, Feedback: "second"}, nil
	}
	second, err := f.answers.Submit(ctx, "user-1", interview.ID, 0, "second try", "req-3")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	answers, err := f.answers.List(ctx, "user-1", interview.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "second try", answers[0].UserAnswerText)
	assert.Equal(t, 9.0, answers[0].Rating)
}

func TestAnswerService_SubmitValidation(t *testing.T) {
	f := newFixture(t, fixedGrade(8, "ok"))
	ctx := context.Background()
	interview, err := f.interviews.Create(ctx, "user-1", form(), "req-1")
	require.NoError(t, err)

	_, err = f.answers.Submit(ctx, "user-1", interview.ID, 0, "   ", "req")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeInvalidInput))

	_, err = f.answers.Submit(ctx, "user-1", interview.ID, 5, "answer", "req")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeInvalidInput))

	_, err = f.answers.Submit(ctx, "user-2", interview.ID, 0, "answer", "req")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))

	_, err = f.answers.Submit(ctx, "", interview.ID, 0, "answer", "req")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeUnauthorized))

	assert.Empty(t, f.grader.inputs)
}

func TestAnswerService_GatewayFailurePersistsNothing(t *testing.T) {
	f := newFixture(t, &stubGrader{gradeFn: func(context.Context, grading.GradeInput) (*grading.Grade, error) {
		return nil, apperrors.RateLimit("AI service is busy, please try again shortly", errors.New("429"))
	}})
	ctx := context.Background()
	interview, err := f.interviews.Create(ctx, "user-1", form(), "req-1")
	require.NoError(t, err)

	_, err = f.answers.Submit(ctx, "user-1", interview.ID, 0, "answer", "req-2")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeRateLimit))

	answers, err := f.answers.List(ctx, "user-1", interview.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestAnswerService_CancelledWhileGradingDiscardsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, &stubGrader{gradeFn: func(context.Context, grading.GradeInput) (*grading.Grade, error) {
		cancel()
		return &grading.Grade{Rating: 9, Feedback: "late"}, nil
	}})
	interview, err := f.interviews.Create(context.Background(), "user-1", form(), "req-1")
	require.NoError(t, err)

	_, err = f.answers.Submit(ctx, "user-1", interview.ID, 0, "answer", "req-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	answers, err := f.answers.List(context.Background(), "user-1", interview.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestAnswerService_ListFollowsQuestionOrder(t *testing.T) {
	f := newFixture(t, fixedGrade(6, "ok"))
	ctx := context.Background()
	interview, err := f.interviews.Create(ctx, "user-1", form(), "req-1")
	require.NoError(t, err)

	_, err = f.answers.Submit(ctx, "user-1", interview.ID, 1, "second question", "req-2")
	require.NoError(t, err)
	_, err = f.answers.Submit(ctx, "user-1", interview.ID, 0, "first question", "req-3")
	require.NoError(t, err)

	answers, err := f.answers.List(ctx, "user-1", interview.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "first question", answers[0].UserAnswerText)
	assert.Equal(t, "second question", answers[1].UserAnswerText)
}
