package grading

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/llm"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/prompts"
)

type mockProvider struct {
	generateFn func(ctx context.Context, prompt, requestID string) (*models.GenerationResponse, error)
	prompts    []string
}

func (m *mockProvider) GenerateContent(ctx context.Context, prompt, requestID string) (*models.GenerationResponse, error) {
	m.prompts = append(m.prompts, prompt)
	return m.generateFn(ctx, prompt, requestID)
}

func (m *mockProvider) GetProviderName() string { return "mock" }

func replying(content string) *mockProvider {
	return &mockProvider{generateFn: func(_ context.Context, _, requestID string) (*models.GenerationResponse, error) {
		return &models.GenerationResponse{Content: content, RequestID: requestID, Metadata: models.GenerationMetadata{Provider: "mock"}}, nil
	}}
}

func failing(err error) *mockProvider {
	return &mockProvider{generateFn: func(context.Context, string, string) (*models.GenerationResponse, error) {
		return nil, err
	}}
}

func newPromptManager(t *testing.T) *prompts.PromptManager {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager error: %v", err)
	}
	return pm
}

func TestGraderGrade(t *testing.T) {
	provider := replying("```json\n{\"ratings\": 8, \"feedback\": \"Mention the scheduler.\"}\n```")
	grader := NewGrader(provider, newPromptManager(t), zap.NewNop())

	grade, err := grader.Grade(context.Background(), GradeInput{
		Question:        "What is a goroutine?",
		ReferenceAnswer: "A lightweight thread.",
		UserAnswer:      "A thread.",
	}, "req-1")
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if grade.Rating != 8 || grade.Feedback != "Mention the scheduler." {
		t.Fatalf("unexpected grade %+v", grade)
	}
	if len(provider.prompts) != 1 || !strings.Contains(provider.prompts[0], `User Answer: "A thread."`) {
		t.Fatalf("unexpected prompt %v", provider.prompts)
	}
}

func TestGraderGradeFallsBackOnMalformedOutput(t *testing.T) {
	grader := NewGrader(replying("I think it was fine."), newPromptManager(t), zap.NewNop())

	grade, err := grader.Grade(context.Background(), GradeInput{Question: "q", UserAnswer: "a"}, "req")
	if err != nil {
		t.Fatalf("malformed output must not be an error: %v", err)
	}
	if *grade != FallbackGrade() {
		t.Fatalf("expected fallback grade, got %+v", grade)
	}
}

func TestGraderGradeGatewayErrors(t *testing.T) {
	tests := []struct {
		code string
		want apperrors.ErrorType
	}{
		{llm.ErrCodeRateLimit, apperrors.ErrTypeRateLimit},
		{llm.ErrCodeServiceDown, apperrors.ErrTypeUnavailable},
		{llm.ErrCodeTimeout, apperrors.ErrTypeUnavailable},
	}
	for _, tt := range tests {
		provider := failing(&llm.ProviderError{Provider: "mock", Code: tt.code, Message: "boom"})
		grader := NewGrader(provider, newPromptManager(t), zap.NewNop())

		grade, err := grader.Grade(context.Background(), GradeInput{Question: "q", UserAnswer: "a"}, "req")
		if grade != nil {
			t.Fatalf("expected no grade on gateway error, got %+v", grade)
		}
		if apperrors.TypeOf(err) != tt.want {
			t.Fatalf("code %s: expected %s, got %v", tt.code, tt.want, err)
		}
	}
}

func TestGraderWithVariant(t *testing.T) {
	provider := replying(`{"ratings": 6, "feedback": "ok"}`)
	grader := NewGrader(provider, newPromptManager(t), zap.NewNop()).WithVariant("concise")

	if _, err := grader.Grade(context.Background(), GradeInput{Question: "q", UserAnswer: "a"}, "req"); err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if !strings.Contains(provider.prompts[0], "at most three sentences") {
		t.Fatalf("expected concise variant prompt, got %s", provider.prompts[0])
	}

	_, err := NewGrader(provider, newPromptManager(t), zap.NewNop()).WithVariant("nope").
		Grade(context.Background(), GradeInput{}, "req")
	if apperrors.TypeOf(err) != apperrors.ErrTypeInternal {
		t.Fatalf("expected internal error for unknown variant, got %v", err)
	}
}

func TestQuestionGeneratorGenerate(t *testing.T) {
	provider := replying(`[
		{"question": "Q1", "answer": "A1"},
		{"question": "Q2", "answer": "A2"},
		{"question": "Q3", "answer": "A3"}
	]`)
	generator := NewQuestionGenerator(provider, newPromptManager(t), 2, zap.NewNop())

	form := &models.InterviewForm{Position: "Backend Engineer", Description: "Payments team", Experience: 3, TechStack: "Go, PostgreSQL"}
	questions, err := generator.Generate(context.Background(), form, "req")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(questions) != 2 || questions[1].Question != "Q2" {
		t.Fatalf("expected first two questions, got %+v", questions)
	}
	if !strings.Contains(provider.prompts[0], "containing 2 technical interview questions") {
		t.Fatalf("expected count in prompt, got %s", provider.prompts[0])
	}
}

func TestQuestionGeneratorErrors(t *testing.T) {
	form := &models.InterviewForm{Position: "p", Description: "description", TechStack: "Go"}

	_, err := NewQuestionGenerator(replying("no questions today"), newPromptManager(t), 5, zap.NewNop()).
		Generate(context.Background(), form, "req")
	if apperrors.TypeOf(err) != apperrors.ErrTypeUnavailable || !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected unavailable wrapping ErrNoQuestions, got %v", err)
	}

	_, err = NewQuestionGenerator(failing(errors.New("network down")), newPromptManager(t), 5, zap.NewNop()).
		Generate(context.Background(), form, "req")
	if apperrors.TypeOf(err) != apperrors.ErrTypeUnavailable {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestGraderLogsStackWhenPromptFails(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	grader := NewGrader(replying(`{}`), newPromptManager(t), zap.New(core)).WithVariant("nope")

	if _, err := grader.Grade(context.Background(), GradeInput{}, "req-9"); err == nil {
		t.Fatal("expected error for unknown variant")
	}

	entries := logs.FilterMessage("Failed to build prompt").All()
	if len(entries) != 1 {
		t.Fatalf("expected one error log, got %d", len(entries))
	}
	stack, ok := entries[0].ContextMap()["stack"].(string)
	if !ok || !strings.Contains(stack, "(*Grader).Grade") {
		t.Fatalf("expected stack from Grade, got %v", entries[0].ContextMap()["stack"])
	}
}

func TestWithVariantEmptyKeepsDefault(t *testing.T) {
	provider := replying(`{"ratings": 7, "feedback": "fine"}`)
	grader := NewGrader(provider, newPromptManager(t), zap.NewNop()).WithVariant("")

	if _, err := grader.Grade(context.Background(), GradeInput{Question: "q", UserAnswer: "a"}, "req"); err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if strings.Contains(provider.prompts[0], "at most three sentences") {
		t.Fatal("expected the default variant")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}

	// "é" is two bytes; cutting at 2 would split it
	got := truncate("aé-rest", 2)
	if got != "a..." {
		t.Fatalf("expected cut before the multi-byte rune, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated value is not valid UTF-8: %q", got)
	}
	if got := truncate("日本語", 3); got != "日..." {
		t.Fatalf("expected whole first rune, got %q", got)
	}
}
