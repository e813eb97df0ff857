package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
)

type testProvider struct{}

func (testProvider) GenerateContent(context.Context, string, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{Content: "ok"}, nil
}
func (testProvider) GetProviderName() string { return "test" }

func TestProviderErrorError(t *testing.T) {
	err := &ProviderError{Provider: "gemini", Message: "failed"}
	if err.Error() != "gemini error: failed" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}

	detail := errors.New("detail")
	wrapped := &ProviderError{Provider: "gemini", Message: "failed", Err: detail}
	if got := wrapped.Error(); got != "gemini error: failed (detail)" {
		t.Fatalf("unexpected wrapped error message: %s", got)
	}
	if !errors.Is(wrapped, detail) {
		t.Fatal("expected provider error to unwrap to its cause")
	}
}

func TestErrorCode(t *testing.T) {
	err := fmt.Errorf("grading: %w", &ProviderError{Provider: "openai", Code: ErrCodeRateLimit})
	if got := ErrorCode(err); got != ErrCodeRateLimit {
		t.Fatalf("expected rate limit code, got %q", got)
	}
	if got := ErrorCode(errors.New("plain")); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
}

func TestRegisterAndOpen(t *testing.T) {
	Register("test_provider", func() (Provider, error) {
		return testProvider{}, nil
	})
	defer unregister("test_provider")

	provider, err := Open("test_provider")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if name := provider.GetProviderName(); name != "test" {
		t.Fatalf("expected provider name test, got %s", name)
	}

	found := false
	for _, name := range Registered() {
		if name == "test_provider" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected test_provider to be listed")
	}

	if _, err := Open("missing"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	Register("dup_provider", func() (Provider, error) { return testProvider{}, nil })
	defer unregister("dup_provider")

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	Register("dup_provider", func() (Provider, error) { return testProvider{}, nil })
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("TESTLLM_API_KEY", " key ")
	t.Setenv("TESTLLM_MODEL", "")
	t.Setenv("TESTLLM_BASE_URL", "http://localhost:8080")

	s, err := SettingsFromEnv("TESTLLM", "fallback-model")
	if err != nil {
		t.Fatalf("SettingsFromEnv returned error: %v", err)
	}
	if s.APIKey != "key" || s.Model != "fallback-model" || s.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected settings %+v", s)
	}

	t.Setenv("TESTLLM_API_KEY", "")
	if _, err := SettingsFromEnv("TESTLLM", "m"); err == nil || err.Error() != "TESTLLM_API_KEY environment variable is required" {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
