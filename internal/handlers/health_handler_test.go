package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"text/template"

	"github.com/adityavardhansharma/ai-mock-interview/internal/config"
)

func loadedPrompts() *mockPromptManager {
	return &mockPromptManager{templates: map[string]map[string]*template.Template{
		"grade": {"default": template.Must(template.New("test").Parse("test"))},
	}}
}

func TestHealthz(t *testing.T) {
	handler := NewHealthHandler(nil, nil, nil, nil, nil)
	rec := httptest.NewRecorder()
	handler.HealthzHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzReady(t *testing.T) {
	handler := NewHealthHandler(mockProvider{}, loadedPrompts(), &config.Config{}, stubPinger{}, stubPinger{})
	rec := httptest.NewRecorder()
	handler.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ReadinessResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Status != "ready" || resp.Checks["store"].Status != "ok" || resp.Checks["live"].Status != "ok" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestReadyzStoreDown(t *testing.T) {
	handler := NewHealthHandler(mockProvider{}, loadedPrompts(), &config.Config{}, stubPinger{err: errors.New("connection refused")}, nil)
	rec := httptest.NewRecorder()
	handler.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp ReadinessResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Checks["store"].Message != "connection refused" {
		t.Fatalf("unexpected store check %+v", resp.Checks["store"])
	}
	if _, ok := resp.Checks["live"]; ok {
		t.Fatal("live check should be absent without a bus")
	}
}

func TestReadyzBusDownStaysReady(t *testing.T) {
	handler := NewHealthHandler(mockProvider{}, loadedPrompts(), &config.Config{}, stubPinger{}, stubPinger{err: errors.New("redis down")})
	rec := httptest.NewRecorder()
	handler.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzMissingDependencies(t *testing.T) {
	handler := NewHealthHandler(nil, &mockPromptManager{}, nil, nil, nil)
	rec := httptest.NewRecorder()
	handler.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp ReadinessResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	for _, name := range []string{"provider", "prompt_manager", "configuration", "store"} {
		if resp.Checks[name].Status != "failed" {
			t.Fatalf("expected %s to fail, got %+v", name, resp.Checks[name])
		}
	}
}
