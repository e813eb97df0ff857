package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/adityavardhansharma/ai-mock-interview/internal/config"
	"github.com/adityavardhansharma/ai-mock-interview/internal/llm"
	"github.com/adityavardhansharma/ai-mock-interview/internal/prompts"
	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories"
	"github.com/adityavardhansharma/ai-mock-interview/internal/utils"
)

const serviceName = "mock-interview"

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	config        *config.Config
	store         repositories.Pinger
	bus           repositories.Pinger
}

// NewHealthHandler takes a nil bus when live updates are off.
func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, cfg *config.Config, store, bus repositories.Pinger) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
		store:         store,
		bus:           bus,
	}
}

func (h *HealthHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

func (h *HealthHandler) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]ReadinessCheck)
	ready := true
	fail := func(name, message string) {
		checks[name] = ReadinessCheck{Status: "failed", Message: message}
		ready = false
	}
	ok := func(name string) { checks[name] = ReadinessCheck{Status: "ok"} }

	if h.provider == nil {
		fail("provider", "AI provider not initialized")
	} else {
		ok("provider")
	}

	switch {
	case h.promptManager == nil:
		fail("prompt_manager", "Prompt manager not initialized")
	case len(h.promptManager.GetTemplates()) == 0:
		fail("prompt_manager", "No prompt templates loaded")
	default:
		ok("prompt_manager")
	}

	if h.config == nil {
		fail("configuration", "Configuration not loaded")
	} else {
		ok("configuration")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.store == nil {
		fail("store", "Store not initialized")
	} else if err := h.store.Ping(ctx); err != nil {
		fail("store", err.Error())
	} else {
		ok("store")
	}

	// live push is optional; a broken bus degrades views but not readiness
	if h.bus != nil {
		if err := h.bus.Ping(ctx); err != nil {
			checks["live"] = ReadinessCheck{Status: "failed", Message: err.Error()}
		} else {
			ok("live")
		}
	}

	resp := ReadinessResponse{Service: serviceName, Checks: checks}
	if ready {
		resp.Status = "ready"
		utils.JSON(w, http.StatusOK, resp)
		return
	}
	resp.Status = "not_ready"
	utils.JSON(w, http.StatusServiceUnavailable, resp)
}
