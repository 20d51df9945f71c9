package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avavoice/ava-server/internal/llm"
	"github.com/avavoice/ava-server/internal/tts"
)

// healthCheckTimeout bounds the collaborator probes behind /api/status.
const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	*Handler
	gemini *llm.Gemini
	synth  *tts.Chain
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(base *Handler, gemini *llm.Gemini, synth *tts.Chain) *HealthHandler {
	return &HealthHandler{Handler: base, gemini: gemini, synth: synth}
}

// RegisterRoutes registers the health check routes.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/healthz", h.Health)
	r.Get("/api/status", h.Status)
}

// Health is the liveness probe: it only checks the process and database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := "healthy"
	statusCode := http.StatusOK

	if h.repo != nil {
		if err := h.repo.Ping(ctx); err != nil {
			slog.Error("Health check failed", "error", err)
			checks["database"] = "unreachable"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "disabled"
	}

	JSON(w, statusCode, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// Status reports readiness of every collaborator, including a live probe
// of the language model.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}

	if h.gemini != nil {
		if err := h.gemini.Ping(ctx); err != nil {
			slog.Warn("Gemini status probe failed", "error", err)
			checks["gemini"] = "unreachable"
		} else {
			checks["gemini"] = "ok"
		}
	} else {
		checks["gemini"] = "disabled"
	}

	if h.synth != nil && h.synth.Available() {
		checks["tts"] = "ok"
	} else {
		checks["tts"] = "disabled"
	}

	if h.repo != nil {
		if err := h.repo.Ping(ctx); err != nil {
			checks["database"] = "unreachable"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "disabled"
	}

	status := "healthy"
	for _, state := range checks {
		if state == "unreachable" {
			status = "degraded"
			break
		}
	}

	OK(w, map[string]interface{}{
		"status": status,
		"model":  h.modelName(),
		"checks": checks,
	}, "")
}

func (h *HealthHandler) modelName() string {
	if h.gemini == nil {
		return ""
	}
	return h.gemini.Model()
}
