package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avavoice/ava-server/internal/domain"
	"github.com/avavoice/ava-server/internal/store"
)

// ReminderHandler serves the reminder CRUD endpoints.
type ReminderHandler struct {
	*Handler
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(base *Handler) *ReminderHandler {
	return &ReminderHandler{Handler: base}
}

// RegisterRoutes registers reminder routes on the router.
func (h *ReminderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/reminders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Deactivate)
		r.Post("/{id}/snooze", h.Snooze)
	})
}

type reminderRequest struct {
	MedicationID string   `json:"medication_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ReminderTime string   `json:"reminder_time"`
	IsRecurring  bool     `json:"is_recurring"`
	DaysOfWeek   []string `json:"days_of_week"`
	ReminderType string   `json:"reminder_type"`
}

// Create adds a reminder for the acting user.
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	var req reminderRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Title == "" {
		Fail(w, http.StatusBadRequest, "Reminder title is required", "MISSING_TITLE")
		return
	}
	if req.ReminderTime == "" {
		Fail(w, http.StatusBadRequest, "Reminder time is required", "MISSING_TIME")
		return
	}

	rem := &domain.Reminder{
		ID:           uuid.NewString(),
		UserID:       h.userID(r),
		MedicationID: req.MedicationID,
		Title:        req.Title,
		Description:  req.Description,
		ReminderTime: req.ReminderTime,
		IsRecurring:  req.IsRecurring,
		DaysOfWeek:   req.DaysOfWeek,
		ReminderType: req.ReminderType,
		IsActive:     true,
	}
	if err := h.repo.CreateReminder(r.Context(), rem); err != nil {
		slog.Error("Failed to create reminder", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to create reminder", err.Error())
		return
	}
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: rem, Message: "Reminder created"})
}

// List returns the acting user's reminders. Pass all=true to include
// deactivated ones.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	activeOnly := r.URL.Query().Get("all") != "true"
	rems, err := h.repo.ListReminders(r.Context(), h.userID(r), activeOnly)
	if err != nil {
		slog.Error("Failed to list reminders", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to list reminders", err.Error())
		return
	}
	if rems == nil {
		rems = []*domain.Reminder{}
	}
	OK(w, rems, "")
}

// Get returns one reminder by ID.
func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	rem, err := h.repo.GetReminder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get reminder", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to get reminder", err.Error())
		return
	}
	if rem == nil {
		Fail(w, http.StatusNotFound, "Reminder not found", "NOT_FOUND")
		return
	}
	OK(w, rem, "")
}

// Update rewrites a reminder's fields.
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	existing, err := h.repo.GetReminder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get reminder", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to update reminder", err.Error())
		return
	}
	if existing == nil {
		Fail(w, http.StatusNotFound, "Reminder not found", "NOT_FOUND")
		return
	}

	var req reminderRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Title == "" {
		Fail(w, http.StatusBadRequest, "Reminder title is required", "MISSING_TITLE")
		return
	}

	existing.MedicationID = req.MedicationID
	existing.Title = req.Title
	existing.Description = req.Description
	existing.ReminderTime = req.ReminderTime
	existing.IsRecurring = req.IsRecurring
	existing.DaysOfWeek = req.DaysOfWeek
	existing.ReminderType = req.ReminderType

	if err := h.repo.UpdateReminder(r.Context(), existing); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Fail(w, http.StatusNotFound, "Reminder not found", "NOT_FOUND")
			return
		}
		slog.Error("Failed to update reminder", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to update reminder", err.Error())
		return
	}
	OK(w, existing, "Reminder updated")
}

// Deactivate soft-deletes a reminder.
func (h *ReminderHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	if err := h.repo.DeactivateReminder(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Fail(w, http.StatusNotFound, "Reminder not found", "NOT_FOUND")
			return
		}
		slog.Error("Failed to deactivate reminder", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to deactivate reminder", err.Error())
		return
	}
	OK(w, nil, "Reminder deactivated")
}

type snoozeRequest struct {
	Minutes int `json:"minutes"`
}

// Snooze pushes a reminder out by the requested minutes (default 10).
func (h *ReminderHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	existing, err := h.repo.GetReminder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get reminder", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to snooze reminder", err.Error())
		return
	}
	if existing == nil {
		Fail(w, http.StatusNotFound, "Reminder not found", "NOT_FOUND")
		return
	}

	var req snoozeRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Minutes <= 0 {
		req.Minutes = 10
	}

	until := time.Now().Add(time.Duration(req.Minutes) * time.Minute)
	existing.SnoozeUntil = &until
	if err := h.repo.UpdateReminder(r.Context(), existing); err != nil {
		slog.Error("Failed to snooze reminder", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to snooze reminder", err.Error())
		return
	}
	OK(w, existing, "Reminder snoozed")
}
