package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avavoice/ava-server/internal/domain"
	"github.com/avavoice/ava-server/internal/store"
)

// MedicationHandler serves the medication CRUD and dose log endpoints.
type MedicationHandler struct {
	*Handler
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(base *Handler) *MedicationHandler {
	return &MedicationHandler{Handler: base}
}

// RegisterRoutes registers medication routes on the router.
func (h *MedicationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/medications", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Deactivate)
		r.Post("/{id}/logs", h.CreateLog)
		r.Get("/{id}/logs", h.ListLogs)
	})
	r.Get("/api/medication-logs", h.ListAllLogs)
}

type medicationRequest struct {
	Name               string `json:"name"`
	Dosage             string `json:"dosage"`
	Frequency          string `json:"frequency"`
	MedicationTime     string `json:"medication_time"`
	Notes              string `json:"notes"`
	RefillReminderDays int    `json:"refill_reminder_days"`
}

// Create adds a medication for the acting user.
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	var req medicationRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Name == "" {
		Fail(w, http.StatusBadRequest, "Medication name is required", "MISSING_NAME")
		return
	}

	med := &domain.Medication{
		ID:                 uuid.NewString(),
		UserID:             h.userID(r),
		Name:               req.Name,
		Dosage:             req.Dosage,
		Frequency:          req.Frequency,
		MedicationTime:     req.MedicationTime,
		Notes:              req.Notes,
		IsActive:           true,
		RefillReminderDays: req.RefillReminderDays,
	}
	if err := h.repo.CreateMedication(r.Context(), med); err != nil {
		slog.Error("Failed to create medication", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to create medication", err.Error())
		return
	}
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: med, Message: "Medication created"})
}

// List returns the acting user's medications. Pass all=true to include
// deactivated ones.
func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	activeOnly := r.URL.Query().Get("all") != "true"
	meds, err := h.repo.ListMedications(r.Context(), h.userID(r), activeOnly)
	if err != nil {
		slog.Error("Failed to list medications", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to list medications", err.Error())
		return
	}
	if meds == nil {
		meds = []*domain.Medication{}
	}
	OK(w, meds, "")
}

// Get returns one medication by ID.
func (h *MedicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	med, err := h.repo.GetMedication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get medication", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to get medication", err.Error())
		return
	}
	if med == nil {
		Fail(w, http.StatusNotFound, "Medication not found", "NOT_FOUND")
		return
	}
	OK(w, med, "")
}

// Update rewrites a medication's fields.
func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	id := chi.URLParam(r, "id")
	existing, err := h.repo.GetMedication(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get medication", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to update medication", err.Error())
		return
	}
	if existing == nil {
		Fail(w, http.StatusNotFound, "Medication not found", "NOT_FOUND")
		return
	}

	var req medicationRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Name == "" {
		Fail(w, http.StatusBadRequest, "Medication name is required", "MISSING_NAME")
		return
	}

	existing.Name = req.Name
	existing.Dosage = req.Dosage
	existing.Frequency = req.Frequency
	existing.MedicationTime = req.MedicationTime
	existing.Notes = req.Notes
	existing.RefillReminderDays = req.RefillReminderDays

	if err := h.repo.UpdateMedication(r.Context(), existing); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Fail(w, http.StatusNotFound, "Medication not found", "NOT_FOUND")
			return
		}
		slog.Error("Failed to update medication", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to update medication", err.Error())
		return
	}
	OK(w, existing, "Medication updated")
}

// Deactivate soft-deletes a medication.
func (h *MedicationHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	if err := h.repo.DeactivateMedication(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Fail(w, http.StatusNotFound, "Medication not found", "NOT_FOUND")
			return
		}
		slog.Error("Failed to deactivate medication", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to deactivate medication", err.Error())
		return
	}
	OK(w, nil, "Medication deactivated")
}

type medicationLogRequest struct {
	ScheduledTime string     `json:"scheduled_time"`
	Status        string     `json:"status"`
	TakenAt       *time.Time `json:"taken_at"`
	Notes         string     `json:"notes"`
}

// CreateLog records a dose outcome for a medication.
func (h *MedicationHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	medicationID := chi.URLParam(r, "id")
	med, err := h.repo.GetMedication(r.Context(), medicationID)
	if err != nil {
		slog.Error("Failed to get medication", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to record dose", err.Error())
		return
	}
	if med == nil {
		Fail(w, http.StatusNotFound, "Medication not found", "NOT_FOUND")
		return
	}

	var req medicationLogRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if !domain.ValidLogStatus(req.Status) {
		Fail(w, http.StatusBadRequest, "Invalid log status", "INVALID_STATUS")
		return
	}

	log := &domain.MedicationLog{
		ID:            uuid.NewString(),
		UserID:        h.userID(r),
		MedicationID:  medicationID,
		ScheduledTime: req.ScheduledTime,
		Status:        req.Status,
		TakenAt:       req.TakenAt,
		Notes:         req.Notes,
	}
	if err := h.repo.CreateMedicationLog(r.Context(), log); err != nil {
		slog.Error("Failed to record dose", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to record dose", err.Error())
		return
	}
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: log, Message: "Dose recorded"})
}

// ListLogs returns the dose outcomes for one medication. days controls the
// lookback window (default 7).
func (h *MedicationHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	h.listLogs(w, r, chi.URLParam(r, "id"))
}

// ListAllLogs returns the acting user's dose outcomes across medications.
func (h *MedicationHandler) ListAllLogs(w http.ResponseWriter, r *http.Request) {
	h.listLogs(w, r, "")
}

func (h *MedicationHandler) listLogs(w http.ResponseWriter, r *http.Request, medicationID string) {
	if !h.requireRepo(w) {
		return
	}
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			Fail(w, http.StatusBadRequest, "Invalid days parameter", "INVALID_DAYS")
			return
		}
		days = n
	}
	since := time.Now().AddDate(0, 0, -days)

	logs, err := h.repo.ListMedicationLogs(r.Context(), h.userID(r), medicationID, since)
	if err != nil {
		slog.Error("Failed to list medication logs", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to list medication logs", err.Error())
		return
	}
	if logs == nil {
		logs = []*domain.MedicationLog{}
	}
	OK(w, logs, "")
}
