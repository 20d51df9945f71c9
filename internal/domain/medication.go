package domain

import (
	"time"
)

// Medication is a prescribed or self-reported medication tracked for a user.
type Medication struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	Dosage             string    `json:"dosage"`
	Frequency          string    `json:"frequency"`
	MedicationTime     string    `json:"medication_time"`
	Notes              string    `json:"notes,omitempty"`
	IsActive           bool      `json:"is_active"`
	RefillReminderDays int       `json:"refill_reminder_days"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Medication log statuses.
const (
	MedicationTaken   = "taken"
	MedicationMissed  = "missed"
	MedicationSkipped = "skipped"
	MedicationDelayed = "delayed"
)

// MedicationLog records a single scheduled dose outcome.
type MedicationLog struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	MedicationID  string     `json:"medication_id"`
	ScheduledTime string     `json:"scheduled_time"`
	Status        string     `json:"status"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ValidLogStatus reports whether s is one of the known dose outcomes.
func ValidLogStatus(s string) bool {
	switch s {
	case MedicationTaken, MedicationMissed, MedicationSkipped, MedicationDelayed:
		return true
	}
	return false
}
