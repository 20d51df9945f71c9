package domain

import (
	"time"
)

// Reminder is a recurring or one-shot prompt for the user, optionally
// linked to a medication.
type Reminder struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	MedicationID  string     `json:"medication_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ReminderTime  string     `json:"reminder_time"`
	IsRecurring   bool       `json:"is_recurring"`
	DaysOfWeek    []string   `json:"days_of_week,omitempty"`
	ReminderType  string     `json:"reminder_type,omitempty"`
	IsActive      bool       `json:"is_active"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	SnoozeUntil   *time.Time `json:"snooze_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
