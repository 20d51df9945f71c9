// Package domain contains core domain types for the Ava assistant.
package domain

import (
	"time"
)

// User represents an assistant user. The desktop app runs single-user:
// the composition root resolves a default user ID from configuration and
// handlers fall back to it when no X-User-ID header is present.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Timezone  string    `json:"timezone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
