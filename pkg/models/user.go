package models

import "time"

type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Role          string    `json:"role"`
	SetupComplete bool      `json:"setup_complete"`
	CreatedAt     time.Time `json:"created_at"`
}

// TempUser is a partial registration record awaiting OTP verification.
type TempUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MergeUser overlays the non-zero fields of fresh onto a copy of base.
// Used when a server profile response carries fewer fields than the
// locally cached profile.
func MergeUser(base, fresh *User) *User {
	if base == nil {
		return fresh
	}
	if fresh == nil {
		return base
	}
	merged := *base
	if fresh.ID != "" {
		merged.ID = fresh.ID
	}
	if fresh.Username != "" {
		merged.Username = fresh.Username
	}
	if fresh.Email != "" {
		merged.Email = fresh.Email
	}
	if fresh.Phone != "" {
		merged.Phone = fresh.Phone
	}
	if fresh.Role != "" {
		merged.Role = fresh.Role
	}
	if fresh.SetupComplete {
		merged.SetupComplete = true
	}
	if !fresh.CreatedAt.IsZero() {
		merged.CreatedAt = fresh.CreatedAt
	}
	return &merged
}
