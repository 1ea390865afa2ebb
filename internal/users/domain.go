package users

import "time"

// User represents a user account for management and profile views.
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	Status          string    `json:"status"`
	PermanentAccess bool      `json:"permanent_access"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfileUpdate carries the owner-editable profile fields.
type ProfileUpdate struct {
	DisplayName string
}
