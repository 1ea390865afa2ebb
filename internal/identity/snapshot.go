package identity

import "time"

// Principal is a real, authenticated identity.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Profile carries the persisted per-user attributes shown in the application.
type Profile struct {
	DisplayName     string    `json:"display_name"`
	Status          string    `json:"status"`
	PermanentAccess bool      `json:"permanent_access"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Snapshot is a point-in-time view of an authenticated principal, its
// profile and granted roles. A nil Snapshot means anonymous; callers must
// not invent a zero-value one to mean "signed in".
type Snapshot struct {
	Principal Principal `json:"principal"`
	Profile   Profile   `json:"profile"`
	Roles     []Role    `json:"roles"`
}

// HasRole reports role membership. It is false for a nil snapshot and for
// any role not present, including before roles have loaded.
func (s *Snapshot) HasRole(role Role) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(RoleAdmin).
func (s *Snapshot) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}
