package identity

import "time"

// State is the impersonation overlay for a session. The zero value means
// "not impersonating". It is persisted in the session payload so it
// survives a page reload; the epoch counter lets in-flight permission
// checks detect that a start/stop happened underneath them.
type State struct {
	Active             bool      `json:"active"`
	OriginalUserID     int64     `json:"original_user_id,omitempty"`
	ImpersonatedUserID int64     `json:"impersonated_user_id,omitempty"`
	ImpersonatedEmail  string    `json:"impersonated_email,omitempty"`
	ImpersonatedRoles  []Role    `json:"impersonated_roles,omitempty"`
	Epoch              int64     `json:"epoch"`
	StartedAt          time.Time `json:"started_at,omitempty"`
}

// WellFormed reports whether an active state carries both identities.
// Inactive states are always well-formed.
func (s State) WellFormed() bool {
	if !s.Active {
		return true
	}
	return s.OriginalUserID != 0 && s.ImpersonatedUserID != 0
}
