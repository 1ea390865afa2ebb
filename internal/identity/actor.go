package identity

// Actor combines the real identity snapshot with the session's
// impersonation state. It is the single place where "whose data is this"
// gets decided: feature handlers read the effective identity from here and
// never from Snapshot.Principal directly, otherwise impersonation silently
// stops propagating into that feature.
type Actor struct {
	Snapshot      *Snapshot
	Impersonation State
}

// Authenticated reports whether a real principal is present.
func (a *Actor) Authenticated() bool {
	return a != nil && a.Snapshot != nil
}

// IsImpersonating reports whether the overlay is active.
func (a *Actor) IsImpersonating() bool {
	return a != nil && a.Impersonation.Active
}

// EffectiveUserID returns the impersonated user ID when the overlay is
// active, the real principal's ID otherwise, and 0 when anonymous.
func (a *Actor) EffectiveUserID() int64 {
	if a == nil {
		return 0
	}
	if a.Impersonation.Active {
		return a.Impersonation.ImpersonatedUserID
	}
	if a.Snapshot == nil {
		return 0
	}
	return a.Snapshot.Principal.ID
}

// EffectiveEmail follows the same rule as EffectiveUserID.
func (a *Actor) EffectiveEmail() string {
	if a == nil {
		return ""
	}
	if a.Impersonation.Active {
		return a.Impersonation.ImpersonatedEmail
	}
	if a.Snapshot == nil {
		return ""
	}
	return a.Snapshot.Principal.Email
}

// EffectiveRoles returns the impersonated principal's roles while the
// overlay is active, the real roles otherwise.
func (a *Actor) EffectiveRoles() []Role {
	if a == nil {
		return nil
	}
	if a.Impersonation.Active {
		return a.Impersonation.ImpersonatedRoles
	}
	if a.Snapshot == nil {
		return nil
	}
	return a.Snapshot.Roles
}

// HasEffectiveRole checks role membership against the effective identity.
func (a *Actor) HasEffectiveRole(role Role) bool {
	for _, r := range a.EffectiveRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// RealUserID always returns the authenticated principal's ID, ignoring any
// impersonation. Used for audit trails.
func (a *Actor) RealUserID() int64 {
	if a == nil || a.Snapshot == nil {
		return 0
	}
	return a.Snapshot.Principal.ID
}

// IsRealAdmin checks adminship of the ORIGINAL principal, never the
// impersonated one. Starting an impersonation must use this check so a
// chained impersonation cannot escalate privileges.
func (a *Actor) IsRealAdmin() bool {
	return a != nil && a.Snapshot.IsAdmin()
}

// Epoch returns the impersonation epoch the actor was resolved under.
func (a *Actor) Epoch() int64 {
	if a == nil {
		return 0
	}
	return a.Impersonation.Epoch
}
