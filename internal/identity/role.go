package identity

// Role is a capability grant from the closed application set. Roles are
// additive; a principal may hold several. There is no hierarchy beyond the
// admin shortcut encoded in the permission evaluator.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleEditor       Role = "editor"
	RoleReader       Role = "reader"
	RoleProfessional Role = "professional"
)

// KnownRoles lists every role the application understands.
func KnownRoles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleReader, RoleProfessional}
}

// ParseRole maps a stored role name onto the closed set. Unknown names are
// returned as-is so they round-trip, but they never match any known role.
func ParseRole(name string) (Role, bool) {
	switch Role(name) {
	case RoleAdmin, RoleEditor, RoleReader, RoleProfessional:
		return Role(name), true
	}
	return Role(name), false
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}
