package roles

import "time"

// Role is a catalog entry backing the closed application role set.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Grant links a user to a role.
type Grant struct {
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
	RoleName  string    `json:"role_name"`
	CreatedAt time.Time `json:"created_at"`
}
