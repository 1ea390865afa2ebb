package caregivers

import "time"

// Relationship links a caregiver's contact email to a client. Created and
// edited by the client-owning professional; read-only to the caregiver.
// Its existence is itself an authorization fact: the permission evaluator
// grants caregiver access on a matching email even without a role grant.
type Relationship struct {
	ID             int64     `json:"id"`
	ClientName     string    `json:"client_name"`
	CaregiverEmail string    `json:"caregiver_email"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
