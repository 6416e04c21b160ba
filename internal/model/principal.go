package model

import "time"

// Kind enumerates the three principal types that can authenticate
// against the API. The values double as the JWT "role" claim and the
// userType field exchanged with clients.
type Kind string

const (
	KindAdmin   Kind = "ADMIN"
	KindDoctor  Kind = "DOCTOR"
	KindPatient Kind = "PATIENT"
)

// ParseKind normalizes a userType string into a Kind. The boolean is
// false when the value is not one of the three known kinds.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindAdmin, KindDoctor, KindPatient:
		return Kind(s), true
	}
	return "", false
}

// Principal represents an authenticatable identity row in the
// `principals` table. Admins, doctors and patients share the table and
// are distinguished by Kind; email is unique per kind, not globally.
//
// Fields:
//  ID               – primary key identifier.
//  Kind             – ADMIN, DOCTOR or PATIENT.
//  Email            – login email, unique within the kind.
//  PasswordHash     – bcrypt hashed password.
//  Name             – display name shown in login responses.
//  SpecializationID – doctors only; references specializations.id.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type Principal struct {
	ID               int64     `json:"id"`
	Kind             Kind      `json:"kind"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Name             string    `json:"name"`
	SpecializationID *int64    `json:"specialization_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Specialization is a row in the `specializations` table. Doctors
// reference it via Principal.SpecializationID.
type Specialization struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
