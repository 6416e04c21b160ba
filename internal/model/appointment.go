package model

import "time"

// Appointment status values. Any status may replace any other; only
// membership in this set is validated (see service.AppointmentService).
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// ValidStatus reports whether s is one of the four known statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DateRelation selects how an appointment's date compares to the
// current date in derived queries. Classification looks at the DATE
// column only; time-of-day is intentionally not considered, so an
// appointment at 23:59 today stays "today" even after it has elapsed.
type DateRelation string

const (
	RelationPast     DateRelation = "PAST"
	RelationToday    DateRelation = "TODAY"
	RelationUpcoming DateRelation = "UPCOMING"
)

// Appointment mirrors the `appointments` table. Doctor and patient are
// referenced by id only; related records are loaded with explicit
// queries at the repository layer rather than embedded back-references.
//
// Fields:
//  ID            – primary key identifier.
//  DoctorID      – principals.id of the doctor holding the slot.
//  PatientID     – principals.id of the patient who booked it.
//  Date          – calendar date of the slot (DATE column).
//  Time          – time of day of the slot, "HH:MM:SS" (TIME column).
//  Description   – free-text reason for the visit.
//  Status        – PENDING, CONFIRMED, COMPLETED or CANCELLED.
//  CancelConfirm – set when a cancellation has been acknowledged.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Appointment struct {
	ID            int64     `json:"id"`
	DoctorID      int64     `json:"doctor_id"`
	PatientID     int64     `json:"patient_id"`
	Date          string    `json:"appointment_date"`
	Time          string    `json:"appointment_time"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	CancelConfirm bool      `json:"cancel_confirm"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
