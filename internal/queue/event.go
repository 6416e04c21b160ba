// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// Event types published on the appointment.events queue.
const (
	EventAppointmentBooked        = "APPOINTMENT_BOOKED"
	EventAppointmentStatusChanged = "APPOINTMENT_STATUS_CHANGED"
)

// AppointmentEvent is published whenever an appointment is booked or
// changes status. It carries enough context for the notification
// worker to compose an email without querying the primary database.
type AppointmentEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	AppointmentID int64  `json:"appointment_id"`
	DoctorID      int64  `json:"doctor_id"`
	PatientID     int64  `json:"patient_id"`
	Date          string `json:"appointment_date"`
	Time          string `json:"appointment_time"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
