package service

import "errors"

// Error taxonomy surfaced to the HTTP layer. Handlers map these to
// status codes: 401 for credentials, 400 for duplicates and bad
// statuses, 404 for unknown records, 409 for slot conflicts.
var (
	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password"; the two are deliberately indistinguishable so a caller
	// cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrDuplicateAccount is returned when registering an email that
	// already has an account of the same kind.
	ErrDuplicateAccount = errors.New("account with this email already exists")

	// ErrNotFound is returned for operations on records that do not
	// exist.
	ErrNotFound = errors.New("record not found")

	// ErrSlotTaken is returned when booking a slot that already holds a
	// non-cancelled appointment.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrSlotBusy is returned when another request holds the booking
	// lock for the same slot; the caller should retry.
	ErrSlotBusy = errors.New("slot is being booked, please retry")

	// ErrInvalidStatus is returned when a status update names a value
	// outside the known status set.
	ErrInvalidStatus = errors.New("unknown appointment status")
)
