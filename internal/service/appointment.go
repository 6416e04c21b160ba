package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/queue"
	"github.com/medisync/hospital-api/internal/repository"
)

// AppointmentStore is the repository surface the slot manager needs.
// *repository.AppointmentRepo satisfies it; tests use an in-memory
// fake.
type AppointmentStore interface {
	Create(ctx context.Context, a *model.Appointment) (*model.Appointment, error)
	FindByID(ctx context.Context, id int64) (*model.Appointment, error)
	FindBySlot(ctx context.Context, doctorID int64, date, tm string) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	SetCancelConfirm(ctx context.Context, id int64, confirmed bool) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]model.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error)
	ListByStatus(ctx context.Context, status string) ([]model.Appointment, error)
	ListByDate(ctx context.Context, date string) ([]model.Appointment, error)
	ListByDoctorAndDate(ctx context.Context, doctorID int64, date string) ([]model.Appointment, error)
	ListByDoctorRelativeToToday(ctx context.Context, doctorID int64, rel model.DateRelation) ([]model.Appointment, error)
	DistinctPatientsByDoctor(ctx context.Context, doctorID int64) ([]model.Principal, error)
}

// AppointmentService owns the slot invariant: at most one non-cancelled
// appointment per (doctor, date, time). Booking runs check-then-insert
// inside a per-slot lock so two concurrent requests for the same slot
// cannot both succeed.
type AppointmentService struct {
	store    AppointmentStore
	locker   SlotLocker
	notifier Notifier
}

func NewAppointmentService(store AppointmentStore, locker SlotLocker, notifier Notifier) *AppointmentService {
	if locker == nil {
		locker = NewMutexSlotLocker()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AppointmentService{store: store, locker: locker, notifier: notifier}
}

// CheckAvailability reports whether the exact slot is free. A slot
// occupied only by a CANCELLED appointment counts as free. Read-only;
// it does not reserve anything.
func (s *AppointmentService) CheckAvailability(ctx context.Context, doctorID int64, date, tm string) (bool, error) {
	_, err := s.store.FindBySlot(ctx, doctorID, date, tm)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// Book reserves a slot for a patient. The availability re-check and
// the insert run inside the slot lock; a concurrent booking of the
// same slot gets ErrSlotBusy (lock held) or ErrSlotTaken (lost the
// race). New appointments always start as PENDING.
func (s *AppointmentService) Book(ctx context.Context, appt *model.Appointment) (*model.Appointment, error) {
	var created *model.Appointment

	err := s.locker.WithSlotLock(ctx, appt.DoctorID, appt.Date, appt.Time, func(lockCtx context.Context) error {
		_, err := s.store.FindBySlot(lockCtx, appt.DoctorID, appt.Date, appt.Time)
		if err == nil {
			return ErrSlotTaken
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check slot: %w", err)
		}

		appt.Status = model.StatusPending
		appt.CancelConfirm = false
		created, err = s.store.Create(lockCtx, appt)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	s.notifier.AppointmentEvent(ctx, queue.AppointmentEvent{
		EventID:       uuid.NewString(),
		Type:          queue.EventAppointmentBooked,
		AppointmentID: created.ID,
		DoctorID:      created.DoctorID,
		PatientID:     created.PatientID,
		Date:          created.Date,
		Time:          created.Time,
		Status:        created.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return created, nil
}

// UpdateStatus overwrites an appointment's status. The value must be
// one of the four known statuses, but any known status may follow any
// other; transition order is not constrained.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id int64, status string) (*model.Appointment, error) {
	if !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	updated, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifier.AppointmentEvent(ctx, queue.AppointmentEvent{
		EventID:       uuid.NewString(),
		Type:          queue.EventAppointmentStatusChanged,
		AppointmentID: updated.ID,
		DoctorID:      updated.DoctorID,
		PatientID:     updated.PatientID,
		Date:          updated.Date,
		Time:          updated.Time,
		Status:        updated.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return updated, nil
}

// ConfirmCancel acknowledges a cancellation request on an appointment.
func (s *AppointmentService) ConfirmCancel(ctx context.Context, id int64) (*model.Appointment, error) {
	if err := s.store.SetCancelConfirm(ctx, id, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// Get returns one appointment by id.
func (s *AppointmentService) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

// Delete removes an appointment record entirely.
func (s *AppointmentService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ListAll returns every appointment.
func (s *AppointmentService) ListAll(ctx context.Context) ([]model.Appointment, error) {
	return s.store.ListAll(ctx)
}

// ByDoctor returns a doctor's appointments.
func (s *AppointmentService) ByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	return s.store.ListByDoctor(ctx, doctorID)
}

// ByPatient returns a patient's appointments.
func (s *AppointmentService) ByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error) {
	return s.store.ListByPatient(ctx, patientID)
}

// ByStatus filters appointments by status value.
func (s *AppointmentService) ByStatus(ctx context.Context, status string) ([]model.Appointment, error) {
	if !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.store.ListByStatus(ctx, status)
}

// ByDate returns all appointments on one calendar date.
func (s *AppointmentService) ByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	return s.store.ListByDate(ctx, date)
}

// ByDoctorAndDate returns a doctor's schedule for one date.
func (s *AppointmentService) ByDoctorAndDate(ctx context.Context, doctorID int64, date string) ([]model.Appointment, error) {
	return s.store.ListByDoctorAndDate(ctx, doctorID, date)
}

// Today returns a doctor's appointments dated exactly today.
func (s *AppointmentService) Today(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	return s.store.ListByDoctorRelativeToToday(ctx, doctorID, model.RelationToday)
}

// Upcoming returns a doctor's appointments dated after today.
func (s *AppointmentService) Upcoming(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	return s.store.ListByDoctorRelativeToToday(ctx, doctorID, model.RelationUpcoming)
}

// Past returns a doctor's appointments dated before today.
func (s *AppointmentService) Past(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	return s.store.ListByDoctorRelativeToToday(ctx, doctorID, model.RelationPast)
}

// DoctorPatients returns the distinct patients a doctor has
// appointments with.
func (s *AppointmentService) DoctorPatients(ctx context.Context, doctorID int64) ([]model.Principal, error) {
	return s.store.DistinctPatientsByDoctor(ctx, doctorID)
}
