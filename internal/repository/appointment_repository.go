package repository

import (
	"context"
	"database/sql"

	"github.com/medisync/hospital-api/internal/model"
)

// AppointmentRepo provides CRUD operations and derived queries for the
// 'appointments' table. Dates are stored in a DATE column and times in
// a TIME column; the today/upcoming/past queries compare the DATE
// column against CURDATE() only, mirroring how slots are classified
// throughout the system (time-of-day never participates).
type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

// appointment_date is formatted in SQL because parseTime=true would
// otherwise hand DATE columns back as time.Time at local midnight.
const appointmentCols = "id, doctor_id, patient_id, DATE_FORMAT(appointment_date,'%Y-%m-%d'), TIME_FORMAT(appointment_time,'%H:%i:%s'), descript, status, cancel_confirm, created_at, updated_at"

func scanAppointment(row interface{ Scan(...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Date, &a.Time,
		&a.Description, &a.Status, &a.CancelConfirm, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new appointment and returns the stored row.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO appointments (doctor_id, patient_id, appointment_date, appointment_time, descript, status, cancel_confirm) VALUES (?,?,?,?,?,?,?)",
		a.DoctorID, a.PatientID, a.Date, a.Time, a.Description, a.Status, a.CancelConfirm)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches one appointment. Returns ErrNotFound when absent.
func (r *AppointmentRepo) FindByID(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(r.DB.QueryRowContext(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// FindBySlot returns the non-cancelled appointment occupying the exact
// (doctor, date, time) slot, or ErrNotFound when the slot is free. A
// cancelled appointment does not occupy its slot.
func (r *AppointmentRepo) FindBySlot(ctx context.Context, doctorID int64, date, tm string) (*model.Appointment, error) {
	a, err := scanAppointment(r.DB.QueryRowContext(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE doctor_id=? AND appointment_date=? AND appointment_time=? AND status<>? LIMIT 1",
		doctorID, date, tm, model.StatusCancelled))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// UpdateStatus overwrites the status of an appointment. Returns
// ErrNotFound when the id matches no row.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCancelConfirm records that a cancellation was acknowledged.
func (r *AppointmentRepo) SetCancelConfirm(ctx context.Context, id int64, confirmed bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET cancel_confirm=? WHERE id=?", confirmed, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an appointment row.
func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM appointments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentRepo) list(ctx context.Context, query string, args ...any) ([]model.Appointment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ListAll returns every appointment ordered by date and time.
func (r *AppointmentRepo) ListAll(ctx context.Context) ([]model.Appointment, error) {
	return r.list(ctx,
		"SELECT "+appointmentCols+" FROM appointments ORDER BY appointment_date, appointment_time")
}

// ListByDoctor returns a doctor's appointments.
func (r *AppointmentRepo) ListByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	return r.list(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE doctor_id=? ORDER BY appointment_date, appointment_time",
		doctorID)
}

// ListByPatient returns a patient's appointments.
func (r *AppointmentRepo) ListByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error) {
	return r.list(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE patient_id=? ORDER BY appointment_date, appointment_time",
		patientID)
}

// ListByStatus returns all appointments carrying the given status.
func (r *AppointmentRepo) ListByStatus(ctx context.Context, status string) ([]model.Appointment, error) {
	return r.list(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE status=? ORDER BY appointment_date, appointment_time",
		status)
}

// ListByDate returns all appointments on a calendar date.
func (r *AppointmentRepo) ListByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	return r.list(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE appointment_date=? ORDER BY appointment_time",
		date)
}

// ListByDoctorAndDate returns a doctor's appointments on one date.
func (r *AppointmentRepo) ListByDoctorAndDate(ctx context.Context, doctorID int64, date string) ([]model.Appointment, error) {
	return r.list(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE doctor_id=? AND appointment_date=? ORDER BY appointment_time",
		doctorID, date)
}

// ListByDoctorRelativeToToday classifies a doctor's appointments by
// comparing appointment_date with the database's current date.
func (r *AppointmentRepo) ListByDoctorRelativeToToday(ctx context.Context, doctorID int64, rel model.DateRelation) ([]model.Appointment, error) {
	op := "="
	switch rel {
	case model.RelationPast:
		op = "<"
	case model.RelationUpcoming:
		op = ">"
	}
	return r.list(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE doctor_id=? AND appointment_date "+op+" CURDATE() ORDER BY appointment_date, appointment_time",
		doctorID)
}

// DistinctPatientsByDoctor returns the patients a doctor has seen,
// derived from that doctor's appointments.
func (r *AppointmentRepo) DistinctPatientsByDoctor(ctx context.Context, doctorID int64) ([]model.Principal, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT p.id, p.kind, p.email, p.password_hash, p.name, p.specialization_id, p.created_at, p.updated_at
		 FROM appointments a
		 JOIN principals p ON p.id = a.patient_id
		 WHERE a.doctor_id = ?
		 ORDER BY p.name`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Principal{}
	for rows.Next() {
		var p model.Principal
		if err := rows.Scan(&p.ID, &p.Kind, &p.Email, &p.PasswordHash, &p.Name,
			&p.SpecializationID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
