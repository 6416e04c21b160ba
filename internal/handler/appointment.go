package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/service"
)

// AppointmentHandler exposes booking, status and query endpoints over
// the appointment slot manager.
type AppointmentHandler struct {
	Appointments *service.AppointmentService
}

func NewAppointmentHandler(appts *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appts}
}

type bookReq struct {
	DoctorID    int64  `json:"doctor_id"`
	PatientID   int64  `json:"patient_id"`
	Date        string `json:"appointment_date"`
	Time        string `json:"appointment_time"`
	Description string `json:"description"`
}

type statusReq struct {
	Status string `json:"status"`
}

// parseDate accepts the wire date format used across the API.
func parseDate(s string) (string, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// parseClock accepts HH:MM or HH:MM:SS and normalizes to HH:MM:SS so
// slot comparisons are exact string matches.
func parseClock(s string) (string, bool) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05"), true
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04:05"), true
	}
	return "", false
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// Book creates a PENDING appointment if the slot is free.
func (h *AppointmentHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DoctorID <= 0 || req.PatientID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "doctor_id and patient_id required"})
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "appointment_date must be YYYY-MM-DD"})
	}
	clock, ok := parseClock(req.Time)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "appointment_time must be HH:MM"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	created, err := h.Appointments.Book(ctx, &model.Appointment{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		Date:        date,
		Time:        clock,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already booked"})
		case errors.Is(err, service.ErrSlotBusy):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot is being booked, please retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	return c.JSON(http.StatusCreated, created)
}

// CheckAvailability reports whether an exact slot is free.
func (h *AppointmentHandler) CheckAvailability(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.QueryParam("doctorId"), 10, 64)
	if err != nil || doctorID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "doctorId required"})
	}
	date, ok := parseDate(c.QueryParam("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	clock, ok := parseClock(c.QueryParam("time"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM"})
	}

	free, err := h.Appointments.CheckAvailability(c.Request().Context(), doctorID, date, clock)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"available": free})
}

// Get returns one appointment by id.
func (h *AppointmentHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	a, err := h.Appointments.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, a)
}

// UpdateStatus overwrites the status of an appointment.
func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	updated, err := h.Appointments.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// ConfirmCancel acknowledges a cancellation request.
func (h *AppointmentHandler) ConfirmCancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	updated, err := h.Appointments.ConfirmCancel(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes an appointment record.
func (h *AppointmentHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Appointments.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAll returns every appointment.
func (h *AppointmentHandler) ListAll(c echo.Context) error {
	out, err := h.Appointments.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// ByDoctor returns a doctor's appointments, optionally narrowed by the
// today/upcoming/past sub-routes.
func (h *AppointmentHandler) ByDoctor(c echo.Context) error {
	return h.doctorList(c, h.Appointments.ByDoctor)
}

func (h *AppointmentHandler) DoctorToday(c echo.Context) error {
	return h.doctorList(c, h.Appointments.Today)
}

func (h *AppointmentHandler) DoctorUpcoming(c echo.Context) error {
	return h.doctorList(c, h.Appointments.Upcoming)
}

func (h *AppointmentHandler) DoctorPast(c echo.Context) error {
	return h.doctorList(c, h.Appointments.Past)
}

func (h *AppointmentHandler) doctorList(c echo.Context, query func(context.Context, int64) ([]model.Appointment, error)) error {
	doctorID, ok := pathID(c, "doctorId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid doctor id"})
	}
	out, err := query(c.Request().Context(), doctorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// ByPatient returns a patient's appointments.
func (h *AppointmentHandler) ByPatient(c echo.Context) error {
	patientID, ok := pathID(c, "patientId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient id"})
	}
	out, err := h.Appointments.ByPatient(c.Request().Context(), patientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// ByStatus filters appointments by status.
func (h *AppointmentHandler) ByStatus(c echo.Context) error {
	out, err := h.Appointments.ByStatus(c.Request().Context(), c.Param("status"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// ByDate returns all appointments on one date.
func (h *AppointmentHandler) ByDate(c echo.Context) error {
	date, ok := parseDate(c.Param("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	out, err := h.Appointments.ByDate(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// ByDoctorAndDate returns a doctor's schedule for one date.
func (h *AppointmentHandler) ByDoctorAndDate(c echo.Context) error {
	doctorID, ok := pathID(c, "doctorId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid doctor id"})
	}
	date, ok := parseDate(c.Param("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	out, err := h.Appointments.ByDoctorAndDate(c.Request().Context(), doctorID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// DoctorPatients returns the distinct patients of a doctor.
func (h *AppointmentHandler) DoctorPatients(c echo.Context) error {
	doctorID, ok := pathID(c, "doctorId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid doctor id"})
	}
	out, err := h.Appointments.DoctorPatients(c.Request().Context(), doctorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}
