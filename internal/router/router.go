// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/medisync/hospital-api/internal/handler"
	"github.com/medisync/hospital-api/internal/middleware"
	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/token"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Auth         *handler.AuthHandler
	Appointments *handler.AppointmentHandler
	Directory    *handler.DirectoryHandler
	Tokens       *token.Service
	RateLimit    echo.MiddlewareFunc
}

// Register mounts all routes on the Echo instance. The auth group
// carries the rate limiter; appointment routes require a valid session
// token, with doctor-only and role-restricted subsets enforced by
// RequireRole.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Authentication. Login and register are unauthenticated but rate
	// limited; logout and validate read the bearer header themselves.
	auth := e.Group("/api/auth")
	if d.RateLimit != nil {
		auth.Use(d.RateLimit)
	}
	auth.POST("/login", d.Auth.Login)
	auth.POST("/admin/login", d.Auth.AdminLogin)
	auth.POST("/doctor/login", d.Auth.DoctorLogin)
	auth.POST("/patient/login", d.Auth.PatientLogin)
	auth.POST("/doctor/register", d.Auth.DoctorRegister)
	auth.POST("/patient/register", d.Auth.PatientRegister)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/validate", d.Auth.Validate)
	auth.PUT("/:id/change-password", d.Auth.ChangePassword, middleware.JWTAuth(d.Tokens))

	// Public directory used to pick a doctor before booking.
	e.GET("/api/doctors", d.Directory.ListDoctors)
	e.GET("/api/doctors/:id", d.Directory.GetDoctor)
	e.GET("/api/specializations", d.Directory.ListSpecializations)
	e.GET("/api/specializations/:id", d.Directory.GetSpecialization)

	// Appointments. Everything requires a live session token.
	appts := e.Group("/api/appointments")
	appts.Use(middleware.JWTAuth(d.Tokens))
	appts.Use(middleware.RequireRole(
		string(model.KindAdmin), string(model.KindDoctor), string(model.KindPatient)))

	appts.POST("", d.Appointments.Book)
	appts.GET("", d.Appointments.ListAll)
	appts.GET("/check", d.Appointments.CheckAvailability)
	appts.GET("/status/:status", d.Appointments.ByStatus)
	appts.GET("/date/:date", d.Appointments.ByDate)
	appts.GET("/doctor/:doctorId", d.Appointments.ByDoctor)
	appts.GET("/doctor/:doctorId/today", d.Appointments.DoctorToday)
	appts.GET("/doctor/:doctorId/upcoming", d.Appointments.DoctorUpcoming)
	appts.GET("/doctor/:doctorId/past", d.Appointments.DoctorPast)
	appts.GET("/doctor/:doctorId/date/:date", d.Appointments.ByDoctorAndDate)
	appts.GET("/patient/:patientId", d.Appointments.ByPatient)
	appts.GET("/doctor/:doctorId/patients", d.Appointments.DoctorPatients,
		middleware.RequireRole(string(model.KindAdmin), string(model.KindDoctor)))
	appts.GET("/:id", d.Appointments.Get)
	appts.PUT("/:id/status", d.Appointments.UpdateStatus)
	appts.PUT("/:id/cancel-confirm", d.Appointments.ConfirmCancel,
		middleware.RequireRole(string(model.KindAdmin), string(model.KindDoctor)))
	appts.DELETE("/:id", d.Appointments.Delete,
		middleware.RequireRole(string(model.KindAdmin)))
}
