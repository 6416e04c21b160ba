package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/service"
)

// AuthHandler exposes the login, registration, logout and token
// validation endpoints. Admin, doctor and patient logins all run
// through the same workflow; the kind-specific routes only pin the
// principal kind.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// loginReq is the body accepted by the login and register endpoints.
// UserType is only consulted by the generic /login route.
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// Login authenticates using the userType field in the body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	kind, ok := model.ParseKind(strings.ToUpper(strings.TrimSpace(req.UserType)))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown userType"})
	}
	return h.login(c, req, kind)
}

// AdminLogin, DoctorLogin and PatientLogin pin the principal kind
// regardless of the request body.
func (h *AuthHandler) AdminLogin(c echo.Context) error   { return h.loginAs(c, model.KindAdmin) }
func (h *AuthHandler) DoctorLogin(c echo.Context) error  { return h.loginAs(c, model.KindDoctor) }
func (h *AuthHandler) PatientLogin(c echo.Context) error { return h.loginAs(c, model.KindPatient) }

func (h *AuthHandler) loginAs(c echo.Context, kind model.Kind) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.login(c, req, kind)
}

func (h *AuthHandler) login(c echo.Context, req loginReq, kind model.Kind) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Authenticate(ctx, req.Email, req.Password, kind)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Uniform failure body: never reveal whether the account
			// exists or the password was wrong.
			return c.JSON(http.StatusUnauthorized, service.LoginResult{
				Role:    string(kind),
				Email:   req.Email,
				Message: "Invalid credentials",
				Success: false,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// DoctorRegister and PatientRegister create an account and log it in.
func (h *AuthHandler) DoctorRegister(c echo.Context) error  { return h.register(c, model.KindDoctor) }
func (h *AuthHandler) PatientRegister(c echo.Context) error { return h.register(c, model.KindPatient) }

func (h *AuthHandler) register(c echo.Context, kind model.Kind) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Register(ctx, req.Email, req.Password, kind)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateAccount) {
			return c.JSON(http.StatusBadRequest, service.LoginResult{
				Role:    string(kind),
				Email:   req.Email,
				Message: err.Error(),
				Success: false,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// changePasswordReq carries the current and replacement passwords, in
// the field names the original clients send.
type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the password of the principal named in the
// path after verifying the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "currentPassword/newPassword required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Auth.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Current password is incorrect"})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// Logout revokes the bearer token from the Authorization header.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, ok := bearerToken(c)
	if !ok {
		return c.String(http.StatusBadRequest, "Invalid Authorization header.")
	}
	if err := h.Auth.Logout(c.Request().Context(), raw); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.String(http.StatusOK, "Logged out successfully.")
}

// Validate reports whether the bearer token is still usable.
func (h *AuthHandler) Validate(c echo.Context) error {
	raw, ok := bearerToken(c)
	if !ok {
		return c.String(http.StatusBadRequest, "Invalid Authorization header.")
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": h.Auth.ValidateToken(c.Request().Context(), raw)})
}

func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}
