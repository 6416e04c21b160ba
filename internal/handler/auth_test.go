package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medisync/hospital-api/internal/handler"
	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/repository"
	"github.com/medisync/hospital-api/internal/service"
	"github.com/medisync/hospital-api/internal/token"
)

// memPrincipals is a minimal in-memory credential store for handler
// tests.
type memPrincipals struct {
	nextID int64
	byKey  map[string]*model.Principal
}

func (m *memPrincipals) FindByEmail(_ context.Context, kind model.Kind, email string) (*model.Principal, error) {
	p, ok := m.byKey[string(kind)+":"+email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPrincipals) Create(_ context.Context, p *model.Principal) (*model.Principal, error) {
	k := string(p.Kind) + ":" + p.Email
	if _, ok := m.byKey[k]; ok {
		return nil, repository.ErrEmailExists
	}
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	m.byKey[k] = &cp
	out := cp
	return &out, nil
}

func (m *memPrincipals) FindByID(_ context.Context, id int64) (*model.Principal, error) {
	for _, p := range m.byKey {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPrincipals) UpdatePassword(_ context.Context, id int64, hash string) error {
	for _, p := range m.byKey {
		if p.ID == id {
			p.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrNotFound
}

func setup(t *testing.T) (*echo.Echo, *handler.AuthHandler, *service.AuthService) {
	t.Helper()
	tokens := token.NewService("test-secret-test-secret-12345678", 10*time.Hour, nil)
	auth := service.NewAuthService(&memPrincipals{byKey: map[string]*model.Principal{}}, tokens, 4)
	return echo.New(), handler.NewAuthHandler(auth), auth
}

func doJSON(t *testing.T, e *echo.Echo, h echo.HandlerFunc, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestRegisterAndLoginFlow(t *testing.T) {
	e, h, _ := setup(t)

	rec := doJSON(t, e, h.PatientRegister, http.MethodPost, "/api/auth/patient/register",
		`{"email":"a@x.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status: got %d body %s", rec.Code, rec.Body.String())
	}
	var reg service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if reg.Token == "" || !reg.Success || reg.Role != "PATIENT" {
		t.Fatalf("unexpected register result: %+v", reg)
	}

	rec = doJSON(t, e, h.PatientLogin, http.MethodPost, "/api/auth/patient/login",
		`{"email":"a@x.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status: got %d", rec.Code)
	}
	var login service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Role != "PATIENT" || login.Message != "Login successful" {
		t.Fatalf("unexpected login result: %+v", login)
	}
}

func TestLoginWrongPasswordIsGeneric401(t *testing.T) {
	e, h, _ := setup(t)

	doJSON(t, e, h.PatientRegister, http.MethodPost, "/api/auth/patient/register",
		`{"email":"a@x.com","password":"secret1"}`, nil)

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"a@x.com","password":"wrong"}`},
		{"unknown account", `{"email":"ghost@x.com","password":"secret1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, e, h.PatientLogin, http.MethodPost, "/api/auth/patient/login", tt.body, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d", rec.Code)
			}
			var res service.LoginResult
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("decode: %v", err)
			}
			// Identical failure shape for both causes.
			if res.Success || res.Message != "Invalid credentials" || res.Token != "" {
				t.Fatalf("failure body must be uniform: %+v", res)
			}
		})
	}
}

func TestLoginDispatchesOnUserType(t *testing.T) {
	e, h, _ := setup(t)

	doJSON(t, e, h.DoctorRegister, http.MethodPost, "/api/auth/doctor/register",
		`{"email":"d@x.com","password":"secret1"}`, nil)

	rec := doJSON(t, e, h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"d@x.com","password":"secret1","userType":"DOCTOR"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"d@x.com","password":"secret1","userType":"WIZARD"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown userType: got %d", rec.Code)
	}
}

func TestRegisterDuplicateIs400(t *testing.T) {
	e, h, _ := setup(t)

	doJSON(t, e, h.PatientRegister, http.MethodPost, "/api/auth/patient/register",
		`{"email":"a@x.com","password":"secret1"}`, nil)
	rec := doJSON(t, e, h.PatientRegister, http.MethodPost, "/api/auth/patient/register",
		`{"email":"a@x.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: got %d", rec.Code)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	e, h, _ := setup(t)
	e.PUT("/api/auth/:id/change-password", h.ChangePassword)

	rec := doJSON(t, e, h.PatientRegister, http.MethodPost, "/api/auth/patient/register",
		`{"email":"a@x.com","password":"secret1"}`, nil)
	var reg service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode: %v", err)
	}

	change := func(target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
	target := fmt.Sprintf("/api/auth/%d/change-password", reg.ID)

	if rec := change(target, `{"currentPassword":"wrong","newPassword":"next123"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong current password: got %d", rec.Code)
	}
	if rec := change(target, `{"currentPassword":"secret1","newPassword":"next123"}`); rec.Code != http.StatusOK {
		t.Fatalf("change password: got %d body %s", rec.Code, rec.Body.String())
	}

	// Only the new password logs in afterwards.
	rec = doJSON(t, e, h.PatientLogin, http.MethodPost, "/api/auth/patient/login",
		`{"email":"a@x.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password after change: got %d", rec.Code)
	}
	rec = doJSON(t, e, h.PatientLogin, http.MethodPost, "/api/auth/patient/login",
		`{"email":"a@x.com","password":"next123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("new password after change: got %d", rec.Code)
	}

	if rec := change("/api/auth/9999/change-password", `{"currentPassword":"x","newPassword":"y"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	e, h, auth := setup(t)

	rec := doJSON(t, e, h.PatientRegister, http.MethodPost, "/api/auth/patient/register",
		`{"email":"a@x.com","password":"secret1"}`, nil)
	var reg service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Malformed header -> 400 without touching the token.
	rec = doJSON(t, e, h.Logout, http.MethodPost, "/api/auth/logout", "",
		map[string]string{"Authorization": "Token abc"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed header: got %d", rec.Code)
	}

	rec = doJSON(t, e, h.Logout, http.MethodPost, "/api/auth/logout", "",
		map[string]string{"Authorization": "Bearer " + reg.Token})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Logged out successfully.") {
		t.Fatalf("logout body: %s", rec.Body.String())
	}
	if auth.ValidateToken(context.Background(), reg.Token) {
		t.Fatal("token must be invalid after logout")
	}
}

func TestValidateEndpoint(t *testing.T) {
	e, h, _ := setup(t)

	rec := doJSON(t, e, h.PatientRegister, http.MethodPost, "/api/auth/patient/register",
		`{"email":"a@x.com","password":"secret1"}`, nil)
	var reg service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, e, h.Validate, http.MethodGet, "/api/auth/validate", "",
		map[string]string{"Authorization": "Bearer " + reg.Token})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "true") {
		t.Fatalf("validate live token: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, h.Validate, http.MethodGet, "/api/auth/validate", "",
		map[string]string{"Authorization": "Bearer garbage"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "false") {
		t.Fatalf("validate garbage token: %d %s", rec.Code, rec.Body.String())
	}
}
