package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medisync/hospital-api/internal/handler"
	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/repository"
)

type fakePrincipalDir struct {
	rows map[int64]*model.Principal
}

func (f *fakePrincipalDir) ListByKind(_ context.Context, kind model.Kind) ([]model.Principal, error) {
	out := []model.Principal{}
	for _, p := range f.rows {
		if p.Kind == kind {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePrincipalDir) FindByID(_ context.Context, id int64) (*model.Principal, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeSpecDir struct {
	rows map[int64]*model.Specialization
}

func (f *fakeSpecDir) ListAll(context.Context) ([]model.Specialization, error) {
	out := []model.Specialization{}
	for _, s := range f.rows {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSpecDir) FindByID(_ context.Context, id int64) (*model.Specialization, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func directoryEcho(t *testing.T) *echo.Echo {
	t.Helper()
	h := handler.NewDirectoryHandler(
		&fakePrincipalDir{rows: map[int64]*model.Principal{
			1: {ID: 1, Kind: model.KindDoctor, Email: "d@x.com", Name: "d"},
			2: {ID: 2, Kind: model.KindPatient, Email: "p@x.com", Name: "p"},
		}},
		&fakeSpecDir{rows: map[int64]*model.Specialization{
			10: {ID: 10, Name: "Cardiology", Description: "Heart"},
		}},
	)
	e := echo.New()
	e.GET("/api/doctors/:id", h.GetDoctor)
	e.GET("/api/specializations/:id", h.GetSpecialization)
	return e
}

func TestGetSpecialization(t *testing.T) {
	e := directoryEcho(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"existing", "/api/specializations/10", http.StatusOK},
		{"missing", "/api/specializations/99", http.StatusNotFound},
		{"bad id", "/api/specializations/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status: got %d want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGetDoctorHidesOtherKinds(t *testing.T) {
	e := directoryEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/doctors/2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("patient id via doctor route: got %d", rec.Code)
	}
}
