package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/repository"
)

// PrincipalDirectory and SpecializationDirectory are the read-only
// slices of the repositories the directory serves. Tests supply
// in-memory fakes.
type PrincipalDirectory interface {
	ListByKind(ctx context.Context, kind model.Kind) ([]model.Principal, error)
	FindByID(ctx context.Context, id int64) (*model.Principal, error)
}

type SpecializationDirectory interface {
	ListAll(ctx context.Context) ([]model.Specialization, error)
	FindByID(ctx context.Context, id int64) (*model.Specialization, error)
}

// DirectoryHandler serves the read-only doctor and specialization
// directory that patients browse before booking. No authentication is
// required; password hashes are never serialized (json:"-").
type DirectoryHandler struct {
	Principals      PrincipalDirectory
	Specializations SpecializationDirectory
}

func NewDirectoryHandler(p PrincipalDirectory, s SpecializationDirectory) *DirectoryHandler {
	return &DirectoryHandler{Principals: p, Specializations: s}
}

// ListDoctors returns all doctors.
func (h *DirectoryHandler) ListDoctors(c echo.Context) error {
	out, err := h.Principals.ListByKind(c.Request().Context(), model.KindDoctor)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetDoctor returns one doctor by id.
func (h *DirectoryHandler) GetDoctor(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.Principals.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "doctor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.Kind != model.KindDoctor {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "doctor not found"})
	}
	return c.JSON(http.StatusOK, p)
}

// ListSpecializations returns the specialization lookup table.
func (h *DirectoryHandler) ListSpecializations(c echo.Context) error {
	out, err := h.Specializations.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetSpecialization returns one specialization by id.
func (h *DirectoryHandler) GetSpecialization(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.Specializations.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "specialization not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, s)
}
