package repository

import (
	"context"
	"database/sql"

	"github.com/medisync/hospital-api/internal/model"
)

// SpecializationRepo reads the 'specializations' lookup table.
type SpecializationRepo struct{ DB *sql.DB }

func NewSpecializationRepo(db *sql.DB) *SpecializationRepo { return &SpecializationRepo{DB: db} }

// ListAll returns every specialization ordered by name.
func (r *SpecializationRepo) ListAll(ctx context.Context) ([]model.Specialization, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, description FROM specializations ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Specialization{}
	for rows.Next() {
		var s model.Specialization
		if err := rows.Scan(&s.ID, &s.Name, &s.Description); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindByID fetches one specialization. Returns ErrNotFound when absent.
func (r *SpecializationRepo) FindByID(ctx context.Context, id int64) (*model.Specialization, error) {
	var s model.Specialization
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description FROM specializations WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &s.Description)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
