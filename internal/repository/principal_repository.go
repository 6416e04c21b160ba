package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/medisync/hospital-api/internal/model"
)

// PrincipalRepo provides access to the 'principals' table. All three
// principal kinds live in the same table; every query is scoped by kind
// so that a doctor and a patient may share an email address.
type PrincipalRepo struct{ DB *sql.DB }

func NewPrincipalRepo(db *sql.DB) *PrincipalRepo { return &PrincipalRepo{DB: db} }

const principalCols = "id, kind, email, password_hash, name, specialization_id, created_at, updated_at"

// Create inserts a principal and returns it with the generated ID.
// A duplicate (kind, email) pair yields ErrEmailExists.
func (r *PrincipalRepo) Create(ctx context.Context, p *model.Principal) (*model.Principal, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO principals (kind, email, password_hash, name, specialization_id) VALUES (?,?,?,?,?)",
		p.Kind, p.Email, p.PasswordHash, p.Name, p.SpecializationID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByEmail fetches a principal of the given kind by normalized
// email. Returns ErrNotFound when no such principal exists.
func (r *PrincipalRepo) FindByEmail(ctx context.Context, kind model.Kind, email string) (*model.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var p model.Principal
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+principalCols+" FROM principals WHERE kind=? AND email=? LIMIT 1",
		kind, email).Scan(
		&p.ID, &p.Kind, &p.Email, &p.PasswordHash, &p.Name, &p.SpecializationID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID fetches a principal by id regardless of kind.
func (r *PrincipalRepo) FindByID(ctx context.Context, id int64) (*model.Principal, error) {
	var p model.Principal
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+principalCols+" FROM principals WHERE id=? LIMIT 1",
		id).Scan(
		&p.ID, &p.Kind, &p.Email, &p.PasswordHash, &p.Name, &p.SpecializationID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByKind returns all principals of one kind ordered by name. Used
// by the directory endpoints (doctor listing).
func (r *PrincipalRepo) ListByKind(ctx context.Context, kind model.Kind) ([]model.Principal, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+principalCols+" FROM principals WHERE kind=? ORDER BY name", kind)
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

// UpdatePassword replaces a principal's password hash.
func (r *PrincipalRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE principals SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
