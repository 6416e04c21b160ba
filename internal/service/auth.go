package service

import (
	"context"
	"errors"
	"strings"

	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/repository"
	"github.com/medisync/hospital-api/internal/token"
	"github.com/medisync/hospital-api/internal/utils"
)

// PrincipalStore is the slice of the credential store the auth workflow
// needs. *repository.PrincipalRepo satisfies it; tests use an
// in-memory fake.
type PrincipalStore interface {
	FindByEmail(ctx context.Context, kind model.Kind, email string) (*model.Principal, error)
	FindByID(ctx context.Context, id int64) (*model.Principal, error)
	Create(ctx context.Context, p *model.Principal) (*model.Principal, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// LoginResult is the outward-facing result of a login or registration,
// in the shape clients of the original API expect.
type LoginResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// AuthService runs the authentication workflow for all three principal
// kinds through a single code path: credential lookup, password check,
// token issue. Both lookup and password failures collapse into
// ErrInvalidCredentials.
type AuthService struct {
	principals PrincipalStore
	tokens     *token.Service
	bcryptCost int
}

func NewAuthService(principals PrincipalStore, tokens *token.Service, bcryptCost int) *AuthService {
	return &AuthService{principals: principals, tokens: tokens, bcryptCost: bcryptCost}
}

// Authenticate verifies an email/password pair for the requested kind
// and issues a session token on success.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, kind model.Kind) (*LoginResult, error) {
	p, err := s.principals.FindByEmail(ctx, kind, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(p.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(p.Email, string(kind))
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:   tok,
		Role:    string(kind),
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Message: "Login successful",
		Success: true,
	}, nil
}

// Register creates a principal of the given kind and logs it in. The
// display name defaults to the local part of the email. Registering an
// email that already has an account of that kind fails with
// ErrDuplicateAccount.
func (s *AuthService) Register(ctx context.Context, email, password string, kind model.Kind) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	p, err := s.principals.Create(ctx, &model.Principal{
		Kind:         kind,
		Email:        email,
		PasswordHash: hash,
		Name:         displayName(email),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	tok, err := s.tokens.Issue(p.Email, string(kind))
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:   tok,
		Role:    string(kind),
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Message: "Registration successful",
		Success: true,
	}, nil
}

// ChangePassword replaces a principal's password after verifying the
// current one. A wrong current password fails with
// ErrInvalidCredentials and leaves the stored hash untouched; an
// unknown id fails with ErrNotFound.
func (s *AuthService) ChangePassword(ctx context.Context, id int64, current, next string) (*model.Principal, error) {
	p, err := s.principals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !utils.CheckPassword(p.PasswordHash, current) {
		return nil, ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(next, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if err := s.principals.UpdatePassword(ctx, p.ID, hash); err != nil {
		return nil, err
	}
	p.PasswordHash = hash
	return p, nil
}

// Logout revokes the session token. Idempotent; revoking twice or
// revoking garbage is harmless.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	return s.tokens.Revoke(ctx, raw)
}

// ValidateToken reports whether a token is still usable. Internal
// failures never propagate; any problem means false.
func (s *AuthService) ValidateToken(ctx context.Context, raw string) bool {
	return s.tokens.Validate(ctx, raw)
}

// displayName derives a default display name from an email address.
func displayName(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
