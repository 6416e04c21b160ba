// Package token issues and validates the signed session tokens used by
// the API. A token is a self-contained HS256 JWT; validity is decided
// by signature, expiry and absence from the revocation store. Logout
// works by adding the token to the revocation store, so a token can be
// dead long before its exp claim says so.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Parse when the token is malformed,
// signed with the wrong key or algorithm, or carries unusable claims.
var ErrInvalidToken = errors.New("invalid token")

// DefaultValidity is the session length used when config does not
// override it.
const DefaultValidity = 10 * time.Hour

// Claims is the decoded payload of a session token.
type Claims struct {
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs, parses and revokes session tokens. The signing secret
// and validity window are fixed for the process lifetime; the
// revocation store is injected so callers own its lifecycle.
type Service struct {
	secret   []byte
	validity time.Duration
	revoked  RevocationStore
	now      func() time.Time
}

// NewService builds a Service. A non-positive validity falls back to
// DefaultValidity; a nil store falls back to the in-process one.
func NewService(secret string, validity time.Duration, revoked RevocationStore) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &Service{
		secret:   []byte(secret),
		validity: validity,
		revoked:  revoked,
		now:      time.Now,
	}
}

// Issue signs a token for the subject email with the given role claim.
func (s *Service) Issue(email, role string) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.validity).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Parse verifies the signature and structure of a token and returns
// its claims. Expiry is NOT checked here; that belongs to IsValid so
// callers can distinguish "forged" from "stale".
func (s *Service) Parse(raw string) (*Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}
	c := &Claims{Email: sub}
	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}
	if iat, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	exp, ok := mc["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	return c, nil
}

// IsValid reports whether the token parses, names the expected subject
// and has not expired. Revocation is not consulted here.
func (s *Service) IsValid(raw, email string) bool {
	c, err := s.Parse(raw)
	if err != nil {
		return false
	}
	return c.Email == email && s.now().UTC().Before(c.ExpiresAt)
}

// Revoke adds the token to the revocation store. Revoking an already
// revoked token is a no-op, and even unparseable strings are accepted
// so logout never fails on garbage input.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	ttl := s.validity
	if c, err := s.Parse(raw); err == nil {
		if until := c.ExpiresAt.Sub(s.now().UTC()); until > 0 && until < ttl {
			ttl = until
		}
	}
	return s.revoked.Revoke(ctx, raw, ttl)
}

// Validate is the single entry point used by middleware and the
// validate endpoint: false for revoked, forged, malformed or expired
// tokens. No error ever escapes; bad input is simply invalid.
func (s *Service) Validate(ctx context.Context, raw string) bool {
	if s.revoked.IsRevoked(ctx, raw) {
		return false
	}
	c, err := s.Parse(raw)
	if err != nil {
		return false
	}
	return s.IsValid(raw, c.Email)
}
