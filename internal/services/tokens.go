package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
)

// Claims carried by every bearer token
type Claims struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// TokenOptions configure a TokenService. The secret is copied on construction.
type TokenOptions struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

// TokenService issues and validates HS256 bearer tokens
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
	revoker  Revoker
	now      func() time.Time
}

func NewTokenService(opts TokenOptions, revoker Revoker) *TokenService {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &TokenService{
		secret:   []byte(opts.Secret),
		issuer:   opts.Issuer,
		audience: opts.Audience,
		expiry:   opts.Expiry,
		revoker:  revoker,
		now:      time.Now,
	}
}

// Issue signs a token for the user and returns it with its expiry
func (s *TokenService) Issue(u *models.User) (string, time.Time, error) {
	now := s.now().UTC()
	expires := now.Add(s.expiry)

	claims := Claims{
		Email: u.Email,
		Name:  u.DisplayName,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate checks signature, issuer, audience, expiry and revocation
func (s *TokenService) Validate(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, types.Unauthorized("Invalid or expired token.")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, types.Unauthorized("Invalid or expired token.")
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, types.Internal("Failed to check token state.", err)
	}
	if revoked {
		return nil, types.Unauthorized("Token has been revoked.")
	}
	return claims, nil
}

// Revoke invalidates the token behind claims until it would have expired anyway
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	until := s.now().Add(s.expiry)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, until)
}
