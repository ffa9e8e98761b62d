// internal/auth/tokens.go
//
// HS256 bearer tokens.
//
// Context
// -------
// A token names its identity in `sub` (decimal id) and carries a random
// `jti` so a single token can be revoked on logout without touching the
// others.  Expiry comes from `auth.token_ttl`.
//
// Notes
// -----
// • Only HMAC signing methods are accepted; anything else is rejected
//   before the key is handed out.
// • Issuer is checked on parse.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/config"
)

var (
	ErrInvalidToken = fmt.Errorf("invalid token: %w", apperr.ErrUnauthenticated)
	ErrExpiredToken = fmt.Errorf("token has expired: %w", apperr.ErrUnauthenticated)
	ErrRevokedToken = fmt.Errorf("token has been revoked: %w", apperr.ErrUnauthenticated)
)

// Claims is the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
}

// IdentityID parses the numeric subject.
func (c *Claims) IdentityID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Tokens issues and verifies bearer tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a Tokens from the auth config block.
func NewTokens(cfg config.Auth) *Tokens {
	return &Tokens{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue signs a fresh token for identityID.
func (t *Tokens) Issue(identityID uint64) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(identityID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies signature, issuer, and expiry.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
