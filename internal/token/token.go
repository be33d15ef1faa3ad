package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vidtube-server/internal/apierr"
)

// Kind selects which signing secret and lifetime a token is bound to.
type Kind int

const (
	Access Kind = iota
	Refresh
)

// Config carries the signing material for both token kinds. Secrets must
// differ so an access token can never verify as a refresh token.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec mints and verifies signed, time-limited tokens carrying a user id
// subject claim. Stateless; safe for concurrent use.
type Codec struct {
	cfg Config
}

func NewCodec(cfg Config) *Codec {
	return &Codec{cfg: cfg}
}

// IssueAccessToken signs a short-lived access token for the given user.
func (c *Codec) IssueAccessToken(userID string) (string, error) {
	return c.issue(userID, c.cfg.AccessSecret, c.cfg.AccessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the given user.
func (c *Codec) IssueRefreshToken(userID string) (string, error) {
	return c.issue(userID, c.cfg.RefreshSecret, c.cfg.RefreshTTL)
}

// Claims get a unique jti: expiry has second granularity, so without it two
// tokens minted within the same second would be identical strings, and
// rotation relies on the new refresh token differing from the old one.
func (c *Codec) issue(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry for the given kind and returns the
// subject claim. Tampered, expired or wrong-kind tokens fail ErrUnauthorized.
func (c *Codec) Verify(tokenString string, kind Kind) (string, error) {
	secret := c.cfg.AccessSecret
	if kind == Refresh {
		secret = c.cfg.RefreshSecret
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: invalid token: %v", apierr.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", apierr.ErrUnauthorized)
	}
	return claims.Subject, nil
}
