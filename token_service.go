package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTLSeconds is the fixed session lifetime: 24 hours.
const DefaultSessionTTLSeconds = 86400

// SessionClaims carries the minimal identity claim: the account id as
// subject, plus issuance and expiry.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies compact session tokens.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a new TokenService instance. ttlSeconds <= 0 falls
// back to DefaultSessionTTLSeconds.
func NewTokenService(signingKey []byte, ttlSeconds int, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultSessionTTLSeconds
	}
	return &TokenService{
		signingKey: signingKey,
		ttl:        time.Duration(ttlSeconds) * time.Second,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock injects a custom clock, useful for tests.
func (ts *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// Issue signs a session token asserting "this bearer is account accountID",
// expiring after the configured TTL.
func (ts *TokenService) Issue(accountID string) (string, error) {
	now := ts.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.signingKey)
}

// Verify parses and validates a token string, returning the account id it
// asserts. Invalid signatures, expired tokens, and malformed payloads all
// collapse into ErrInvalidSessionToken; callers learn nothing beyond
// "invalid". The specific cause is logged internally.
func (ts *TokenService) Verify(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, jwt.WithTimeFunc(ts.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			ts.logger.Debug("TokenService verify rejected expired token")
		} else {
			ts.logger.Debug("TokenService verify rejected token: %v", err)
		}
		return "", ErrInvalidSessionToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		ts.logger.Error("TokenService verify could not decode claims")
		return "", ErrInvalidSessionToken
	}

	return claims.Subject, nil
}

// Session builds a Session view from a raw token without exposing claim
// internals to callers.
func (ts *TokenService) Session(raw string) (Session, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, jwt.WithTimeFunc(ts.now))
	if err != nil {
		return nil, ErrInvalidSessionToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSessionToken
	}

	return sessionFromClaims(claims), nil
}
