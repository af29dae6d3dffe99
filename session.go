package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "token"

var _ Session = (*SessionObject)(nil)

// SessionObject is the decoded view of a verified session token.
type SessionObject struct {
	AccountID string     `json:"account_id,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (s *SessionObject) GetAccountID() string {
	return s.AccountID
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiresAt() *time.Time {
	return s.ExpiresAt
}

func sessionFromClaims(claims *SessionClaims) *SessionObject {
	s := &SessionObject{AccountID: claims.Subject}
	if claims.IssuedAt != nil {
		iat := claims.IssuedAt.Time
		s.IssuedAt = &iat
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		s.ExpiresAt = &exp
	}
	return s
}

// TokenFromRequest extracts the raw session token from a request. The cookie
// takes precedence over the Authorization bearer header when both are
// present; that resolution order is part of the compatibility contract, not
// an implementation detail.
func TokenFromRequest(c *fiber.Ctx, cookieName string) (string, error) {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	if token := c.Cookies(cookieName); token != "" {
		return token, nil
	}

	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], nil
		}
	}

	return "", ErrUnableToFindSession
}
