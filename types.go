package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetAccountID() string
	GetIssuedAt() *time.Time
	GetExpiresAt() *time.Time
}

// Authenticator resolves a credential pair into an Account. Implementations
// decide what the identifier and proof mean: for password logins they are an
// email address and a cleartext password, for session checks the identifier
// is a signed token and the proof is ignored.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, proof string) (*Account, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenGenerator issues opaque one-time credentials for activation and
// password-reset links.
type TokenGenerator interface {
	NewToken() string
}

// Mailer delivers account lifecycle email. Implementations talk to the
// outbound provider; the core only ever hands them a detached Account copy.
type Mailer interface {
	SendActivationEmail(ctx context.Context, account *Account) error
	SendPasswordResetEmail(ctx context.Context, account *Account) error
}

// MailDispatcher queues lifecycle email without blocking the request path.
// Delivery failures are logged by the dispatcher, never surfaced to flows.
type MailDispatcher interface {
	DispatchActivationEmail(account *Account)
	DispatchPasswordResetEmail(account *Account)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetBcryptCost() int
	GetCookieName() string
	GetBaseURL() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
