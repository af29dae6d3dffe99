package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the central credential entity. Exactly one account exists per
// normalized email; the token columns are unique whenever present so the
// store rejects concurrent duplicate issuance.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email        string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Activated    bool      `bun:"activated,notnull,default:false" json:"activated"`

	// ActivatedAt is nil until the account is actually activated. The legacy
	// system stamped it at creation; that defect is deliberately not carried.
	ActivatedAt *time.Time `bun:"activated_at,nullzero" json:"activated_at,omitempty"`

	ActivationToken       *string    `bun:"activation_token,nullzero,unique" json:"-"`
	ActivationTokenSentAt *time.Time `bun:"activation_token_sent_at,nullzero" json:"-"`

	ResetPasswordToken       *string    `bun:"reset_password_token,nullzero,unique" json:"-"`
	ResetPasswordTokenSentAt *time.Time `bun:"reset_password_token_sent_at,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	// pendingPassword buffers a cleartext credential until EnsureHashed runs.
	// Hashing happens only when the credential value changes, never on every
	// persistence operation.
	pendingPassword string
	credentialDirty bool
}

// NormalizeEmail lowercases and trims an email address. All lookups and
// uniqueness checks operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword stages a new cleartext password and marks the credential dirty.
func (a *Account) SetPassword(plaintext string) {
	a.pendingPassword = plaintext
	a.credentialDirty = true
}

// CredentialDirty reports whether a staged password is waiting to be hashed.
func (a *Account) CredentialDirty() bool {
	return a.credentialDirty
}

// EnsureHashed derives PasswordHash from the staged password, if any. It is a
// no-op when the credential has not changed, mirroring the save hook the
// legacy model used to avoid re-hashing on unrelated updates.
func (a *Account) EnsureHashed(hasher PasswordAuthenticator) error {
	if !a.credentialDirty {
		return nil
	}

	hash, err := hasher.HashPassword(a.pendingPassword)
	if err != nil {
		return err
	}

	a.PasswordHash = hash
	a.pendingPassword = ""
	a.credentialDirty = false
	return nil
}

// IssueActivationToken attaches a fresh activation token and stamps the
// issuance time.
func (a *Account) IssueActivationToken(token string, now time.Time) {
	a.ActivationToken = &token
	a.ActivationTokenSentAt = &now
}

// MarkActivated transitions the account to its activated state: the flag is
// set, ActivatedAt is stamped, and the one-time token is consumed.
func (a *Account) MarkActivated(now time.Time) {
	a.Activated = true
	a.ActivatedAt = &now
	a.ActivationToken = nil
	a.ActivationTokenSentAt = nil
}

// IssueResetToken attaches a fresh password-reset token and stamps the
// issuance time used by the resend throttle.
func (a *Account) IssueResetToken(token string, now time.Time) {
	a.ResetPasswordToken = &token
	a.ResetPasswordTokenSentAt = &now
}

// ClearResetToken consumes the pending password-reset token.
func (a *Account) ClearResetToken() {
	a.ResetPasswordToken = nil
	a.ResetPasswordTokenSentAt = nil
}

// Clone returns a detached copy safe to hand to background collaborators.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	dup := *a
	return &dup
}

// PublicAccount is the projection exposed to clients. It never carries the
// password hash or any one-time token.
type PublicAccount struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Activated   bool       `json:"activated"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Public returns the client-safe projection of the account.
func (a *Account) Public() *PublicAccount {
	if a == nil {
		return nil
	}
	return &PublicAccount{
		ID:          a.ID.String(),
		Email:       a.Email,
		Activated:   a.Activated,
		ActivatedAt: a.ActivatedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
