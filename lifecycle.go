package auth

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ResetResendWindow is the minimum interval between password-reset link
// issuances for the same account. This is the only time bound on reset
// tokens; an issued token itself never hard-expires.
const ResetResendWindow = 600 * time.Second

const (
	textCodeAlreadyActivated = "ALREADY_ACTIVATED"
	textCodeNoPendingReset   = "NO_PENDING_RESET"
)

// ErrAlreadyActivated is returned when activation is attempted on an account
// that already completed it.
var ErrAlreadyActivated = goerrors.New("account is already activated", goerrors.CategoryConflict).
	WithTextCode(textCodeAlreadyActivated).
	WithCode(goerrors.CodeConflict)

// ErrNoPendingReset is returned when a reset consumption is attempted with no
// token outstanding.
var ErrNoPendingReset = goerrors.New("account has no pending password reset", goerrors.CategoryConflict).
	WithTextCode(textCodeNoPendingReset).
	WithCode(goerrors.CodeConflict)

// ErrResetThrottled is returned when a reset link is requested inside the
// resend window. Unlike the other reset failures this one IS observable by
// the caller; the asymmetry is inherited and accepted.
var ErrResetThrottled = goerrors.New("a password reset link was sent recently", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeResetThrottled)

// CanActivate guards the activation sub-machine transition
// Unactivated{token} -> Activated.
func CanActivate(a *Account) error {
	if a == nil {
		return ErrAccountNotFound
	}
	if a.Activated {
		return ErrAlreadyActivated
	}
	return nil
}

// CanIssueReset guards NoPendingReset/ResetPending -> ResetPending{token}.
// Issuance is allowed except inside the resend window of a previous
// issuance; a stale pending token is simply replaced.
func CanIssueReset(a *Account, now time.Time) error {
	if a == nil {
		return ErrAccountNotFound
	}
	if a.ResetPasswordTokenSentAt != nil && now.Sub(*a.ResetPasswordTokenSentAt) < ResetResendWindow {
		return ErrResetThrottled
	}
	return nil
}

// CanConsumeReset guards ResetPending{token} -> NoPendingReset. Any present
// token is consumable; there is no hard expiry beyond the resend throttle.
func CanConsumeReset(a *Account) error {
	if a == nil {
		return ErrAccountNotFound
	}
	if a.ResetPasswordToken == nil {
		return ErrNoPendingReset
	}
	return nil
}
