package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Error codes surfaced in client responses. The strings are part of the wire
// contract consumed by the frontend.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeAuthError       = "AUTH_ERROR"
	CodeGlobalError     = "GLOBAL_ERROR"
)

const (
	// TextCodeInvalidCreds marks enumeration-safe credential failures.
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeEmailExists marks duplicate registration attempts.
	TextCodeEmailExists = "EMAIL_EXISTS"
	// TextCodeSessionNotFound marks requests carrying no session token.
	TextCodeSessionNotFound = "SESSION_NOT_FOUND"
	// TextCodeSessionInvalid marks unverifiable session tokens.
	TextCodeSessionInvalid = "SESSION_INVALID"
	// TextCodeEmptyPassword marks attempts to hash an empty credential.
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
	// TextCodeResetThrottled marks reset-link requests inside the resend window.
	TextCodeResetThrottled = "RESET_LINK_THROTTLED"
)

// MsgAuthFailed is the single message used for every credential failure.
// Login against an unknown email and login with a wrong password must be
// byte-identical so callers cannot probe which addresses are registered.
const MsgAuthFailed = "This email/password combination could not be verified. Please try again."

// MsgGlobalError is the redacted message for unexpected internal failures.
// Raw store or driver errors are logged, never sent to the client.
const MsgGlobalError = "Something went wrong."

// ErrAccountNotFound is the error we return for non found accounts
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword covers both unknown-email and wrong-password
// login failures.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrDuplicateAccount is returned when the store's unique index on email
// rejects an insert.
var ErrDuplicateAccount = goerrors.New("an account with that email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(goerrors.CodeConflict)

// ErrUnableToFindSession is the error when our request has no token
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidSessionToken collapses expired, malformed, and forged tokens into
// one indistinguishable failure.
var ErrInvalidSessionToken = goerrors.New("unable to verify session token", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects hashing an empty password
var ErrNoEmptyString = goerrors.New("refusing to hash an empty password", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrorObject is a single client-facing error: a stable code, a message, and
// optionally the input field it refers to.
type ErrorObject struct {
	Code  string `json:"code"`
	Msg   string `json:"msg"`
	Field string `json:"field,omitempty"`
}

// FieldErrors accumulates validation failures for a request. All applicable
// checks run; errors do not short-circuit.
type FieldErrors []ErrorObject

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, obj := range e {
		msgs = append(msgs, obj.Msg)
	}
	return strings.Join(msgs, "; ")
}

// ValidationError builds a single-entry FieldErrors with the VALIDATION_ERROR code.
func ValidationError(msg, field string) FieldErrors {
	return FieldErrors{{Code: CodeValidationError, Msg: msg, Field: field}}
}

// ErrorResponse is the failure envelope: { error: true, errors: [{code, msg, field?}] }
type ErrorResponse struct {
	Error  bool          `json:"error"`
	Errors []ErrorObject `json:"errors"`
}

// ErrorObjectsFor maps any flow error to the client-facing error list,
// redacting everything that is not a validation or auth failure.
func ErrorObjectsFor(err error) []ErrorObject {
	var fieldErrs FieldErrors
	if goerrors.As(err, &fieldErrs) {
		return fieldErrs
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryAuth:
			return []ErrorObject{{Code: CodeAuthError, Msg: MsgAuthFailed}}
		}
	}

	return []ErrorObject{{Code: CodeGlobalError, Msg: MsgGlobalError}}
}

// HTTPStatusFor maps a flow error to the response status: 422 for validation,
// 401 for auth failures, 500 otherwise.
func HTTPStatusFor(err error) int {
	var fieldErrs FieldErrors
	if goerrors.As(err, &fieldErrs) {
		return 422
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryAuth:
			return 401
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			return 422
		}
	}

	return 500
}

// IsAccountNotFound reports whether err marks a missing account record.
func IsAccountNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}

// IsDuplicateAccount reports whether err marks a unique-constraint rejection.
func IsDuplicateAccount(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
