package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Validation messages are part of the client contract; the frontend matches
// on them.
const (
	MsgEmailRequired    = "You must provide an email address"
	MsgEmailInvalid     = "The email address you have provided is invalid."
	MsgEmailExists      = "The email address you have provided already exists. Please use another email address."
	MsgPasswordRequired = "You must provide a password"
	MsgPasswordInvalid  = "The password you have provided is invalid. Please make sure your password follows the password rules."
)

// PasswordRule is the structural strength check applied to new passwords.
// TODO: tighten this; length > 1 mirrors the legacy placeholder policy.
var PasswordRule validation.Rule = validation.Length(2, 0)

// ValidateEmail runs the structural email checks. A missing email and a
// malformed email produce distinct messages; both carry VALIDATION_ERROR.
func ValidateEmail(email string) FieldErrors {
	if email == "" {
		return ValidationError(MsgEmailRequired, "email")
	}

	if err := validation.Validate(email, is.Email); err != nil {
		return ValidationError(MsgEmailInvalid, "email")
	}

	return nil
}

// ValidatePassword runs the password presence and strength checks.
func ValidatePassword(password string) FieldErrors {
	if password == "" {
		return ValidationError(MsgPasswordRequired, "password")
	}

	if err := validation.Validate(password, PasswordRule); err != nil {
		return ValidationError(MsgPasswordInvalid, "password")
	}

	return nil
}

// ValidateCredentials checks both fields independently and accumulates every
// failure; it never short-circuits. A nil result means all checks passed.
// The function has no side effects and performs no store access.
func ValidateCredentials(email, password string) FieldErrors {
	var errs FieldErrors
	errs = append(errs, ValidateEmail(email)...)
	errs = append(errs, ValidatePassword(password)...)
	return errs
}
