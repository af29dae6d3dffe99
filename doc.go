// Package auth implements the credential lifecycle for Bookwhim accounts:
// registration, password login, email activation, and password resets, plus
// the signed session tokens that authorize subsequent requests.
//
// Account lifecycle:
//   - Accounts are created unactivated, holding a bcrypt password hash and a
//     one-time activation token. Activation consumes the token exactly once
//     and stamps ActivatedAt. Password resets issue their own one-time token,
//     throttled to one issuance per ten minutes per account.
//   - The Service orchestrates every flow against an AccountStore. Uniqueness
//     of emails and tokens is enforced by the store's unique indexes, so
//     concurrent duplicate registrations collapse into a validation error.
//
// Anti-enumeration:
//   - Login failures, activation-link resends, and reset-link requests return
//     responses that do not reveal whether an email is registered. The
//     message texts are part of the contract; see the flow methods.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing registration,
//     login, activation, and password reset events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking authentication.
package auth
