package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// LocalPasswordAuthenticator resolves an email/password pair against the
// store. Unknown emails and wrong passwords both return
// ErrMismatchedHashAndPassword so the two cases are indistinguishable.
type LocalPasswordAuthenticator struct {
	store  AccountStore
	hasher PasswordAuthenticator

	// dummyHash is compared against when the email is unknown so lookup
	// misses cost roughly the same as a failed password check.
	dummyHash string
}

var _ Authenticator = (*LocalPasswordAuthenticator)(nil)

// NewLocalPasswordAuthenticator builds the password login strategy.
func NewLocalPasswordAuthenticator(store AccountStore, hasher PasswordAuthenticator) *LocalPasswordAuthenticator {
	dummy, err := hasher.HashPassword("decoy-credential-for-unknown-accounts")
	if err != nil {
		dummy = ""
	}

	return &LocalPasswordAuthenticator{
		store:     store,
		hasher:    hasher,
		dummyHash: dummy,
	}
}

// Authenticate implements Authenticator; identifier is the email address,
// proof the cleartext password.
func (l *LocalPasswordAuthenticator) Authenticate(ctx context.Context, identifier, proof string) (*Account, error) {
	account, err := l.store.FindByEmail(ctx, NormalizeEmail(identifier))
	if err != nil {
		if IsAccountNotFound(err) {
			if l.dummyHash != "" {
				_ = l.hasher.ComparePasswordAndHash(proof, l.dummyHash)
			}
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during verification")
	}

	if err := l.hasher.ComparePasswordAndHash(proof, account.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	// Activation status does not gate login. Unactivated accounts can sign
	// in; this mirrors the legacy behavior and is a named policy, not an
	// oversight.
	return account, nil
}

// SessionTokenAuthenticator resolves a signed session token into the account
// it asserts. The proof argument is ignored.
type SessionTokenAuthenticator struct {
	store    AccountStore
	sessions *TokenService
}

var _ Authenticator = (*SessionTokenAuthenticator)(nil)

// NewSessionTokenAuthenticator builds the session check strategy.
func NewSessionTokenAuthenticator(store AccountStore, sessions *TokenService) *SessionTokenAuthenticator {
	return &SessionTokenAuthenticator{store: store, sessions: sessions}
}

// Authenticate implements Authenticator; identifier is the raw signed token.
func (s *SessionTokenAuthenticator) Authenticate(ctx context.Context, identifier, _ string) (*Account, error) {
	accountID, err := s.sessions.Verify(identifier)
	if err != nil {
		return nil, err
	}

	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if IsAccountNotFound(err) {
			// a valid signature naming a missing account means the record
			// went away after issuance; still just "invalid" to the caller
			return nil, ErrInvalidSessionToken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve session account")
	}

	return account, nil
}
