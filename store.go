package auth

import "context"

// TokenField names an Account column holding a one-time token.
type TokenField string

const (
	// TokenFieldActivation selects the activation token column.
	TokenFieldActivation TokenField = "activation_token"
	// TokenFieldReset selects the password-reset token column.
	TokenFieldReset TokenField = "reset_password_token"
)

// AccountStore is the contract to the durable store. Implementations own all
// persisted state; flows only ever hold transient in-memory copies. Lookups
// by email expect the normalized (lowercased) form. Insert and Save must
// fail atomically on unique-index violations (email and both token columns)
// and surface those as errors satisfying IsDuplicateAccount; missing records
// surface as errors satisfying IsAccountNotFound.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByToken(ctx context.Context, field TokenField, token string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Insert(ctx context.Context, account *Account) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)
}
