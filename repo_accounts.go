package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// accounts is the bun-backed AccountStore. Uniqueness of email and the token
// columns is delegated to the database's unique indexes; violations come back
// as conflict errors so concurrent duplicate registrations lose cleanly.
type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var _ AccountStore = (*accounts)(nil)

// NewAccountsRepository builds the durable AccountStore on top of a bun DB.
func NewAccountsRepository(db *bun.DB) AccountStore {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.findOne(ctx, "email", NormalizeEmail(email))
}

func (a *accounts) FindByToken(ctx context.Context, field TokenField, token string) (*Account, error) {
	switch field {
	case TokenFieldActivation, TokenFieldReset:
	default:
		return nil, goerrors.New("unknown token field", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"field": string(field)})
	}

	return a.findOne(ctx, string(field), token)
}

func (a *accounts) FindByID(ctx context.Context, id string) (*Account, error) {
	record, err := a.Repository.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account by id")
	}
	return record, nil
}

func (a *accounts) Insert(ctx context.Context, account *Account) (*Account, error) {
	account.Email = NormalizeEmail(account.Email)
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	created, err := a.Repository.Create(ctx, account)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, goerrors.Wrap(err, ErrDuplicateAccount.Category, ErrDuplicateAccount.Message).
				WithTextCode(ErrDuplicateAccount.TextCode)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert account")
	}

	return created, nil
}

func (a *accounts) Save(ctx context.Context, account *Account) (*Account, error) {
	account.Email = NormalizeEmail(account.Email)
	now := time.Now()
	account.UpdatedAt = &now

	updated, err := a.Repository.Update(ctx, account)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, goerrors.Wrap(err, ErrDuplicateAccount.Category, ErrDuplicateAccount.Message).
				WithTextCode(ErrDuplicateAccount.TextCode)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save account")
	}

	return updated, nil
}

func (a *accounts) findOne(ctx context.Context, column, value string) (*Account, error) {
	record := &Account{}

	err := a.db.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query account")
	}

	return record, nil
}

// isUniqueViolation matches the unique-index rejection messages of the
// supported drivers (sqlite and postgres).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
