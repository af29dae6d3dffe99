package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bookwhim/auth"
)

const sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    activated BOOLEAN NOT NULL DEFAULT FALSE,
    activated_at TIMESTAMP NULL,
    activation_token TEXT UNIQUE,
    activation_token_sent_at TIMESTAMP NULL,
    reset_password_token TEXT UNIQUE,
    reset_password_token_sent_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);`

func setupAccountsRepo(t *testing.T) auth.AccountStore {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	_, err = bunDB.Exec(sqliteCreateAccounts)
	require.NoError(t, err)

	return auth.NewAccountsRepository(bunDB)
}

func TestAccountsRepositoryInsertAndFind(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	account := &auth.Account{
		Email:        "Reader@Example.COM",
		PasswordHash: "not-a-real-hash",
	}
	account.IssueActivationToken("activation-token-1", time.Now().UTC())

	created, err := repo.Insert(ctx, account)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID, "insert assigns an id")
	assert.Equal(t, "reader@example.com", created.Email, "emails are stored normalized")

	byEmail, err := repo.FindByEmail(ctx, "READER@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	byToken, err := repo.FindByToken(ctx, auth.TokenFieldActivation, "activation-token-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byToken.ID)
}

func TestAccountsRepositoryNotFound(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "stranger@example.com")
	assert.True(t, auth.IsAccountNotFound(err))

	_, err = repo.FindByToken(ctx, auth.TokenFieldReset, "no-such-token")
	assert.True(t, auth.IsAccountNotFound(err))

	_, err = repo.FindByID(ctx, uuid.New().String())
	assert.True(t, auth.IsAccountNotFound(err))
}

func TestAccountsRepositoryRejectsUnknownTokenField(t *testing.T) {
	repo := setupAccountsRepo(t)

	_, err := repo.FindByToken(context.Background(), auth.TokenField("password_hash"), "probe")
	require.Error(t, err)
	assert.False(t, auth.IsAccountNotFound(err))
}

func TestAccountsRepositoryDuplicateEmail(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, &auth.Account{Email: "reader@example.com", PasswordHash: "hash-1"})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, &auth.Account{Email: "READER@example.com", PasswordHash: "hash-2"})
	require.Error(t, err)
	assert.True(t, auth.IsDuplicateAccount(err), "unique index violation must surface as a duplicate")
}

func TestAccountsRepositorySave(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, &auth.Account{Email: "reader@example.com", PasswordHash: "hash-1"})
	require.NoError(t, err)
	require.False(t, created.Activated)

	created.MarkActivated(time.Now().UTC())
	updated, err := repo.Save(ctx, created)
	require.NoError(t, err)
	assert.True(t, updated.Activated)
	assert.NotNil(t, updated.ActivatedAt)

	reloaded, err := repo.FindByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, reloaded.Activated)
	assert.Nil(t, reloaded.ActivationToken)
}
