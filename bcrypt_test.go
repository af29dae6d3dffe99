package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookwhim/auth"
)

func TestHasherHashPassword(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)

	hash, err := hasher.HashPassword("secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret", hash)

	// salted: hashing the same input twice never repeats
	again, err := hasher.HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestHasherRejectsEmptyPassword(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)

	hash, err := hasher.HashPassword("")
	assert.Empty(t, hash)
	assert.ErrorIs(t, err, auth.ErrNoEmptyString)
}

func TestHasherComparePasswordAndHash(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)

	hash, err := hasher.HashPassword("secret")
	require.NoError(t, err)

	assert.NoError(t, hasher.ComparePasswordAndHash("secret", hash))

	err = hasher.ComparePasswordAndHash("wrong", hash)
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
}

func TestNewHasherClampsCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
	}{
		{name: "zero falls back to default", cost: 0},
		{name: "negative falls back to default", cost: -1},
		{name: "beyond max falls back to default", cost: bcrypt.MaxCost + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := auth.NewHasher(tt.cost)

			hash, err := hasher.HashPassword("secret")
			require.NoError(t, err)

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, auth.DefaultBcryptCost, cost)
		})
	}
}
