package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwhim/auth"
)

func TestTokenServiceIssueAndVerify(t *testing.T) {
	ts := auth.NewTokenService([]byte("test-signing-key"), 3600, nil)

	token, err := ts.Issue("account-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "account-123", accountID)
}

func TestTokenServiceDefaultTTL(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	ts := auth.NewTokenService([]byte("test-signing-key"), 0, nil).WithClock(clock.Now)

	token, err := ts.Issue("account-123")
	require.NoError(t, err)

	session, err := ts.Session(token)
	require.NoError(t, err)
	require.NotNil(t, session.GetIssuedAt())
	require.NotNil(t, session.GetExpiresAt())
	assert.True(t, session.GetIssuedAt().Equal(clock.Now()))
	assert.Equal(t, 24*time.Hour, session.GetExpiresAt().Sub(*session.GetIssuedAt()))
}

func TestTokenServiceVerifyFailures(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	ts := auth.NewTokenService([]byte("test-signing-key"), 3600, nil).WithClock(clock.Now)

	valid, err := ts.Issue("account-123")
	require.NoError(t, err)

	otherKey := auth.NewTokenService([]byte("some-other-key"), 3600, nil).WithClock(clock.Now)
	forged, err := otherKey.Issue("account-123")
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "account-123"})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		setup func()
	}{
		{name: "malformed", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "wrong signing key", token: forged},
		{name: "alg none rejected", token: noneToken},
		{name: "tampered signature", token: valid + "x"},
		{
			name:  "expired",
			token: valid,
			setup: func() { clock.Advance(2 * time.Hour) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}

			accountID, err := ts.Verify(tt.token)
			assert.Empty(t, accountID)

			// every failure collapses into the same opaque error
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrInvalidSessionToken)
			assert.Equal(t, 401, auth.HTTPStatusFor(err))
		})
	}
}

func TestTokenServiceRejectsMissingSubject(t *testing.T) {
	key := []byte("test-signing-key")
	ts := auth.NewTokenService(key, 3600, nil)

	now := time.Now()
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	raw, err := anonymous.SignedString(key)
	require.NoError(t, err)

	_, err = ts.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidSessionToken)
}
