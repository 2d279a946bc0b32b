package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ndewijer/stock-portfolio-tracker/internal/auth"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
)

func TestPassword(t *testing.T) {
	auth.PasswordCost = bcrypt.MinCost

	hash, err := auth.HashPassword("FlaskIsAwesome")
	require.NoError(t, err)

	assert.NotEqual(t, "FlaskIsAwesome", hash)
	assert.True(t, auth.CheckPassword(hash, "FlaskIsAwesome"))
	assert.False(t, auth.CheckPassword(hash, "FlaskIsNotAwesome"))
	assert.False(t, auth.CheckPassword("not-a-hash", "FlaskIsAwesome"))
}

// TestTokenManager tests issuing and verifying session tokens.
//
// WHY: Every authenticated endpoint trusts the subject and role in this token.
// Tokens signed with another key, or expired ones, must never be accepted.
func TestTokenManager(t *testing.T) {
	account := model.Account{ID: "0b6f3f0e-8a0c-4f36-b0a4-1c8f0b1c2d3e", Role: model.RoleAdmin}

	t.Run("round trip", func(t *testing.T) {
		m := auth.NewTokenManager("secret", time.Hour)

		token, expires, err := m.Issue(account, time.Now())
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

		claims, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, claims.Subject)
		assert.Equal(t, model.RoleAdmin, claims.Role)
	})

	t.Run("rejects other key", func(t *testing.T) {
		token, _, err := auth.NewTokenManager("secret", time.Hour).Issue(account, time.Now())
		require.NoError(t, err)

		_, err = auth.NewTokenManager("other", time.Hour).Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		m := auth.NewTokenManager("secret", time.Hour)
		token, _, err := m.Issue(account, time.Now().Add(-2*time.Hour))
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := auth.NewTokenManager("secret", time.Hour).Parse("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

// TestLinkSigner tests email link tokens.
//
// WHY: A confirmation link must not be usable as a password reset link, and a
// leaked old link must stop working after its lifetime.
func TestLinkSigner(t *testing.T) {
	signer := auth.NewLinkSigner("secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := signer.Sign(auth.PurposeConfirmEmail, "patrick@email.com")
		require.NoError(t, err)

		email, err := signer.Verify(auth.PurposeConfirmEmail, token)
		require.NoError(t, err)
		assert.Equal(t, "patrick@email.com", email)
	})

	t.Run("purpose is enforced", func(t *testing.T) {
		token, err := signer.Sign(auth.PurposeConfirmEmail, "patrick@email.com")
		require.NoError(t, err)

		_, err = signer.Verify(auth.PurposePasswordReset, token)
		assert.ErrorIs(t, err, auth.ErrInvalidLink)
	})

	t.Run("other secret is rejected", func(t *testing.T) {
		token, err := auth.NewLinkSigner("other", time.Hour).Sign(auth.PurposeConfirmEmail, "patrick@email.com")
		require.NoError(t, err)

		_, err = signer.Verify(auth.PurposeConfirmEmail, token)
		assert.ErrorIs(t, err, auth.ErrInvalidLink)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		_, err := signer.Verify(auth.PurposeConfirmEmail, "gAAAAABf-garbage")
		assert.ErrorIs(t, err, auth.ErrInvalidLink)
	})

	t.Run("token is url safe", func(t *testing.T) {
		token, err := signer.Sign(auth.PurposePasswordReset, "patrick@email.com")
		require.NoError(t, err)
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "+")
	})
}

func TestAccountContext(t *testing.T) {
	_, ok := auth.AccountFromContext(context.Background())
	assert.False(t, ok)

	ctx := auth.WithAccount(context.Background(), model.Account{ID: "abc", Email: "patrick@email.com"})
	account, ok := auth.AccountFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc", account.ID)
}
