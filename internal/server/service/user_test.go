package service

import (
	"testing"

	"chessql/internal/server/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.CreateUser("Alice", "Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.CreateUser("alice", "", "secret123")
	assert.ErrorIs(t, err, storage.ErrUserExists)

	_, err = svc.AuthenticateUser("alice", "wrong-pass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.AuthenticateUser("nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := svc.AuthenticateUser("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)

	require.NoError(t, svc.SetPassword(user.UserID, "another456"))
	_, err = svc.AuthenticateUser("alice", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users, err := svc.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(user.UserID))
	_, err = svc.GetUserByID(user.UserID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokensAreBoundToSessions(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.CreateUser("bob", "", "secret123")
	require.NoError(t, err)

	first, expires, err := svc.GenerateUserToken(user.UserID)
	require.NoError(t, err)
	assert.False(t, expires.IsZero())

	userID, claims, err := svc.ValidateToken(first)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, userID)
	assert.Equal(t, "bob", claims["username"])

	second, _, err := svc.GenerateUserToken(user.UserID)
	require.NoError(t, err)

	_, _, err = svc.ValidateToken(first)
	assert.ErrorIs(t, err, ErrInvalidSession, "a new login revokes the old session")

	_, claims, err = svc.ValidateToken(second)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(claims))

	_, _, err = svc.ValidateToken(second)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, _, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
