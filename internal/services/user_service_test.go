package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irodav/taskdeck-be/internal/apperror"
	"github.com/irodav/taskdeck-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newUserService(t *testing.T) *UserService {
	db := newTestDB(t)
	return NewUserService(db, NewEventService(db))
}

func TestRegister(t *testing.T) {
	svc := newUserService(t)

	user, err := svc.Register("firstuser", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "firstuser", user.Username)
	assert.Empty(t, user.PasswordHash)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register("firstuser", "password123")
	require.NoError(t, err)

	_, err = svc.Register("firstuser", "otherpassword")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)

	created, err := svc.Register("firstuser", "password123")
	require.NoError(t, err)

	user, err := svc.Authenticate("firstuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register("firstuser", "password123")
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate("firstuser", "wrongpassword")
	_, unknownUser := svc.Authenticate("nobodyhere", "password123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.True(t, apperror.IsAuthError(wrongPassword))
	assert.True(t, apperror.IsAuthError(unknownUser))
	// Neither shape may reveal whether the username exists.
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestGetUserByID(t *testing.T) {
	svc := newUserService(t)

	created, err := svc.Register("firstuser", "password123")
	require.NoError(t, err)

	user, err := svc.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "firstuser", user.Username)

	_, err = svc.GetUserByID("no-such-id")
	assert.True(t, apperror.IsNotFound(err))
}
