package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestUsernameUniqueness(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	_, err = db.Exec("INSERT INTO users(id, username, password_hash) VALUES(?, ?, ?)", "u1", "firstuser", "h")
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO users(id, username, password_hash) VALUES(?, ?, ?)", "u2", "firstuser", "h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")
}
