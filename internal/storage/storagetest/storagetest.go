// Package storagetest holds fixtures shared by the backend tests.
package storagetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/credential"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Directory returns a directory of three records, one of which has logged in.
func Directory() *types.Directory {
	at := func(day, hour int) types.Timestamp {
		return types.NewTimestamp(time.Date(2026, 10, day, hour, 15, 30, 0, time.Local))
	}
	lastLogin := at(19, 9)

	dir := types.NewDirectory()
	dir.Put(types.Student{
		ID:           "S002",
		Name:         "Bob Stone",
		Email:        "bob@example.com",
		PasswordHash: credential.Digest("abcdef"),
		RegisteredAt: at(17, 8),
	})
	dir.Put(types.Student{
		ID:           "S001",
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: credential.Digest("secret1"),
		RegisteredAt: at(18, 10),
		LoginCount:   3,
		LastLoginAt:  &lastLogin,
	})
	dir.Put(types.Student{
		ID:           "X-9",
		Name:         "Émile Zola",
		Email:        "emile@example.fr",
		PasswordHash: credential.Digest("j'accuse"),
		RegisteredAt: at(18, 11),
	})
	return dir
}

// RequireEqual asserts that two directories hold the same records in the
// same order.
func RequireEqual(t *testing.T, want, got *types.Directory) {
	t.Helper()

	w, g := want.Students(), got.Students()
	require.Len(t, g, len(w))
	for i := range w {
		assert.Equal(t, w[i].ID, g[i].ID, "position %d", i)
		assert.Equal(t, w[i].Name, g[i].Name, w[i].ID)
		assert.Equal(t, w[i].Email, g[i].Email, w[i].ID)
		assert.Equal(t, w[i].PasswordHash, g[i].PasswordHash, w[i].ID)
		assert.Equal(t, w[i].LoginCount, g[i].LoginCount, w[i].ID)
		assert.True(t, w[i].RegisteredAt.Equal(g[i].RegisteredAt.Time), w[i].ID)
		if w[i].LastLoginAt == nil {
			assert.Nil(t, g[i].LastLoginAt, w[i].ID)
		} else if assert.NotNil(t, g[i].LastLoginAt, w[i].ID) {
			assert.True(t, w[i].LastLoginAt.Equal(g[i].LastLoginAt.Time), w[i].ID)
		}
	}
}
