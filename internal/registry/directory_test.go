package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/taskmgr/internal/store"
)

func TestRegisterRejectsDuplicates(t *testing.T) {
	d := NewDirectory(nil)

	_, err := d.Register("alice", "secret1", true)
	require.NoError(t, err)
	assert.True(t, d.Exists("alice"))

	_, err = d.Register("alice", "other77", false)
	assert.True(t, errors.Is(err, ErrDuplicateUser))
	assert.Equal(t, 1, d.Len())
}

func TestIsAdmin(t *testing.T) {
	d := NewDirectory([]store.User{
		{Username: "alice", Password: "secret1", Admin: true},
		{Username: "bob", Password: "secret2"},
	})

	admin, err := d.IsAdmin("alice")
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = d.IsAdmin("bob")
	require.NoError(t, err)
	assert.False(t, admin)

	_, err = d.IsAdmin("mallory")
	assert.True(t, errors.Is(err, ErrUnknownUser))
}

func TestSetRole(t *testing.T) {
	d := NewDirectory([]store.User{{Username: "bob", Password: "secret2"}})

	require.NoError(t, d.SetRole("bob", true))
	admin, err := d.IsAdmin("bob")
	require.NoError(t, err)
	assert.True(t, admin)

	err = d.SetRole("mallory", true)
	assert.True(t, errors.Is(err, ErrUnknownUser))
}

func TestAuthenticate(t *testing.T) {
	d := NewDirectory([]store.User{{Username: "alice", Password: "secret1", Admin: true}})

	u, ok := d.Authenticate("alice", "secret1")
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)

	_, ok = d.Authenticate("alice", "wrong")
	assert.False(t, ok)

	_, ok = d.Authenticate("mallory", "secret1")
	assert.False(t, ok)
}

func TestUsersPreservesRegistrationOrder(t *testing.T) {
	d := NewDirectory([]store.User{
		{Username: "zoe", Password: "secret1"},
		{Username: "alice", Password: "secret2"},
	})
	_, err := d.Register("bob", "secret3", false)
	require.NoError(t, err)

	names := []string{}
	for _, u := range d.Users() {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"zoe", "alice", "bob"}, names)
}
