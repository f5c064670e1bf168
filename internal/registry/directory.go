package registry

import (
	"fmt"

	"github.com/amirbrooks/taskmgr/internal/store"
)

// Directory is the in-memory user collection. Usernames are unique; users are
// never deleted, only role changes mutate them. Registration order is stable.
type Directory struct {
	users []store.User
	index map[string]int
}

func NewDirectory(users []store.User) *Directory {
	d := &Directory{index: make(map[string]int, len(users))}
	for _, u := range users {
		if _, ok := d.index[u.Username]; ok {
			continue
		}
		d.index[u.Username] = len(d.users)
		d.users = append(d.users, u)
	}
	return d
}

func (d *Directory) Exists(username string) bool {
	_, ok := d.index[username]
	return ok
}

func (d *Directory) Lookup(username string) (store.User, bool) {
	i, ok := d.index[username]
	if !ok {
		return store.User{}, false
	}
	return d.users[i], true
}

func (d *Directory) IsAdmin(username string) (bool, error) {
	u, ok := d.Lookup(username)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownUser, username)
	}
	return u.Admin, nil
}

// Authenticate checks a username/password pair. Passwords are opaque strings
// compared verbatim; hashing is out of scope.
func (d *Directory) Authenticate(username, password string) (store.User, bool) {
	u, ok := d.Lookup(username)
	if !ok || u.Password != password {
		return store.User{}, false
	}
	return u, true
}

func (d *Directory) Register(username, password string, admin bool) (store.User, error) {
	if _, ok := d.index[username]; ok {
		return store.User{}, fmt.Errorf("%w: %q", ErrDuplicateUser, username)
	}
	u := store.User{Username: username, Password: password, Admin: admin}
	d.index[username] = len(d.users)
	d.users = append(d.users, u)
	return u, nil
}

// SetRole changes the admin flag. Admin-only gating is enforced by the caller.
func (d *Directory) SetRole(username string, admin bool) error {
	i, ok := d.index[username]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownUser, username)
	}
	d.users[i].Admin = admin
	return nil
}

// Users returns all users in registration order.
func (d *Directory) Users() []store.User {
	out := make([]store.User, len(d.users))
	copy(out, d.users)
	return out
}

func (d *Directory) Len() int { return len(d.users) }
