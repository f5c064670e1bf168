package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/amirbrooks/taskmgr/internal/store"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateUsername enforces the registration format: 3-20 characters,
// letters, digits and underscores only.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return errors.New("username cannot be empty")
	case len(username) < 3:
		return errors.New("username must be at least 3 characters long")
	case len(username) > 20:
		return errors.New("username must be no more than 20 characters long")
	case !usernamePattern.MatchString(username):
		return errors.New("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return errors.New("password cannot be empty")
	case len(password) < 6:
		return errors.New("password must be at least 6 characters long")
	}
	return nil
}

// ParseDate checks the YYYY-MM-DD form. Past-date rules belong to the
// registry, not here.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(store.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("invalid date format, use YYYY-MM-DD")
	}
	return t, nil
}

// ValidateNonEmpty rejects blank input for a named field.
func ValidateNonEmpty(s, field string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s cannot be empty", strings.ToLower(field))
	}
	return nil
}
