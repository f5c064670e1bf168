package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk form of every date field.
const DateLayout = "2006-01-02"

// Field separator for persisted records.
const fieldSep = ", "

// Role labels at the file boundary.
const (
	roleAdmin    = "Admin"
	roleNonAdmin = "Non-Admin"
)

type User struct {
	Username string
	Password string
	Admin    bool
}

// Role returns the boundary encoding of the admin flag.
func (u User) Role() string {
	if u.Admin {
		return roleAdmin
	}
	return roleNonAdmin
}

type Task struct {
	ID          int
	Owner       string
	Title       string
	Description string
	Due         time.Time
	Assigned    time.Time
	Complete    bool
}

// Status returns the boundary encoding of the completion flag.
func (t Task) Status() string {
	if t.Complete {
		return "Yes"
	}
	return "No"
}

func formatUser(u User) string {
	return strings.Join([]string{u.Username, u.Password, u.Role()}, fieldSep)
}

func parseUser(line string) (User, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 3 {
		return User{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	admin, err := parseRole(fields[2])
	if err != nil {
		return User{}, err
	}
	return User{Username: fields[0], Password: fields[1], Admin: admin}, nil
}

func parseRole(s string) (bool, error) {
	switch s {
	case roleAdmin:
		return true, nil
	case roleNonAdmin:
		return false, nil
	default:
		return false, fmt.Errorf("unknown role %q", s)
	}
}

func formatTask(t Task) string {
	return strings.Join([]string{
		strconv.Itoa(t.ID),
		t.Owner,
		t.Title,
		t.Description,
		t.Due.Format(DateLayout),
		t.Assigned.Format(DateLayout),
		t.Status(),
	}, fieldSep)
}

func parseTask(line string) (Task, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 7 {
		return Task{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Task{}, fmt.Errorf("bad task id %q", fields[0])
	}
	due, err := time.Parse(DateLayout, fields[4])
	if err != nil {
		return Task{}, fmt.Errorf("bad due date %q", fields[4])
	}
	assigned, err := time.Parse(DateLayout, fields[5])
	if err != nil {
		return Task{}, fmt.Errorf("bad assigned date %q", fields[5])
	}
	var complete bool
	switch fields[6] {
	case "Yes":
		complete = true
	case "No":
		complete = false
	default:
		return Task{}, fmt.Errorf("bad completion flag %q", fields[6])
	}
	return Task{
		ID:          id,
		Owner:       fields[1],
		Title:       fields[2],
		Description: fields[3],
		Due:         due,
		Assigned:    assigned,
		Complete:    complete,
	}, nil
}
