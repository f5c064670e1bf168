package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var timeNow = func() time.Time { return time.Now() }

// Paths names the files a Store reads and writes.
type Paths struct {
	UserFile     string
	TaskFile     string
	TaskOverview string
	UserOverview string
}

// Store owns serialization of users and tasks to flat text files, plus the
// backup-before-overwrite discipline for destructive saves. File handles are
// scoped per call; nothing is held open across operations.
type Store struct {
	paths Paths
}

func New(paths Paths) *Store {
	return &Store{paths: paths}
}

// LoadUsers parses the user file into typed records. A missing file yields an
// empty set; any malformed line fails the whole load.
func (s *Store) LoadUsers() ([]User, error) {
	lines, err := readLines(s.paths.UserFile)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(lines))
	for i, line := range lines {
		u, err := parseUser(line)
		if err != nil {
			return nil, &ParseError{File: s.paths.UserFile, Line: i + 1, Reason: err.Error()}
		}
		users = append(users, u)
	}
	return users, nil
}

// LoadTasks parses the task file into typed records. A missing file yields an
// empty set; any malformed line fails the whole load.
func (s *Store) LoadTasks() ([]Task, error) {
	lines, err := readLines(s.paths.TaskFile)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(lines))
	for i, line := range lines {
		t, err := parseTask(line)
		if err != nil {
			return nil, &ParseError{File: s.paths.TaskFile, Line: i + 1, Reason: err.Error()}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// SaveTasks replaces the persisted task set. The prior file contents are
// copied to a timestamped backup first; one backup per destructive save,
// never pruned.
func (s *Store) SaveTasks(tasks []Task) error {
	if err := s.backup(s.paths.TaskFile); err != nil {
		return err
	}
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = formatTask(t)
	}
	return writeLines(s.paths.TaskFile, lines)
}

// SaveUsers rewrites the full user file. No backup: registration is
// append-oriented and role rewrites back up explicitly.
func (s *Store) SaveUsers(users []User) error {
	lines := make([]string, len(users))
	for i, u := range users {
		lines[i] = formatUser(u)
	}
	return writeLines(s.paths.UserFile, lines)
}

// AppendUser adds one registration record to the user file.
func (s *Store) AppendUser(u User) error {
	f, err := os.OpenFile(s.paths.UserFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorage, s.paths.UserFile, err)
	}
	defer f.Close()
	if _, err := f.WriteString(formatUser(u) + "\n"); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorage, s.paths.UserFile, err)
	}
	return nil
}

// MigrateUserRoles upgrades legacy two-field user records (no role) in place.
// assign is called once per legacy record and returns whether the user becomes
// an admin. The user file is backed up before any rewrite. Returns the number
// of records upgraded.
func (s *Store) MigrateUserRoles(assign func(username string) bool) (int, error) {
	lines, err := readLines(s.paths.UserFile)
	if err != nil {
		return 0, err
	}
	migrated := 0
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		fields := strings.Split(line, fieldSep)
		switch len(fields) {
		case 2:
			u := User{Username: fields[0], Password: fields[1], Admin: assign(fields[0])}
			out = append(out, formatUser(u))
			migrated++
		case 3:
			out = append(out, line)
		default:
			return 0, &ParseError{File: s.paths.UserFile, Line: i + 1, Reason: fmt.Sprintf("expected 2 or 3 fields, got %d", len(fields))}
		}
	}
	if migrated == 0 {
		return 0, nil
	}
	if err := s.backup(s.paths.UserFile); err != nil {
		return 0, err
	}
	if err := writeLines(s.paths.UserFile, out); err != nil {
		return 0, err
	}
	return migrated, nil
}

func (s *Store) WriteTaskOverview(body string) error { return writeReport(s.paths.TaskOverview, body) }
func (s *Store) WriteUserOverview(body string) error { return writeReport(s.paths.UserOverview, body) }

func (s *Store) ReadTaskOverview() (string, error) { return readReport(s.paths.TaskOverview) }
func (s *Store) ReadUserOverview() (string, error) { return readReport(s.paths.UserOverview) }

func (s *Store) TaskOverviewExists() bool { return fileExists(s.paths.TaskOverview) }
func (s *Store) UserOverviewExists() bool { return fileExists(s.paths.UserOverview) }

// backup copies the current persisted bytes to a timestamped side file. A
// missing source is fine (nothing to preserve yet). The ULID tail keeps two
// saves within the same second from colliding.
func (s *Store) backup(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %v", ErrStorage, path, err)
	}
	name := fmt.Sprintf("%s.backup_%s_%s", path, timeNow().Format("20060102_150405"), newULID())
	if err := os.WriteFile(name, b, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorage, name, err)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrStorage, path, err)
	}
	raw := strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func writeLines(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return atomicWriteFile(path, []byte(b.String()), 0o644)
}

func writeReport(path, body string) error {
	return atomicWriteFile(path, []byte(body), 0o644)
}

func readReport(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrStorage, path, err)
	}
	return string(b), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorage, dir, err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", timeNow().UnixNano()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %s: %v", ErrStorage, path, err)
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %s: %v", ErrStorage, path, err)
	}
	return nil
}
