package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/taskmgr/internal/audit"
	"github.com/amirbrooks/taskmgr/internal/registry"
	"github.com/amirbrooks/taskmgr/internal/store"
)

func scriptedSession(t *testing.T, script string, users []store.User, tasks []store.Task) (*Session, *store.Store, *strings.Builder) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(store.Paths{
		UserFile:     filepath.Join(dir, "user.txt"),
		TaskFile:     filepath.Join(dir, "task.txt"),
		TaskOverview: filepath.Join(dir, "task_overview.txt"),
		UserOverview: filepath.Join(dir, "user_overview.txt"),
	})
	d := registry.NewDirectory(users)
	r := registry.New(d, tasks)
	var out strings.Builder
	s := NewSession(st, d, r, audit.Nop(), strings.NewReader(script), &out)
	return s, st, &out
}

func adminUser() []store.User {
	return []store.User{{Username: "admin", Password: "secret1", Admin: true}}
}

func TestSessionAddTaskPersists(t *testing.T) {
	script := strings.Join([]string{
		"admin", "secret1", // login
		"a",                          // add task
		"admin",                      // owner
		"Write docs",                 // title
		"Document the report format", // description
		"2099-01-01",                 // due date
		"e", // exit
	}, "\n") + "\n"
	s, st, out := scriptedSession(t, script, adminUser(), nil)

	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "added with ID 1")

	tasks, err := st.LoadTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Write docs", tasks[0].Title)
	assert.Equal(t, "admin", tasks[0].Owner)
	assert.False(t, tasks[0].Complete)
}

func TestSessionRejectsBadLoginThenAccepts(t *testing.T) {
	script := strings.Join([]string{
		"admin", "wrong",
		"admin", "secret1",
		"e",
	}, "\n") + "\n"
	s, _, out := scriptedSession(t, script, adminUser(), nil)

	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "Invalid username or password")
	assert.Contains(t, out.String(), "Welcome, admin!")
}

func TestSessionNonAdminDeniedAdminActions(t *testing.T) {
	users := []store.User{{Username: "bob", Password: "secret2", Admin: false}}
	script := strings.Join([]string{
		"bob", "secret2",
		"r", // not in bob's menu, still gated
		"dt",
		"e",
	}, "\n") + "\n"
	s, _, out := scriptedSession(t, script, users, nil)

	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "only Admin users can register new users")
	assert.Contains(t, out.String(), "only Admin users can delete tasks")
}

func TestSessionDeleteTaskByTitle(t *testing.T) {
	tasks := []store.Task{
		{ID: 1, Owner: "admin", Title: "Old chore", Description: "x", Due: mustDate("2099-01-01"), Assigned: mustDate("2026-01-01")},
	}
	script := strings.Join([]string{
		"admin", "secret1",
		"dt", "Old chore",
		"e",
	}, "\n") + "\n"
	s, st, out := scriptedSession(t, script, adminUser(), tasks)

	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "has been deleted")

	left, err := st.LoadTasks()
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSessionGenerateAndDisplayStatistics(t *testing.T) {
	tasks := []store.Task{
		{ID: 1, Owner: "admin", Title: "T", Description: "D", Due: mustDate("2099-01-01"), Assigned: mustDate("2026-01-01")},
	}
	script := strings.Join([]string{
		"admin", "secret1",
		"gr",
		"ds",
		"e",
	}, "\n") + "\n"
	s, st, out := scriptedSession(t, script, adminUser(), tasks)

	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "Reports generated successfully")
	assert.Contains(t, out.String(), "TASK OVERVIEW REPORT")
	assert.Contains(t, out.String(), "USER OVERVIEW REPORT")
	assert.True(t, st.TaskOverviewExists())
	assert.True(t, st.UserOverviewExists())
}

func mustDate(s string) time.Time {
	d, err := time.Parse(store.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}
