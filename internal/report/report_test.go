package report

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/taskmgr/internal/registry"
	"github.com/amirbrooks/taskmgr/internal/store"
)

var testToday = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func day(offset int) time.Time { return testToday.AddDate(0, 0, offset) }

func TestComputeTaskStatsEmptyRegistry(t *testing.T) {
	s := ComputeTaskStats(nil, testToday)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.PercentIncomplete)
	assert.Zero(t, s.PercentOverdue)
}

func TestComputeTaskStats(t *testing.T) {
	tasks := []store.Task{
		{ID: 1, Owner: "alice", Due: day(-3), Complete: true},
		{ID: 2, Owner: "alice", Due: day(-1), Complete: false}, // overdue
		{ID: 3, Owner: "bob", Due: day(2), Complete: false},
		{ID: 4, Owner: "bob", Due: day(0), Complete: false}, // due today, not overdue
	}
	s := ComputeTaskStats(tasks, testToday)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Complete)
	assert.Equal(t, 3, s.Incomplete)
	assert.Equal(t, 1, s.Overdue)
	assert.InDelta(t, 75.0, s.PercentIncomplete, 0.001)
	assert.InDelta(t, 25.0, s.PercentOverdue, 0.001)
}

func TestCompleteAndIncompletePercentagesSumToHundred(t *testing.T) {
	tasks := []store.Task{
		{ID: 1, Due: day(1), Complete: true},
		{ID: 2, Due: day(1), Complete: true},
		{ID: 3, Due: day(1), Complete: false},
	}
	s := ComputeTaskStats(tasks, testToday)
	percentComplete := float64(s.Complete) / float64(s.Total) * 100
	assert.InDelta(t, 100.0, percentComplete+s.PercentIncomplete, 0.001)
	assert.True(t, !math.IsNaN(s.PercentIncomplete))
}

func TestComputeUserStatsScenario(t *testing.T) {
	users := []store.User{
		{Username: "alice", Password: "secret1"},
		{Username: "bob", Password: "secret2"},
	}
	tasks := []store.Task{
		{ID: 1, Owner: "alice", Due: day(-5), Complete: true},
		{ID: 2, Owner: "alice", Due: day(-4), Complete: true},
		{ID: 3, Owner: "alice", Due: day(-1), Complete: false}, // incomplete overdue
		{ID: 4, Owner: "alice", Due: day(5), Complete: false},  // incomplete future
	}
	stats := ComputeUserStats(users, tasks, testToday)
	require.Len(t, stats, 2)

	alice := stats[0]
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, 4, alice.Assigned)
	assert.InDelta(t, 100.0, alice.PercentOfTotal, 0.001)
	assert.InDelta(t, 50.0, alice.PercentComplete, 0.001)
	assert.InDelta(t, 50.0, alice.PercentIncomplete, 0.001)
	assert.InDelta(t, 25.0, alice.PercentOverdue, 0.001)

	bob := stats[1]
	assert.Zero(t, bob.Assigned)
	assert.Zero(t, bob.PercentOfTotal)
	assert.Zero(t, bob.PercentComplete)
	assert.Zero(t, bob.PercentIncomplete)
	assert.Zero(t, bob.PercentOverdue)
}

func TestRenderTaskOverviewFields(t *testing.T) {
	body := RenderTaskOverview(TaskStats{
		Total: 4, Complete: 1, Incomplete: 3, Overdue: 1,
		PercentIncomplete: 75, PercentOverdue: 25,
	})
	assert.Contains(t, body, "TASK OVERVIEW REPORT")
	assert.Contains(t, body, "Total number of tasks tracked: 4")
	assert.Contains(t, body, "Total number of completed tasks: 1")
	assert.Contains(t, body, "Total number of uncompleted tasks: 3")
	assert.Contains(t, body, "Total number of uncompleted and overdue tasks: 1")
	assert.Contains(t, body, "Percentage of incomplete tasks: 75.00%")
	assert.Contains(t, body, "Percentage of overdue tasks: 25.00%")
}

func TestRenderUserOverviewFields(t *testing.T) {
	body := RenderUserOverview(2, 4, []UserStats{
		{Username: "alice", Assigned: 4, PercentOfTotal: 100, PercentComplete: 50, PercentIncomplete: 50, PercentOverdue: 25},
		{Username: "bob"},
	})
	assert.Contains(t, body, "USER OVERVIEW REPORT")
	assert.Contains(t, body, "Total number of users registered: 2")
	assert.Contains(t, body, "Total number of tasks tracked: 4")
	assert.Contains(t, body, "User: alice")
	assert.Contains(t, body, "Total tasks assigned: 4")
	assert.Contains(t, body, "Percentage of assigned tasks completed: 50.00%")
	assert.Contains(t, body, "Percentage of assigned tasks overdue: 25.00%")
	assert.Contains(t, body, "User: bob")
	assert.Contains(t, body, "Percentage of total tasks: 0.00%")
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	st := store.New(store.Paths{
		UserFile:     filepath.Join(dir, "user.txt"),
		TaskFile:     filepath.Join(dir, "task.txt"),
		TaskOverview: filepath.Join(dir, "task_overview.txt"),
		UserOverview: filepath.Join(dir, "user_overview.txt"),
	})
	d := registry.NewDirectory([]store.User{{Username: "alice", Password: "secret1", Admin: true}})
	r := registry.New(d, []store.Task{
		{ID: 1, Owner: "alice", Title: "T", Description: "D", Due: day(2), Assigned: day(0)},
	})
	return &Engine{Store: st, Dir: d, Reg: r}
}

func TestEngineGenerateOverwritesReports(t *testing.T) {
	e := testEngine(t)
	require.NoError(t, e.Store.WriteTaskOverview("stale\n"))

	require.NoError(t, e.Generate())
	body, err := e.Store.ReadTaskOverview()
	require.NoError(t, err)
	assert.NotContains(t, body, "stale")
	assert.Contains(t, body, "Total number of tasks tracked: 1")
}

func TestEngineDisplayGeneratesOnlyWhenMissing(t *testing.T) {
	e := testEngine(t)

	// Missing reports are generated before display.
	taskBody, userBody, err := e.Display()
	require.NoError(t, err)
	assert.Contains(t, taskBody, "TASK OVERVIEW REPORT")
	assert.Contains(t, userBody, "USER OVERVIEW REPORT")

	// Existing reports are shown as-is, not refreshed.
	require.NoError(t, e.Store.WriteTaskOverview("frozen task body\n"))
	taskBody, _, err = e.Display()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(taskBody, "frozen task body"))
}
