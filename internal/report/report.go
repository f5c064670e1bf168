// Package report computes aggregate and per-user task statistics and renders
// them into the two overview report bodies. Reports are regenerated in full;
// display only regenerates when a report file is missing.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirbrooks/taskmgr/internal/registry"
	"github.com/amirbrooks/taskmgr/internal/store"
)

var timeNow = func() time.Time { return time.Now() }

const rule = "======================================================================"

// TaskStats is the aggregate task overview. Percentages are 0 when the
// registry is empty, never a division by zero.
type TaskStats struct {
	Total             int
	Complete          int
	Incomplete        int
	Overdue           int
	PercentIncomplete float64
	PercentOverdue    float64
}

// UserStats is one user's block in the user overview. All percentages are 0
// when the user has no assigned tasks.
type UserStats struct {
	Username          string
	Assigned          int
	PercentOfTotal    float64
	PercentComplete   float64
	PercentIncomplete float64
	PercentOverdue    float64
}

// ComputeTaskStats aggregates the full task set. A task is overdue when it is
// incomplete and its due date is strictly before today.
func ComputeTaskStats(tasks []store.Task, today time.Time) TaskStats {
	today = dateOnly(today)
	s := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Complete {
			s.Complete++
			continue
		}
		s.Incomplete++
		if dateOnly(t.Due).Before(today) {
			s.Overdue++
		}
	}
	s.PercentIncomplete = percent(s.Incomplete, s.Total)
	s.PercentOverdue = percent(s.Overdue, s.Total)
	return s
}

// ComputeUserStats produces one block per user, in registration order.
func ComputeUserStats(users []store.User, tasks []store.Task, today time.Time) []UserStats {
	today = dateOnly(today)
	total := len(tasks)
	out := make([]UserStats, 0, len(users))
	for _, u := range users {
		var assigned, complete, incomplete, overdue int
		for _, t := range tasks {
			if t.Owner != u.Username {
				continue
			}
			assigned++
			if t.Complete {
				complete++
				continue
			}
			incomplete++
			if dateOnly(t.Due).Before(today) {
				overdue++
			}
		}
		out = append(out, UserStats{
			Username:          u.Username,
			Assigned:          assigned,
			PercentOfTotal:    percent(assigned, total),
			PercentComplete:   percent(complete, assigned),
			PercentIncomplete: percent(incomplete, assigned),
			PercentOverdue:    percent(overdue, assigned),
		})
	}
	return out
}

// RenderTaskOverview produces the task overview report body.
func RenderTaskOverview(s TaskStats) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("TASK OVERVIEW REPORT\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Total number of tasks tracked: %d\n", s.Total)
	fmt.Fprintf(&b, "Total number of completed tasks: %d\n", s.Complete)
	fmt.Fprintf(&b, "Total number of uncompleted tasks: %d\n", s.Incomplete)
	fmt.Fprintf(&b, "Total number of uncompleted and overdue tasks: %d\n", s.Overdue)
	fmt.Fprintf(&b, "Percentage of incomplete tasks: %.2f%%\n", s.PercentIncomplete)
	fmt.Fprintf(&b, "Percentage of overdue tasks: %.2f%%\n", s.PercentOverdue)
	b.WriteString(rule + "\n")
	return b.String()
}

// RenderUserOverview produces the user overview report body.
func RenderUserOverview(totalUsers, totalTasks int, stats []UserStats) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("USER OVERVIEW REPORT\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Total number of users registered: %d\n", totalUsers)
	fmt.Fprintf(&b, "Total number of tasks tracked: %d\n", totalTasks)
	b.WriteString("\n" + strings.Repeat("-", 70) + "\n")
	b.WriteString("USER TASK STATISTICS:\n")
	b.WriteString(strings.Repeat("-", 70) + "\n\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "User: %s\n", s.Username)
		fmt.Fprintf(&b, "  Total tasks assigned: %d\n", s.Assigned)
		fmt.Fprintf(&b, "  Percentage of total tasks: %.2f%%\n", s.PercentOfTotal)
		fmt.Fprintf(&b, "  Percentage of assigned tasks completed: %.2f%%\n", s.PercentComplete)
		fmt.Fprintf(&b, "  Percentage of assigned tasks incomplete: %.2f%%\n", s.PercentIncomplete)
		fmt.Fprintf(&b, "  Percentage of assigned tasks overdue: %.2f%%\n", s.PercentOverdue)
		b.WriteString("\n")
	}
	b.WriteString(rule + "\n")
	return b.String()
}

// Engine ties the computations to the Store's report files.
type Engine struct {
	Store *store.Store
	Dir   *registry.Directory
	Reg   *registry.Registry
}

// Generate recomputes both reports and fully overwrites the report files.
func (e *Engine) Generate() error {
	tasks := e.Reg.All()
	users := e.Dir.Users()
	today := timeNow()
	taskBody := RenderTaskOverview(ComputeTaskStats(tasks, today))
	userBody := RenderUserOverview(len(users), len(tasks), ComputeUserStats(users, tasks, today))
	if err := e.Store.WriteTaskOverview(taskBody); err != nil {
		return err
	}
	return e.Store.WriteUserOverview(userBody)
}

// Display returns both report bodies, generating them first only when either
// report file is missing. Existing files are shown as-is.
func (e *Engine) Display() (taskBody, userBody string, err error) {
	if !e.Store.TaskOverviewExists() || !e.Store.UserOverviewExists() {
		if err := e.Generate(); err != nil {
			return "", "", err
		}
	}
	taskBody, err = e.Store.ReadTaskOverview()
	if err != nil {
		return "", "", err
	}
	userBody, err = e.Store.ReadUserOverview()
	if err != nil {
		return "", "", err
	}
	return taskBody, userBody, nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
