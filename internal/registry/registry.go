package registry

import (
	"fmt"
	"sort"
	"time"

	"github.com/amirbrooks/taskmgr/internal/store"
)

var timeNow = func() time.Time { return time.Now() }

// Registry is the in-memory task collection and the sole owner of task
// records for the process lifetime. The Store serializes it; callers persist
// after each mutation.
type Registry struct {
	dir   *Directory
	tasks map[int]store.Task
}

func New(dir *Directory, tasks []store.Task) *Registry {
	r := &Registry{dir: dir, tasks: make(map[int]store.Task, len(tasks))}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

// EditInput carries the optional fields of an edit. Nil means unchanged.
type EditInput struct {
	Owner *string
	Due   *time.Time
}

// Create validates the owner and due date, assigns the next id and today's
// assigned date, and adds an incomplete task.
func (r *Registry) Create(owner, title, description string, due time.Time) (store.Task, error) {
	if !r.dir.Exists(owner) {
		return store.Task{}, fmt.Errorf("%w: %q", ErrUnknownUser, owner)
	}
	today := dateOnly(timeNow())
	due = dateOnly(due)
	if due.Before(today) {
		return store.Task{}, fmt.Errorf("%w: %s is in the past", ErrInvalidDueDate, due.Format(store.DateLayout))
	}
	t := store.Task{
		ID:          r.nextID(),
		Owner:       owner,
		Title:       title,
		Description: description,
		Due:         due,
		Assigned:    today,
		Complete:    false,
	}
	r.tasks[t.ID] = t
	return t, nil
}

// All returns every task in ascending id order.
func (r *Registry) All() []store.Task {
	out := make([]store.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// For returns the tasks owned by username, ascending id order.
func (r *Registry) For(username string) []store.Task {
	var out []store.Task
	for _, t := range r.All() {
		if t.Owner == username {
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) Get(id int) (store.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return store.Task{}, fmt.Errorf("%w: id %d", ErrUnknownTask, id)
	}
	return t, nil
}

// SetComplete toggles the completion flag in either direction. Restricting
// reset-to-incomplete to admins is the caller's job.
func (r *Registry) SetComplete(id int, complete bool) (store.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return store.Task{}, fmt.Errorf("%w: id %d", ErrUnknownTask, id)
	}
	t.Complete = complete
	r.tasks[id] = t
	return t, nil
}

// Edit applies the provided fields to an incomplete task. Completed tasks are
// immutable until reset.
func (r *Registry) Edit(id int, in EditInput) (store.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return store.Task{}, fmt.Errorf("%w: id %d", ErrUnknownTask, id)
	}
	if t.Complete {
		return store.Task{}, fmt.Errorf("%w: id %d", ErrTaskComplete, id)
	}
	if in.Owner != nil {
		if !r.dir.Exists(*in.Owner) {
			return store.Task{}, fmt.Errorf("%w: %q", ErrUnknownUser, *in.Owner)
		}
		t.Owner = *in.Owner
	}
	if in.Due != nil {
		due := dateOnly(*in.Due)
		if due.Before(dateOnly(timeNow())) {
			return store.Task{}, fmt.Errorf("%w: %s is in the past", ErrInvalidDueDate, due.Format(store.DateLayout))
		}
		t.Due = due
	}
	r.tasks[id] = t
	return t, nil
}

// Delete removes the task from the in-memory set and returns it. Persistence
// and backup are the Store's responsibility, invoked by the caller.
func (r *Registry) Delete(id int) (store.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return store.Task{}, fmt.Errorf("%w: id %d", ErrUnknownTask, id)
	}
	delete(r.tasks, id)
	return t, nil
}

func (r *Registry) Len() int { return len(r.tasks) }

// nextID is max(existing ids)+1, or 1 when empty. Gaps from deletions are
// never reused below the maximum.
func (r *Registry) nextID() int {
	max := 0
	for id := range r.tasks {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
