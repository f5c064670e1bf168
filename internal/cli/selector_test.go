package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/taskmgr/internal/store"
)

func pickFrom(input string, visible []store.Task) (int, bool, string) {
	var out strings.Builder
	sel := &Selector{In: bufio.NewScanner(strings.NewReader(input)), Out: &out}
	id, ok := sel.Pick("pick: ", visible)
	return id, ok, out.String()
}

func visibleSet(ids ...int) []store.Task {
	tasks := make([]store.Task, len(ids))
	for i, id := range ids {
		tasks[i] = store.Task{ID: id}
	}
	return tasks
}

func TestPickRejectsInvalidTokensThenSelects(t *testing.T) {
	id, ok, output := pickFrom("abc\n5\n2\n", visibleSet(1, 2, 3))
	require.True(t, ok)
	assert.Equal(t, 2, id)
	assert.Contains(t, output, `"abc" is not a valid integer`)
	assert.Contains(t, output, "task ID 5 not found")
	// One prompt per attempt.
	assert.Equal(t, 3, strings.Count(output, "pick: "))
}

func TestPickCancelSentinel(t *testing.T) {
	_, ok, _ := pickFrom("-1\n", visibleSet(1, 2, 3))
	assert.False(t, ok)
}

func TestPickEmptyInputCancels(t *testing.T) {
	_, ok, _ := pickFrom("\n", visibleSet(1))
	assert.False(t, ok)
}

func TestPickEndOfInputCancels(t *testing.T) {
	_, ok, _ := pickFrom("", visibleSet(1))
	assert.False(t, ok)
}

func TestPickAgainstEmptyVisibleSet(t *testing.T) {
	// Nothing is selectable; only cancel terminates.
	id, ok, output := pickFrom("1\n-1\n", nil)
	assert.False(t, ok)
	assert.Zero(t, id)
	assert.Contains(t, output, "task ID 1 not found")
}
