package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amirbrooks/taskmgr/internal/store"
)

// cancelToken returns the operator to the menu from any selection prompt.
const cancelToken = "-1"

// Selector resolves a raw input token against a visible task set. Each
// invalid attempt re-prompts with the same set; the loop ends only on a valid
// id or a cancel. This is the iterative form of a retry contract, so depth is
// bounded by the operator, not the stack.
type Selector struct {
	In  *bufio.Scanner
	Out io.Writer
}

// Pick prompts until the operator enters -1 (or nothing), which cancels, or
// an integer matching an id in visible. Returns the id and whether a task was
// selected.
func (s *Selector) Pick(prompt string, visible []store.Task) (int, bool) {
	for {
		fmt.Fprint(s.Out, prompt)
		if !s.In.Scan() {
			return 0, false
		}
		token := strings.TrimSpace(s.In.Text())
		if token == cancelToken || token == "" {
			return 0, false
		}
		id, err := strconv.Atoi(token)
		if err != nil {
			fmt.Fprintf(s.Out, "  Error: %q is not a valid integer. Enter a task ID or -1 to return.\n", token)
			continue
		}
		if containsID(visible, id) {
			return id, true
		}
		fmt.Fprintf(s.Out, "  Error: task ID %d not found in the listed tasks.\n", id)
	}
}

func containsID(tasks []store.Task, id int) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
