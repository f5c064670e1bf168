package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amirbrooks/taskmgr/internal/audit"
	"github.com/amirbrooks/taskmgr/internal/registry"
	"github.com/amirbrooks/taskmgr/internal/report"
	"github.com/amirbrooks/taskmgr/internal/store"
)

// Session is the interactive shell around the core packages. It owns no
// business rules beyond role gating of menu options; every validation lives
// in the registry, directory and report packages.
type Session struct {
	Store  *store.Store
	Dir    *registry.Directory
	Reg    *registry.Registry
	Engine *report.Engine
	Audit  *audit.Log

	in   *bufio.Scanner
	out  io.Writer
	user store.User
}

func NewSession(st *store.Store, dir *registry.Directory, reg *registry.Registry, log *audit.Log, in io.Reader, out io.Writer) *Session {
	return &Session{
		Store:  st,
		Dir:    dir,
		Reg:    reg,
		Engine: &report.Engine{Store: st, Dir: dir, Reg: reg},
		Audit:  log,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run drives login and the role-gated menu until the operator exits or input
// ends.
func (s *Session) Run() error {
	s.header("WELCOME TO TASK MANAGER")
	for {
		if !s.login() {
			return nil
		}
		if !s.menuLoop() {
			return nil
		}
	}
}

func (s *Session) login() bool {
	for {
		s.header("USER LOGIN")
		username, ok := s.prompt("Enter your username: ")
		if !ok {
			return false
		}
		password, ok := s.prompt("Enter your password: ")
		if !ok {
			return false
		}
		u, authed := s.Dir.Authenticate(username, password)
		if !authed {
			fmt.Fprintln(s.out, "  Invalid username or password. Please try again.")
			s.Audit.Warnf("failed login attempt for username %q", username)
			continue
		}
		s.user = u
		fmt.Fprintf(s.out, "  Welcome, %s! Role: %s\n", u.Username, u.Role())
		s.Audit.Infof("user %q logged in", u.Username)
		return true
	}
}

// menuLoop returns false to exit the program, true to fall back to login.
func (s *Session) menuLoop() bool {
	for {
		var choice string
		var ok bool
		if s.user.Admin {
			choice, ok = s.adminMenu()
		} else {
			choice, ok = s.userMenu()
		}
		if !ok {
			return false
		}
		switch choice {
		case "r":
			s.requireAdmin("register new users", s.registerUser)
		case "a":
			s.addTask()
		case "va":
			s.viewAllTasks()
		case "vm":
			s.viewMyTasks()
		case "vu":
			s.requireAdmin("view all users", s.viewUsers)
		case "vr":
			s.requireAdmin("verify and update user roles", s.verifyRoles)
		case "sr":
			s.requireAdmin("change user roles", s.changeRole)
		case "dt":
			s.requireAdmin("delete tasks", s.deleteTask)
		case "vc":
			s.requireAdmin("view completed tasks", s.viewCompleted)
		case "uc":
			s.markComplete()
		case "rc":
			s.requireAdmin("reset completed tasks", s.resetIncomplete)
		case "gr":
			s.generateReports()
		case "ds":
			s.displayStatistics()
		case "lo":
			fmt.Fprintf(s.out, "  Goodbye, %s!\n", s.user.Username)
			s.Audit.Infof("user %q logged out", s.user.Username)
			s.user = store.User{}
			return true
		case "e":
			fmt.Fprintln(s.out, "  Goodbye!")
			return false
		default:
			fmt.Fprintln(s.out, "  Error: invalid choice, please try again.")
		}
	}
}

func (s *Session) adminMenu() (string, bool) {
	s.header("ADMIN MENU")
	fmt.Fprint(s.out, `  r  - Register a user
  a  - Add task
  va - View all tasks
  vm - View my tasks
  vu - View all users
  vr - Verify and update user roles
  sr - Change a user's role
  dt - Delete task
  vc - View completed tasks
  uc - Mark task as complete
  rc - Reset completed task to incomplete
  gr - Generate reports
  ds - Display statistics
  lo - Logout
  e  - Exit
`)
	return s.promptLower("  Enter your choice: ")
}

func (s *Session) userMenu() (string, bool) {
	s.header("USER MENU")
	fmt.Fprint(s.out, `  a  - Add task
  va - View all tasks
  vm - View my tasks
  uc - Mark task as complete
  gr - Generate reports
  ds - Display statistics
  lo - Logout
  e  - Exit
`)
	return s.promptLower("  Enter your choice: ")
}

func (s *Session) requireAdmin(what string, fn func()) {
	if !s.user.Admin {
		fmt.Fprintf(s.out, "  Error: only Admin users can %s.\n", what)
		s.Audit.Warnf("user %q denied admin action: %s", s.user.Username, what)
		return
	}
	fn()
}

func (s *Session) registerUser() {
	s.header("REGISTER NEW USER")
	var username string
	for {
		input, ok := s.prompt("Enter a username: ")
		if !ok {
			return
		}
		if err := ValidateUsername(input); err != nil {
			fmt.Fprintf(s.out, "  Error: %v\n", err)
			continue
		}
		if s.Dir.Exists(input) {
			fmt.Fprintf(s.out, "  Error: username %q already exists.\n", input)
			continue
		}
		username = input
		break
	}
	var password string
	for {
		input, ok := s.prompt("Enter a password: ")
		if !ok {
			return
		}
		if err := ValidatePassword(input); err != nil {
			fmt.Fprintf(s.out, "  Error: %v\n", err)
			continue
		}
		confirm, ok := s.prompt("Confirm your password: ")
		if !ok {
			return
		}
		if confirm != input {
			fmt.Fprintln(s.out, "  Error: passwords do not match, please try again.")
			continue
		}
		password = input
		break
	}
	admin, ok := s.promptRole(username)
	if !ok {
		return
	}
	u, err := s.Dir.Register(username, password, admin)
	if err != nil {
		s.fail("register user", err)
		return
	}
	if err := s.Store.AppendUser(u); err != nil {
		s.fail("save user", err)
		return
	}
	fmt.Fprintf(s.out, "  User %q successfully created with role %s.\n", u.Username, u.Role())
	s.Audit.Infof("new user registered: %q role %s", u.Username, u.Role())
}

func (s *Session) promptRole(username string) (bool, bool) {
	for {
		fmt.Fprintf(s.out, "  Assign role for %q:\n    1 - Admin\n    2 - Non-Admin\n", username)
		choice, ok := s.prompt("  Enter your choice (1 or 2): ")
		if !ok {
			return false, false
		}
		switch choice {
		case "1":
			return true, true
		case "2":
			return false, true
		default:
			fmt.Fprintln(s.out, "  Error: invalid choice, enter 1 or 2.")
		}
	}
}

func (s *Session) addTask() {
	s.header("ADD NEW TASK")
	var owner string
	for {
		input, ok := s.prompt("Enter the username to assign the task to: ")
		if !ok {
			return
		}
		if err := ValidateNonEmpty(input, "Username"); err != nil {
			fmt.Fprintf(s.out, "  Error: %v\n", err)
			continue
		}
		if !s.Dir.Exists(input) {
			fmt.Fprintf(s.out, "  Error: user %q does not exist.\n", input)
			continue
		}
		owner = input
		break
	}
	title, ok := s.promptNonEmpty("Enter the task title: ", "Task title")
	if !ok {
		return
	}
	description, ok := s.promptNonEmpty("Enter the task description: ", "Task description")
	if !ok {
		return
	}
	for {
		input, ok := s.prompt("Enter the due date (YYYY-MM-DD): ")
		if !ok {
			return
		}
		due, err := ParseDate(input)
		if err != nil {
			fmt.Fprintf(s.out, "  Error: %v\n", err)
			continue
		}
		t, err := s.Reg.Create(owner, title, description, due)
		if err != nil {
			fmt.Fprintf(s.out, "  Error: %v\n", err)
			s.Audit.Errorf("add task failed for owner %q: %v", owner, err)
			continue
		}
		if err := s.persistTasks(); err != nil {
			return
		}
		fmt.Fprintf(s.out, "  Task %q added with ID %d, assigned to %s.\n", t.Title, t.ID, t.Owner)
		s.Audit.Infof("task created: id %d title %q owner %q", t.ID, t.Title, t.Owner)
		return
	}
}

func (s *Session) viewAllTasks() {
	s.header("ALL TASKS")
	tasks := s.Reg.All()
	if len(tasks) == 0 {
		fmt.Fprintln(s.out, "  No tasks found.")
		return
	}
	for _, t := range tasks {
		s.printTask(t, true)
	}
	fmt.Fprintf(s.out, "  Total tasks: %d\n", len(tasks))
}

func (s *Session) viewMyTasks() {
	s.header("MY TASKS - " + strings.ToUpper(s.user.Username))
	mine := s.Reg.For(s.user.Username)
	if len(mine) == 0 {
		fmt.Fprintf(s.out, "  No tasks found for user %q.\n", s.user.Username)
		return
	}
	for _, t := range mine {
		s.printTask(t, false)
	}
	fmt.Fprintf(s.out, "  Total tasks assigned to you: %d\n", len(mine))

	sel := &Selector{In: s.in, Out: s.out}
	for {
		mine = s.Reg.For(s.user.Username)
		id, picked := sel.Pick("  Enter a task ID to update or edit (-1 to return): ", mine)
		if !picked {
			return
		}
		s.taskActions(id)
	}
}

func (s *Session) taskActions(id int) {
	t, err := s.Reg.Get(id)
	if err != nil {
		s.fail("look up task", err)
		return
	}
	s.header("TASK OPTIONS - " + t.Title)
	fmt.Fprintf(s.out, "  Current status: %s\n", t.Status())
	choice, ok := s.prompt("  1 - Toggle complete/incomplete, 2 - Edit task, 3 - Back: ")
	if !ok {
		return
	}
	switch choice {
	case "1":
		updated, err := s.Reg.SetComplete(id, !t.Complete)
		if err != nil {
			s.fail("update task status", err)
			return
		}
		if err := s.persistTasks(); err != nil {
			return
		}
		fmt.Fprintf(s.out, "  Task %q marked as %s.\n", updated.Title, strings.ToLower(statusWord(updated.Complete)))
		s.Audit.Infof("task %d status set to %s", id, updated.Status())
	case "2":
		s.editTask(t)
	case "3":
		return
	default:
		fmt.Fprintln(s.out, "  Error: invalid choice, enter 1, 2 or 3.")
	}
}

func (s *Session) editTask(t store.Task) {
	if t.Complete {
		fmt.Fprintln(s.out, "  Error: cannot edit a completed task. Mark it incomplete first.")
		return
	}
	s.header("EDIT TASK")
	fmt.Fprintf(s.out, "  Task: %s\n  Assigned user: %s\n  Due date: %s\n", t.Title, t.Owner, t.Due.Format(store.DateLayout))
	choice, ok := s.prompt("  1 - Change user, 2 - Change due date, 3 - Change both, 4 - Cancel: ")
	if !ok {
		return
	}
	var in registry.EditInput
	if choice == "1" || choice == "3" {
		for {
			input, ok := s.prompt("  Enter new username to assign this task to: ")
			if !ok {
				return
			}
			if !s.Dir.Exists(input) {
				fmt.Fprintf(s.out, "  Error: user %q does not exist.\n", input)
				continue
			}
			in.Owner = &input
			break
		}
	}
	if choice == "2" || choice == "3" {
		for {
			input, ok := s.prompt("  Enter new due date (YYYY-MM-DD): ")
			if !ok {
				return
			}
			due, err := ParseDate(input)
			if err != nil {
				fmt.Fprintf(s.out, "  Error: %v\n", err)
				continue
			}
			in.Due = &due
			break
		}
	}
	if in.Owner == nil && in.Due == nil {
		return
	}
	updated, err := s.Reg.Edit(t.ID, in)
	if err != nil {
		s.fail("edit task", err)
		return
	}
	if err := s.persistTasks(); err != nil {
		return
	}
	fmt.Fprintf(s.out, "  Task %q updated: assigned to %s, due %s.\n",
		updated.Title, updated.Owner, updated.Due.Format(store.DateLayout))
	s.Audit.Infof("task %d edited: owner %q due %s", updated.ID, updated.Owner, updated.Due.Format(store.DateLayout))
}

func (s *Session) viewUsers() {
	s.header("ALL USERS")
	users := s.Dir.Users()
	if len(users) == 0 {
		fmt.Fprintln(s.out, "  No users found.")
		return
	}
	for _, u := range users {
		fmt.Fprintf(s.out, "  %-30s | %s\n", u.Username, u.Role())
	}
	fmt.Fprintf(s.out, "  Total users: %d\n", len(users))
}

func (s *Session) verifyRoles() {
	s.header("USER ROLE VERIFICATION")
	migrated, err := s.Store.MigrateUserRoles(func(username string) bool {
		fmt.Fprintf(s.out, "  User %q has no role assigned.\n", username)
		admin, _ := s.promptRole(username)
		return admin
	})
	if err != nil {
		s.fail("verify user roles", err)
		return
	}
	if migrated == 0 {
		fmt.Fprintln(s.out, "  All existing users already have roles assigned.")
		return
	}
	users, err := s.Store.LoadUsers()
	if err != nil {
		s.fail("reload users", err)
		return
	}
	*s.Dir = *registry.NewDirectory(users)
	fmt.Fprintf(s.out, "  %d user(s) updated with roles.\n", migrated)
	s.Audit.Infof("%d legacy user record(s) migrated to role format", migrated)
}

func (s *Session) changeRole() {
	s.header("CHANGE USER ROLE")
	username, ok := s.prompt("Enter the username to change: ")
	if !ok {
		return
	}
	if !s.Dir.Exists(username) {
		fmt.Fprintf(s.out, "  Error: user %q does not exist.\n", username)
		s.Audit.Warnf("role change failed: unknown user %q", username)
		return
	}
	admin, ok := s.promptRole(username)
	if !ok {
		return
	}
	if err := s.Dir.SetRole(username, admin); err != nil {
		s.fail("change user role", err)
		return
	}
	if err := s.Store.SaveUsers(s.Dir.Users()); err != nil {
		s.fail("save users", err)
		return
	}
	u, _ := s.Dir.Lookup(username)
	fmt.Fprintf(s.out, "  User %q is now %s.\n", u.Username, u.Role())
	s.Audit.Infof("user %q role set to %s", u.Username, u.Role())
}

func (s *Session) deleteTask() {
	s.header("DELETE TASK")
	input, ok := s.prompt("Enter the task ID or task title to delete: ")
	if !ok {
		return
	}
	id, err := strconv.Atoi(input)
	if err != nil {
		// Fall back to an exact title match.
		found := false
		for _, t := range s.Reg.All() {
			if t.Title == input {
				id = t.ID
				found = true
				break
			}
		}
		if !found {
			fmt.Fprintf(s.out, "  Error: task %q not found.\n", input)
			s.Audit.Warnf("delete failed: no task matching %q", input)
			return
		}
	}
	t, err := s.Reg.Delete(id)
	if err != nil {
		s.fail("delete task", err)
		return
	}
	if err := s.persistTasks(); err != nil {
		return
	}
	fmt.Fprintf(s.out, "  Task ID %d (%q) has been deleted.\n", t.ID, t.Title)
	s.Audit.Infof("task deleted: id %d title %q", t.ID, t.Title)
}

func (s *Session) viewCompleted() {
	s.header("COMPLETED TASKS")
	var completed []store.Task
	for _, t := range s.Reg.All() {
		if t.Complete {
			completed = append(completed, t)
		}
	}
	if len(completed) == 0 {
		fmt.Fprintln(s.out, "  No completed tasks found.")
		return
	}
	for _, t := range completed {
		s.printTask(t, true)
	}
	fmt.Fprintf(s.out, "  Total completed tasks: %d\n", len(completed))
}

func (s *Session) markComplete() {
	s.header("MARK TASK AS COMPLETE")
	sel := &Selector{In: s.in, Out: s.out}
	id, picked := sel.Pick("  Enter the task ID to mark as complete (-1 to return): ", s.Reg.All())
	if !picked {
		return
	}
	t, err := s.Reg.SetComplete(id, true)
	if err != nil {
		s.fail("mark task complete", err)
		return
	}
	if err := s.persistTasks(); err != nil {
		return
	}
	fmt.Fprintf(s.out, "  Task ID %d (%q) has been marked as complete.\n", t.ID, t.Title)
	s.Audit.Infof("task %d marked complete", t.ID)
}

func (s *Session) resetIncomplete() {
	s.header("RESET TASK TO INCOMPLETE")
	var completed []store.Task
	for _, t := range s.Reg.All() {
		if t.Complete {
			completed = append(completed, t)
		}
	}
	if len(completed) == 0 {
		fmt.Fprintln(s.out, "  No completed tasks to reset.")
		return
	}
	sel := &Selector{In: s.in, Out: s.out}
	id, picked := sel.Pick("  Enter the task ID to reset to incomplete (-1 to return): ", completed)
	if !picked {
		return
	}
	t, err := s.Reg.SetComplete(id, false)
	if err != nil {
		s.fail("reset task", err)
		return
	}
	if err := s.persistTasks(); err != nil {
		return
	}
	fmt.Fprintf(s.out, "  Task ID %d (%q) has been reset to incomplete.\n", t.ID, t.Title)
	s.Audit.Infof("task %d reset to incomplete", t.ID)
}

func (s *Session) generateReports() {
	s.header("GENERATING REPORTS")
	if err := s.Engine.Generate(); err != nil {
		s.fail("generate reports", err)
		return
	}
	fmt.Fprintln(s.out, "  Reports generated successfully.")
	s.Audit.Infof("reports generated")
}

func (s *Session) displayStatistics() {
	s.header("TASK MANAGER STATISTICS")
	taskBody, userBody, err := s.Engine.Display()
	if err != nil {
		s.fail("display statistics", err)
		return
	}
	fmt.Fprintln(s.out, taskBody)
	fmt.Fprintln(s.out, userBody)
	s.Audit.Infof("statistics displayed")
}

// persistTasks writes the registry back through the Store after a mutation.
func (s *Session) persistTasks() error {
	if err := s.Store.SaveTasks(s.Reg.All()); err != nil {
		s.fail("save tasks", err)
		return err
	}
	return nil
}

func (s *Session) fail(operation string, err error) {
	fmt.Fprintf(s.out, "  Error: failed to %s: %v\n", operation, err)
	s.Audit.Errorf("%s: %v", operation, err)
}

func (s *Session) printTask(t store.Task, withOwner bool) {
	fmt.Fprintf(s.out, "  %-20s | %d\n", "Task ID", t.ID)
	if withOwner {
		fmt.Fprintf(s.out, "  %-20s | %s\n", "Username", t.Owner)
	}
	fmt.Fprintf(s.out, "  %-20s | %s\n", "Task Title", t.Title)
	fmt.Fprintf(s.out, "  %-20s | %s\n", "Description", t.Description)
	fmt.Fprintf(s.out, "  %-20s | %s\n", "Due Date", t.Due.Format(store.DateLayout))
	fmt.Fprintf(s.out, "  %-20s | %s\n", "Assigned Date", t.Assigned.Format(store.DateLayout))
	fmt.Fprintf(s.out, "  %-20s | %s\n", "Status", t.Status())
	fmt.Fprintln(s.out, "  "+strings.Repeat("-", 76))
}

func (s *Session) header(title string) {
	bar := strings.Repeat("=", 80)
	fmt.Fprintf(s.out, "\n%s\n  %s\n%s\n", bar, title, bar)
}

func (s *Session) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) promptLower(label string) (string, bool) {
	input, ok := s.prompt(label)
	return strings.ToLower(input), ok
}

func (s *Session) promptNonEmpty(label, field string) (string, bool) {
	for {
		input, ok := s.prompt(label)
		if !ok {
			return "", false
		}
		if err := ValidateNonEmpty(input, field); err != nil {
			fmt.Fprintf(s.out, "  Error: %v\n", err)
			continue
		}
		return input, true
	}
}

func statusWord(complete bool) string {
	if complete {
		return "Complete"
	}
	return "Incomplete"
}
