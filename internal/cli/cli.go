// Package cli is the terminal surface: command parsing, the interactive
// role-gated menu, and the validated task selector. Core behavior lives in
// the store, registry and report packages.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/taskmgr/internal/audit"
	"github.com/amirbrooks/taskmgr/internal/config"
	"github.com/amirbrooks/taskmgr/internal/registry"
	"github.com/amirbrooks/taskmgr/internal/report"
	"github.com/amirbrooks/taskmgr/internal/store"
)

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taskmgr:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:           "taskmgr",
		Short:         "Role-gated task tracker on flat text files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(dataDir, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory holding the user, task, report and log files")
	cmd.AddCommand(newReportCmd(&dataDir))
	return cmd
}

func newReportCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Regenerate the task and user overview reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*dataDir)
			if err != nil {
				return err
			}
			st := store.New(storePaths(cfg))
			users, err := st.LoadUsers()
			if err != nil {
				return err
			}
			tasks, err := st.LoadTasks()
			if err != nil {
				return err
			}
			dir := registry.NewDirectory(users)
			reg := registry.New(dir, tasks)
			engine := &report.Engine{Store: st, Dir: dir, Reg: reg}
			if err := engine.Generate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reports written:\n  %s\n  %s\n",
				cfg.Path(cfg.TaskOverviewFile), cfg.Path(cfg.UserOverviewFile))
			return nil
		},
	}
}

func runInteractive(dataDir string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return err
	}
	st := store.New(storePaths(cfg))
	log, err := audit.Open(cfg.Path(cfg.LogFile))
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer log.Close()

	scanner := bufio.NewScanner(in)

	// Legacy two-field user records block a strict load; upgrade them first,
	// asking the operator for each missing role.
	migrated, err := migrateRoles(st, scanner, out)
	if err != nil {
		log.Errorf("role migration failed: %v", err)
		return err
	}
	if migrated > 0 {
		log.Infof("%d legacy user record(s) migrated to role format", migrated)
	}

	users, err := st.LoadUsers()
	if err != nil {
		log.Errorf("initial user load failed: %v", err)
		return err
	}
	tasks, err := st.LoadTasks()
	if err != nil {
		log.Errorf("initial task load failed: %v", err)
		return err
	}
	dir := registry.NewDirectory(users)
	reg := registry.New(dir, tasks)

	session := NewSession(st, dir, reg, log, in, out)
	session.in = scanner
	return session.Run()
}

func migrateRoles(st *store.Store, in *bufio.Scanner, out io.Writer) (int, error) {
	return st.MigrateUserRoles(func(username string) bool {
		for {
			fmt.Fprintf(out, "User %q has no role assigned.\n  1 - Admin\n  2 - Non-Admin\nEnter your choice (1 or 2): ", username)
			if !in.Scan() {
				return false
			}
			switch in.Text() {
			case "1":
				return true
			case "2":
				return false
			default:
				fmt.Fprintln(out, "Error: invalid choice, enter 1 or 2.")
			}
		}
	})
}

func storePaths(cfg config.Config) store.Paths {
	return store.Paths{
		UserFile:     cfg.Path(cfg.UserFile),
		TaskFile:     cfg.Path(cfg.TaskFile),
		TaskOverview: cfg.Path(cfg.TaskOverviewFile),
		UserOverview: cfg.Path(cfg.UserOverviewFile),
	}
}

func defaultDataDir() string {
	if env := os.Getenv("TASKMGR_DATA"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".taskmgr"
	}
	return filepath.Join(home, ".taskmgr")
}
