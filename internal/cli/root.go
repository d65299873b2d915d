// Package cli implements the tasktree command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	owner     string
	logLevel  string
	jsonMode  bool
}

// app carries per-invocation state so commands can run in-process in tests.
type app struct {
	flags    rootFlags
	settings settings
	log      *slog.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// skipConfig marks commands that must not touch the config directory.
const skipConfig = "skip-config"

// NewRootCmd creates the top-level "tasktree" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newApp(os.Stdout, os.Stderr).rootCmd()
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasktree",
		Short: "Nested task lists with ordered subtasks",
		Long: "tasktree keeps per-owner lists of task trees: create, nest, move,\n" +
			"reorder and delete tasks while the forest stays acyclic and ordered.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return a.load()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env TASKTREE_CONFIG_DIR)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (env TASKTREE_DATA_DIR)")
	pf.StringVar(&a.flags.owner, "owner", "", "owner id to act as (env TASKTREE_OWNER)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		a.newVersionCmd(),
		a.newInitCmd(),
		a.newServeCmd(),
		a.newListsCmd(),
		a.newListCmd(),
		a.newTaskCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newCheckCmd(),
	)
	return root
}

// Execute runs the root command with os.Args and exits with the
// appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := newApp(stdout, stderr).rootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintf(stderr, "error: %s\n", err)
	return exitCode(err)
}

// cliError attaches an exit code to an error.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

// sysError marks err as an environment or store failure (exit 2).
func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: exitSysError, err: err}
}

// userError marks err as caused by the invocation (exit 1).
func userError(format string, args ...any) error {
	return &cliError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

// exitCode maps an error to a process exit code. Typed engine failures
// other than internal ones are user errors; unclassified errors come from
// cobra argument parsing and are user errors too.
func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	if types.IsUserError(err) {
		return exitUserError
	}
	if errors.Is(err, types.ErrInternal) {
		return exitSysError
	}
	return exitUserError
}
