package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tasktree/internal/engine"
	"github.com/mesh-intelligence/tasktree/internal/forest"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

func (a *app) newExportCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write lists and tasks to JSONL files",
		Long:  "Write lists.jsonl and tasks.jsonl into dir. Only the current owner's data is exported unless --all is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner := ""
			if !all {
				var err error
				if owner, err = a.requireOwner(); err != nil {
					return err
				}
			}
			store, err := a.attach()
			if err != nil {
				return err
			}
			defer store.Detach()

			stats, err := store.Export(cmd.Context(), args[0], owner)
			if err != nil {
				return sysError(fmt.Errorf("export: %w", err))
			}
			a.log.Info("exported", "dir", args[0], "lists", stats.Lists, "tasks", stats.Tasks)
			return a.emitStats(cmd, "exported", stats)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "export every owner's data")
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load lists and tasks from JSONL files",
		Long: "Upsert the records in dir's lists.jsonl and tasks.jsonl in one transaction.\n" +
			"Malformed records and records that would change a list's owner are skipped.\n" +
			"If the result would break a forest invariant nothing is imported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.attach()
			if err != nil {
				return err
			}
			defer store.Detach()

			stats, err := store.Import(cmd.Context(), args[0])
			if types.IsUserError(err) {
				return err
			}
			if err != nil {
				return sysError(fmt.Errorf("import: %w", err))
			}
			if stats.Skipped > 0 {
				a.log.Warn("skipped records", "dir", args[0], "skipped", stats.Skipped)
			}
			return a.emitStats(cmd, "imported", stats)
		},
	}
}

func (a *app) emitStats(cmd *cobra.Command, verb string, stats types.SnapshotStats) error {
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d list(s), %d task(s)", verb, stats.Lists, stats.Tasks)
	if stats.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", skipped %d record(s)", stats.Skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

// checkResult is the JSON shape of the check command.
type checkResult struct {
	OK         bool               `json:"ok"`
	Violations []forest.Violation `json:"violations"`
}

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the forest invariants of the owner's lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine, owner string) error {
				vs, err := e.Check(cmd.Context(), owner)
				if err != nil {
					return err
				}
				res := checkResult{OK: len(vs) == 0, Violations: vs}
				if a.flags.jsonMode {
					if err := printJSON(cmd.OutOrStdout(), res); err != nil {
						return err
					}
				} else if res.OK {
					fmt.Fprintln(cmd.OutOrStdout(), "ok")
				} else {
					for _, v := range vs {
						fmt.Fprintln(cmd.OutOrStdout(), v)
					}
				}
				if !res.OK {
					return userError("%d invariant violation(s)", len(vs))
				}
				return nil
			})
		},
	}
}
