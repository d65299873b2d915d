package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tasktree/internal/engine"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

func (a *app) newListsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show all lists with their task trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine, owner string) error {
				lists, err := e.ListLists(cmd.Context(), owner)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), lists, func(w io.Writer) {
					if len(lists) == 0 {
						fmt.Fprintln(w, "no lists")
					}
					for i, l := range lists {
						if i > 0 {
							fmt.Fprintln(w)
						}
						printList(w, l, all)
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "expand collapsed tasks")
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage lists",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <list-id>",
			Short: "Show one list",
			Args:  cobra.ExactArgs(1),
			RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
				l, err := e.GetList(ctx, owner, args[0])
				if err != nil {
					return nil, nil, err
				}
				return l, func(w io.Writer) { printList(w, l, true) }, nil
			}),
		},
		&cobra.Command{
			Use:   "create <name>...",
			Short: "Create a list",
			Args:  cobra.MinimumNArgs(1),
			RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
				l, err := e.CreateList(ctx, owner, strings.Join(args, " "))
				if err != nil {
					return nil, nil, err
				}
				return l, func(w io.Writer) { fmt.Fprintf(w, "created list %s\n", l.ID) }, nil
			}),
		},
		&cobra.Command{
			Use:   "rename <list-id> <name>...",
			Short: "Rename a list",
			Args:  cobra.MinimumNArgs(2),
			RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
				l, err := e.RenameList(ctx, owner, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return nil, nil, err
				}
				return l, func(w io.Writer) { fmt.Fprintf(w, "renamed list %s to %q\n", l.ID, l.Name) }, nil
			}),
		},
		&cobra.Command{
			Use:   "delete <list-id>",
			Short: "Delete a list and all of its tasks",
			Args:  cobra.ExactArgs(1),
			RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
				n, err := e.DeleteList(ctx, owner, args[0])
				if err != nil {
					return nil, nil, err
				}
				out := map[string]any{"id": args[0], "removed_tasks": n}
				return out, func(w io.Writer) { fmt.Fprintf(w, "deleted list %s (%d tasks)\n", args[0], n) }, nil
			}),
		},
		&cobra.Command{
			Use:   "compact <list-id>",
			Short: "Renumber sibling positions to 0..n-1",
			Args:  cobra.ExactArgs(1),
			RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
				n, err := e.CompactPositions(ctx, owner, args[0])
				if err != nil {
					return nil, nil, err
				}
				out := map[string]any{"id": args[0], "changed": n}
				return out, func(w io.Writer) { fmt.Fprintf(w, "compacted list %s (%d tasks renumbered)\n", args[0], n) }, nil
			}),
		},
	)
	return cmd
}

// action runs one engine call and returns the JSON value and its text
// rendering.
type action func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error)

// runAction adapts an action into a cobra RunE.
func (a *app) runAction(fn action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return a.withEngine(func(e *engine.Engine, owner string) error {
			v, text, err := fn(cmd.Context(), e, owner, args)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), v, text)
		})
	}
}

// nodeText renders a task subtree with a leading message.
func nodeText(msg string, n *types.TaskNode) func(io.Writer) {
	return func(w io.Writer) {
		if msg != "" {
			fmt.Fprintln(w, msg)
		}
		printNode(w, n, 0, true)
	}
}
