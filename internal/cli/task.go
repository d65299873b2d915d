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

func (a *app) newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		a.newTaskAddCmd(),
		&cobra.Command{
			Use:   "show <task-id>",
			Short: "Show a task and its subtree",
			Args:  cobra.ExactArgs(1),
			RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
				n, err := e.GetTask(ctx, owner, args[0])
				if err != nil {
					return nil, nil, err
				}
				return n, nodeText("", n), nil
			}),
		},
		a.newTaskUpdateCmd(),
		a.newTaskMoveCmd(),
		a.newReorderCmd(types.DirectionUp),
		a.newReorderCmd(types.DirectionDown),
		&cobra.Command{
			Use:   "delete <task-id>",
			Short: "Delete a task and its subtree",
			Args:  cobra.ExactArgs(1),
			RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
				n, err := e.DeleteTask(ctx, owner, args[0])
				if err != nil {
					return nil, nil, err
				}
				out := map[string]any{"id": args[0], "removed": n}
				return out, func(w io.Writer) { fmt.Fprintf(w, "deleted %d task(s)\n", n) }, nil
			}),
		},
	)
	return cmd
}

func (a *app) newTaskAddCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "add <list-id> <title>...",
		Short: "Add a task to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
			n, err := e.CreateTask(ctx, owner, args[0], parent, strings.Join(args[1:], " "))
			if err != nil {
				return nil, nil, err
			}
			return n, func(w io.Writer) { fmt.Fprintf(w, "created task %s\n", n.ID) }, nil
		}),
	}
	cmd.Flags().StringVar(&parent, "parent", "", "parent task id")
	return cmd
}

func (a *app) newTaskUpdateCmd() *cobra.Command {
	var (
		title     string
		completed bool
		collapsed bool
	)
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change a task's title or flags",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark completed (--completed=false to reopen)")
	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "collapse the subtree (--collapsed=false to expand)")
	cmd.RunE = a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
		var patch types.TaskPatch
		if cmd.Flags().Changed("title") {
			patch.Title = &title
		}
		if cmd.Flags().Changed("completed") {
			patch.Completed = &completed
		}
		if cmd.Flags().Changed("collapsed") {
			patch.Collapsed = &collapsed
		}
		n, err := e.UpdateTask(ctx, owner, args[0], patch)
		if err != nil {
			return nil, nil, err
		}
		return n, nodeText("updated task "+n.ID, n), nil
	})
	return cmd
}

func (a *app) newTaskMoveCmd() *cobra.Command {
	var (
		list   string
		parent string
		root   bool
	)
	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to another parent or list",
		Long: "Move a task and its subtree. Without --parent or --root the current\n" +
			"parent is kept. The task is appended after its new siblings.",
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&list, "list", "", "target list id (default: current list)")
	cmd.Flags().StringVar(&parent, "parent", "", "new parent task id")
	cmd.Flags().BoolVar(&root, "root", false, "make the task a root of its list")
	cmd.MarkFlagsMutuallyExclusive("parent", "root")
	cmd.RunE = a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
		target := types.MoveTarget{ListID: list, Parent: types.KeepParent()}
		switch {
		case root:
			target.Parent = types.RootParent()
		case cmd.Flags().Changed("parent"):
			target.Parent = types.Parent(parent)
		}
		n, err := e.MoveTask(ctx, owner, args[0], target)
		if err != nil {
			return nil, nil, err
		}
		return n, nodeText("moved task "+n.ID, n), nil
	})
	return cmd
}

func (a *app) newReorderCmd(dir types.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   string(dir) + " <task-id>",
		Short: fmt.Sprintf("Move a task one step %s among its siblings", dir),
		Args:  cobra.ExactArgs(1),
		RunE: a.runAction(func(ctx context.Context, e *engine.Engine, owner string, args []string) (any, func(io.Writer), error) {
			n, err := e.ReorderTask(ctx, owner, args[0], dir)
			if err != nil {
				return nil, nil, err
			}
			return n, func(w io.Writer) { fmt.Fprintf(w, "task %s now at position %d\n", n.ID, n.Position) }, nil
		}),
	}
}
