package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit writes v as JSON in --json mode, otherwise calls text.
func (a *app) emit(w io.Writer, v any, text func(io.Writer)) error {
	if a.flags.jsonMode {
		return printJSON(w, v)
	}
	text(w)
	return nil
}

// printList renders a list heading followed by its task trees.
func printList(w io.Writer, l *types.ListView, all bool) {
	fmt.Fprintf(w, "%s  (%s)\n", l.Name, l.ID)
	if len(l.Tasks) == 0 {
		fmt.Fprintln(w, "  (no tasks)")
		return
	}
	for _, n := range l.Tasks {
		printNode(w, n, 1, all)
	}
}

// printNode renders a task subtree, one task per line. Children of
// collapsed tasks are hidden unless all is set.
func printNode(w io.Writer, n *types.TaskNode, depth int, all bool) {
	box := "[ ]"
	if n.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%s%s %s  (%s)", strings.Repeat("  ", depth), box, n.Title, n.ID)
	hidden := n.Collapsed && !all && len(n.Children) > 0
	if hidden {
		line += fmt.Sprintf(" +%d hidden", n.Size()-1)
	}
	fmt.Fprintln(w, line)
	if hidden {
		return
	}
	for _, c := range n.Children {
		printNode(w, c, depth+1, all)
	}
}
