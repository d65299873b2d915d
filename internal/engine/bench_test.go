package engine

import (
	"fmt"
	"testing"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// seedChain creates a list holding a single chain of depth tasks and returns
// the list id and the task ids from root to leaf.
func seedChain(b *testing.B, e *Engine, depth int) (string, []string) {
	b.Helper()
	l, err := e.CreateList(ctx, alice, "bench")
	if err != nil {
		b.Fatalf("create list: %v", err)
	}
	ids := make([]string, 0, depth)
	parent := ""
	for i := 0; i < depth; i++ {
		n, err := e.CreateTask(ctx, alice, l.ID, parent, fmt.Sprintf("task %d", i))
		if err != nil {
			b.Fatalf("create task %d: %v", i, err)
		}
		ids = append(ids, n.ID)
		parent = n.ID
	}
	return l.ID, ids
}

func BenchmarkCreateTask(b *testing.B) {
	e := New(attach(b))
	l, err := e.CreateList(ctx, alice, "bench")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.CreateTask(ctx, alice, l.ID, "", "task"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMoveCycleCheck moves the root of a deep chain under its leaf,
// which walks the whole chain and fails with a cycle.
func BenchmarkMoveCycleCheck(b *testing.B) {
	for _, depth := range []int{10, 100} {
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			e := New(attach(b))
			_, ids := seedChain(b, e, depth)
			target := types.MoveTarget{Parent: types.Parent(ids[len(ids)-1])}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := e.MoveTask(ctx, alice, ids[0], target); err == nil {
					b.Fatal("expected cycle")
				}
			}
		})
	}
}

func BenchmarkListLists(b *testing.B) {
	for _, size := range []int{100, 1000} {
		b.Run(fmt.Sprintf("tasks=%d", size), func(b *testing.B) {
			e := New(attach(b))
			l, err := e.CreateList(ctx, alice, "bench")
			if err != nil {
				b.Fatal(err)
			}
			var roots []string
			for i := 0; i < size; i++ {
				parent := ""
				if i%10 != 0 {
					parent = roots[len(roots)-1]
				}
				n, err := e.CreateTask(ctx, alice, l.ID, parent, "task")
				if err != nil {
					b.Fatal(err)
				}
				if parent == "" {
					roots = append(roots, n.ID)
				}
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := e.ListLists(ctx, alice); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
