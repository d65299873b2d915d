package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// timeLayout is the on-disk timestamp format. The fraction is fixed width
// so that text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// txn implements types.Tx over one database transaction.
type txn struct {
	ctx   context.Context
	tx    *sql.Tx
	sb    statementBuilder
	lists *listsTable
	tasks *tasksTable
}

func newTxn(ctx context.Context, tx *sql.Tx, sb statementBuilder) *txn {
	t := &txn{ctx: ctx, tx: tx, sb: sb}
	t.lists = &listsTable{t: t}
	t.tasks = &tasksTable{t: t}
	return t
}

func (t *txn) Lists() types.ListTable { return t.lists }
func (t *txn) Tasks() types.TaskTable { return t.tasks }

func (t *txn) exec(query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(t.ctx, query, args...)
}

func (t *txn) query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(t.ctx, query, args...)
}

func (t *txn) queryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(t.ctx, query, args...)
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
