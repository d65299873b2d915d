package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

var _ types.ListTable = (*listsTable)(nil)

var listColumns = []string{"list_id", "name", "owner_id", "created_at"}

// listFilterColumns maps accepted Fetch filter keys to columns.
var listFilterColumns = map[string]string{
	types.FilterOwnerID: "owner_id",
}

// listsTable implements types.ListTable inside a transaction.
type listsTable struct {
	t *txn
}

func (lt *listsTable) Get(id string) (*types.List, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	query, args, err := lt.t.sb.selectFrom(types.ListsTable, listColumns).
		Where(squirrel.Eq{"list_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}
	l, err := scanList(lt.t.queryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting list %s: %w", id, err)
	}
	return l, nil
}

func (lt *listsTable) Set(id string, l *types.List) (string, error) {
	if l == nil || l.OwnerID == "" {
		return "", types.ErrInvalidData
	}
	if id == "" {
		newID, err := generateUUID()
		if err != nil {
			return "", err
		}
		id = newID
	}
	l.ListID = id
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	query, args, err := lt.t.sb.upsert(types.ListsTable, "list_id", listColumns,
		[]any{l.ListID, l.Name, l.OwnerID, formatTime(l.CreatedAt)})
	if err != nil {
		return "", fmt.Errorf("building list upsert: %w", err)
	}
	if _, err := lt.t.exec(query, args...); err != nil {
		return "", fmt.Errorf("persisting list %s: %w", id, err)
	}
	return id, nil
}

func (lt *listsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	query, args, err := lt.t.sb.deleteWhere(types.ListsTable, squirrel.Eq{"list_id": id})
	if err != nil {
		return fmt.Errorf("building list delete: %w", err)
	}
	res, err := lt.t.exec(query, args...)
	if err != nil {
		return fmt.Errorf("deleting list %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting list %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("list %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func (lt *listsTable) Fetch(filter types.Filter) ([]*types.List, error) {
	where, err := buildWhere(filter, listFilterColumns)
	if err != nil {
		return nil, err
	}
	query, args, err := lt.t.sb.selectFrom(types.ListsTable, listColumns).
		Where(where).OrderBy("created_at", "list_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}
	rows, err := lt.t.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching lists: %w", err)
	}
	defer rows.Close()

	out := []*types.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(s rowScanner) (*types.List, error) {
	var l types.List
	var created string
	if err := s.Scan(&l.ListID, &l.Name, &l.OwnerID, &created); err != nil {
		return nil, err
	}
	ts, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of list %s: %w", l.ListID, err)
	}
	l.CreatedAt = ts
	return &l, nil
}

// buildWhere converts a Filter into squirrel.Eq, rejecting unknown keys and
// non-string values. An empty string parent_id selects NULL.
func buildWhere(filter types.Filter, allowed map[string]string) (squirrel.Eq, error) {
	where := squirrel.Eq{}
	for k, v := range filter {
		col, ok := allowed[k]
		if !ok {
			return nil, fmt.Errorf("filter key %q: %w", k, types.ErrInvalidFilter)
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("filter %q has type %T: %w", k, v, types.ErrInvalidFilter)
		}
		if k == types.FilterParentID && s == "" {
			where[col] = nil
			continue
		}
		where[col] = s
	}
	return where, nil
}
