package sqlite

import (
	"github.com/Masterminds/squirrel"
)

// statementBuilder renders SQL with question-mark placeholders for SQLite.
type statementBuilder struct {
	sq squirrel.StatementBuilderType
}

func newStatementBuilder() statementBuilder {
	return statementBuilder{sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)}
}

// selectFrom starts a SELECT of columns from table.
func (b statementBuilder) selectFrom(table string, columns []string) squirrel.SelectBuilder {
	return b.sq.Select(columns...).From(table)
}

// upsert builds an INSERT that replaces every non-key column when the
// primary key already exists.
func (b statementBuilder) upsert(table, key string, columns []string, values []any) (string, []any, error) {
	suffix := "ON CONFLICT(" + key + ") DO UPDATE SET "
	first := true
	for _, c := range columns {
		if c == key {
			continue
		}
		if !first {
			suffix += ", "
		}
		suffix += c + " = excluded." + c
		first = false
	}
	return b.sq.Insert(table).Columns(columns...).Values(values...).Suffix(suffix).ToSql()
}

// deleteWhere builds a DELETE restricted by cond.
func (b statementBuilder) deleteWhere(table string, cond squirrel.Sqlizer) (string, []any, error) {
	return b.sq.Delete(table).Where(cond).ToSql()
}
