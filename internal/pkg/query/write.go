package query

import (
	"sort"
	"strings"
)

// InsertSQL renders a single-row INSERT for a database/sql dialect.
func InsertSQL(dialect Dialect, table string, columns []string, values []interface{}) (string, []interface{}) {
	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = placeholder(dialect, i)
	}
	sql := "INSERT INTO " + table +
		" (" + strings.Join(columns, ", ") + ")" +
		" VALUES (" + strings.Join(marks, ", ") + ")"
	return sql, append([]interface{}(nil), values...)
}

// UpsertSQL renders an INSERT that overwrites the non-key columns when the key already exists.
// SQLite and PostgreSQL share the ON CONFLICT syntax.
func UpsertSQL(dialect Dialect, table string, keys []string, columns []string, values []interface{}) (string, []interface{}) {
	sql, args := InsertSQL(dialect, table, columns, values)

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var sets []string
	for _, col := range columns {
		if !isKey[col] {
			sets = append(sets, col+" = excluded."+col)
		}
	}

	sql += " ON CONFLICT (" + strings.Join(keys, ", ") + ")"
	if len(sets) == 0 {
		return sql + " DO NOTHING", args
	}
	return sql + " DO UPDATE SET " + strings.Join(sets, ", "), args
}

// UpdateSQL renders an UPDATE of the given columns on rows matching every condition.
// Columns are written in sorted order so statements are deterministic.
func UpdateSQL(dialect Dialect, table string, set map[string]interface{}, where ...Condition) (string, []interface{}) {
	names := make([]string, 0, len(set))
	for col := range set {
		names = append(names, col)
	}
	sort.Strings(names)

	args := make([]interface{}, 0, len(set)+len(where))
	next := func() string { return placeholder(dialect, len(args)) }

	assignments := make([]string, len(names))
	for i, col := range names {
		assignments[i] = col + " = " + next()
		args = append(args, set[col])
	}

	var sb strings.Builder
	sb.WriteString("UPDATE " + table + " SET " + strings.Join(assignments, ", "))

	if len(where) > 0 {
		parts := make([]string, 0, len(where))
		for _, condition := range where {
			fragment, values := condition.SQL(next)
			parts = append(parts, fragment)
			args = append(args, values...)
		}
		sb.WriteString(" WHERE " + strings.Join(parts, " AND "))
	}

	return sb.String(), args
}
