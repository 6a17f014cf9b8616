package query

import (
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

// Dialect selects the placeholder style of the generated SQL.
type Dialect int

const (
	// Spanner uses named parameters (@p0, @p1, ...).
	Spanner Dialect = iota
	// SQLite uses positional question marks.
	SQLite
	// Postgres uses numbered parameters ($1, $2, ...).
	Postgres
)

// Builder constructs SQL SELECT queries.
// It is immutable: every method returns a modified copy.
type Builder struct {
	table        string
	selectCols   []string
	whereClauses []Condition
	orderBy      []orderTerm
	limitVal     int64
}

type orderTerm struct {
	column    string
	direction Direction
}

// From creates a new Builder for the specified table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select specifies the columns to retrieve.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

// Where adds a WHERE condition.
// Multiple calls are combined with AND logic.
func (b *Builder) Where(condition Condition) *Builder {
	nb := b.clone()
	nb.whereClauses = append(nb.whereClauses, condition)
	return nb
}

// OrderBy adds a sort column. Multiple calls sort by each column in turn.
func (b *Builder) OrderBy(column string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderTerm{column: column, direction: direction})
	return nb
}

// Limit sets the maximum number of rows to return. Zero means no limit.
func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limitVal = limit
	return nb
}

// Build constructs a spanner.Statement with named parameters.
func (b *Builder) Build() spanner.Statement {
	sql, args := b.render(Spanner)
	params := make(map[string]interface{}, len(args))
	for i, arg := range args {
		params[fmt.Sprintf("p%d", i)] = arg
	}
	return spanner.Statement{SQL: sql, Params: params}
}

// BuildSQL constructs a database/sql query and its positional arguments.
func (b *Builder) BuildSQL(dialect Dialect) (string, []interface{}) {
	return b.render(dialect)
}

func (b *Builder) render(dialect Dialect) (string, []interface{}) {
	var sql strings.Builder
	var args []interface{}

	next := func() string { return placeholder(dialect, len(args)) }

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	if len(b.whereClauses) > 0 {
		parts := make([]string, 0, len(b.whereClauses))
		for _, condition := range b.whereClauses {
			// next() reads len(args), so each fragment's values are appended before the next renders.
			fragment, values := condition.SQL(next)
			parts = append(parts, fragment)
			args = append(args, values...)
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orderBy) > 0 {
		cols := make([]string, len(b.orderBy))
		for i, term := range b.orderBy {
			if term.direction == Desc {
				cols[i] = term.column + " DESC"
			} else {
				cols[i] = term.column + " ASC"
			}
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(cols, ", "))
	}

	if b.limitVal > 0 {
		sql.WriteString(" LIMIT ")
		sql.WriteString(next())
		args = append(args, b.limitVal)
	}

	return sql.String(), args
}

// clone creates a copy of the builder for immutability.
func (b *Builder) clone() *Builder {
	return &Builder{
		table:        b.table,
		selectCols:   append([]string(nil), b.selectCols...),
		whereClauses: append([]Condition(nil), b.whereClauses...),
		orderBy:      append([]orderTerm(nil), b.orderBy...),
		limitVal:     b.limitVal,
	}
}

// placeholder returns the parameter marker for the i-th (zero-based) bound value.
func placeholder(dialect Dialect, i int) string {
	switch dialect {
	case Postgres:
		return fmt.Sprintf("$%d", i+1)
	case SQLite:
		return "?"
	default:
		return fmt.Sprintf("@p%d", i)
	}
}
