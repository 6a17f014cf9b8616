package m_audit

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the audit_entries table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation appending an audit entry.
// The table is append-only: there is no update or delete mutation.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns(), data.Values())
}
