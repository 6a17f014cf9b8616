package m_role

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Field name constants for the role_assignments table.
const (
	TableName = "role_assignments"

	Identity   = "identity"
	Role       = "role"
	AssignedBy = "assigned_by"
	AssignedAt = "assigned_at"
)

// Columns lists every column of the role_assignments table in storage order.
func Columns() []string {
	return []string{Identity, Role, AssignedBy, AssignedAt}
}

// Data represents one registry row.
type Data struct {
	Identity   string    `spanner:"identity"`
	Role       string    `spanner:"role"`
	AssignedBy string    `spanner:"assigned_by"`
	AssignedAt time.Time `spanner:"assigned_at"`
}

// Values returns the row values in Columns() order.
func (d *Data) Values() []interface{} {
	return []interface{}{d.Identity, d.Role, d.AssignedBy, d.AssignedAt}
}

// Model provides type-safe operations on the role_assignments table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a mutation that overwrites the identity's assignment.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(TableName, Columns(), data.Values())
}
