package m_ledger_meta

import (
	"cloud.google.com/go/spanner"
)

// Field name constants for the single-row ledger_meta table.
const (
	TableName = "ledger_meta"

	MetaID     = "meta_id"
	Owner      = "owner"
	AuditCount = "audit_count"
)

// RowID is the primary key of the only row.
const RowID int64 = 1

// Data holds the system owner and the global audit counter.
type Data struct {
	MetaID     int64  `spanner:"meta_id"`
	Owner      string `spanner:"owner"`
	AuditCount int64  `spanner:"audit_count"`
}

// Model provides type-safe operations on the ledger_meta table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates the meta row at bootstrap.
func (m *Model) InsertMut(owner string) *spanner.Mutation {
	return spanner.Insert(TableName,
		[]string{MetaID, Owner, AuditCount},
		[]interface{}{RowID, owner, int64(0)},
	)
}

// AdvanceAuditMut stores the next audit counter value.
func (m *Model) AdvanceAuditMut(next int64) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{MetaID, AuditCount},
		[]interface{}{RowID, next},
	)
}

// Key returns the primary key of the meta row.
func Key() spanner.Key {
	return spanner.Key{RowID}
}
