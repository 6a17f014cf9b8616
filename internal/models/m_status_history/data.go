package m_status_history

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a status history row in the database.
type Data struct {
	ProductID string    `spanner:"product_id"`
	Sequence  int64     `spanner:"sequence"`
	Status    string    `spanner:"status"`
	ChangedAt time.Time `spanner:"changed_at"`
	ChangedBy string    `spanner:"changed_by"`
	Reason    string    `spanner:"reason"`
	Location  string    `spanner:"location"`
}

// Values returns the row values in Columns() order.
func (d *Data) Values() []interface{} {
	return []interface{}{
		d.ProductID,
		d.Sequence,
		d.Status,
		d.ChangedAt,
		d.ChangedBy,
		d.Reason,
		d.Location,
	}
}

// Model provides type-safe database operations for status history.
type Model struct{}

// NewModel creates a new status history model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation appending a history row. Rows are never updated.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns(), data.Values())
}

// Key returns the primary key of a history row.
func Key(productID string, sequence int64) spanner.Key {
	return spanner.Key{productID, sequence}
}
