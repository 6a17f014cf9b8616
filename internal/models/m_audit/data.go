package m_audit

import "time"

// Data represents the database model for the audit_entries table.
// ProductID and Subject hold "" when not applicable.
type Data struct {
	TxID       int64     `spanner:"tx_id"`
	Actor      string    `spanner:"actor"`
	Action     string    `spanner:"action"`
	ProductID  string    `spanner:"product_id"`
	Subject    string    `spanner:"subject"`
	Details    string    `spanner:"details"`
	RecordedAt time.Time `spanner:"recorded_at"`
}

// Values returns the row values in Columns() order.
func (d *Data) Values() []interface{} {
	return []interface{}{
		d.TxID,
		d.Actor,
		d.Action,
		d.ProductID,
		d.Subject,
		d.Details,
		d.RecordedAt,
	}
}
