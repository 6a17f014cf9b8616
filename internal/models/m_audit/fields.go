package m_audit

// Field name constants for the audit_entries table.
const (
	TableName = "audit_entries"

	TxID       = "tx_id"
	Actor      = "actor"
	Action     = "action"
	ProductID  = "product_id"
	Subject    = "subject"
	Details    = "details"
	RecordedAt = "recorded_at"
)

// Columns lists every column of the audit_entries table in storage order.
func Columns() []string {
	return []string{
		TxID,
		Actor,
		Action,
		ProductID,
		Subject,
		Details,
		RecordedAt,
	}
}
