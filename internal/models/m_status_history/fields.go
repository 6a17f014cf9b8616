package m_status_history

// Table name constant
const TableName = "status_history"

// Field name constants for type-safe database access
const (
	ProductID = "product_id"
	Sequence  = "sequence"
	Status    = "status"
	ChangedAt = "changed_at"
	ChangedBy = "changed_by"
	Reason    = "reason"
	Location  = "location"
)

// Columns lists every column of the status_history table in storage order.
func Columns() []string {
	return []string{
		ProductID,
		Sequence,
		Status,
		ChangedAt,
		ChangedBy,
		Reason,
		Location,
	}
}
