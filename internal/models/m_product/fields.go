package m_product

// Field name constants for the products table.
const (
	TableName = "products"

	ProductID     = "product_id"
	Manufacturer  = "manufacturer"
	CreatedAt     = "created_at"
	CurrentOwner  = "current_owner"
	CurrentStatus = "current_status"
	Verified      = "verified"
	UpdateCount   = "update_count"
)

// Columns lists every column of the products table in storage order.
func Columns() []string {
	return []string{
		ProductID,
		Manufacturer,
		CreatedAt,
		CurrentOwner,
		CurrentStatus,
		Verified,
		UpdateCount,
	}
}
