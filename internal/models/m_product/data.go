package m_product

import "time"

// Data represents the database model for the products table.
type Data struct {
	ProductID     string    `spanner:"product_id"`
	Manufacturer  string    `spanner:"manufacturer"`
	CreatedAt     time.Time `spanner:"created_at"`
	CurrentOwner  string    `spanner:"current_owner"`
	CurrentStatus string    `spanner:"current_status"`
	Verified      bool      `spanner:"verified"`
	UpdateCount   int64     `spanner:"update_count"`
}

// Values returns the row values in Columns() order.
func (d *Data) Values() []interface{} {
	return []interface{}{
		d.ProductID,
		d.Manufacturer,
		d.CreatedAt,
		d.CurrentOwner,
		d.CurrentStatus,
		d.Verified,
		d.UpdateCount,
	}
}
