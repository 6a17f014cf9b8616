package query

// Condition represents a WHERE clause condition.
// Implementations render a SQL fragment for a given placeholder style
// and report the values bound to those placeholders, in order.
type Condition interface {
	// SQL returns the fragment and its bound values.
	// next yields a fresh placeholder each time it is called.
	SQL(next func() string) (string, []interface{})
}

// cmpCondition implements a binary comparison (field OP value).
type cmpCondition struct {
	field string
	op    string
	value interface{}
}

func (c *cmpCondition) SQL(next func() string) (string, []interface{}) {
	return c.field + " " + c.op + " " + next(), []interface{}{c.value}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("product_id", "P1") generates "product_id = @p0" for Spanner.
func Eq(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: "=", value: value}
}

// Gte creates a WHERE condition field >= value.
func Gte(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: ">=", value: value}
}

