package domain

import "unicode/utf8"

// Text bounds, counted in Unicode code points.
const (
	MaxProductIDLength = 36
	MaxLocationLength  = 50
	MaxReasonLength    = 50
	MaxDetailsLength   = 50
	MaxActionLength    = 12
)

// Identity is the opaque caller token supplied by the host. The zero value is the anonymous caller.
type Identity string

func (id Identity) IsZero() bool   { return id == "" }
func (id Identity) String() string { return string(id) }

// ProductID uniquely identifies a registered product.
type ProductID string

// NewProductID validates s as a product identifier.
func NewProductID(s string) (ProductID, error) {
	if !withinBounds(s, MaxProductIDLength) {
		return "", ErrInvalidProductID
	}
	return ProductID(s), nil
}

func (id ProductID) String() string { return string(id) }

// Location is where a status change happened.
type Location string

// NewLocation validates s as a location.
func NewLocation(s string) (Location, error) {
	if !withinBounds(s, MaxLocationLength) {
		return "", ErrInvalidLocation
	}
	return Location(s), nil
}

// Reason explains a status change.
type Reason string

// NewReason validates s as a reason.
func NewReason(s string) (Reason, error) {
	if !withinBounds(s, MaxReasonLength) {
		return "", ErrInvalidReason
	}
	return Reason(s), nil
}

func withinBounds(s string, max int) bool {
	if !utf8.ValidString(s) {
		return false
	}
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= max
}
