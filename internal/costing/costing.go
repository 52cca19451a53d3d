// Package costing derives unit prices, recipe material costs and product
// pricing from raw purchase data. Every function here is pure: callers pass a
// consistent snapshot and persist the results themselves.
package costing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity is returned by StrictUnitPrice when the purchase
	// quantity cannot produce a meaningful unit price.
	ErrInvalidQuantity = errors.New("invalid purchase quantity")

	// ErrUnresolvedIngredient reports recipe usages whose material no longer
	// resolves. Aggregate skips them; Aggregation.Err surfaces them.
	ErrUnresolvedIngredient = errors.New("unresolved ingredient")

	// ErrDegenerateMargin is returned when the profit margin leaves no room
	// for a finite suggested price.
	ErrDegenerateMargin = errors.New("degenerate profit margin")
)

// UnitPrice returns purchasePrice / purchaseQuantity, or 0 when the quantity
// is not positive.
func UnitPrice(purchasePrice, purchaseQuantity float64) float64 {
	if purchaseQuantity <= 0 {
		return 0
	}
	return purchasePrice / purchaseQuantity
}

// StrictUnitPrice is UnitPrice for callers that require a positive quantity.
func StrictUnitPrice(purchasePrice, purchaseQuantity float64) (float64, error) {
	if purchaseQuantity <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, purchaseQuantity)
	}
	return UnitPrice(purchasePrice, purchaseQuantity), nil
}
