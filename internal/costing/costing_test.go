package costing

import (
	"errors"
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestUnitPrice_RoundTripsPurchasePrice(t *testing.T) {
	cases := []struct{ price, qty float64 }{
		{1200, 1000},
		{398, 3},
		{0.01, 7},
		{99999, 0.5},
	}
	for _, tc := range cases {
		got := UnitPrice(tc.price, tc.qty)
		nearlyEqual(t, "unitPrice*qty", got*tc.qty, tc.price)
	}
}

func TestUnitPrice_NonPositiveQuantityIsZero(t *testing.T) {
	for _, qty := range []float64{0, -1, -0.001} {
		if got := UnitPrice(500, qty); got != 0 {
			t.Fatalf("UnitPrice(500, %v) = %v, want 0", qty, got)
		}
	}
}

func TestStrictUnitPrice(t *testing.T) {
	got, err := StrictUnitPrice(250, 500)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "unitPrice", got, 0.5)

	if _, err := StrictUnitPrice(250, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}
