package costing

import (
	"errors"
	"testing"
)

func TestAggregate_SumsResolvedUsages(t *testing.T) {
	flour := &MaterialSnapshot{ID: 1, Name: "Flour", UnitPrice: 0.3}
	butter := &MaterialSnapshot{ID: 2, Name: "Butter", UnitPrice: 1.8}

	agg := Aggregate([]Usage{
		{MaterialID: 1, Material: flour, Quantity: 250},
		{MaterialID: 2, Material: butter, Quantity: 20},
	})

	nearlyEqual(t, "materialCost", agg.MaterialCost, 111)
	if err := agg.Err(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	usages := []Usage{
		{MaterialID: 1, Material: &MaterialSnapshot{ID: 1, UnitPrice: 0.1}, Quantity: 0.3},
		{MaterialID: 2, Material: &MaterialSnapshot{ID: 2, UnitPrice: 1e8}, Quantity: 3},
		{MaterialID: 3, Material: &MaterialSnapshot{ID: 3, UnitPrice: 0.7}, Quantity: 0.1},
		{MaterialID: 4, Material: &MaterialSnapshot{ID: 4, UnitPrice: 3.3}, Quantity: 1.1},
	}
	reversed := make([]Usage, len(usages))
	for i := range usages {
		reversed[len(usages)-1-i] = usages[i]
	}

	forward := Aggregate(usages).MaterialCost
	backward := Aggregate(reversed).MaterialCost
	if forward != backward {
		t.Fatalf("aggregate depends on order: %v vs %v", forward, backward)
	}
}

func TestAggregate_SkipsUnresolvedAndReportsThem(t *testing.T) {
	sugar := &MaterialSnapshot{ID: 5, Name: "Sugar", UnitPrice: 0.2}

	agg := Aggregate([]Usage{
		{MaterialID: 5, Material: sugar, Quantity: 100},
		{MaterialID: 9, Quantity: 40},
	})

	nearlyEqual(t, "materialCost", agg.MaterialCost, 20)
	if len(agg.Unresolved) != 1 || agg.Unresolved[0] != 9 {
		t.Fatalf("unexpected unresolved ids: %v", agg.Unresolved)
	}
	if err := agg.Err(); !errors.Is(err, ErrUnresolvedIngredient) {
		t.Fatalf("expected ErrUnresolvedIngredient, got %v", err)
	}
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)
	if agg.MaterialCost != 0 || agg.Err() != nil {
		t.Fatalf("unexpected aggregation: %+v", agg)
	}
}

func TestLineCost(t *testing.T) {
	nearlyEqual(t, "resolved", LineCost(Usage{Material: &MaterialSnapshot{UnitPrice: 2.5}, Quantity: 4}), 10)
	nearlyEqual(t, "unresolved", LineCost(Usage{MaterialID: 3, Quantity: 4}), 0)
}
