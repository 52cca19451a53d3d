package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaterialSnapshot is the slice of a material that recipe costing reads.
type MaterialSnapshot struct {
	ID        int64
	Name      string
	UnitPrice float64
}

// Usage pairs a material with the quantity one recipe consumes. A nil
// Material means the reference could not be resolved.
type Usage struct {
	MaterialID int64
	Material   *MaterialSnapshot
	Quantity   float64
}

// Aggregation is the result of summing a recipe's usages.
type Aggregation struct {
	MaterialCost float64
	// Unresolved holds the material IDs of skipped usages, in input order.
	Unresolved []int64
}

// Err returns nil when every usage resolved.
func (a Aggregation) Err() error {
	if len(a.Unresolved) == 0 {
		return nil
	}
	return fmt.Errorf("%w: material ids %v", ErrUnresolvedIngredient, a.Unresolved)
}

// Aggregate sums quantity × unit price over all resolvable usages.
//
// The sum is carried out in decimal so the result does not depend on the
// order in which usages are supplied.
func Aggregate(usages []Usage) Aggregation {
	var agg Aggregation
	total := decimal.Zero
	for _, u := range usages {
		if u.Material == nil {
			agg.Unresolved = append(agg.Unresolved, u.MaterialID)
			continue
		}
		line := decimal.NewFromFloat(u.Material.UnitPrice).Mul(decimal.NewFromFloat(u.Quantity))
		total = total.Add(line)
	}
	agg.MaterialCost = total.InexactFloat64()
	return agg
}

// LineCost is the cost of a single usage; 0 when unresolved.
func LineCost(u Usage) float64 {
	if u.Material == nil {
		return 0
	}
	return u.Material.UnitPrice * u.Quantity
}
