package costing

import (
	"fmt"
	"math"
)

// DefaultMonthlyProduction is used when the caller supplies no production count.
const DefaultMonthlyProduction = 1

// ProductInput is the pricing-relevant snapshot of a product.
type ProductInput struct {
	HasRecipe        bool
	IncludeFixedCost bool
	// ProfitMargin is a percentage.
	ProfitMargin float64
	SellingPrice *float64
}

// CostInputs are the values gathered outside the product itself.
type CostInputs struct {
	RecipeMaterialCost     float64
	TotalActiveFixedCost   float64
	MonthlyProductionCount int
}

// Costs groups the derived cost and pricing fields of a product.
type Costs struct {
	MaterialCost       float64
	FixedCostPerUnit   float64
	TotalCost          float64
	SuggestedPrice     float64
	ActualProfitAmount float64
	ActualProfitMargin float64
}

// Calculate runs the product pricing pipeline. Each step only reads values
// computed by the steps before it, so repeated calls with the same inputs
// yield identical results.
func Calculate(p ProductInput, in CostInputs) (Costs, error) {
	var c Costs

	if p.HasRecipe {
		c.MaterialCost = in.RecipeMaterialCost
	}

	if p.IncludeFixedCost && in.MonthlyProductionCount > 0 {
		c.FixedCostPerUnit = in.TotalActiveFixedCost / float64(in.MonthlyProductionCount)
	}

	c.TotalCost = c.MaterialCost + c.FixedCostPerUnit

	suggested, err := SuggestedPrice(c.TotalCost, p.ProfitMargin)
	if err != nil {
		return Costs{}, err
	}
	c.SuggestedPrice = suggested

	if p.SellingPrice != nil {
		selling := *p.SellingPrice
		c.ActualProfitAmount = selling - c.TotalCost
		if selling > 0 {
			c.ActualProfitMargin = c.ActualProfitAmount / selling * 100
		}
	}

	return c, nil
}

// SuggestedPrice returns the price that yields margin percent over totalCost.
// Margins of 100 or more have no finite answer and return ErrDegenerateMargin.
func SuggestedPrice(totalCost, margin float64) (float64, error) {
	if math.IsNaN(margin) || margin >= 100 {
		return 0, fmt.Errorf("%w: margin %v%% must be below 100%%", ErrDegenerateMargin, margin)
	}
	if margin > 0 {
		return totalCost / (1 - margin/100), nil
	}
	return totalCost, nil
}

// SumActiveFixedCosts totals the monthly amount of active fixed costs.
func SumActiveFixedCosts(costs []FixedCost) float64 {
	total := 0.0
	for _, fc := range costs {
		if fc.IsActive {
			total += fc.MonthlyAmount
		}
	}
	return total
}

// FixedCost is a monthly overhead entry.
type FixedCost struct {
	MonthlyAmount float64
	IsActive      bool
}
