package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/bakecost/internal/costing"
	"github.com/Simplici0/bakecost/internal/metrics"
	"github.com/Simplici0/bakecost/internal/models"
)

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name             string   `json:"name"`
	RecipeID         *int64   `json:"recipe_id"`
	IncludeFixedCost bool     `json:"include_fixed_cost"`
	ProfitMargin     *float64 `json:"profit_margin"`
	SellingPrice     *float64 `json:"selling_price"`
}

// ProductPatch updates the fields that are set. A null recipe_id detaches the
// recipe and a null selling_price clears it.
type ProductPatch struct {
	Name             models.Optional[string]  `json:"name"`
	RecipeID         models.Optional[int64]   `json:"recipe_id"`
	IncludeFixedCost models.Optional[bool]    `json:"include_fixed_cost"`
	ProfitMargin     models.Optional[float64] `json:"profit_margin"`
	SellingPrice     models.Optional[float64] `json:"selling_price"`
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("name is required")
	}
	if math.IsNaN(p.ProfitMargin) || p.ProfitMargin < 0 || p.ProfitMargin > 100 {
		return invalid("profit_margin must be between 0 and 100")
	}
	if p.SellingPrice != nil && (*p.SellingPrice < 0 || math.IsNaN(*p.SellingPrice)) {
		return invalid("selling_price must be 0 or greater")
	}
	return nil
}

const productColumns = `
	id, store_id, recipe_id, name, include_fixed_cost, profit_margin, selling_price,
	material_cost, fixed_cost_per_unit, total_cost, suggested_price,
	actual_profit_amount, actual_profit_margin, created_at, updated_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p        models.Product
		recipeID sql.NullInt64
		selling  sql.NullFloat64
	)
	if err := row.Scan(
		&p.ID,
		&p.StoreID,
		&recipeID,
		&p.Name,
		&p.IncludeFixedCost,
		&p.ProfitMargin,
		&selling,
		&p.MaterialCost,
		&p.FixedCostPerUnit,
		&p.TotalCost,
		&p.SuggestedPrice,
		&p.ActualProfitAmount,
		&p.ActualProfitMargin,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.RecipeID = intPtr(recipeID)
	p.SellingPrice = floatPtr(selling)
	return &p, nil
}

func getProduct(ctx context.Context, q querier, storeID, id int64) (*models.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ? AND store_id = ?
	`, id, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func checkRecipe(ctx context.Context, q querier, storeID, recipeID int64) error {
	var exists bool
	if err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM recipes WHERE id = ? AND store_id = ?)
	`, recipeID, storeID).Scan(&exists); err != nil {
		return fmt.Errorf("check recipe existence: %w", err)
	}
	if !exists {
		return notFound("recipe", recipeID)
	}
	return nil
}

// calculate snapshots the recipe cost and active fixed costs, runs the
// calculator and stores the derived fields on p.
func (r *Repository) calculate(ctx context.Context, q querier, p *models.Product, production int) error {
	var (
		recipeCost float64
		hasRecipe  bool
	)
	if p.RecipeID != nil {
		err := q.QueryRowContext(ctx, `
			SELECT material_cost FROM recipes WHERE id = ? AND store_id = ?
		`, *p.RecipeID, p.StoreID).Scan(&recipeCost)
		switch {
		case err == nil:
			hasRecipe = true
		case errors.Is(err, sql.ErrNoRows):
		default:
			return fmt.Errorf("query recipe cost: %w", err)
		}
	}

	var fixedTotal float64
	if p.IncludeFixedCost {
		total, err := activeFixedCostTotal(ctx, q, p.StoreID)
		if err != nil {
			return err
		}
		fixedTotal = total
	}

	costs, err := costing.Calculate(p.Input(hasRecipe), costing.CostInputs{
		RecipeMaterialCost:     recipeCost,
		TotalActiveFixedCost:   fixedTotal,
		MonthlyProductionCount: production,
	})
	if err != nil {
		if errors.Is(err, costing.ErrDegenerateMargin) {
			r.metrics.Rejected(metrics.RejectMargin)
		}
		return fmt.Errorf("calculate product %d: %w", p.ID, err)
	}
	p.Apply(costs)

	if _, err := q.ExecContext(ctx, `
		UPDATE products
		SET
			material_cost = ?,
			fixed_cost_per_unit = ?,
			total_cost = ?,
			suggested_price = ?,
			actual_profit_amount = ?,
			actual_profit_margin = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND store_id = ?
	`, p.MaterialCost, p.FixedCostPerUnit, p.TotalCost, p.SuggestedPrice,
		p.ActualProfitAmount, p.ActualProfitMargin, p.ID, p.StoreID); err != nil {
		return fmt.Errorf("update product costs: %w", err)
	}
	r.metrics.Recalculated(metrics.KindProduct, 1)
	return nil
}

// CreateProduct stores a product and calculates its costs with the given
// monthly production count.
func (r *Repository) CreateProduct(ctx context.Context, storeID int64, in ProductInput, production int) (*models.Product, error) {
	p := models.Product{
		StoreID:          storeID,
		RecipeID:         in.RecipeID,
		Name:             in.Name,
		IncludeFixedCost: in.IncludeFixedCost,
		ProfitMargin:     r.margin,
		SellingPrice:     in.SellingPrice,
	}
	if in.ProfitMargin != nil {
		p.ProfitMargin = *in.ProfitMargin
	}
	if err := validateProduct(&p); err != nil {
		return nil, err
	}

	var created *models.Product
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if p.RecipeID != nil {
			if err := checkRecipe(ctx, tx, storeID, *p.RecipeID); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO products (store_id, recipe_id, name, include_fixed_cost, profit_margin, selling_price)
			VALUES (?, ?, ?, ?, ?, ?)
		`, storeID, nullInt(p.RecipeID), p.Name, p.IncludeFixedCost, p.ProfitMargin, nullFloat(p.SellingPrice))
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("read product id: %w", err)
		}

		if err := r.calculate(ctx, tx, &p, production); err != nil {
			return err
		}
		created, err = getProduct(ctx, tx, storeID, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetProduct returns one product of the store.
func (r *Repository) GetProduct(ctx context.Context, storeID, id int64) (*models.Product, error) {
	return getProduct(ctx, r.db, storeID, id)
}

// ListProducts returns the store's products ordered by name.
func (r *Repository) ListProducts(ctx context.Context, storeID int64, opts ListOptions) ([]models.Product, error) {
	opts = opts.normalized()
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE store_id = ?
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`, storeID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies patch and recalculates the product's costs.
func (r *Repository) UpdateProduct(ctx context.Context, storeID, id int64, patch ProductPatch, production int) (*models.Product, error) {
	var updated *models.Product
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		p, err := getProduct(ctx, tx, storeID, id)
		if err != nil {
			return err
		}
		if patch.Name.Set {
			p.Name = patch.Name.Value
		}
		if patch.RecipeID.Set {
			p.RecipeID = patch.RecipeID.Ptr()
			if p.RecipeID != nil {
				if err := checkRecipe(ctx, tx, storeID, *p.RecipeID); err != nil {
					return err
				}
			}
		}
		if patch.IncludeFixedCost.Set {
			p.IncludeFixedCost = patch.IncludeFixedCost.Value
		}
		if patch.ProfitMargin.Set {
			if patch.ProfitMargin.Null {
				return invalid("profit_margin cannot be null")
			}
			p.ProfitMargin = patch.ProfitMargin.Value
		}
		if patch.SellingPrice.Set {
			p.SellingPrice = patch.SellingPrice.Ptr()
		}
		if err := validateProduct(p); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE products
			SET
				recipe_id = ?,
				name = ?,
				include_fixed_cost = ?,
				profit_margin = ?,
				selling_price = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND store_id = ?
		`, nullInt(p.RecipeID), p.Name, p.IncludeFixedCost, p.ProfitMargin, nullFloat(p.SellingPrice), id, storeID); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		if err := r.calculate(ctx, tx, p, production); err != nil {
			return err
		}
		updated, err = getProduct(ctx, tx, storeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CalculateProductCost re-snapshots the recipe and fixed costs into the
// product.
func (r *Repository) CalculateProductCost(ctx context.Context, storeID, id int64, production int) (*models.Product, error) {
	var calculated *models.Product
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		p, err := getProduct(ctx, tx, storeID, id)
		if err != nil {
			return err
		}
		if err := r.calculate(ctx, tx, p, production); err != nil {
			return err
		}
		calculated, err = getProduct(ctx, tx, storeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return calculated, nil
}

// DeleteProduct removes the product.
func (r *Repository) DeleteProduct(ctx context.Context, storeID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ? AND store_id = ?`, id, storeID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return checkAffected(res, "product", id)
}
