package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/bakecost/internal/costing"
	"github.com/Simplici0/bakecost/internal/models"
)

// FixedCostInput is the payload for creating a fixed cost. IsActive defaults
// to true.
type FixedCostInput struct {
	Name          string  `json:"name"`
	MonthlyAmount float64 `json:"monthly_amount"`
	IsActive      *bool   `json:"is_active"`
}

// FixedCostPatch updates the fields that are set.
type FixedCostPatch struct {
	Name          models.Optional[string]  `json:"name"`
	MonthlyAmount models.Optional[float64] `json:"monthly_amount"`
	IsActive      models.Optional[bool]    `json:"is_active"`
}

func validateFixedCost(f *models.FixedCost) error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return invalid("name is required")
	}
	if f.MonthlyAmount < 0 || math.IsNaN(f.MonthlyAmount) || math.IsInf(f.MonthlyAmount, 0) {
		return invalid("monthly_amount must be 0 or greater")
	}
	return nil
}

const fixedCostColumns = `id, store_id, name, monthly_amount, is_active, created_at, updated_at`

func scanFixedCost(row rowScanner) (*models.FixedCost, error) {
	var f models.FixedCost
	if err := row.Scan(&f.ID, &f.StoreID, &f.Name, &f.MonthlyAmount, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func getFixedCost(ctx context.Context, q querier, storeID, id int64) (*models.FixedCost, error) {
	f, err := scanFixedCost(q.QueryRowContext(ctx, `
		SELECT `+fixedCostColumns+`
		FROM fixed_costs
		WHERE id = ? AND store_id = ?
	`, id, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("fixed cost", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query fixed cost: %w", err)
	}
	return f, nil
}

// CreateFixedCost stores a monthly overhead line.
func (r *Repository) CreateFixedCost(ctx context.Context, storeID int64, in FixedCostInput) (*models.FixedCost, error) {
	f := models.FixedCost{StoreID: storeID, Name: in.Name, MonthlyAmount: in.MonthlyAmount, IsActive: true}
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}
	if err := validateFixedCost(&f); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO fixed_costs (store_id, name, monthly_amount, is_active)
		VALUES (?, ?, ?, ?)
	`, storeID, f.Name, f.MonthlyAmount, f.IsActive)
	if err != nil {
		return nil, fmt.Errorf("insert fixed cost: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read fixed cost id: %w", err)
	}
	return getFixedCost(ctx, r.db, storeID, id)
}

// GetFixedCost returns one fixed cost of the store.
func (r *Repository) GetFixedCost(ctx context.Context, storeID, id int64) (*models.FixedCost, error) {
	return getFixedCost(ctx, r.db, storeID, id)
}

// ListFixedCosts returns the store's fixed costs ordered by name.
func (r *Repository) ListFixedCosts(ctx context.Context, storeID int64, opts ListOptions) ([]models.FixedCost, error) {
	opts = opts.normalized()
	return listFixedCosts(ctx, r.db, `
		SELECT `+fixedCostColumns+`
		FROM fixed_costs
		WHERE store_id = ?
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`, storeID, opts.Limit, opts.Offset)
}

func listFixedCosts(ctx context.Context, q querier, query string, args ...any) ([]models.FixedCost, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fixed costs: %w", err)
	}
	defer rows.Close()

	costs := make([]models.FixedCost, 0)
	for rows.Next() {
		f, err := scanFixedCost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixed cost: %w", err)
		}
		costs = append(costs, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixed costs: %w", err)
	}
	return costs, nil
}

// UpdateFixedCost applies patch.
func (r *Repository) UpdateFixedCost(ctx context.Context, storeID, id int64, patch FixedCostPatch) (*models.FixedCost, error) {
	var updated *models.FixedCost
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		f, err := getFixedCost(ctx, tx, storeID, id)
		if err != nil {
			return err
		}
		if patch.Name.Set {
			f.Name = patch.Name.Value
		}
		if patch.MonthlyAmount.Set {
			f.MonthlyAmount = patch.MonthlyAmount.Value
		}
		if patch.IsActive.Set {
			f.IsActive = patch.IsActive.Value
		}
		if err := validateFixedCost(f); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE fixed_costs
			SET name = ?, monthly_amount = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND store_id = ?
		`, f.Name, f.MonthlyAmount, f.IsActive, id, storeID); err != nil {
			return fmt.Errorf("update fixed cost: %w", err)
		}

		updated, err = getFixedCost(ctx, tx, storeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteFixedCost removes the fixed cost.
func (r *Repository) DeleteFixedCost(ctx context.Context, storeID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fixed_costs WHERE id = ? AND store_id = ?`, id, storeID)
	if err != nil {
		return fmt.Errorf("delete fixed cost: %w", err)
	}
	return checkAffected(res, "fixed cost", id)
}

// ActiveFixedCostTotal sums the monthly amount of the store's active fixed
// costs.
func (r *Repository) ActiveFixedCostTotal(ctx context.Context, storeID int64) (float64, error) {
	return activeFixedCostTotal(ctx, r.db, storeID)
}

func activeFixedCostTotal(ctx context.Context, q querier, storeID int64) (float64, error) {
	costs, err := listFixedCosts(ctx, q, `
		SELECT `+fixedCostColumns+`
		FROM fixed_costs
		WHERE store_id = ?
	`, storeID)
	if err != nil {
		return 0, err
	}
	snapshot := make([]costing.FixedCost, len(costs))
	for i, f := range costs {
		snapshot[i] = f.Costing()
	}
	return costing.SumActiveFixedCosts(snapshot), nil
}
