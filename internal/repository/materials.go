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

// MaterialInput is the payload for creating a material.
type MaterialInput struct {
	Name             string  `json:"name"`
	PurchasePrice    float64 `json:"purchase_price"`
	PurchaseQuantity float64 `json:"purchase_quantity"`
	Unit             string  `json:"unit"`
}

// MaterialPatch updates the fields that are set.
type MaterialPatch struct {
	Name             models.Optional[string]  `json:"name"`
	PurchasePrice    models.Optional[float64] `json:"purchase_price"`
	PurchaseQuantity models.Optional[float64] `json:"purchase_quantity"`
	Unit             models.Optional[string]  `json:"unit"`
}

// validateMaterial normalizes m and derives its unit price.
func validateMaterial(m *models.Material) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Unit = strings.TrimSpace(m.Unit)
	if m.Name == "" {
		return invalid("name is required")
	}
	if m.Unit == "" {
		return invalid("unit is required")
	}
	if !positive(m.PurchasePrice) {
		return invalid("purchase_price must be greater than 0")
	}
	if math.IsInf(m.PurchaseQuantity, 0) {
		return invalid("purchase_quantity must be finite")
	}
	unitPrice, err := costing.StrictUnitPrice(m.PurchasePrice, m.PurchaseQuantity)
	if err != nil {
		return fmt.Errorf("%w: purchase_quantity: %w", ErrValidation, err)
	}
	m.UnitPrice = unitPrice
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

const materialColumns = `id, store_id, name, purchase_price, purchase_quantity, unit, unit_price, created_at, updated_at`

func scanMaterial(row rowScanner) (*models.Material, error) {
	var m models.Material
	if err := row.Scan(
		&m.ID,
		&m.StoreID,
		&m.Name,
		&m.PurchasePrice,
		&m.PurchaseQuantity,
		&m.Unit,
		&m.UnitPrice,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func getMaterial(ctx context.Context, q querier, storeID, id int64) (*models.Material, error) {
	m, err := scanMaterial(q.QueryRowContext(ctx, `
		SELECT `+materialColumns+`
		FROM materials
		WHERE id = ? AND store_id = ?
	`, id, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("material", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query material: %w", err)
	}
	return m, nil
}

// CreateMaterial stores a material with its unit price derived.
func (r *Repository) CreateMaterial(ctx context.Context, storeID int64, in MaterialInput) (*models.Material, error) {
	m := models.Material{
		StoreID:          storeID,
		Name:             in.Name,
		PurchasePrice:    in.PurchasePrice,
		PurchaseQuantity: in.PurchaseQuantity,
		Unit:             in.Unit,
	}
	if err := validateMaterial(&m); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO materials (store_id, name, purchase_price, purchase_quantity, unit, unit_price)
		VALUES (?, ?, ?, ?, ?, ?)
	`, storeID, m.Name, m.PurchasePrice, m.PurchaseQuantity, m.Unit, m.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("insert material: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read material id: %w", err)
	}
	r.metrics.Recalculated(metrics.KindMaterial, 1)

	return getMaterial(ctx, r.db, storeID, id)
}

// GetMaterial returns one material of the store.
func (r *Repository) GetMaterial(ctx context.Context, storeID, id int64) (*models.Material, error) {
	return getMaterial(ctx, r.db, storeID, id)
}

// ListMaterials returns the store's materials ordered by name.
func (r *Repository) ListMaterials(ctx context.Context, storeID int64, opts ListOptions) ([]models.Material, error) {
	opts = opts.normalized()
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+materialColumns+`
		FROM materials
		WHERE store_id = ?
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`, storeID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]models.Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return materials, nil
}

// UpdateMaterial applies patch, re-derives the unit price and recomputes
// every recipe of the store that uses the material.
func (r *Repository) UpdateMaterial(ctx context.Context, storeID, id int64, patch MaterialPatch) (*models.Material, error) {
	var updated *models.Material
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		m, err := getMaterial(ctx, tx, storeID, id)
		if err != nil {
			return err
		}
		if patch.Name.Set {
			m.Name = patch.Name.Value
		}
		if patch.PurchasePrice.Set {
			m.PurchasePrice = patch.PurchasePrice.Value
		}
		if patch.PurchaseQuantity.Set {
			m.PurchaseQuantity = patch.PurchaseQuantity.Value
		}
		if patch.Unit.Set {
			m.Unit = patch.Unit.Value
		}
		if err := validateMaterial(m); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE materials
			SET
				name = ?,
				purchase_price = ?,
				purchase_quantity = ?,
				unit = ?,
				unit_price = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND store_id = ?
		`, m.Name, m.PurchasePrice, m.PurchaseQuantity, m.Unit, m.UnitPrice, id, storeID); err != nil {
			return fmt.Errorf("update material: %w", err)
		}
		r.metrics.Recalculated(metrics.KindMaterial, 1)

		recipeIDs, err := recipesUsingMaterial(ctx, tx, storeID, id)
		if err != nil {
			return err
		}
		if err := r.recomputeRecipes(ctx, tx, storeID, recipeIDs); err != nil {
			return err
		}

		updated, err = getMaterial(ctx, tx, storeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMaterial removes the material with its usages and recomputes the
// recipes that referenced it.
func (r *Repository) DeleteMaterial(ctx context.Context, storeID, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		recipeIDs, err := recipesUsingMaterial(ctx, tx, storeID, id)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM materials WHERE id = ? AND store_id = ?`, id, storeID)
		if err != nil {
			return fmt.Errorf("delete material: %w", err)
		}
		if err := checkAffected(res, "material", id); err != nil {
			return err
		}

		return r.recomputeRecipes(ctx, tx, storeID, recipeIDs)
	})
}

func recipesUsingMaterial(ctx context.Context, q querier, storeID, materialID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT DISTINCT r.id
		FROM recipe_materials rm
		JOIN recipes r ON r.id = rm.recipe_id
		WHERE rm.material_id = ? AND r.store_id = ?
		ORDER BY r.id
	`, materialID, storeID)
	if err != nil {
		return nil, fmt.Errorf("query recipes using material: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe ids: %w", err)
	}
	return ids, nil
}
