package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/bakecost/internal/costing"
	"github.com/Simplici0/bakecost/internal/metrics"
	"github.com/Simplici0/bakecost/internal/models"
)

// UsageInput is one material line of a recipe payload.
type UsageInput struct {
	MaterialID int64   `json:"material_id"`
	Quantity   float64 `json:"quantity"`
}

// RecipeInput is the payload for creating a recipe.
type RecipeInput struct {
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Materials   []UsageInput `json:"materials"`
}

// RecipePatch updates the fields that are set. A set Materials replaces the
// whole usage list.
type RecipePatch struct {
	Name        models.Optional[string]       `json:"name"`
	Description models.Optional[string]       `json:"description"`
	Materials   models.Optional[[]UsageInput] `json:"materials"`
}

func validateUsages(usages []UsageInput) error {
	for i, u := range usages {
		if u.MaterialID <= 0 {
			return invalid("materials[%d].material_id is required", i)
		}
		if !positive(u.Quantity) {
			return invalid("materials[%d].quantity must be greater than 0", i)
		}
	}
	return nil
}

const recipeColumns = `id, store_id, name, description, material_cost, created_at, updated_at`

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	var (
		rec  models.Recipe
		desc sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.StoreID, &rec.Name, &desc, &rec.MaterialCost, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Description = stringPtr(desc)
	return &rec, nil
}

// recipeUsage is a stored usage joined with its material, when the material
// still resolves within the store.
type recipeUsage struct {
	ID       int64
	Usage    costing.Usage
	Material *models.Material
}

func loadUsages(ctx context.Context, q querier, storeID, recipeID int64) ([]recipeUsage, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT rm.id, rm.material_id, rm.quantity, m.id, m.name, m.unit, m.unit_price
		FROM recipe_materials rm
		JOIN recipes r ON r.id = rm.recipe_id
		LEFT JOIN materials m ON m.id = rm.material_id AND m.store_id = r.store_id
		WHERE rm.recipe_id = ? AND r.store_id = ?
		ORDER BY rm.id
	`, recipeID, storeID)
	if err != nil {
		return nil, fmt.Errorf("query recipe materials: %w", err)
	}
	defer rows.Close()

	var usages []recipeUsage
	for rows.Next() {
		var (
			ru        recipeUsage
			matID     sql.NullInt64
			matName   sql.NullString
			matUnit   sql.NullString
			unitPrice sql.NullFloat64
		)
		if err := rows.Scan(&ru.ID, &ru.Usage.MaterialID, &ru.Usage.Quantity, &matID, &matName, &matUnit, &unitPrice); err != nil {
			return nil, fmt.Errorf("scan recipe material: %w", err)
		}
		if matID.Valid {
			ru.Material = &models.Material{
				ID:        matID.Int64,
				StoreID:   storeID,
				Name:      matName.String,
				Unit:      matUnit.String,
				UnitPrice: unitPrice.Float64,
			}
			snap := ru.Material.Snapshot()
			ru.Usage.Material = &snap
		}
		usages = append(usages, ru)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe materials: %w", err)
	}
	return usages, nil
}

func getRecipe(ctx context.Context, q querier, storeID, id int64) (*models.Recipe, error) {
	rec, err := scanRecipe(q.QueryRowContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE id = ? AND store_id = ?
	`, id, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("recipe", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe: %w", err)
	}

	usages, err := loadUsages(ctx, q, storeID, id)
	if err != nil {
		return nil, err
	}
	rec.Materials = make([]models.RecipeMaterial, 0, len(usages))
	for _, u := range usages {
		line := models.RecipeMaterial{
			ID:         u.ID,
			MaterialID: u.Usage.MaterialID,
			Quantity:   u.Usage.Quantity,
			Cost:       costing.LineCost(u.Usage),
		}
		if u.Material != nil {
			line.MaterialName = u.Material.Name
			line.MaterialUnit = u.Material.Unit
		}
		rec.Materials = append(rec.Materials, line)
	}
	return rec, nil
}

// recomputeRecipe re-aggregates the recipe's material cost from the current
// unit prices and stores it.
func (r *Repository) recomputeRecipe(ctx context.Context, q querier, storeID, recipeID int64) (costing.Aggregation, error) {
	usages, err := loadUsages(ctx, q, storeID, recipeID)
	if err != nil {
		return costing.Aggregation{}, err
	}
	snapshot := make([]costing.Usage, len(usages))
	for i, u := range usages {
		snapshot[i] = u.Usage
	}

	agg := costing.Aggregate(snapshot)
	if err := agg.Err(); err != nil {
		r.log.Warn().
			Err(err).
			Int64("store_id", storeID).
			Int64("recipe_id", recipeID).
			Msg("recipe cost skips unresolved materials")
		r.metrics.Unresolved(len(agg.Unresolved))
	}

	if _, err := q.ExecContext(ctx, `
		UPDATE recipes
		SET material_cost = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND store_id = ?
	`, agg.MaterialCost, recipeID, storeID); err != nil {
		return costing.Aggregation{}, fmt.Errorf("update recipe cost: %w", err)
	}
	r.metrics.Recalculated(metrics.KindRecipe, 1)
	return agg, nil
}

func (r *Repository) recomputeRecipes(ctx context.Context, q querier, storeID int64, ids []int64) error {
	for _, id := range ids {
		if _, err := r.recomputeRecipe(ctx, q, storeID, id); err != nil {
			return err
		}
	}
	return nil
}

func insertUsages(ctx context.Context, q querier, storeID, recipeID int64, usages []UsageInput) error {
	for _, u := range usages {
		var exists bool
		if err := q.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM materials WHERE id = ? AND store_id = ?)
		`, u.MaterialID, storeID).Scan(&exists); err != nil {
			return fmt.Errorf("check material existence: %w", err)
		}
		if !exists {
			return notFound("material", u.MaterialID)
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO recipe_materials (recipe_id, material_id, quantity)
			VALUES (?, ?, ?)
		`, recipeID, u.MaterialID, u.Quantity); err != nil {
			return fmt.Errorf("insert recipe material: %w", err)
		}
	}
	return nil
}

// CreateRecipe stores a recipe with its usages. Every material must belong to
// the store.
func (r *Repository) CreateRecipe(ctx context.Context, storeID int64, in RecipeInput) (*models.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if err := validateUsages(in.Materials); err != nil {
		return nil, err
	}

	var created *models.Recipe
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (store_id, name, description)
			VALUES (?, ?, ?)
		`, storeID, name, nullString(in.Description))
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read recipe id: %w", err)
		}

		if err := insertUsages(ctx, tx, storeID, id, in.Materials); err != nil {
			return err
		}
		if _, err := r.recomputeRecipe(ctx, tx, storeID, id); err != nil {
			return err
		}

		created, err = getRecipe(ctx, tx, storeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetRecipe returns one recipe with its usage lines.
func (r *Repository) GetRecipe(ctx context.Context, storeID, id int64) (*models.Recipe, error) {
	return getRecipe(ctx, r.db, storeID, id)
}

// ListRecipes returns the store's recipes with their usage lines.
func (r *Repository) ListRecipes(ctx context.Context, storeID int64, opts ListOptions) ([]models.Recipe, error) {
	opts = opts.normalized()
	rows, err := r.db.QueryContext(ctx, `
		SELECT id
		FROM recipes
		WHERE store_id = ?
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`, storeID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	rows.Close()

	recipes := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		rec, err := getRecipe(ctx, r.db, storeID, id)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *rec)
	}
	return recipes, nil
}

// UpdateRecipe applies patch. Replacing the usages recomputes the material
// cost; products keep their snapshot until recalculated.
func (r *Repository) UpdateRecipe(ctx context.Context, storeID, id int64, patch RecipePatch) (*models.Recipe, error) {
	if patch.Name.Set && strings.TrimSpace(patch.Name.Value) == "" {
		return nil, invalid("name is required")
	}
	if patch.Materials.Set {
		if err := validateUsages(patch.Materials.Value); err != nil {
			return nil, err
		}
	}

	var updated *models.Recipe
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		rec, err := getRecipe(ctx, tx, storeID, id)
		if err != nil {
			return err
		}
		if patch.Name.Set {
			rec.Name = strings.TrimSpace(patch.Name.Value)
		}
		if patch.Description.Set {
			rec.Description = patch.Description.Ptr()
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE recipes
			SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND store_id = ?
		`, rec.Name, nullString(rec.Description), id, storeID); err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		if patch.Materials.Set {
			if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_materials WHERE recipe_id = ?`, id); err != nil {
				return fmt.Errorf("clear recipe materials: %w", err)
			}
			if err := insertUsages(ctx, tx, storeID, id, patch.Materials.Value); err != nil {
				return err
			}
			if _, err := r.recomputeRecipe(ctx, tx, storeID, id); err != nil {
				return err
			}
		}

		updated, err = getRecipe(ctx, tx, storeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRecipe removes the recipe. Products that used it lose the reference.
func (r *Repository) DeleteRecipe(ctx context.Context, storeID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND store_id = ?`, id, storeID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return checkAffected(res, "recipe", id)
}
