package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Simplici0/bakecost/internal/labels"
)

// PrintItems loads the label content of each product id, in the given order.
// Repeated ids yield repeated items.
func (r *Repository) PrintItems(ctx context.Context, storeID int64, ids []int64) ([]labels.Item, error) {
	cache := make(map[int64]labels.Item, len(ids))
	items := make([]labels.Item, 0, len(ids))
	for _, id := range ids {
		item, ok := cache[id]
		if !ok {
			var err error
			item, err = r.printItem(ctx, storeID, id)
			if err != nil {
				return nil, err
			}
			cache[id] = item
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) printItem(ctx context.Context, storeID, id int64) (labels.Item, error) {
	p, err := getProduct(ctx, r.db, storeID, id)
	if err != nil {
		return labels.Item{}, err
	}
	item := labels.Item{Name: p.Name, SellingPrice: p.SellingPrice}
	if p.RecipeID == nil {
		return item, nil
	}

	err = checkRecipe(ctx, r.db, storeID, *p.RecipeID)
	if errors.Is(err, ErrNotFound) {
		return item, nil
	}
	if err != nil {
		return labels.Item{}, err
	}
	usages, err := loadUsages(ctx, r.db, storeID, *p.RecipeID)
	if err != nil {
		return labels.Item{}, fmt.Errorf("load ingredients of product %d: %w", id, err)
	}
	recipe := &labels.RecipeSnapshot{Ingredients: make([]string, 0, len(usages))}
	for _, u := range usages {
		if u.Material != nil {
			recipe.Ingredients = append(recipe.Ingredients, u.Material.Name)
		}
	}
	item.Recipe = recipe
	return item, nil
}
