package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Simplici0/bakecost/internal/models"
)

func TestCreateRecipe_ListsLineCosts(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	store := mustStore(t, repo, "main")
	flour := mustMaterial(t, repo, store.ID, "Flour", 300, 1000)

	desc := "Daily loaf"
	recipe, err := repo.CreateRecipe(ctx, store.ID, RecipeInput{
		Name:        "Bread",
		Description: &desc,
		Materials:   []UsageInput{{MaterialID: flour.ID, Quantity: 250}},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	if recipe.Description == nil || *recipe.Description != desc {
		t.Fatalf("description = %v, want %q", recipe.Description, desc)
	}
	if len(recipe.Materials) != 1 {
		t.Fatalf("materials = %+v, want one line", recipe.Materials)
	}
	line := recipe.Materials[0]
	if line.MaterialName != "Flour" || line.MaterialUnit != "g" || !nearlyEqual(line.Cost, 75) {
		t.Fatalf("line = %+v, want Flour g cost 75", line)
	}
	if !nearlyEqual(recipe.MaterialCost, 75) {
		t.Fatalf("material cost = %v, want 75", recipe.MaterialCost)
	}
}

func TestCreateRecipe_RejectsForeignMaterial(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	a := mustStore(t, repo, "a")
	b := mustStore(t, repo, "b")
	foreign := mustMaterial(t, repo, b.ID, "Flour", 300, 1000)

	_, err := repo.CreateRecipe(ctx, a.ID, RecipeInput{
		Name:      "Bread",
		Materials: []UsageInput{{MaterialID: foreign.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	list, err := repo.ListRecipes(ctx, a.ID, ListOptions{})
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("failed create left %d recipes behind", len(list))
	}
}

func TestCreateRecipe_RejectsNonPositiveQuantity(t *testing.T) {
	repo, _ := newTestRepository(t)
	store := mustStore(t, repo, "main")
	flour := mustMaterial(t, repo, store.ID, "Flour", 300, 1000)

	_, err := repo.CreateRecipe(context.Background(), store.ID, RecipeInput{
		Name:      "Bread",
		Materials: []UsageInput{{MaterialID: flour.ID, Quantity: 0}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateRecipe_ReplacesUsages(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	store := mustStore(t, repo, "main")
	flour := mustMaterial(t, repo, store.ID, "Flour", 300, 1000)
	butter := mustMaterial(t, repo, store.ID, "Butter", 1000, 500)

	recipe, err := repo.CreateRecipe(ctx, store.ID, RecipeInput{
		Name:      "Bread",
		Materials: []UsageInput{{MaterialID: flour.ID, Quantity: 100}},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	updated, err := repo.UpdateRecipe(ctx, store.ID, recipe.ID, RecipePatch{
		Name:      models.Some("Butter bread"),
		Materials: models.Some([]UsageInput{{MaterialID: flour.ID, Quantity: 100}, {MaterialID: butter.ID, Quantity: 50}}),
	})
	if err != nil {
		t.Fatalf("update recipe: %v", err)
	}
	if updated.Name != "Butter bread" || len(updated.Materials) != 2 {
		t.Fatalf("updated = %+v", updated)
	}
	if !nearlyEqual(updated.MaterialCost, 130) {
		t.Fatalf("material cost = %v, want 130", updated.MaterialCost)
	}

	renamed, err := repo.UpdateRecipe(ctx, store.ID, recipe.ID, RecipePatch{Description: models.Some("soft")})
	if err != nil {
		t.Fatalf("update description: %v", err)
	}
	if len(renamed.Materials) != 2 || !nearlyEqual(renamed.MaterialCost, 130) {
		t.Fatalf("description-only patch changed usages: %+v", renamed)
	}
}

func TestDeleteRecipe_DetachesProducts(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	store := mustStore(t, repo, "main")
	flour := mustMaterial(t, repo, store.ID, "Flour", 300, 1000)
	recipe, err := repo.CreateRecipe(ctx, store.ID, RecipeInput{
		Name:      "Bread",
		Materials: []UsageInput{{MaterialID: flour.ID, Quantity: 100}},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	product, err := repo.CreateProduct(ctx, store.ID, ProductInput{Name: "Loaf", RecipeID: &recipe.ID}, 1)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := repo.DeleteRecipe(ctx, store.ID, recipe.ID); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}

	got, err := repo.GetProduct(ctx, store.ID, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.RecipeID != nil {
		t.Fatalf("recipe id = %v, want nil", *got.RecipeID)
	}
	if !nearlyEqual(got.MaterialCost, 30) {
		t.Fatalf("snapshot = %v, want the stale 30 until recalculated", got.MaterialCost)
	}

	recalculated, err := repo.CalculateProductCost(ctx, store.ID, product.ID, 1)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if recalculated.MaterialCost != 0 {
		t.Fatalf("material cost = %v, want 0 without a recipe", recalculated.MaterialCost)
	}
}
