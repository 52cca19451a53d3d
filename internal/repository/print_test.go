package repository

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestPrintItems_KeepsOrderAndDuplicates(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()
	price := 350.0

	bread, err := f.repo.CreateProduct(ctx, f.storeID, ProductInput{Name: "Bread", RecipeID: &f.recipe.ID, SellingPrice: &price}, 1)
	if err != nil {
		t.Fatalf("create bread: %v", err)
	}
	cookie, err := f.repo.CreateProduct(ctx, f.storeID, ProductInput{Name: "Cookie"}, 1)
	if err != nil {
		t.Fatalf("create cookie: %v", err)
	}

	items, err := f.repo.PrintItems(ctx, f.storeID, []int64{cookie.ID, bread.ID, cookie.ID})
	if err != nil {
		t.Fatalf("print items: %v", err)
	}

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	if !slices.Equal(names, []string{"Cookie", "Bread", "Cookie"}) {
		t.Fatalf("names = %v", names)
	}
	if items[0].Recipe != nil {
		t.Fatalf("cookie has no recipe, got %+v", items[0].Recipe)
	}
	if items[1].Recipe == nil || !slices.Equal(items[1].Recipe.Ingredients, []string{"Flour", "Sugar"}) {
		t.Fatalf("bread recipe = %+v, want [Flour Sugar]", items[1].Recipe)
	}
	if items[1].SellingPrice == nil || *items[1].SellingPrice != 350 {
		t.Fatalf("bread price = %v", items[1].SellingPrice)
	}
}

func TestPrintItems_UnknownProduct(t *testing.T) {
	f := newProductFixture(t)

	if _, err := f.repo.PrintItems(context.Background(), f.storeID, []int64{42}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
