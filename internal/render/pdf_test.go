package render

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/Simplici0/bakecost/internal/labels"
)

func testPlan(t *testing.T, n int) *labels.Plan {
	t.Helper()

	price := 280.0
	items := make([]labels.Item, n)
	for i := range items {
		items[i] = labels.Item{
			Name:         fmt.Sprintf("Croissant %d", i),
			SellingPrice: &price,
			Recipe:       &labels.RecipeSnapshot{Ingredients: []string{"Flour", "Butter", "Milk"}},
		}
	}

	plan, err := labels.NewEngine(labels.A4, labels.Options{}).Plan(labels.Job{
		Setting: labels.Setting{
			Geometry: labels.Geometry{
				LabelWidth:  70,
				LabelHeight: 40,
				Margins:     labels.Margins{Top: 10, Bottom: 10, Left: 10, Right: 10},
			},
			Visibility: labels.Visibility{ShowPrice: true, ShowIngredients: true, ShowExpiryDate: true, ShowStoreName: true},
		},
		Items:      items,
		ExpiryDate: "2026-10-20",
		StoreName:  "Boulangerie",
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return plan
}

func TestPDF_PagesFollowPlan(t *testing.T) {
	var buf bytes.Buffer
	stats, err := PDF(&buf, testPlan(t, 14), Options{Borders: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if stats.Pages != 2 || stats.Labels != 14 {
		t.Fatalf("stats = %+v, want 2 pages and 14 labels", stats)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a pdf")
	}
}

func TestPDF_Deterministic(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	plan := testPlan(t, 5)

	var a, b bytes.Buffer
	if _, err := PDF(&a, plan, Options{CreatedAt: at}); err != nil {
		t.Fatalf("render a: %v", err)
	}
	if _, err := PDF(&b, plan, Options{CreatedAt: at}); err != nil {
		t.Fatalf("render b: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("same plan rendered differently")
	}
}

func TestPDF_EmptyPlanHasOnePage(t *testing.T) {
	var buf bytes.Buffer
	stats, err := PDF(&buf, testPlan(t, 0), Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stats.Pages != 1 || stats.Labels != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
