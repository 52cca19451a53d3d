package labels

import (
	"fmt"
	"reflect"
	"slices"
	"testing"
)

func seventyByForty() Setting {
	return Setting{
		Geometry:   Geometry{LabelWidth: 70, LabelHeight: 40, Margins: tenMillimetreMargins()},
		Visibility: Visibility{ShowPrice: true, ShowIngredients: true, ShowStoreName: true},
	}
}

func items(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{Name: fmt.Sprintf("Item %d", i)}
	}
	return out
}

func TestPlacements_FourteenItemsOnTwoPages(t *testing.T) {
	plan, err := NewEngine(A4, Options{}).Plan(Job{Setting: seventyByForty(), Items: items(14)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got := slices.Collect(plan.Placements())
	if len(got) != 14 {
		t.Fatalf("expected 14 placements, got %d", len(got))
	}
	if plan.PageCount() != 2 {
		t.Fatalf("pageCount = %d, want 2", plan.PageCount())
	}

	for i, pl := range got[:12] {
		if pl.Index != i || pl.Page != 0 || pl.Row != i/2 || pl.Col != i%2 {
			t.Fatalf("placement %d = page %d row %d col %d", i, pl.Page, pl.Row, pl.Col)
		}
	}
	for i, pl := range got[12:] {
		if pl.Page != 1 || pl.Row != 0 || pl.Col != i {
			t.Fatalf("placement %d = page %d row %d col %d", 12+i, pl.Page, pl.Row, pl.Col)
		}
	}
	if got[13].Content.Name != "Item 13" {
		t.Fatalf("items were reordered: %q", got[13].Content.Name)
	}
}

func TestPlacements_Rectangles(t *testing.T) {
	plan, err := NewEngine(A4, Options{}).Plan(Job{Setting: seventyByForty(), Items: items(12)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := slices.Collect(plan.Placements())

	first := got[0].Rect
	if first != (Rect{X: 10, Y: 10, Width: 70, Height: 40}) {
		t.Fatalf("first rect = %+v", first)
	}
	if bl := first.BottomLeft(A4.Height); bl.Y != 247 {
		t.Fatalf("bottom-left y = %v, want 247", bl.Y)
	}

	last := got[11].Rect
	if last.X != 80 || last.Y != 210 {
		t.Fatalf("last rect = %+v", last)
	}
	if bl := last.BottomLeft(A4.Height); bl.Y != 47 {
		t.Fatalf("last bottom-left y = %v, want 47", bl.Y)
	}
}

func TestPlacements_Restartable(t *testing.T) {
	job := Job{Setting: seventyByForty(), Items: items(30), ExpiryDate: "2026-10-20", StoreName: "Pan"}
	plan, err := NewEngine(A4, Options{}).Plan(job)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	first := slices.Collect(plan.Placements())
	second := slices.Collect(plan.Placements())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second iteration differs from first")
	}

	again, err := NewEngine(A4, Options{}).Plan(job)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(first, slices.Collect(again.Placements())) {
		t.Fatalf("recomputed plan differs")
	}
}

func TestPlacements_EarlyStopThenRestart(t *testing.T) {
	plan, err := NewEngine(A4, Options{}).Plan(Job{Setting: seventyByForty(), Items: items(20)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	for pl := range plan.Placements() {
		if pl.Index == 13 {
			break
		}
	}

	var firstPage int
	for pl := range plan.Placements() {
		if pl.Page == 0 {
			firstPage++
		}
	}
	if firstPage != 12 {
		t.Fatalf("expected 12 labels on page 0 after restart, got %d", firstPage)
	}
}

func TestPlan_CopiesItems(t *testing.T) {
	in := items(3)
	plan, err := NewEngine(A4, Options{}).Plan(Job{Setting: seventyByForty(), Items: in})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	in[0].Name = "changed"

	for pl := range plan.Placements() {
		if pl.Content.Name == "changed" {
			t.Fatalf("plan observed caller mutation")
		}
	}
}

func TestPlan_GridIsACopy(t *testing.T) {
	plan, err := NewEngine(A4, Options{}).Plan(Job{Setting: seventyByForty(), Items: items(14)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	g := plan.Grid()
	g.LabelsPerRow = 0
	g.LabelsPerColumn = 0

	if got := plan.Grid().LabelsPerPage(); got != 12 {
		t.Fatalf("labels per page = %d, want 12", got)
	}
	n := 0
	for range plan.Placements() {
		n++
	}
	if n != 14 || plan.PageCount() != 2 {
		t.Fatalf("placements = %d, pages = %d, want 14 and 2", n, plan.PageCount())
	}
}

func TestPlan_DegenerateRejectedBeforePagination(t *testing.T) {
	setting := seventyByForty()
	setting.LabelWidth = 300

	if _, err := NewEngine(A4, Options{}).Plan(Job{Setting: setting, Items: items(3)}); err == nil {
		t.Fatalf("expected degenerate layout error")
	}
}

func TestPlan_Empty(t *testing.T) {
	plan, err := NewEngine(A4, Options{}).Plan(Job{Setting: seventyByForty()})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if plan.PageCount() != 0 || plan.Len() != 0 {
		t.Fatalf("expected empty plan, got %d pages", plan.PageCount())
	}
}

func TestNewEngine_ZeroPageIsA4(t *testing.T) {
	if got := NewEngine(PageSize{}, Options{}).Page(); got != A4 {
		t.Fatalf("page = %+v, want A4", got)
	}
}
