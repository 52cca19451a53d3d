package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecalculated(t *testing.T) {
	m := New()
	m.Recalculated(KindRecipe, 3)
	m.Recalculated(KindRecipe, 0)
	m.Recalculated(KindProduct, 1)

	if got := testutil.ToFloat64(m.Recalculations.WithLabelValues(KindRecipe)); got != 3 {
		t.Fatalf("recipe recalculations = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Recalculations.WithLabelValues(KindProduct)); got != 1 {
		t.Fatalf("product recalculations = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Recalculated(KindMaterial, 1)
	m.Unresolved(2)
	m.Rejected(RejectMargin)
	m.Rendered(1, 1, time.Millisecond)
}

func TestRejected(t *testing.T) {
	m := New()
	m.Rejected(RejectLayout)
	m.Rejected(RejectLayout)

	if got := testutil.ToFloat64(m.DomainErrors.WithLabelValues(RejectLayout)); got != 2 {
		t.Fatalf("layout rejections = %v, want 2", got)
	}
}

func TestRendered(t *testing.T) {
	m := New()
	m.Rendered(14, 2, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.LabelsRendered); got != 14 {
		t.Fatalf("labels = %v, want 14", got)
	}
	if got := testutil.ToFloat64(m.LabelPagesRendered); got != 2 {
		t.Fatalf("pages = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.LabelRenderDuration); got != 1 {
		t.Fatalf("duration series = %d, want 1", got)
	}
}
