package repository

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Simplici0/bakecost/internal/db"
	"github.com/Simplici0/bakecost/internal/labels"
	"github.com/Simplici0/bakecost/internal/metrics"
	"github.com/Simplici0/bakecost/internal/migrations"
	"github.com/Simplici0/bakecost/internal/models"
)

func newTestRepository(t *testing.T) (*Repository, *metrics.Metrics) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	m := metrics.New()
	repo := New(database, zerolog.New(io.Discard), m, Options{Page: labels.A4, DefaultProfitMargin: 30})
	return repo, m
}

func mustStore(t *testing.T, repo *Repository, code string) *models.Store {
	t.Helper()
	s, err := repo.CreateStore(context.Background(), StoreInput{Code: code, Name: "Bakery " + code})
	if err != nil {
		t.Fatalf("create store %s: %v", code, err)
	}
	return s
}

func mustMaterial(t *testing.T, repo *Repository, storeID int64, name string, price, qty float64) *models.Material {
	t.Helper()
	m, err := repo.CreateMaterial(context.Background(), storeID, MaterialInput{
		Name:             name,
		PurchasePrice:    price,
		PurchaseQuantity: qty,
		Unit:             "g",
	})
	if err != nil {
		t.Fatalf("create material %s: %v", name, err)
	}
	return m
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}
