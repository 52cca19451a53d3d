package migrations

import (
	"path/filepath"
	"testing"

	"github.com/Simplici0/bakecost/internal/db"
)

func TestUpIsRepeatable(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(database); err != nil {
			t.Fatalf("run migrations (iteration=%d): %v", i, err)
		}
	}

	v, err := Version(database)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 1 {
		t.Fatalf("version = %d, want 1", v)
	}

	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'label_settings'`).Scan(&n); err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if n != 1 {
		t.Fatalf("label_settings table missing")
	}
}
