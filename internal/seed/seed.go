package seed

import (
	"database/sql"
	"errors"
	"fmt"
)

const (
	defaultPresetName  = "A4 70x40"
	defaultLabelWidth  = 70.0
	defaultLabelHeight = 40.0
	defaultLabelMargin = 10.0
)

// Config contains the values required by startup seed.
type Config struct {
	StoreCode string
	StoreName string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run creates the configured store and its default label preset. It is
// idempotent and does nothing when no store code is configured.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	if cfg.StoreCode == "" {
		return Stats{}, nil
	}
	if cfg.StoreName == "" {
		cfg.StoreName = cfg.StoreCode
	}

	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	storeID, err := ensureStore(tx, cfg, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureDefaultLabelPreset(tx, storeID, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureStore(tx *sql.Tx, cfg Config, stats *Stats) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM stores WHERE code = ?`, cfg.StoreCode).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check store existence: %w", err)
	}

	res, err := tx.Exec(`INSERT INTO stores (code, name) VALUES (?, ?)`, cfg.StoreCode, cfg.StoreName)
	if err != nil {
		return 0, fmt.Errorf("insert store: %w", err)
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, fmt.Errorf("read store id: %w", err)
	}
	stats.Inserts++
	return id, nil
}

// ensureDefaultLabelPreset adds the A4 preset unless the store already has a
// default.
func ensureDefaultLabelPreset(tx *sql.Tx, storeID int64, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1
			FROM label_settings
			WHERE store_id = ? AND is_default
			LIMIT 1
		)
	`, storeID).Scan(&exists); err != nil {
		return fmt.Errorf("check default label preset existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO label_settings (
			store_id,
			preset_name,
			label_width,
			label_height,
			margin_top,
			margin_bottom,
			margin_left,
			margin_right,
			is_default
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE)
	`, storeID, defaultPresetName, defaultLabelWidth, defaultLabelHeight,
		defaultLabelMargin, defaultLabelMargin, defaultLabelMargin, defaultLabelMargin); err != nil {
		return fmt.Errorf("insert default label preset: %w", err)
	}
	stats.Inserts++
	return nil
}
