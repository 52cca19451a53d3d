package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/bakecost/internal/labels"
	"github.com/Simplici0/bakecost/internal/metrics"
	"github.com/Simplici0/bakecost/internal/models"
)

const defaultLabelMargin = 10

// LabelSettingInput is the payload for creating a label preset. Omitted
// margins default to 10 mm; omitted flags take the preset defaults.
type LabelSettingInput struct {
	PresetName      string   `json:"preset_name"`
	LabelWidth      float64  `json:"label_width"`
	LabelHeight     float64  `json:"label_height"`
	MarginTop       *float64 `json:"margin_top"`
	MarginBottom    *float64 `json:"margin_bottom"`
	MarginLeft      *float64 `json:"margin_left"`
	MarginRight     *float64 `json:"margin_right"`
	ShowPrice       *bool    `json:"show_price"`
	ShowIngredients *bool    `json:"show_ingredients"`
	ShowExpiryDate  *bool    `json:"show_expiry_date"`
	ShowStoreName   *bool    `json:"show_store_name"`
	ShowLogo        *bool    `json:"show_logo"`
	LogoPath        *string  `json:"logo_path"`
	IsDefault       bool     `json:"is_default"`
}

func (in LabelSettingInput) setting(storeID int64) models.LabelSetting {
	return models.LabelSetting{
		StoreID:         storeID,
		PresetName:      in.PresetName,
		LabelWidth:      in.LabelWidth,
		LabelHeight:     in.LabelHeight,
		MarginTop:       floatOr(in.MarginTop, defaultLabelMargin),
		MarginBottom:    floatOr(in.MarginBottom, defaultLabelMargin),
		MarginLeft:      floatOr(in.MarginLeft, defaultLabelMargin),
		MarginRight:     floatOr(in.MarginRight, defaultLabelMargin),
		ShowPrice:       boolOr(in.ShowPrice, true),
		ShowIngredients: boolOr(in.ShowIngredients, true),
		ShowExpiryDate:  boolOr(in.ShowExpiryDate, false),
		ShowStoreName:   boolOr(in.ShowStoreName, true),
		ShowLogo:        boolOr(in.ShowLogo, false),
		LogoPath:        in.LogoPath,
		IsDefault:       in.IsDefault,
	}
}

// LabelSettingPatch updates the fields that are set.
type LabelSettingPatch struct {
	PresetName      models.Optional[string]  `json:"preset_name"`
	LabelWidth      models.Optional[float64] `json:"label_width"`
	LabelHeight     models.Optional[float64] `json:"label_height"`
	MarginTop       models.Optional[float64] `json:"margin_top"`
	MarginBottom    models.Optional[float64] `json:"margin_bottom"`
	MarginLeft      models.Optional[float64] `json:"margin_left"`
	MarginRight     models.Optional[float64] `json:"margin_right"`
	ShowPrice       models.Optional[bool]    `json:"show_price"`
	ShowIngredients models.Optional[bool]    `json:"show_ingredients"`
	ShowExpiryDate  models.Optional[bool]    `json:"show_expiry_date"`
	ShowStoreName   models.Optional[bool]    `json:"show_store_name"`
	ShowLogo        models.Optional[bool]    `json:"show_logo"`
	LogoPath        models.Optional[string]  `json:"logo_path"`
	IsDefault       models.Optional[bool]    `json:"is_default"`
}

func (p LabelSettingPatch) apply(s *models.LabelSetting) {
	setIf(&s.PresetName, p.PresetName)
	setIf(&s.LabelWidth, p.LabelWidth)
	setIf(&s.LabelHeight, p.LabelHeight)
	setIf(&s.MarginTop, p.MarginTop)
	setIf(&s.MarginBottom, p.MarginBottom)
	setIf(&s.MarginLeft, p.MarginLeft)
	setIf(&s.MarginRight, p.MarginRight)
	setIf(&s.ShowPrice, p.ShowPrice)
	setIf(&s.ShowIngredients, p.ShowIngredients)
	setIf(&s.ShowExpiryDate, p.ShowExpiryDate)
	setIf(&s.ShowStoreName, p.ShowStoreName)
	setIf(&s.ShowLogo, p.ShowLogo)
	setIf(&s.IsDefault, p.IsDefault)
	if p.LogoPath.Set {
		s.LogoPath = p.LogoPath.Ptr()
	}
}

func setIf[T any](dst *T, o models.Optional[T]) {
	if o.Set && !o.Null {
		*dst = o.Value
	}
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// validateLabelSetting rejects presets that cannot place a single label on
// the configured sheet.
func (r *Repository) validateLabelSetting(s *models.LabelSetting) error {
	s.PresetName = strings.TrimSpace(s.PresetName)
	if s.PresetName == "" {
		return invalid("preset_name is required")
	}
	if _, err := labels.NewGrid(r.page, s.Geometry()); err != nil {
		r.metrics.Rejected(metrics.RejectLayout)
		return fmt.Errorf("label setting %q: %w", s.PresetName, err)
	}
	return nil
}

const labelSettingColumns = `
	id, store_id, preset_name, label_width, label_height,
	margin_top, margin_bottom, margin_left, margin_right,
	show_price, show_ingredients, show_expiry_date, show_store_name, show_logo,
	logo_path, is_default, created_at, updated_at`

func (r *Repository) scanLabelSetting(row rowScanner) (*models.LabelSetting, error) {
	var (
		s    models.LabelSetting
		logo sql.NullString
	)
	if err := row.Scan(
		&s.ID,
		&s.StoreID,
		&s.PresetName,
		&s.LabelWidth,
		&s.LabelHeight,
		&s.MarginTop,
		&s.MarginBottom,
		&s.MarginLeft,
		&s.MarginRight,
		&s.ShowPrice,
		&s.ShowIngredients,
		&s.ShowExpiryDate,
		&s.ShowStoreName,
		&s.ShowLogo,
		&logo,
		&s.IsDefault,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.LogoPath = stringPtr(logo)
	s.Derive(r.page)
	return &s, nil
}

func (r *Repository) getLabelSetting(ctx context.Context, q querier, storeID, id int64) (*models.LabelSetting, error) {
	s, err := r.scanLabelSetting(q.QueryRowContext(ctx, `
		SELECT `+labelSettingColumns+`
		FROM label_settings
		WHERE id = ? AND store_id = ?
	`, id, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("label setting", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query label setting: %w", err)
	}
	return s, nil
}

func clearDefault(ctx context.Context, q querier, storeID, keepID int64) error {
	if _, err := q.ExecContext(ctx, `
		UPDATE label_settings
		SET is_default = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE store_id = ? AND is_default AND id <> ?
	`, storeID, keepID); err != nil {
		return fmt.Errorf("clear default label setting: %w", err)
	}
	return nil
}

// CreateLabelSetting stores a preset. A new default replaces the previous one.
func (r *Repository) CreateLabelSetting(ctx context.Context, storeID int64, in LabelSettingInput) (*models.LabelSetting, error) {
	s := in.setting(storeID)
	if err := r.validateLabelSetting(&s); err != nil {
		return nil, err
	}

	var created *models.LabelSetting
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if s.IsDefault {
			if err := clearDefault(ctx, tx, storeID, 0); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO label_settings (
				store_id, preset_name, label_width, label_height,
				margin_top, margin_bottom, margin_left, margin_right,
				show_price, show_ingredients, show_expiry_date, show_store_name, show_logo,
				logo_path, is_default
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, storeID, s.PresetName, s.LabelWidth, s.LabelHeight,
			s.MarginTop, s.MarginBottom, s.MarginLeft, s.MarginRight,
			s.ShowPrice, s.ShowIngredients, s.ShowExpiryDate, s.ShowStoreName, s.ShowLogo,
			nullString(s.LogoPath), s.IsDefault)
		if err != nil {
			return fmt.Errorf("insert label setting: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read label setting id: %w", err)
		}

		created, err = r.getLabelSetting(ctx, tx, storeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetLabelSetting returns one preset of the store.
func (r *Repository) GetLabelSetting(ctx context.Context, storeID, id int64) (*models.LabelSetting, error) {
	return r.getLabelSetting(ctx, r.db, storeID, id)
}

// DefaultLabelSetting returns the store's default preset.
func (r *Repository) DefaultLabelSetting(ctx context.Context, storeID int64) (*models.LabelSetting, error) {
	s, err := r.scanLabelSetting(r.db.QueryRowContext(ctx, `
		SELECT `+labelSettingColumns+`
		FROM label_settings
		WHERE store_id = ? AND is_default
	`, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("default label setting: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query default label setting: %w", err)
	}
	return s, nil
}

// ListLabelSettings returns the store's presets, default first.
func (r *Repository) ListLabelSettings(ctx context.Context, storeID int64, opts ListOptions) ([]models.LabelSetting, error) {
	opts = opts.normalized()
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+labelSettingColumns+`
		FROM label_settings
		WHERE store_id = ?
		ORDER BY is_default DESC, preset_name, id
		LIMIT ? OFFSET ?
	`, storeID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("query label settings: %w", err)
	}
	defer rows.Close()

	settings := make([]models.LabelSetting, 0)
	for rows.Next() {
		s, err := r.scanLabelSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan label setting: %w", err)
		}
		settings = append(settings, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label settings: %w", err)
	}
	return settings, nil
}

// UpdateLabelSetting applies patch. The merged geometry must still fit the
// sheet.
func (r *Repository) UpdateLabelSetting(ctx context.Context, storeID, id int64, patch LabelSettingPatch) (*models.LabelSetting, error) {
	var updated *models.LabelSetting
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		s, err := r.getLabelSetting(ctx, tx, storeID, id)
		if err != nil {
			return err
		}
		patch.apply(s)
		if err := r.validateLabelSetting(s); err != nil {
			return err
		}
		if s.IsDefault {
			if err := clearDefault(ctx, tx, storeID, id); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE label_settings
			SET
				preset_name = ?,
				label_width = ?,
				label_height = ?,
				margin_top = ?,
				margin_bottom = ?,
				margin_left = ?,
				margin_right = ?,
				show_price = ?,
				show_ingredients = ?,
				show_expiry_date = ?,
				show_store_name = ?,
				show_logo = ?,
				logo_path = ?,
				is_default = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND store_id = ?
		`, s.PresetName, s.LabelWidth, s.LabelHeight,
			s.MarginTop, s.MarginBottom, s.MarginLeft, s.MarginRight,
			s.ShowPrice, s.ShowIngredients, s.ShowExpiryDate, s.ShowStoreName, s.ShowLogo,
			nullString(s.LogoPath), s.IsDefault, id, storeID); err != nil {
			return fmt.Errorf("update label setting: %w", err)
		}

		updated, err = r.getLabelSetting(ctx, tx, storeID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteLabelSetting removes the preset.
func (r *Repository) DeleteLabelSetting(ctx context.Context, storeID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM label_settings WHERE id = ? AND store_id = ?`, id, storeID)
	if err != nil {
		return fmt.Errorf("delete label setting: %w", err)
	}
	return checkAffected(res, "label setting", id)
}
