package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/bakecost/internal/models"
)

// StoreInput is the payload for creating a store.
type StoreInput struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (in *StoreInput) validate() error {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" {
		return invalid("code is required")
	}
	if in.Name == "" {
		return invalid("name is required")
	}
	return nil
}

const storeColumns = `id, code, name, created_at`

func scanStore(row rowScanner) (*models.Store, error) {
	var s models.Store
	if err := row.Scan(&s.ID, &s.Code, &s.Name, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStore registers a new tenant. Codes are unique.
func (r *Repository) CreateStore(ctx context.Context, in StoreInput) (*models.Store, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO stores (code, name) VALUES (?, ?)`, in.Code, in.Name)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("store code %q: %w", in.Code, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert store: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read store id: %w", err)
	}

	return scanStore(r.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = ?`, id))
}

// StoreByCode resolves a tenant from its code.
func (r *Repository) StoreByCode(ctx context.Context, code string) (*models.Store, error) {
	s, err := scanStore(r.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	return s, nil
}
