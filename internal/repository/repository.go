// Package repository persists the bookkeeping records of each store in
// SQLite. Every query is scoped by store id, and every mutation that feeds a
// derived cost recomputes it before the transaction commits.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Simplici0/bakecost/internal/labels"
	"github.com/Simplici0/bakecost/internal/metrics"
)

var (
	// ErrNotFound is returned when a record does not exist within the store.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness rule.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
)

const defaultListLimit = 100

// ListOptions windows a list query. A zero Limit means the default page
// size and a negative Limit lists everything.
type ListOptions struct {
	Offset int
	Limit  int
}

func (o ListOptions) normalized() ListOptions {
	if o.Offset < 0 {
		o.Offset = 0
	}
	switch {
	case o.Limit == 0:
		o.Limit = defaultListLimit
	case o.Limit < 0:
		o.Limit = -1
	}
	return o
}

// Options configures a Repository.
type Options struct {
	// Page is the sheet size label settings are validated against.
	Page labels.PageSize
	// DefaultProfitMargin applies to products created without a margin.
	DefaultProfitMargin float64
}

// Repository is the tenant-scoped data access layer.
type Repository struct {
	db      *sql.DB
	log     zerolog.Logger
	metrics *metrics.Metrics
	page    labels.PageSize
	margin  float64
}

// New returns a Repository. m may be nil.
func New(db *sql.DB, log zerolog.Logger, m *metrics.Metrics, opts Options) *Repository {
	page := opts.Page
	if page.Width <= 0 || page.Height <= 0 {
		page = labels.A4
	}
	return &Repository{db: db, log: log, metrics: m, page: page, margin: opts.DefaultProfitMargin}
}

// Page returns the sheet size used for label settings.
func (r *Repository) Page() labels.PageSize { return r.page }

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func checkAffected(res sql.Result, kind string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return notFound(kind, id)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func nullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func intPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}
