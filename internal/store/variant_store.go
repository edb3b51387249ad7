package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
)

const variantColumns = `id, painting_id, code, category, size, stretch, framing, created_at`

type VariantStore struct {
	db DBTX
}

func NewVariantStore(db DBTX) *VariantStore {
	return &VariantStore{db: db}
}

func (s *VariantStore) Create(ctx context.Context, paintingID int64, d domain.VariantDescriptor) (*domain.Variant, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO variants (painting_id, code, category, size, stretch, framing) VALUES (?, ?, ?, ?, ?, ?)
	`, paintingID, d.Code, d.Category, d.Size, d.Stretch, d.Framing)
	if err != nil {
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *VariantStore) GetByID(ctx context.Context, id int64) (*domain.Variant, error) {
	return s.getOne(ctx, `SELECT `+variantColumns+` FROM variants WHERE id = ?`, id)
}

// GetByCode returns the variant of a painting carrying the given serial token.
func (s *VariantStore) GetByCode(ctx context.Context, paintingID int64, code string) (*domain.Variant, error) {
	return s.getOne(ctx, `SELECT `+variantColumns+` FROM variants WHERE painting_id = ? AND code = ?`, paintingID, code)
}

// GetByDescriptor returns the variant of a painting matching the unique
// (category, size, stretch, framing) tuple. d.Code is ignored.
func (s *VariantStore) GetByDescriptor(ctx context.Context, paintingID int64, d domain.VariantDescriptor) (*domain.Variant, error) {
	return s.getOne(ctx, `
		SELECT `+variantColumns+` FROM variants
		WHERE painting_id = ? AND category = ? AND size = ? AND stretch = ? AND framing = ?
	`, paintingID, d.Category, d.Size, d.Stretch, d.Framing)
}

func (s *VariantStore) getOne(ctx context.Context, query string, args ...any) (*domain.Variant, error) {
	v := &domain.Variant{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&v.ID, &v.PaintingID, &v.Code, &v.Category, &v.Size, &v.Stretch, &v.Framing, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	return v, nil
}

// List returns all variants, or only those of one painting when paintingID
// is positive.
func (s *VariantStore) List(ctx context.Context, paintingID int64) ([]*domain.Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM variants`
	var args []any
	if paintingID > 0 {
		query += ` WHERE painting_id = ?`
		args = append(args, paintingID)
	}
	query += ` ORDER BY painting_id ASC, code ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var variants []*domain.Variant
	for rows.Next() {
		v := &domain.Variant{}
		if err := rows.Scan(&v.ID, &v.PaintingID, &v.Code, &v.Category, &v.Size, &v.Stretch, &v.Framing, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}
