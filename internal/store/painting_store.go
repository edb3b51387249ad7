package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
)

type PaintingStore struct {
	db DBTX
}

func NewPaintingStore(db DBTX) *PaintingStore {
	return &PaintingStore{db: db}
}

func (s *PaintingStore) Create(ctx context.Context, code, name string) (*domain.Painting, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO paintings (code, name) VALUES (?, ?)
	`, code, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create painting: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PaintingStore) GetByID(ctx context.Context, id int64) (*domain.Painting, error) {
	return s.getOne(ctx, `SELECT id, code, name, created_at FROM paintings WHERE id = ?`, id)
}

// GetByCode looks a painting up by its exact, case-sensitive code.
func (s *PaintingStore) GetByCode(ctx context.Context, code string) (*domain.Painting, error) {
	return s.getOne(ctx, `SELECT id, code, name, created_at FROM paintings WHERE code = ?`, code)
}

func (s *PaintingStore) getOne(ctx context.Context, query string, arg any) (*domain.Painting, error) {
	p := &domain.Painting{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Code, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get painting: %w", err)
	}
	return p, nil
}

func (s *PaintingStore) List(ctx context.Context) ([]*domain.Painting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, created_at FROM paintings ORDER BY code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list paintings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var paintings []*domain.Painting
	for rows.Next() {
		p := &domain.Painting{}
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan painting: %w", err)
		}
		paintings = append(paintings, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating paintings: %w", err)
	}

	return paintings, nil
}
