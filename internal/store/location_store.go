package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
)

type LocationStore struct {
	db DBTX
}

func NewLocationStore(db DBTX) *LocationStore {
	return &LocationStore{db: db}
}

func (s *LocationStore) Create(ctx context.Context, code, name string, isHome bool) (*domain.Location, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (code, name, is_home) VALUES (?, ?, ?)
	`, code, name, isHome)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *LocationStore) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	return s.getOne(ctx, `SELECT id, code, name, is_home, created_at FROM locations WHERE id = ?`, id)
}

func (s *LocationStore) GetByCode(ctx context.Context, code string) (*domain.Location, error) {
	return s.getOne(ctx, `SELECT id, code, name, is_home, created_at FROM locations WHERE code = ?`, code)
}

func (s *LocationStore) GetByName(ctx context.Context, name string) (*domain.Location, error) {
	return s.getOne(ctx, `SELECT id, code, name, is_home, created_at FROM locations WHERE name = ?`, name)
}

func (s *LocationStore) getOne(ctx context.Context, query string, arg any) (*domain.Location, error) {
	l := &domain.Location{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&l.ID, &l.Code, &l.Name, &l.IsHome, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return l, nil
}

func (s *LocationStore) List(ctx context.Context) ([]*domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, is_home, created_at FROM locations ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var locations []*domain.Location
	for rows.Next() {
		l := &domain.Location{}
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.IsHome, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

func (s *LocationStore) SetHome(ctx context.Context, id int64, isHome bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE locations SET is_home = ? WHERE id = ?
	`, isHome, id)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "location", Key: fmt.Sprint(id)}
	}

	return nil
}
