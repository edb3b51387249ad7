package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
)

const recordColumns = `serial, painting_id, variant_id, location_id, stocked, sold, quantity, created_at, updated_at`

type InventoryStore struct {
	db DBTX
}

func NewInventoryStore(db DBTX) *InventoryStore {
	return &InventoryStore{db: db}
}

func (s *InventoryStore) Create(ctx context.Context, rec *domain.InventoryRecord) (*domain.InventoryRecord, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_records (serial, painting_id, variant_id, location_id, stocked, sold)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Serial, rec.PaintingID, rec.VariantID, rec.LocationID, rec.Stocked, rec.Sold)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", err)
	}

	return s.GetBySerial(ctx, rec.Serial)
}

func (s *InventoryStore) GetBySerial(ctx context.Context, serial string) (*domain.InventoryRecord, error) {
	r := &domain.InventoryRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM inventory_records WHERE serial = ?
	`, serial).Scan(&r.Serial, &r.PaintingID, &r.VariantID, &r.LocationID,
		&r.Stocked, &r.Sold, &r.Quantity, &r.CreatedAt, &r.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}

	return r, nil
}

// UpdateCounters overwrites both counters of a record. The schema rejects
// values that would break stocked >= sold >= 0.
func (s *InventoryStore) UpdateCounters(ctx context.Context, serial string, stocked, sold int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_records SET stocked = ?, sold = ?, updated_at = datetime('now') WHERE serial = ?
	`, stocked, sold, serial)
	if err != nil {
		return fmt.Errorf("failed to update inventory record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "serial", Key: serial}
	}

	return nil
}

// List returns records ordered by serial, restricted to one location when
// locationID is positive.
func (s *InventoryStore) List(ctx context.Context, locationID int64) ([]*domain.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records`
	var args []any
	if locationID > 0 {
		query += ` WHERE location_id = ?`
		args = append(args, locationID)
	}
	query += ` ORDER BY serial ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var records []*domain.InventoryRecord
	for rows.Next() {
		r := &domain.InventoryRecord{}
		if err := rows.Scan(&r.Serial, &r.PaintingID, &r.VariantID, &r.LocationID,
			&r.Stocked, &r.Sold, &r.Quantity, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory records: %w", err)
	}

	return records, nil
}

// SerialsWithPrefix returns every serial starting with prefix, e.g.
// "PTG-A-B-C-".
func (s *InventoryStore) SerialsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT serial FROM inventory_records WHERE substr(serial, 1, ?) = ? ORDER BY serial ASC
	`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list serials: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var serials []string
	for rows.Next() {
		var serial string
		if err := rows.Scan(&serial); err != nil {
			return nil, fmt.Errorf("failed to scan serial: %w", err)
		}
		serials = append(serials, serial)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating serials: %w", err)
	}

	return serials, nil
}
