package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
)

const transactionColumns = `id, serial, location_id, kind, quantity, unit_price, correction, reference, created_at`

// TransactionFilter narrows List. Zero-valued fields match everything.
type TransactionFilter struct {
	Serial     string
	LocationID int64
	Kind       domain.TransactionKind
}

// TransactionStore only appends and reads; the schema rejects updates and
// deletes.
type TransactionStore struct {
	db DBTX
}

func NewTransactionStore(db DBTX) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (serial, location_id, kind, quantity, unit_price, correction, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Serial, t.LocationID, string(t.Kind), t.Quantity, t.UnitPrice, t.Correction, t.Reference, t.CreatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	created := *t
	created.ID = id
	created.CreatedAt = t.CreatedAt.UTC()
	return &created, nil
}

// List returns matching transactions in insertion order.
func (s *TransactionStore) List(ctx context.Context, f TransactionFilter) ([]*domain.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.Serial != "" {
		where = append(where, "serial = ?")
		args = append(args, f.Serial)
	}
	if f.LocationID > 0 {
		where = append(where, "location_id = ?")
		args = append(args, f.LocationID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var transactions []*domain.Transaction
	for rows.Next() {
		t := &domain.Transaction{}
		var kind string
		if err := rows.Scan(&t.ID, &t.Serial, &t.LocationID, &kind, &t.Quantity,
			&t.UnitPrice, &t.Correction, &t.Reference, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Kind = domain.TransactionKind(kind)
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}
