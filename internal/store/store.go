package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every store can run
// inside or outside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repos is the persistence context of one unit of work: every store bound to
// the same transaction.
type Repos struct {
	db DBTX

	Paintings    *PaintingStore
	Variants     *VariantStore
	Locations    *LocationStore
	Inventory    *InventoryStore
	Transactions *TransactionStore
}

func NewRepos(db DBTX) *Repos {
	return &Repos{
		db:           db,
		Paintings:    NewPaintingStore(db),
		Variants:     NewVariantStore(db),
		Locations:    NewLocationStore(db),
		Inventory:    NewInventoryStore(db),
		Transactions: NewTransactionStore(db),
	}
}

// Savepoint runs fn inside a named savepoint. If fn fails, everything it
// wrote is rolled back while the enclosing transaction stays usable.
func (r *Repos) Savepoint(ctx context.Context, name string, fn func() error) error {
	if _, err := r.db.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	if err := fn(); err != nil {
		if _, rerr := r.db.ExecContext(ctx, "ROLLBACK TO "+name); rerr != nil {
			return fmt.Errorf("failed to roll back savepoint: %w (after: %v)", rerr, err)
		}
		if _, rerr := r.db.ExecContext(ctx, "RELEASE "+name); rerr != nil {
			return fmt.Errorf("failed to release savepoint: %w (after: %v)", rerr, err)
		}
		return err
	}
	if _, err := r.db.ExecContext(ctx, "RELEASE "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

// Store hands out units of work over a database. Writers are serialized:
// at most one Write or Simulate runs at a time.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Write runs fn in a transaction and commits it if fn succeeds. Readers
// never observe a partially applied fn.
func (s *Store) Write(ctx context.Context, fn func(*Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, nil, true, fn)
}

// Simulate runs fn in a transaction that is always rolled back. fn sees its
// own writes; nothing persists.
func (s *Store) Simulate(ctx context.Context, fn func(*Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, nil, false, fn)
}

// Read runs fn against a single read-only transaction so all queries share
// one snapshot. It starts deferred rather than immediate, so it never waits
// for the write lock.
func (s *Store) Read(ctx context.Context, fn func(*Repos) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, false, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, commit bool, fn func(*Repos) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to roll back transaction", "error", err)
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if !commit {
		return nil
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
