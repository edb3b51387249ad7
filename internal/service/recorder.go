package service

import (
	"context"
	"time"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/serial"
	"github.com/trevorjharder/Coastal-Waves/internal/store"
)

// TransactionFilter selects transactions. From is inclusive, To exclusive;
// zero times leave that side open.
type TransactionFilter struct {
	Serial     string
	LocationID int64
	Kind       domain.TransactionKind
	From       time.Time
	To         time.Time
}

func (f TransactionFilter) contains(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}
	return true
}

// Recorder appends ledger events. Nothing it writes is ever edited or
// removed.
type Recorder struct {
	now func() time.Time
}

func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

func (rc *Recorder) Record(ctx context.Context, r *store.Repos, t domain.Transaction) (*domain.Transaction, error) {
	if !t.Kind.Valid() {
		return nil, domain.Invalid("kind", "unknown transaction kind %q", t.Kind)
	}
	if t.Serial == "" {
		return nil, domain.Invalid("serial", "is required")
	}
	if !t.Correction {
		if t.Quantity <= 0 {
			return nil, domain.Invalid("quantity", "must be positive, got %d", t.Quantity)
		}
		if t.Kind == domain.KindSale && !t.UnitPrice.Valid {
			return nil, domain.Invalid("unit_price", "is required for a sale")
		}
	}
	if t.UnitPrice.Valid && t.UnitPrice.Decimal.IsNegative() {
		return nil, domain.Invalid("unit_price", "must not be negative, got %s", t.UnitPrice.Decimal)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = rc.now()
	}
	return r.Transactions.Create(ctx, &t)
}

func (rc *Recorder) List(ctx context.Context, r *store.Repos, f TransactionFilter) ([]*domain.Transaction, error) {
	if f.Serial != "" {
		canonical, err := serial.Canonical(f.Serial)
		if err != nil {
			return nil, invalidSerial(err)
		}
		f.Serial = canonical
	}
	all, err := r.Transactions.List(ctx, store.TransactionFilter{
		Serial:     f.Serial,
		LocationID: f.LocationID,
		Kind:       f.Kind,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Transaction, 0, len(all))
	for _, t := range all {
		if f.contains(t.CreatedAt) {
			out = append(out, t)
		}
	}
	return out, nil
}
