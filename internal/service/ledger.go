package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/serial"
	"github.com/trevorjharder/Coastal-Waves/internal/store"
)

// EntryOptions carries optional context for a ledger mutation.
type EntryOptions struct {
	// Reference is stamped on every transaction the mutation appends.
	Reference string
	// PaintingName and LocationName are used when the serial's entities
	// have to be created.
	PaintingName string
	LocationName string
}

// Ledger owns the stocked and sold counters of every serial. Each mutation
// appends matching transactions so that stocked equals the sum of stock_in
// quantities and sold the sum of sale quantities.
type Ledger struct {
	resolver *Resolver
	recorder *Recorder
	logger   *slog.Logger
}

func NewLedger(resolver *Resolver, recorder *Recorder, logger *slog.Logger) *Ledger {
	return &Ledger{resolver: resolver, recorder: recorder, logger: logger}
}

// StockIn adds qty units to a serial, creating its record and catalog
// entities on first use.
func (l *Ledger) StockIn(ctx context.Context, r *store.Repos, serialNumber string, qty int, opts EntryOptions) (*domain.InventoryRecord, error) {
	c, err := decodeSerial(serialNumber)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, domain.Invalid("quantity", "must be positive, got %d", qty)
	}

	rec, err := l.bind(ctx, r, c, opts)
	if err != nil {
		return nil, err
	}
	if qty > math.MaxInt-rec.Stocked {
		return nil, domain.Invalid("quantity", "%d would overflow stocked (%d)", qty, rec.Stocked)
	}
	if err := r.Inventory.UpdateCounters(ctx, rec.Serial, rec.Stocked+qty, rec.Sold); err != nil {
		return nil, err
	}
	if _, err := l.recorder.Record(ctx, r, domain.Transaction{
		Serial:     rec.Serial,
		LocationID: rec.LocationID,
		Kind:       domain.KindStockIn,
		Quantity:   qty,
		Reference:  opts.Reference,
	}); err != nil {
		return nil, err
	}

	l.logger.Info("stock in", "serial", rec.Serial, "quantity", qty)
	return r.Inventory.GetBySerial(ctx, rec.Serial)
}

// Sell records a sale of qty units at unitPrice. A sale larger than the
// quantity on hand fails with *domain.InsufficientStockError and changes
// nothing.
func (l *Ledger) Sell(ctx context.Context, r *store.Repos, serialNumber string, qty int, unitPrice decimal.Decimal, opts EntryOptions) (*domain.InventoryRecord, *domain.Transaction, error) {
	c, err := decodeSerial(serialNumber)
	if err != nil {
		return nil, nil, err
	}
	if qty <= 0 {
		return nil, nil, domain.Invalid("quantity", "must be positive, got %d", qty)
	}
	if unitPrice.IsNegative() {
		return nil, nil, domain.Invalid("unit_price", "must not be negative, got %s", unitPrice)
	}

	rec, err := l.existing(ctx, r, c)
	if err != nil {
		return nil, nil, err
	}
	if qty > rec.OnHand() {
		return nil, nil, &domain.InsufficientStockError{Serial: rec.Serial, Available: rec.OnHand(), Requested: qty}
	}

	if err := r.Inventory.UpdateCounters(ctx, rec.Serial, rec.Stocked, rec.Sold+qty); err != nil {
		return nil, nil, err
	}
	tx, err := l.recorder.Record(ctx, r, domain.Transaction{
		Serial:     rec.Serial,
		LocationID: rec.LocationID,
		Kind:       domain.KindSale,
		Quantity:   qty,
		UnitPrice:  decimal.NewNullDecimal(unitPrice),
		Reference:  opts.Reference,
	})
	if err != nil {
		return nil, nil, err
	}

	l.logger.Info("sale", "serial", rec.Serial, "quantity", qty, "unit_price", unitPrice.String())
	rec, err = r.Inventory.GetBySerial(ctx, rec.Serial)
	if err != nil {
		return nil, nil, err
	}
	return rec, tx, nil
}

func (l *Ledger) Get(ctx context.Context, r *store.Repos, serialNumber string) (*domain.InventoryRecord, error) {
	c, err := decodeSerial(serialNumber)
	if err != nil {
		return nil, err
	}
	rec, err := r.Inventory.GetBySerial(ctx, c.String())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &domain.NotFoundError{Entity: "serial", Key: c.String()}
	}
	return rec, nil
}

// List returns all records, or those of one location when locationID is
// positive.
func (l *Ledger) List(ctx context.Context, r *store.Repos, locationID int64) ([]*domain.InventoryRecord, error) {
	return r.Inventory.List(ctx, locationID)
}

// Correct overwrites both counters of a serial. Every changed counter gets a
// correction transaction carrying the signed delta, so the transaction sums
// keep matching the counters. The record is created if it does not exist.
func (l *Ledger) Correct(ctx context.Context, r *store.Repos, serialNumber string, stocked, sold int, opts EntryOptions) (*domain.InventoryRecord, error) {
	c, err := decodeSerial(serialNumber)
	if err != nil {
		return nil, err
	}
	if sold < 0 {
		return nil, domain.Invalid("sold", "must not be negative, got %d", sold)
	}
	if stocked < sold {
		return nil, domain.Invalid("stocked", "must be at least sold (%d), got %d", sold, stocked)
	}

	rec, err := l.bind(ctx, r, c, opts)
	if err != nil {
		return nil, err
	}
	stockDelta := stocked - rec.Stocked
	soldDelta := sold - rec.Sold
	if stockDelta == 0 && soldDelta == 0 {
		return rec, nil
	}

	if err := r.Inventory.UpdateCounters(ctx, rec.Serial, stocked, sold); err != nil {
		return nil, err
	}
	for _, adj := range []struct {
		kind  domain.TransactionKind
		delta int
	}{
		{domain.KindStockIn, stockDelta},
		{domain.KindSale, soldDelta},
	} {
		if adj.delta == 0 {
			continue
		}
		if _, err := l.recorder.Record(ctx, r, domain.Transaction{
			Serial:     rec.Serial,
			LocationID: rec.LocationID,
			Kind:       adj.kind,
			Quantity:   adj.delta,
			Correction: true,
			Reference:  opts.Reference,
		}); err != nil {
			return nil, err
		}
	}

	l.logger.Info("counters corrected", "serial", rec.Serial,
		"stocked", stocked, "sold", sold, "stocked_delta", stockDelta, "sold_delta", soldDelta)
	return r.Inventory.GetBySerial(ctx, rec.Serial)
}

// SetQuantity overwrites the on-hand quantity by moving stocked to
// sold + quantity. Sold is left as is.
func (l *Ledger) SetQuantity(ctx context.Context, r *store.Repos, serialNumber string, quantity int, opts EntryOptions) (*domain.InventoryRecord, error) {
	if quantity < 0 {
		return nil, domain.Invalid("quantity", "must not be negative, got %d", quantity)
	}
	c, err := decodeSerial(serialNumber)
	if err != nil {
		return nil, err
	}
	rec, err := l.bind(ctx, r, c, opts)
	if err != nil {
		return nil, err
	}
	if quantity > math.MaxInt-rec.Sold {
		return nil, domain.Invalid("quantity", "%d would overflow stocked (sold %d)", quantity, rec.Sold)
	}
	return l.Correct(ctx, r, rec.Serial, rec.Sold+quantity, rec.Sold, opts)
}

// Register binds a serial to its entities with zero counters. Registering
// an existing serial returns its record unchanged.
func (l *Ledger) Register(ctx context.Context, r *store.Repos, serialNumber string, opts EntryOptions) (*domain.InventoryRecord, error) {
	c, err := decodeSerial(serialNumber)
	if err != nil {
		return nil, err
	}
	return l.bind(ctx, r, c, opts)
}

// NextSerial returns the first serial after the highest sequence already
// used for the painting, variant and location.
func (l *Ledger) NextSerial(ctx context.Context, r *store.Repos, painting, variant, location string) (string, error) {
	encoded, err := serial.Encode(strings.ToUpper(painting), strings.ToUpper(variant), strings.ToUpper(location), 0)
	if err != nil {
		return "", invalidSerial(err)
	}
	c, _ := serial.Decode(encoded)

	serials, err := r.Inventory.SerialsWithPrefix(ctx, c.Prefix())
	if err != nil {
		return "", err
	}
	for _, s := range serials {
		used, err := serial.Decode(s)
		if err != nil {
			continue
		}
		if used.Sequence > c.Sequence {
			c.Sequence = used.Sequence
		}
	}

	next, err := serial.Next(c)
	if err != nil {
		return "", invalidSerial(err)
	}
	return next.String(), nil
}

// bind returns the record for c, creating it and any missing entities with
// zero counters. An existing record must be bound to the entities its tokens
// name.
func (l *Ledger) bind(ctx context.Context, r *store.Repos, c serial.Components, opts EntryOptions) (*domain.InventoryRecord, error) {
	rec, err := r.Inventory.GetBySerial(ctx, c.String())
	if err != nil {
		return nil, err
	}
	if rec != nil {
		if err := checkBinding(ctx, r, rec, c); err != nil {
			return nil, err
		}
		return rec, nil
	}

	res, err := l.resolver.ResolveSerial(ctx, r, c, opts.PaintingName, opts.LocationName)
	if err != nil {
		return nil, err
	}
	rec, err = r.Inventory.Create(ctx, &domain.InventoryRecord{
		Serial:     c.String(),
		PaintingID: res.Painting.ID,
		VariantID:  res.Variant.ID,
		LocationID: res.Location.ID,
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("serial registered", "serial", rec.Serial, "location_id", rec.LocationID)
	return rec, nil
}

func (l *Ledger) existing(ctx context.Context, r *store.Repos, c serial.Components) (*domain.InventoryRecord, error) {
	rec, err := r.Inventory.GetBySerial(ctx, c.String())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &domain.NotFoundError{Entity: "serial", Key: c.String()}
	}
	if err := checkBinding(ctx, r, rec, c); err != nil {
		return nil, err
	}
	return rec, nil
}

func checkBinding(ctx context.Context, r *store.Repos, rec *domain.InventoryRecord, c serial.Components) error {
	p, err := r.Paintings.GetByID(ctx, rec.PaintingID)
	if err != nil {
		return err
	}
	v, err := r.Variants.GetByID(ctx, rec.VariantID)
	if err != nil {
		return err
	}
	loc, err := r.Locations.GetByID(ctx, rec.LocationID)
	if err != nil {
		return err
	}
	if p == nil || v == nil || loc == nil ||
		p.Code != c.Painting || v.Code != c.Variant || v.PaintingID != p.ID || loc.Code != c.Location {
		return domain.Invalid("serial", "%s is not bound to the entities its tokens name", rec.Serial)
	}
	return nil
}

func decodeSerial(s string) (serial.Components, error) {
	c, err := serial.Decode(s)
	if err != nil {
		return serial.Components{}, invalidSerial(err)
	}
	return c, nil
}

// invalidSerial wraps a serial.FormatError so it matches both
// domain.ErrValidation and errors.As(*serial.FormatError).
func invalidSerial(err error) error {
	var fe *serial.FormatError
	if errors.As(err, &fe) {
		return &domain.ValidationError{Field: "serial", Reason: fe.Reason, Err: fe}
	}
	return err
}
