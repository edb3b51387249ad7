package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/serial"
	"github.com/trevorjharder/Coastal-Waves/internal/sheet"
	"github.com/trevorjharder/Coastal-Waves/internal/store"
)

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
)

// Skip reasons that are not domain errors.
const (
	ReasonInvalidSerial    = "invalid serial format"
	ReasonQuantityMismatch = "quantity mismatch"
	ReasonSoldExceedsStock = "sold exceeds stocked"
)

// Delta is the change an import applies to an existing record.
type Delta struct {
	Stocked int `json:"stocked"`
	Sold    int `json:"sold"`
}

// RowError explains why a row was skipped.
type RowError struct {
	Row    int    `json:"row"`
	Serial string `json:"serial"`
	Reason string `json:"reason"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.Serial, e.Reason)
}

type RowResult struct {
	Row      int                      `json:"row"`
	Serial   string                   `json:"serial"`
	Outcome  Outcome                  `json:"outcome"`
	Delta    *Delta                   `json:"delta,omitempty"`
	Error    *RowError                `json:"error,omitempty"`
	Warnings []domain.ConflictWarning `json:"warnings,omitempty"`
}

type Totals struct {
	Processed int `json:"processed"`
	Applied   int `json:"applied"`
	Skipped   int `json:"skipped"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// Report describes what an import did, or would do in a dry run.
type Report struct {
	DryRun  bool        `json:"dry_run"`
	BatchID string      `json:"batch_id,omitempty"`
	Rows    []RowResult `json:"rows"`
	Totals  Totals      `json:"totals"`
}

func (rep *Report) add(res RowResult) {
	rep.Rows = append(rep.Rows, res)
	rep.Totals.Processed++
	switch res.Outcome {
	case OutcomeCreated:
		rep.Totals.Created++
	case OutcomeUpdated:
		rep.Totals.Updated++
	case OutcomeUnchanged:
		rep.Totals.Unchanged++
	case OutcomeSkipped:
		rep.Totals.Skipped++
	}
	rep.Totals.Applied = rep.Totals.Processed - rep.Totals.Skipped
}

// Importer reconciles spreadsheet rows against the ledger. A dry run goes
// through exactly the same steps inside a unit of work that is rolled back,
// so its report accounts for rows that affect each other.
type Importer struct {
	store    *store.Store
	resolver *Resolver
	ledger   *Ledger
	logger   *slog.Logger
}

func NewImporter(st *store.Store, resolver *Resolver, ledger *Ledger, logger *slog.Logger) *Importer {
	return &Importer{store: st, resolver: resolver, ledger: ledger, logger: logger}
}

// Import applies rows in one transaction. Each row runs in its own
// savepoint, so a skipped row leaves no trace. Only infrastructure failures
// abort the import; they roll back every row.
func (im *Importer) Import(ctx context.Context, rows []sheet.Row, dryRun bool) (*Report, error) {
	report := &Report{DryRun: dryRun, Rows: make([]RowResult, 0, len(rows))}
	run := im.store.Simulate
	var reference string
	if !dryRun {
		run = im.store.Write
		report.BatchID = uuid.NewString()
		reference = "import:" + report.BatchID
	}

	im.logger.Info("import started", "rows", len(rows), "dry_run", dryRun, "batch_id", report.BatchID)

	err := run(ctx, func(r *store.Repos) error {
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			res := RowResult{Row: row.Number, Serial: row.Serial}
			err := r.Savepoint(ctx, fmt.Sprintf("import_row_%d", i), func() error {
				return im.applyRow(ctx, r, row, reference, &res)
			})
			if err != nil {
				rowErr, ok := asRowError(err, row)
				if !ok {
					return fmt.Errorf("failed to import row %d: %w", row.Number, err)
				}
				res.Outcome = OutcomeSkipped
				res.Delta = nil
				res.Error = rowErr
				im.logger.Debug("import row skipped", "row", row.Number, "serial", row.Serial, "reason", rowErr.Reason)
			}
			report.add(res)
		}
		return nil
	})
	if err != nil {
		im.logger.Error("import failed", "dry_run", dryRun, "batch_id", report.BatchID, "error", err)
		return nil, err
	}

	t := report.Totals
	im.logger.Info("import finished", "dry_run", dryRun, "batch_id", report.BatchID,
		"processed", t.Processed, "applied", t.Applied, "skipped", t.Skipped,
		"created", t.Created, "updated", t.Updated, "unchanged", t.Unchanged)
	return report, nil
}

func (im *Importer) applyRow(ctx context.Context, r *store.Repos, row sheet.Row, reference string, res *RowResult) error {
	c, err := serial.Decode(row.Serial)
	if err != nil {
		return skip(row, ReasonInvalidSerial)
	}
	res.Serial = c.String()
	if row.Err != nil {
		return skip(row, row.Err.Error())
	}

	resolution, err := im.resolver.ResolveSerial(ctx, r, c, row.Description, row.Location)
	if err != nil {
		return err
	}
	res.Warnings = resolution.Warnings

	if row.Sold > row.Stocked {
		return skip(row, ReasonSoldExceedsStock)
	}
	if !row.QuantityBlank && row.Stocked-row.Sold != row.Quantity {
		return skip(row, ReasonQuantityMismatch)
	}

	opts := EntryOptions{Reference: reference}
	rec, err := r.Inventory.GetBySerial(ctx, c.String())
	if err != nil {
		return err
	}

	if rec == nil {
		res.Outcome = OutcomeCreated
		if row.Stocked == 0 {
			_, err := im.ledger.Register(ctx, r, c.String(), opts)
			return err
		}
		if _, err := im.ledger.StockIn(ctx, r, c.String(), row.Stocked, opts); err != nil {
			return err
		}
		if row.Sold > 0 {
			_, err := im.ledger.Correct(ctx, r, c.String(), row.Stocked, row.Sold, opts)
			return err
		}
		return nil
	}

	if err := checkBinding(ctx, r, rec, c); err != nil {
		return err
	}
	delta := Delta{Stocked: row.Stocked - rec.Stocked, Sold: row.Sold - rec.Sold}
	if delta == (Delta{}) {
		res.Outcome = OutcomeUnchanged
		return nil
	}

	res.Outcome = OutcomeUpdated
	res.Delta = &delta
	if delta.Stocked > 0 && delta.Sold == 0 {
		_, err = im.ledger.StockIn(ctx, r, c.String(), delta.Stocked, opts)
	} else {
		_, err = im.ledger.Correct(ctx, r, c.String(), row.Stocked, row.Sold, opts)
	}
	return err
}

func skip(row sheet.Row, reason string) error {
	return &RowError{Row: row.Number, Serial: row.Serial, Reason: reason}
}

// asRowError turns a skip or a domain error into a RowError. Anything else
// is an infrastructure failure.
func asRowError(err error, row sheet.Row) (*RowError, bool) {
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		return rowErr, true
	}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInsufficientStock) {
		return &RowError{Row: row.Number, Serial: row.Serial, Reason: err.Error()}, true
	}
	return nil, false
}
