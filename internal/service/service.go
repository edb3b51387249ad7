package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/serial"
	"github.com/trevorjharder/Coastal-Waves/internal/sheet"
	"github.com/trevorjharder/Coastal-Waves/internal/store"
)

type Options struct {
	// ImportSheet is the workbook worksheet read by ImportSheet.
	ImportSheet string
	// Now overrides the clock used to timestamp transactions.
	Now func() time.Time
}

// InventoryService opens a unit of work per call and runs the resolver,
// ledger, recorder, aggregator or importer inside it.
type InventoryService struct {
	store       *store.Store
	resolver    *Resolver
	ledger      *Ledger
	recorder    *Recorder
	aggregator  *Aggregator
	importer    *Importer
	importSheet string
	logger      *slog.Logger
}

func NewInventoryService(st *store.Store, opts Options, logger *slog.Logger) *InventoryService {
	resolver := NewResolver(logger)
	recorder := NewRecorder(opts.Now)
	ledger := NewLedger(resolver, recorder, logger)
	return &InventoryService{
		store:       st,
		resolver:    resolver,
		ledger:      ledger,
		recorder:    recorder,
		aggregator:  NewAggregator(recorder),
		importer:    NewImporter(st, resolver, ledger, logger),
		importSheet: opts.ImportSheet,
		logger:      logger,
	}
}

func (s *InventoryService) ListPaintings(ctx context.Context) ([]*domain.Painting, error) {
	var out []*domain.Painting
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = r.Paintings.List(ctx)
		return err
	})
	return out, err
}

// CreatePainting adds a painting. The code must be a serial token not yet in
// use.
func (s *InventoryService) CreatePainting(ctx context.Context, code, name string) (*domain.Painting, error) {
	if !serial.IsToken(code) {
		return nil, domain.Invalid("code", "%q is not a valid serial token", code)
	}
	if name == "" {
		name = code
	}
	var out *domain.Painting
	err := s.store.Write(ctx, func(r *store.Repos) error {
		existing, err := r.Paintings.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Invalid("code", "painting %s already exists", code)
		}
		out, err = r.Paintings.Create(ctx, code, name)
		return err
	})
	return out, err
}

func (s *InventoryService) GetPainting(ctx context.Context, id int64) (*domain.Painting, error) {
	var out *domain.Painting
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = r.Paintings.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &domain.NotFoundError{Entity: "painting", Key: strconv.FormatInt(id, 10)}
	}
	return out, nil
}

// CreateVariant adds a variant to a painting. An empty code is derived from
// the descriptor; a bare code is stored with the code as its size. Both the
// code and the descriptor must be new for the painting.
func (s *InventoryService) CreateVariant(ctx context.Context, paintingID int64, d domain.VariantDescriptor) (*domain.Variant, error) {
	if d.Code == "" {
		if !d.HasDetails() {
			return nil, domain.Invalid("variant", "a code or descriptor is required")
		}
		d.Code = serial.VariantCode(d.Category, d.Size, d.Stretch, d.Framing)
	}
	if !serial.IsToken(d.Code) {
		return nil, domain.Invalid("code", "%q is not a valid serial token", d.Code)
	}
	if !d.HasDetails() {
		d.Size = d.Code
	}

	var out *domain.Variant
	err := s.store.Write(ctx, func(r *store.Repos) error {
		p, err := r.Paintings.GetByID(ctx, paintingID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.NotFoundError{Entity: "painting", Key: strconv.FormatInt(paintingID, 10)}
		}
		if existing, err := r.Variants.GetByCode(ctx, p.ID, d.Code); err != nil {
			return err
		} else if existing != nil {
			return domain.Invalid("code", "painting %s already has variant %s", p.Code, d.Code)
		}
		if existing, err := r.Variants.GetByDescriptor(ctx, p.ID, d); err != nil {
			return err
		} else if existing != nil {
			return domain.Invalid("code", "painting %s already has this variant under code %q", p.Code, existing.Code)
		}
		out, err = r.Variants.Create(ctx, p.ID, d)
		if err != nil {
			return err
		}
		s.logger.Info("variant created", "variant_id", out.ID, "painting_id", p.ID, "code", out.Code)
		return nil
	})
	return out, err
}

// ListVariants returns every variant, or those of one painting when
// paintingID is positive.
func (s *InventoryService) ListVariants(ctx context.Context, paintingID int64) ([]*domain.Variant, error) {
	var out []*domain.Variant
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = r.Variants.List(ctx, paintingID)
		return err
	})
	return out, err
}

func (s *InventoryService) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	var out []*domain.Location
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = r.Locations.List(ctx)
		return err
	})
	return out, err
}

// CreateLocation adds a location. Code and name must both be unused.
func (s *InventoryService) CreateLocation(ctx context.Context, code, name string, isHome bool) (*domain.Location, error) {
	if !serial.IsToken(code) {
		return nil, domain.Invalid("code", "%q is not a valid serial token", code)
	}
	if name == "" {
		name = code
	}
	var out *domain.Location
	err := s.store.Write(ctx, func(r *store.Repos) error {
		if existing, err := r.Locations.GetByCode(ctx, code); err != nil {
			return err
		} else if existing != nil {
			return domain.Invalid("code", "location %s already exists", code)
		}
		if existing, err := r.Locations.GetByName(ctx, name); err != nil {
			return err
		} else if existing != nil {
			return domain.Invalid("name", "%q already belongs to location %s", name, existing.Code)
		}
		var err error
		out, err = r.Locations.Create(ctx, code, name, isHome)
		return err
	})
	return out, err
}

func (s *InventoryService) SetHome(ctx context.Context, locationID int64, isHome bool) (*domain.Location, error) {
	var out *domain.Location
	err := s.store.Write(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.resolver.SetHome(ctx, r, locationID, isHome)
		return err
	})
	return out, err
}

func (s *InventoryService) Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	var out *Resolution
	err := s.store.Write(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.resolver.Resolve(ctx, r, req)
		return err
	})
	return out, err
}

func (s *InventoryService) ListRecords(ctx context.Context, locationID int64) ([]*domain.InventoryRecord, error) {
	var out []*domain.InventoryRecord
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.ledger.List(ctx, r, locationID)
		return err
	})
	return out, err
}

func (s *InventoryService) GetRecord(ctx context.Context, serialNumber string) (*domain.InventoryRecord, error) {
	var out *domain.InventoryRecord
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.ledger.Get(ctx, r, serialNumber)
		return err
	})
	return out, err
}

func (s *InventoryService) StockIn(ctx context.Context, serialNumber string, qty int, opts EntryOptions) (*domain.InventoryRecord, error) {
	var out *domain.InventoryRecord
	err := s.store.Write(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.ledger.StockIn(ctx, r, serialNumber, qty, opts)
		return err
	})
	return out, err
}

func (s *InventoryService) Sell(ctx context.Context, serialNumber string, qty int, unitPrice decimal.Decimal, opts EntryOptions) (*domain.InventoryRecord, *domain.Transaction, error) {
	var (
		rec *domain.InventoryRecord
		tx  *domain.Transaction
	)
	err := s.store.Write(ctx, func(r *store.Repos) error {
		var err error
		rec, tx, err = s.ledger.Sell(ctx, r, serialNumber, qty, unitPrice, opts)
		return err
	})
	return rec, tx, err
}

func (s *InventoryService) Correct(ctx context.Context, serialNumber string, stocked, sold int, opts EntryOptions) (*domain.InventoryRecord, error) {
	var out *domain.InventoryRecord
	err := s.store.Write(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.ledger.Correct(ctx, r, serialNumber, stocked, sold, opts)
		return err
	})
	return out, err
}

func (s *InventoryService) SetQuantity(ctx context.Context, serialNumber string, quantity int, opts EntryOptions) (*domain.InventoryRecord, error) {
	var out *domain.InventoryRecord
	err := s.store.Write(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.ledger.SetQuantity(ctx, r, serialNumber, quantity, opts)
		return err
	})
	return out, err
}

// NextSerial returns the next unused serial for a painting, variant and
// location. The serial is not reserved.
func (s *InventoryService) NextSerial(ctx context.Context, painting, variant, location string) (string, error) {
	var out string
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.ledger.NextSerial(ctx, r, painting, variant, location)
		return err
	})
	return out, err
}

func (s *InventoryService) ListTransactions(ctx context.Context, f TransactionFilter) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.recorder.List(ctx, r, f)
		return err
	})
	return out, err
}

func (s *InventoryService) StockReport(ctx context.Context) ([]LocationStock, error) {
	var out []LocationStock
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.aggregator.StockReport(ctx, r)
		return err
	})
	return out, err
}

func (s *InventoryService) SalesReport(ctx context.Context, w Window) ([]LocationSales, error) {
	var out []LocationSales
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.aggregator.SalesReport(ctx, r, w)
		return err
	})
	return out, err
}

func (s *InventoryService) HomeSummary(ctx context.Context, w Window) (*HomeSummary, error) {
	var out *HomeSummary
	err := s.store.Read(ctx, func(r *store.Repos) error {
		var err error
		out, err = s.aggregator.HomeSummary(ctx, r, w)
		return err
	})
	return out, err
}

func (s *InventoryService) Import(ctx context.Context, rows []sheet.Row, dryRun bool) (*Report, error) {
	return s.importer.Import(ctx, rows, dryRun)
}

// ImportSheet parses a spreadsheet and imports its rows. A sheet with
// missing columns is rejected before anything is written.
func (s *InventoryService) ImportSheet(ctx context.Context, r io.Reader, format sheet.Format, dryRun bool) (*Report, error) {
	rows, err := sheet.Parse(r, format, sheet.Options{Sheet: s.importSheet})
	if err != nil {
		return nil, &domain.ValidationError{Field: "file", Reason: err.Error(), Err: err}
	}
	return s.importer.Import(ctx, rows, dryRun)
}
