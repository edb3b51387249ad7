package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/store"
)

// Window bounds a sales report to [From, To). Zero times leave that side
// open.
type Window struct {
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
}

type LocationStock struct {
	LocationID int64  `json:"location_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	IsHome     bool   `json:"is_home"`
	OnHand     int    `json:"on_hand"`
}

type LocationSales struct {
	LocationID int64           `json:"location_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	IsHome     bool            `json:"is_home"`
	Sold       int             `json:"sold"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type HomeSummary struct {
	Locations int             `json:"locations"`
	OnHand    int             `json:"on_hand"`
	Sold      int             `json:"sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Aggregator folds the ledger into reports. Nothing is cached; every call
// reads the current state.
type Aggregator struct {
	recorder *Recorder
}

func NewAggregator(recorder *Recorder) *Aggregator {
	return &Aggregator{recorder: recorder}
}

// StockReport returns the on-hand quantity of every location, idle ones
// included.
func (a *Aggregator) StockReport(ctx context.Context, r *store.Repos) ([]LocationStock, error) {
	locations, err := r.Locations.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := r.Inventory.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	onHand := make(map[int64]int, len(locations))
	for _, rec := range records {
		onHand[rec.LocationID] += rec.OnHand()
	}

	report := make([]LocationStock, 0, len(locations))
	for _, l := range locations {
		report = append(report, LocationStock{
			LocationID: l.ID,
			Code:       l.Code,
			Name:       l.Name,
			IsHome:     l.IsHome,
			OnHand:     onHand[l.ID],
		})
	}
	return report, nil
}

// SalesReport totals sale transactions per location within w. A sale with
// no unit price counts toward sold but adds nothing to revenue.
func (a *Aggregator) SalesReport(ctx context.Context, r *store.Repos, w Window) ([]LocationSales, error) {
	locations, err := r.Locations.List(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := a.recorder.List(ctx, r, TransactionFilter{Kind: domain.KindSale, From: w.From, To: w.To})
	if err != nil {
		return nil, err
	}

	type totals struct {
		sold    int
		revenue decimal.Decimal
	}
	byLocation := make(map[int64]*totals, len(locations))
	for _, t := range sales {
		tot, ok := byLocation[t.LocationID]
		if !ok {
			tot = &totals{revenue: decimal.Zero}
			byLocation[t.LocationID] = tot
		}
		tot.sold += t.Quantity
		tot.revenue = tot.revenue.Add(t.Amount())
	}

	report := make([]LocationSales, 0, len(locations))
	for _, l := range locations {
		row := LocationSales{
			LocationID: l.ID,
			Code:       l.Code,
			Name:       l.Name,
			IsHome:     l.IsHome,
			Revenue:    decimal.Zero,
		}
		if tot, ok := byLocation[l.ID]; ok {
			row.Sold = tot.sold
			row.Revenue = tot.revenue
		}
		report = append(report, row)
	}
	return report, nil
}

// HomeSummary combines stock and sales over all home locations.
func (a *Aggregator) HomeSummary(ctx context.Context, r *store.Repos, w Window) (*HomeSummary, error) {
	stock, err := a.StockReport(ctx, r)
	if err != nil {
		return nil, err
	}
	sales, err := a.SalesReport(ctx, r, w)
	if err != nil {
		return nil, err
	}

	summary := &HomeSummary{Revenue: decimal.Zero}
	for _, s := range stock {
		if s.IsHome {
			summary.Locations++
			summary.OnHand += s.OnHand
		}
	}
	for _, s := range sales {
		if s.IsHome {
			summary.Sold += s.Sold
			summary.Revenue = summary.Revenue.Add(s.Revenue)
		}
	}
	return summary, nil
}
