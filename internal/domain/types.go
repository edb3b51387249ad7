package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Painting struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Variant struct {
	ID         int64     `json:"id"`
	PaintingID int64     `json:"painting_id"`
	Code       string    `json:"code"`
	Category   string    `json:"category"`
	Size       string    `json:"size"`
	Stretch    bool      `json:"stretch"`
	Framing    bool      `json:"framing"`
	CreatedAt  time.Time `json:"created_at"`
}

// VariantDescriptor identifies a variant of a painting. Code is the serial
// token; the remaining fields form the variant's unique tuple.
type VariantDescriptor struct {
	Code     string `json:"code"`
	Category string `json:"category"`
	Size     string `json:"size"`
	Stretch  bool   `json:"stretch"`
	Framing  bool   `json:"framing"`
}

// HasDetails reports whether any descriptive field beyond Code was supplied.
func (d VariantDescriptor) HasDetails() bool {
	return d.Category != "" || d.Size != "" || d.Stretch || d.Framing
}

// Matches reports whether v carries the descriptive fields of d.
func (d VariantDescriptor) Matches(v *Variant) bool {
	return v.Category == d.Category && v.Size == d.Size && v.Stretch == d.Stretch && v.Framing == d.Framing
}

type Location struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsHome    bool      `json:"is_home"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryRecord is the ledger state of one serial number. Quantity is
// always Stocked - Sold.
type InventoryRecord struct {
	Serial     string    `json:"serial"`
	PaintingID int64     `json:"painting_id"`
	VariantID  int64     `json:"variant_id"`
	LocationID int64     `json:"location_id"`
	Stocked    int       `json:"stocked"`
	Sold       int       `json:"sold"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OnHand recomputes the on-hand quantity from the counters.
func (r *InventoryRecord) OnHand() int {
	return r.Stocked - r.Sold
}

type TransactionKind string

const (
	KindStockIn TransactionKind = "stock_in"
	KindSale    TransactionKind = "sale"
)

func (k TransactionKind) Valid() bool {
	return k == KindStockIn || k == KindSale
}

// Transaction is an immutable ledger event. Correction transactions are
// synthetic entries written by privileged overwrites; their Quantity is the
// signed delta applied to the matching counter.
type Transaction struct {
	ID         int64               `json:"id"`
	Serial     string              `json:"serial"`
	LocationID int64               `json:"location_id"`
	Kind       TransactionKind     `json:"kind"`
	Quantity   int                 `json:"quantity"`
	UnitPrice  decimal.NullDecimal `json:"unit_price"`
	Correction bool                `json:"correction"`
	Reference  string              `json:"reference,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Amount returns Quantity × UnitPrice, or zero when the price is unknown.
func (t *Transaction) Amount() decimal.Decimal {
	if !t.UnitPrice.Valid {
		return decimal.Zero
	}
	return t.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(t.Quantity)))
}
