package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/service"
)

type stockInRequest struct {
	Serial       string `json:"serial"`
	Quantity     int    `json:"quantity"`
	Reference    string `json:"reference"`
	PaintingName string `json:"painting_name"`
	LocationName string `json:"location_name"`
}

// UnitPrice accepts a JSON number or a decimal string.
type saleRequest struct {
	Serial    string              `json:"serial"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.NullDecimal `json:"unit_price"`
	Reference string              `json:"reference"`
}

type saleResponse struct {
	Record      *domain.InventoryRecord `json:"record"`
	Transaction *domain.Transaction     `json:"transaction"`
}

type correctionRequest struct {
	Stocked   int    `json:"stocked"`
	Sold      int    `json:"sold"`
	Reference string `json:"reference"`
}

type quantityRequest struct {
	Quantity  int    `json:"quantity"`
	Reference string `json:"reference"`
}

type nextSerialRequest struct {
	Painting string `json:"painting"`
	Variant  string `json:"variant"`
	Location string `json:"location"`
}

type nextSerialResponse struct {
	Serial string `json:"serial"`
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	locationID, err := queryInt64(r, "location_id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	records, err := s.service.ListRecords(r.Context(), locationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(records))
}

func (s *Server) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetRecord(r.Context(), r.PathValue("serial"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStockIn(w http.ResponseWriter, r *http.Request) {
	var req stockInRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	rec, err := s.service.StockIn(r.Context(), req.Serial, req.Quantity, service.EntryOptions{
		Reference:    req.Reference,
		PaintingName: req.PaintingName,
		LocationName: req.LocationName,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if !req.UnitPrice.Valid {
		s.badRequest(w, "unit_price is required")
		return
	}
	rec, tx, err := s.service.Sell(r.Context(), req.Serial, req.Quantity, req.UnitPrice.Decimal, service.EntryOptions{
		Reference: req.Reference,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saleResponse{Record: rec, Transaction: tx})
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req correctionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	rec, err := s.service.Correct(r.Context(), r.PathValue("serial"), req.Stocked, req.Sold, service.EntryOptions{
		Reference: req.Reference,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	rec, err := s.service.SetQuantity(r.Context(), r.PathValue("serial"), req.Quantity, service.EntryOptions{
		Reference: req.Reference,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleNextSerial(w http.ResponseWriter, r *http.Request) {
	var req nextSerialRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	next, err := s.service.NextSerial(r.Context(), req.Painting, req.Variant, req.Location)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nextSerialResponse{Serial: next})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := service.TransactionFilter{
		Serial: q.Get("serial"),
		Kind:   domain.TransactionKind(q.Get("kind")),
	}
	if f.Kind != "" && !f.Kind.Valid() {
		s.badRequest(w, "invalid kind: "+string(f.Kind))
		return
	}
	var err error
	if f.LocationID, err = queryInt64(r, "location_id"); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if f.From, err = queryTime(r, "from"); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if f.To, err = queryTime(r, "to"); err != nil {
		s.badRequest(w, err.Error())
		return
	}

	txs, err := s.service.ListTransactions(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(txs))
}
