package web

import (
	"net/http"

	"github.com/trevorjharder/Coastal-Waves/internal/service"
)

type stockReportResponse struct {
	Locations []service.LocationStock `json:"locations"`
}

type salesReportResponse struct {
	Window    service.Window          `json:"window"`
	Locations []service.LocationSales `json:"locations"`
}

type homeSummaryResponse struct {
	Window service.Window `json:"window"`
	*service.HomeSummary
}

func parseWindow(r *http.Request) (service.Window, error) {
	from, err := queryTime(r, "from")
	if err != nil {
		return service.Window{}, err
	}
	to, err := queryTime(r, "to")
	if err != nil {
		return service.Window{}, err
	}
	return service.Window{From: from, To: to}, nil
}

func (s *Server) handleStockReport(w http.ResponseWriter, r *http.Request) {
	stock, err := s.service.StockReport(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stockReportResponse{Locations: nonNil(stock)})
}

func (s *Server) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	sales, err := s.service.SalesReport(r.Context(), window)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, salesReportResponse{Window: window, Locations: nonNil(sales)})
}

func (s *Server) handleHomeSummary(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	summary, err := s.service.HomeSummary(r.Context(), window)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, homeSummaryResponse{Window: window, HomeSummary: summary})
}
