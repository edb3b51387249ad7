package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/trevorjharder/Coastal-Waves/internal/service"
)

const defaultMaxUploadBytes = 32 << 20

type Server struct {
	service        *service.InventoryService
	mux            *http.ServeMux
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewServer builds the JSON API. maxUploadBytes caps import uploads; zero
// means the default of 32 MiB.
func NewServer(svc *service.InventoryService, maxUploadBytes int64, logger *slog.Logger) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	s := &Server{
		service:        svc,
		mux:            http.NewServeMux(),
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /paintings", s.handleListPaintings)
	s.mux.HandleFunc("POST /paintings", s.handleCreatePainting)
	s.mux.HandleFunc("GET /paintings/{id}", s.handleGetPainting)
	s.mux.HandleFunc("GET /variants", s.handleListVariants)
	s.mux.HandleFunc("POST /variants", s.handleCreateVariant)
	s.mux.HandleFunc("GET /locations", s.handleListLocations)
	s.mux.HandleFunc("POST /locations", s.handleCreateLocation)
	s.mux.HandleFunc("PUT /locations/{id}/home", s.handleSetHome)
	s.mux.HandleFunc("POST /resolve", s.handleResolve)

	s.mux.HandleFunc("GET /inventory", s.handleListInventory)
	s.mux.HandleFunc("GET /inventory/{serial}", s.handleGetInventory)
	s.mux.HandleFunc("POST /inventory/stock", s.handleStockIn)
	s.mux.HandleFunc("POST /inventory/sales", s.handleSell)
	s.mux.HandleFunc("PUT /inventory/{serial}/correction", s.handleCorrect)
	s.mux.HandleFunc("PUT /inventory/{serial}/quantity", s.handleSetQuantity)
	s.mux.HandleFunc("POST /serials/next", s.handleNextSerial)
	s.mux.HandleFunc("GET /transactions", s.handleListTransactions)

	s.mux.HandleFunc("GET /reports/stock", s.handleStockReport)
	s.mux.HandleFunc("GET /reports/sales", s.handleSalesReport)
	s.mux.HandleFunc("GET /reports/home", s.handleHomeSummary)

	s.mux.HandleFunc("POST /import", s.handleImport)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
