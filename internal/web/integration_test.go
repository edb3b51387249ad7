package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevorjharder/Coastal-Waves/internal/db"
	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/service"
	"github.com/trevorjharder/Coastal-Waves/internal/store"
	"github.com/trevorjharder/Coastal-Waves/internal/web"
)

// newTestServer sets up a real web.Server backed by in-memory SQLite.
func newTestServer(t *testing.T, maxUploadBytes int64) *httptest.Server {
	t.Helper()
	database, err := db.OpenForTesting()
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	svc := service.NewInventoryService(store.New(database), service.Options{}, logger)
	srv := httptest.NewServer(web.NewServer(svc, maxUploadBytes, logger))
	t.Cleanup(func() {
		srv.Close()
		_ = database.Close()
	})
	return srv
}

// doJSON sends body as JSON and decodes the response into out when out is
// non-nil. It returns the status code.
func doJSON(t *testing.T, srv *httptest.Server, method, path string, body, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// buildMultipartBody creates a multipart/form-data body with a "file" field.
func buildMultipartBody(t *testing.T, filename string, data []byte) (body *bytes.Buffer, contentType string) {
	t.Helper()
	body = &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func upload(t *testing.T, srv *httptest.Server, path, filename, content string, out any) int {
	t.Helper()
	body, contentType := buildMultipartBody(t, filename, []byte(content))
	resp, err := http.Post(srv.URL+path, contentType, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type apiError struct {
	Error string `json:"error"`
}

func TestIntegration_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 0)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestIntegration_EmptyListsAreArrays(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 0)

	for _, path := range []string{"/paintings", "/variants", "/locations", "/inventory", "/transactions"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		b, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "[]", strings.TrimSpace(string(b)), path)
	}
}

func TestIntegration_Catalog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 0)

	var painting domain.Painting
	status := doJSON(t, srv, http.MethodPost, "/paintings", map[string]string{"code": "SEASCAPE", "name": "Seascape"}, &painting)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Seascape", painting.Name)

	var apiErr apiError
	status = doJSON(t, srv, http.MethodPost, "/paintings", map[string]string{"code": "SEASCAPE"}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, apiErr.Error, "already exists")

	var loc domain.Location
	status = doJSON(t, srv, http.MethodPost, "/locations", map[string]any{"code": "STUDIO", "name": "Studio"}, &loc)
	require.Equal(t, http.StatusCreated, status)
	assert.False(t, loc.IsHome)

	status = doJSON(t, srv, http.MethodPut, "/locations/1/home", map[string]bool{"is_home": true}, &loc)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, loc.IsHome)

	status = doJSON(t, srv, http.MethodPut, "/locations/99/home", map[string]bool{"is_home": true}, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status = doJSON(t, srv, http.MethodPut, "/locations/abc/home", map[string]bool{"is_home": true}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var res service.Resolution
	req := service.ResolveRequest{
		PaintingCode: "SEASCAPE",
		PaintingName: "Other Name",
		Variant:      domain.VariantDescriptor{Category: "Canvas", Size: "24x36", Stretch: true},
		LocationCode: "STUDIO",
	}
	status = doJSON(t, srv, http.MethodPost, "/resolve", req, &res)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, res.PaintingCreated)
	assert.True(t, res.VariantCreated)
	assert.Equal(t, "Seascape", res.Painting.Name, "stored name wins")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Other Name", res.Warnings[0].Supplied)

	var variants []domain.Variant
	status = doJSON(t, srv, http.MethodGet, "/variants?painting_id=1", nil, &variants)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, variants, 1)
	assert.Equal(t, "CANV24X3SN", variants[0].Code)
}

func TestIntegration_PaintingAndVariantCRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 0)

	var painting domain.Painting
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/paintings", map[string]string{"code": "SEASCAPE"}, &painting))

	var got domain.Painting
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/paintings/"+strconv.FormatInt(painting.ID, 10), nil, &got))
	assert.Equal(t, "SEASCAPE", got.Code)

	var apiErr apiError
	assert.Equal(t, http.StatusNotFound, doJSON(t, srv, http.MethodGet, "/paintings/9999", nil, &apiErr))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, srv, http.MethodGet, "/paintings/abc", nil, &apiErr))

	var variant domain.Variant
	status := doJSON(t, srv, http.MethodPost, "/variants", map[string]any{
		"painting_id": painting.ID, "category": "Canvas", "size": "24x36", "stretch": true,
	}, &variant)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "CANV24X3SN", variant.Code)
	assert.Equal(t, painting.ID, variant.PaintingID)

	status = doJSON(t, srv, http.MethodPost, "/variants", map[string]any{"painting_id": painting.ID, "code": "CANV24X3SN"}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, status, "duplicate code")

	status = doJSON(t, srv, http.MethodPost, "/variants", map[string]any{"painting_id": 9999, "code": "M"}, &apiErr)
	assert.Equal(t, http.StatusNotFound, status)

	status = doJSON(t, srv, http.MethodPost, "/variants", map[string]any{"code": "M"}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, apiErr.Error, "painting_id")

	var variants []domain.Variant
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/variants?painting_id="+strconv.FormatInt(painting.ID, 10), nil, &variants))
	assert.Len(t, variants, 1)
}

func TestIntegration_StockAndSell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 0)

	var rec domain.InventoryRecord
	status := doJSON(t, srv, http.MethodPost, "/inventory/stock", map[string]any{"serial": "PTG-A-B-C-0001", "quantity": 10}, &rec)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10, rec.Quantity)

	var sale struct {
		Record      domain.InventoryRecord `json:"record"`
		Transaction domain.Transaction     `json:"transaction"`
	}
	status = doJSON(t, srv, http.MethodPost, "/inventory/sales", map[string]any{
		"serial": "PTG-A-B-C-0001", "quantity": 4, "unit_price": "25.00", "reference": "invoice 17",
	}, &sale)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 6, sale.Record.Quantity)
	assert.Equal(t, domain.KindSale, sale.Transaction.Kind)
	assert.True(t, sale.Transaction.UnitPrice.Decimal.Equal(decimal.RequireFromString("25")))

	var apiErr apiError
	status = doJSON(t, srv, http.MethodPost, "/inventory/sales", map[string]any{
		"serial": "PTG-A-B-C-0001", "quantity": 7, "unit_price": 1,
	}, &apiErr)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, apiErr.Error, "insufficient stock")

	status = doJSON(t, srv, http.MethodPost, "/inventory/sales", map[string]any{
		"serial": "PTG-A-B-C-0001", "quantity": 1,
	}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, apiErr.Error, "unit_price")

	status = doJSON(t, srv, http.MethodPost, "/inventory/stock", map[string]any{"serial": "PTG-A-B-0001", "quantity": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status = doJSON(t, srv, http.MethodPost, "/inventory/stock", map[string]any{"serial": "PTG-A-B-C-0001", "qty": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "unknown fields are rejected")

	status = doJSON(t, srv, http.MethodGet, "/inventory/PTG-A-B-C-0001", nil, &rec)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, rec.Sold)
	assert.Equal(t, 6, rec.Quantity)

	status = doJSON(t, srv, http.MethodGet, "/inventory/PTG-A-B-C-0002", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var sales struct {
		Locations []service.LocationSales `json:"locations"`
	}
	status = doJSON(t, srv, http.MethodGet, "/reports/sales", nil, &sales)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, sales.Locations, 1)
	assert.Equal(t, 4, sales.Locations[0].Sold)
	assert.Equal(t, "100.00", sales.Locations[0].Revenue.StringFixed(2))

	var txs []domain.Transaction
	status = doJSON(t, srv, http.MethodGet, "/transactions?serial=ptg-a-b-c-0001&kind=sale", nil, &txs)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, txs, 1)
	assert.Equal(t, "invoice 17", txs[0].Reference)

	status = doJSON(t, srv, http.MethodGet, "/transactions?kind=refund", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status = doJSON(t, srv, http.MethodGet, "/reports/sales?from=yesterday", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIntegration_CorrectionAndQuantity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 0)

	status := doJSON(t, srv, http.MethodPost, "/inventory/stock", map[string]any{"serial": "PTG-A-B-C-0001", "quantity": 10}, nil)
	require.Equal(t, http.StatusOK, status)

	var rec domain.InventoryRecord
	status = doJSON(t, srv, http.MethodPut, "/inventory/PTG-A-B-C-0001/correction", map[string]any{"stocked": 8, "sold": 2, "reference": "recount"}, &rec)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 8, rec.Stocked)
	assert.Equal(t, 2, rec.Sold)
	assert.Equal(t, 6, rec.Quantity)

	status = doJSON(t, srv, http.MethodPut, "/inventory/PTG-A-B-C-0001/correction", map[string]any{"stocked": 1, "sold": 2}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, srv, http.MethodPut, "/inventory/PTG-A-B-C-0001/quantity", map[string]any{"quantity": 3}, &rec)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, rec.Quantity)
	assert.Equal(t, 2, rec.Sold)

	var next struct {
		Serial string `json:"serial"`
	}
	status = doJSON(t, srv, http.MethodPost, "/serials/next", map[string]string{"painting": "a", "variant": "b", "location": "c"}, &next)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PTG-A-B-C-0002", next.Serial)
}

func TestIntegration_HomeSummary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 0)

	for _, code := range []string{"H1", "H2"} {
		status := doJSON(t, srv, http.MethodPost, "/locations", map[string]any{"code": code, "name": code, "is_home": true}, nil)
		require.Equal(t, http.StatusCreated, status)
	}
	for serialNumber, qty := range map[string]int{"PTG-P-V-H1-0001": 5, "PTG-P-V-H2-0001": 8} {
		status := doJSON(t, srv, http.MethodPost, "/inventory/stock", map[string]any{"serial": serialNumber, "quantity": qty}, nil)
		require.Equal(t, http.StatusOK, status)
	}
	for serialNumber, qty := range map[string]int{"PTG-P-V-H1-0001": 1, "PTG-P-V-H2-0001": 2} {
		status := doJSON(t, srv, http.MethodPost, "/inventory/sales", map[string]any{"serial": serialNumber, "quantity": qty, "unit_price": "20.00"}, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	var summary service.HomeSummary
	status := doJSON(t, srv, http.MethodGet, "/reports/home", nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, summary.Locations)
	assert.Equal(t, 10, summary.OnHand)
	assert.Equal(t, 3, summary.Sold)
	assert.Equal(t, "60.00", summary.Revenue.StringFixed(2))

	var stock struct {
		Locations []service.LocationStock `json:"locations"`
	}
	status = doJSON(t, srv, http.MethodGet, "/reports/stock", nil, &stock)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, stock.Locations, 2)
}

func TestIntegration_ImportDryRunThenCommit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 0)

	csv := "Serial,Description,Location,Stocked,Sold,Quantity\n" +
		"PTG-SEASCAPE-M-GALLERY1-0007,Seascape,Gallery One,10,3,7\n" +
		"PTG-A-B-C-0001,Alpha,Cellar,5,2,2\n"

	var dry service.Report
	status := upload(t, srv, "/import?dry_run=true", "inventory.csv", csv, &dry)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, dry.DryRun)
	assert.Empty(t, dry.BatchID)
	assert.Equal(t, service.Totals{Processed: 2, Applied: 1, Skipped: 1, Created: 1}, dry.Totals)

	status = doJSON(t, srv, http.MethodGet, "/inventory/PTG-SEASCAPE-M-GALLERY1-0007", nil, nil)
	assert.Equal(t, http.StatusNotFound, status, "dry run writes nothing")

	var committed service.Report
	status = upload(t, srv, "/import", "inventory.csv", csv, &committed)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, committed.DryRun)
	assert.NotEmpty(t, committed.BatchID)
	assert.Equal(t, dry.Rows, committed.Rows)
	require.NotNil(t, committed.Rows[1].Error)
	assert.Equal(t, service.ReasonQuantityMismatch, committed.Rows[1].Error.Reason)

	var rec domain.InventoryRecord
	status = doJSON(t, srv, http.MethodGet, "/inventory/PTG-SEASCAPE-M-GALLERY1-0007", nil, &rec)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 7, rec.Quantity)
}

func TestIntegration_ImportRejections(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t, 1024)

	var apiErr apiError
	status := upload(t, srv, "/import", "inventory.csv", "serial,stocked\nPTG-A-B-C-0001,1\n", &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, apiErr.Error, "quantity")

	status = upload(t, srv, "/import", "inventory.txt", "serial\n", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = upload(t, srv, "/import?dry_run=maybe", "inventory.csv", "serial\n", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = upload(t, srv, "/import", "inventory.csv", strings.Repeat("x", 4096), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)

	resp, err := http.Post(srv.URL+"/import", "text/plain", strings.NewReader("nope"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
