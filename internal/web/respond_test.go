package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/serial"
	"github.com/trevorjharder/Coastal-Waves/internal/sheet"
)

func TestWriteErrorStatus(t *testing.T) {
	s := &Server{logger: slog.New(slog.DiscardHandler)}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"format", &serial.FormatError{Input: "x", Reason: "bad"}, http.StatusBadRequest},
		{"validation", domain.Invalid("quantity", "must be positive"), http.StatusBadRequest},
		{"not found", &domain.NotFoundError{Entity: "inventory record", Key: "PTG-A-B-C-0001"}, http.StatusNotFound},
		{"insufficient", &domain.InsufficientStockError{Serial: "PTG-A-B-C-0001", Available: 1, Requested: 2}, http.StatusConflict},
		{"missing columns", &domain.ValidationError{Field: "file", Reason: "x", Err: &sheet.MissingColumnsError{Columns: []string{"sold"}}}, http.StatusUnprocessableEntity},
		{"wrapped", fmt.Errorf("failed to sell: %w", domain.ErrNotFound), http.StatusNotFound},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/x", nil)
			s.writeError(w, r, tt.err)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "disk on fire")
			}
		})
	}
}

func TestQueryTime(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?from=2026-02-01&to=2026-03-01T12:00:00Z&bad=feb", nil)

	from, err := queryTime(r, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), from)

	to, err := queryTime(r, "to")
	require.NoError(t, err)
	assert.Equal(t, 12, to.Hour())

	missing, err := queryTime(r, "since")
	require.NoError(t, err)
	assert.True(t, missing.IsZero())

	_, err = queryTime(r, "bad")
	assert.Error(t, err)
}

func TestQueryInt64(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?location_id=7&painting_id=x", nil)

	n, err := queryInt64(r, "location_id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = queryInt64(r, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = queryInt64(r, "painting_id")
	assert.Error(t, err)
}
