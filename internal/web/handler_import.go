package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/trevorjharder/Coastal-Waves/internal/sheet"
)

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.badRequest(w, "invalid dry_run: "+v)
			return
		}
		dryRun = b
	}

	if r.ContentLength > s.maxUploadBytes {
		s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
			return
		}
		s.badRequest(w, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, "file is required")
		return
	}
	defer closeWithLog(file, "import upload", s.logger)

	format, err := sheet.FormatFromName(header.Filename)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	report, err := s.service.ImportSheet(r.Context(), file, format, dryRun)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("import request complete",
		"file", header.Filename,
		"dry_run", report.DryRun,
		"batch_id", report.BatchID,
		"processed", report.Totals.Processed,
		"skipped", report.Totals.Skipped,
	)
	s.writeJSON(w, http.StatusOK, report)
}
