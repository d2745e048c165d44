package web

// handlers.go implements the console API:
//
//	POST /api/import       CSV batch import (multipart or raw body)
//	POST /api/bulk-update  one change-set applied to selected records
//	GET  /api/export       CSV export of selected or all records
//	GET  /api/template     header-only CSV template download
//	GET  /api/runs         recent batch run history
//
// Batch responses carry exact counters but cap the per-record detail
// lists at the configured limit; a truncated list is flagged so clients
// can tell partial detail from complete detail.

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lapidary/console/internal/catalog"
	"github.com/lapidary/console/internal/logging"
	"github.com/lapidary/console/internal/store"
)

// BatchResponse is the JSON shape returned by batch endpoints. It embeds
// the outcome and adds truncation flags for the detail lists.
type BatchResponse struct {
	catalog.BatchOutcome
	ErrorsTruncated     bool      `json:"perRecordErrorsTruncated,omitempty"`
	DuplicatesTruncated bool      `json:"duplicatesTruncated,omitempty"`
	RunID               uuid.UUID `json:"runId,omitempty"`
}

// handleImport accepts a CSV batch and imports it. The CSV may arrive as
// a multipart upload under the "file" field or as the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	text, err := s.readCSV(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, r, http.StatusBadRequest, catalog.UserMessage{
			Message: "No CSV content received",
			Action:  "Attach a CSV file or send CSV text in the request body",
			Code:    "VAL001",
		})
		return
	}

	out, err := s.engine.ImportBatch(ctx, text, nil)
	if err != nil {
		s.respondError(w, r, err, importErrorStatus(err))
		return
	}

	resp := s.trimOutcome(out)
	if runID, err := s.store.RecordRun(ctx, store.RunImport, out, ""); err != nil {
		// The import itself already committed; history is best effort.
		logger.Error("record import run", "error", err)
	} else {
		resp.RunID = runID
	}

	respondJSON(w, http.StatusOK, resp)
}

// bulkUpdateRequest is the JSON body for POST /api/bulk-update. Fields
// are raw text keyed by column name and go through the same coercions as
// CSV ingest; a key mapped to empty text clears that field when it is
// optional, and is rejected for required fields like price.
type bulkUpdateRequest struct {
	Targets []catalog.Selection `json:"targets"`
	Fields  map[string]string   `json:"fields"`
	Reason  string              `json:"reason"`
}

func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req bulkUpdateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, catalog.UserMessage{
			Message: "Request body is not valid JSON",
			Action:  "Check the request format and try again",
			Code:    "VAL002",
		})
		return
	}

	set, issues := catalog.ParseUpdateSet(req.Fields)
	if len(issues) > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "invalid field values",
			"code":   "VAL005",
			"issues": issues,
		})
		return
	}

	out, err := s.engine.ApplyBulkUpdate(ctx, req.Targets, set, req.Reason, nil)
	if err != nil {
		s.respondError(w, r, err, bulkUpdateErrorStatus(err))
		return
	}

	resp := s.trimOutcome(out)
	if runID, err := s.store.RecordRun(ctx, store.RunBulkUpdate, out, req.Reason); err != nil {
		logger.Error("record bulk-update run", "error", err)
	} else {
		resp.RunID = runID
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleExport streams selected records as CSV. With an ids query
// parameter only those records export, in the given order; without it
// the full catalog exports.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var records []catalog.CatalogRecord
	var err error

	if raw := r.URL.Query().Get("ids"); raw != "" {
		var ids []uuid.UUID
		for _, part := range strings.Split(raw, ",") {
			id, parseErr := uuid.Parse(strings.TrimSpace(part))
			if parseErr != nil {
				writeError(w, r, http.StatusBadRequest, catalog.UserMessage{
					Message: "Invalid record id in request",
					Action:  "Check the selected records and try again",
					Code:    "VAL003",
				})
				return
			}
			ids = append(ids, id)
		}
		records, err = s.store.GetByIDs(ctx, ids)
	} else {
		records, err = s.store.List(ctx)
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	csvText, err := catalog.ExportCSV(records)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	filename := catalog.ExportFilename(records, time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write([]byte(csvText))
}

// handleTemplate serves a header-only CSV with every recognized column,
// ready to fill in and import.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog-template.csv"`)
	w.Write([]byte(strings.Join(catalog.ColumnNames(), ",") + "\n"))
}

// handleRuns returns recent batch runs, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Batch.DetailLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.store.RecentRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.BatchRun{}
	}
	respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readCSV extracts CSV text from the request, preferring a multipart
// "file" field and falling back to the raw body. Size is capped by the
// configured batch file size limit.
func (s *Server) readCSV(r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.Batch.MaxFileSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(s.cfg.Batch.MaxFileSize); err != nil {
			return "", err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// trimOutcome caps the detail lists at the configured limit. Counters
// are never adjusted.
func (s *Server) trimOutcome(out catalog.BatchOutcome) BatchResponse {
	resp := BatchResponse{BatchOutcome: out}
	limit := s.cfg.Batch.DetailLimit
	if limit > 0 && len(resp.Errors) > limit {
		resp.Errors = resp.Errors[:limit]
		resp.ErrorsTruncated = true
	}
	if limit > 0 && len(resp.Findings) > limit {
		resp.Findings = resp.Findings[:limit]
		resp.DuplicatesTruncated = true
	}
	return resp
}

// importErrorStatus maps batch-fatal import errors to HTTP status codes.
func importErrorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrInvalidHeader):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrTooManyBatches):
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func bulkUpdateErrorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrEmptyReason), errors.Is(err, catalog.ErrInvalidUpdateSet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrTooManyBatches):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
