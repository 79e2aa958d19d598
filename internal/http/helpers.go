package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"feetrack/internal/books"
	"feetrack/internal/books/memory"
	"feetrack/internal/core"
	"feetrack/internal/log"
)

// snapshotFromUpload assembles the engine input from the uploaded tables.
// Contacts and invoices are required; payments are optional. The run date
// defaults to today when the form leaves as_of blank.
func (s *Server) snapshotFromUpload(r *http.Request) (core.Snapshot, error) {
	asOf := core.DateOf(time.Now())
	if v := strings.TrimSpace(r.FormValue("as_of")); v != "" {
		parsed := core.ParseDate(v)
		if parsed.IsZero() {
			return core.Snapshot{}, fmt.Errorf("as_of: unrecognized date %q", v)
		}
		asOf = parsed
	}

	contacts, err := formGrid(r, "contacts")
	if err != nil {
		return core.Snapshot{}, err
	}
	invoices, err := formGrid(r, "invoices")
	if err != nil {
		return core.Snapshot{}, err
	}
	payments, err := optionalFormGrid(r, "payments")
	if err != nil {
		return core.Snapshot{}, err
	}

	src, err := memory.FromGrids(contacts, invoices, payments)
	if err != nil {
		return core.Snapshot{}, err
	}
	return books.LoadSnapshot(r.Context(), src, src, src, asOf)
}

// formGrid reads one required uploaded table.
func formGrid(r *http.Request, field string) ([][]string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("%s: no file uploaded", field)
		}
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	defer file.Close()
	return books.ReadGrid(header.Filename, file)
}

// optionalFormGrid reads an uploaded table that may be absent.
func optionalFormGrid(r *http.Request, field string) ([][]string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	defer file.Close()
	return books.ReadGrid(header.Filename, file)
}

// failProcess reports a failed run to the client and the logs.
func (s *Server) failProcess(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	atomic.AddInt64(&s.appMetrics.failedRuns, 1)
	s.sl.LogError(r.Context(), "Defaulter run failed", err, log.ComponentHTTP, log.OpUpload,
		log.NewFields().WithClientIP(s.detector.ExtractClientIP(r)))

	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	http.Error(w, msg, status)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
