package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"feetrack/internal/log"
	"feetrack/internal/report"
)

// handleProcess runs the full pipeline on one upload: parse the exports,
// determine defaulters, render the report tree and archive it in memory.
// Nothing is written anywhere until the whole input has parsed cleanly.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.failProcess(w, r, http.StatusRequestEntityTooLarge, "upload exceeds the size limit", err)
			return
		}
		s.failProcess(w, r, http.StatusBadRequest, "invalid upload form", err)
		return
	}

	snap, err := s.snapshotFromUpload(r)
	if err != nil {
		s.failProcess(w, r, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}

	result := s.extractor.Run(ctx, snap)
	files, err := report.Render(result)
	if err != nil {
		s.failProcess(w, r, http.StatusInternalServerError, "report rendering failed", err)
		return
	}

	var archive bytes.Buffer
	if err := report.Zip(&archive, files); err != nil {
		s.failProcess(w, r, http.StatusInternalServerError, "archive build failed", err)
		return
	}

	run := &Run{
		ID:      uuid.NewString(),
		AsOf:    result.AsOf,
		Stats:   result.Stats,
		Files:   len(files),
		Archive: archive.Bytes(),
		Created: time.Now(),
	}
	s.runs.Set(run.ID, run)

	atomic.AddInt64(&s.appMetrics.totalRuns, 1)
	s.sl.LogRunCompleted(ctx, run.ID, run.AsOf.Format("2006-01-02"), run.Files, len(run.Archive))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, runSummary(run))
		return
	}
	s.renderResult(w, r, run)
}

// handleDownload streams a cached run's report archive.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, ok := s.runs.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.logger.InfoContext(r.Context(), "Report archive downloaded",
		log.FieldRunID, run.ID,
		log.FieldArchiveSize, len(run.Archive),
		log.FieldOperation, log.OpDownload)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ZipName(run.AsOf)))
	w.Header().Set("Content-Length", strconv.Itoa(len(run.Archive)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(run.Archive)
}

// handleStats returns the run summary as JSON.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runs.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found or expired"})
		return
	}
	writeJSON(w, http.StatusOK, runSummary(run))
}

type schoolStatsView struct {
	School         string `json:"school"`
	TotalStudents  int    `json:"total_students"`
	Defaulters     int    `json:"defaulters"`
	Outstanding    string `json:"outstanding"`
	OutstandingINR string `json:"outstanding_inr"`
	GradesAffected int    `json:"grades_affected"`
}

func runSummary(run *Run) map[string]interface{} {
	schools := make([]schoolStatsView, 0, len(run.Stats))
	for _, st := range run.Stats {
		schools = append(schools, schoolStatsView{
			School:         string(st.School),
			TotalStudents:  st.TotalStudents,
			Defaulters:     st.Defaulters,
			Outstanding:    st.Outstanding.StringFixed(2),
			OutstandingINR: report.FormatINR(st.Outstanding),
			GradesAffected: st.GradesAffected,
		})
	}
	return map[string]interface{}{
		"run_id":        run.ID,
		"as_of":         run.AsOf.Format("2006-01-02"),
		"files":         run.Files,
		"archive_bytes": len(run.Archive),
		"download":      "/runs/" + run.ID + "/reports.zip",
		"schools":       schools,
	}
}

// renderResult renders the post-run summary page.
func (s *Server) renderResult(w http.ResponseWriter, r *http.Request, run *Run) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	type statRow struct {
		School         string
		TotalStudents  int
		Defaulters     int
		Outstanding    string
		GradesAffected int
	}
	data := struct {
		RunID    string
		AsOf     string
		Files    int
		Download string
		Stats    []statRow
	}{
		RunID:    run.ID,
		AsOf:     run.AsOf.Format("2006-01-02"),
		Files:    run.Files,
		Download: "/runs/" + run.ID + "/reports.zip",
	}
	for _, st := range run.Stats {
		data.Stats = append(data.Stats, statRow{
			School:         string(st.School),
			TotalStudents:  st.TotalStudents,
			Defaulters:     st.Defaulters,
			Outstanding:    report.FormatINR(st.Outstanding),
			GradesAffected: st.GradesAffected,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "result.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Result template execution failed", "error", err, "template", "result.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
