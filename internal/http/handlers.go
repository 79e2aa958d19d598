package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleIndex renders the upload page with the loaded fee calendars.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", "path", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	type scheduleRow struct {
		School  string
		Code    string
		Mode    string
		Periods int
	}
	rows := make([]scheduleRow, 0, len(s.schedules))
	for _, sched := range s.schedules {
		rows = append(rows, scheduleRow{
			School:  string(sched.School),
			Code:    sched.Code,
			Mode:    string(sched.Mode),
			Periods: len(sched.Periods),
		})
	}

	data := struct {
		Today     string
		Schedules []scheduleRow
	}{
		Today:     time.Now().Format("2006-01-02"),
		Schedules: rows,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	// Check templates
	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	// Check fee calendars
	if len(s.schedules) == 0 {
		checks["schedules"] = "failed: no fee calendars loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["schedules"] = fmt.Sprintf("ok (%d schools)", len(s.schedules))
		for _, sched := range s.schedules {
			if err := sched.Validate(); err != nil {
				checks["schedules"] = fmt.Sprintf("failed: %v", err)
				status = "not_ready"
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
	}

	// Check run cache health
	checks["run_cache"] = map[string]interface{}{
		"entries": s.runs.Size(),
		"status":  "ok",
	}

	// Check rate limiter
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.detector.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()
	traceMetrics := s.traceMW.GetMetrics()

	totalRuns := atomic.LoadInt64(&s.appMetrics.totalRuns)
	failedRuns := atomic.LoadInt64(&s.appMetrics.failedRuns)
	uptime := time.Since(s.appMetrics.uptime)

	cachedRuns := s.runs.Size()
	activeClients := s.limiter.ActiveClients()

	w.WriteHeader(http.StatusOK)

	// Write metrics in Prometheus-like format
	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP runs_total Total number of completed defaulter runs\n")
	fmt.Fprintf(w, "# TYPE runs_total counter\n")
	fmt.Fprintf(w, "runs_total %d\n\n", totalRuns)

	fmt.Fprintf(w, "# HELP runs_failed_total Total number of rejected or failed runs\n")
	fmt.Fprintf(w, "# TYPE runs_failed_total counter\n")
	fmt.Fprintf(w, "runs_failed_total %d\n\n", failedRuns)

	fmt.Fprintf(w, "# HELP run_cache_entries Run archives currently cached\n")
	fmt.Fprintf(w, "# TYPE run_cache_entries gauge\n")
	fmt.Fprintf(w, "run_cache_entries %d\n\n", cachedRuns)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", activeClients)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", uptime.Seconds())
}
