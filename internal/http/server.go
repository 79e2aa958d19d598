// Package http serves the defaulter workflow over the web: an upload page,
// a processing endpoint that turns the billing exports into a report
// archive, and download endpoints for the archive and the run summary.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"feetrack/internal/cache"
	"feetrack/internal/config"
	"feetrack/internal/core"
	"feetrack/internal/feecal"
	"feetrack/internal/log"
	"feetrack/internal/middleware/ratelimit"
	"feetrack/internal/middleware/security"
	"feetrack/internal/middleware/trace"
	"feetrack/internal/services"
	appweb "feetrack/web"
)

// Run is one completed extraction held for download. The archive is built
// in memory; nothing a request produces touches disk.
type Run struct {
	ID      string
	AsOf    core.Date
	Stats   []core.SchoolStats
	Files   int
	Archive []byte
	Created time.Time
}

type appMetrics struct {
	uptime     time.Time
	totalRuns  int64
	failedRuns int64
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *log.Logger
	sl        *log.StructuredLogger

	extractor *services.Extractor
	schedules []feecal.Schedule

	maxUploadBytes int64
	runs           *cache.LRUCache[*Run]
	cacheMgr       *cache.Manager
	limiter        *ratelimit.Limiter
	detector       *security.Detector
	traceMW        *trace.Middleware

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(cfg *config.Config, schedules []feecal.Schedule, logger *log.Logger) *Server {
	s := &Server{
		Server: http.Server{
			Addr: ":" + cfg.Port,
		},
		logger:         logger,
		sl:             log.NewStructuredLogger(logger),
		extractor:      services.NewExtractor(schedules),
		schedules:      schedules,
		maxUploadBytes: cfg.MaxUploadBytes,
		runs:           cache.NewLRUCache[*Run](cfg.RunCacheSize, cfg.RunCacheTTL),
		cacheMgr:       cache.NewManager(),
		limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:       security.NewDetector(),
		appMetrics:     appMetrics{uptime: time.Now()},
	}
	s.traceMW = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	s.cacheMgr.Register(s.runs)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	r := mux.NewRouter()
	r.Use(
		log.Middleware(logger),
		s.traceMW.Middleware,
		log.RequestIDMiddleware(requestIDFromContext),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.watchForProbes,
	)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	r.Handle("/process", s.withRateLimit(http.HandlerFunc(s.handleProcess))).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}/reports.zip", s.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}/stats", s.handleStats).Methods(http.MethodGet)

	// Probes land on paths no route covers, so the watcher wraps the
	// not-found handler too.
	r.NotFoundHandler = s.watchForProbes(http.NotFoundHandler())

	s.Handler = r
	return s
}

func requestIDFromContext(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}

// withRateLimit guards the processing endpoint, the only route that parses
// full exports.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
	}
	return s.limiter.Middleware(s.detector.ExtractClientIP, onLimit)(next)
}

// watchForProbes logs requests matching known probe patterns. It never
// blocks; the school office shares one NAT address.
func (s *Server) watchForProbes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
