package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"agencia/internal/locale"
	applog "agencia/internal/log"
	"agencia/internal/middleware/ratelimit"
	"agencia/internal/middleware/security"
	"agencia/internal/middleware/trace"
	"agencia/internal/services"
	appweb "agencia/web"
)

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server. Zero values pick sensible defaults.
type Options struct {
	Logger             *applog.Logger
	Locale             locale.Profile
	RateLimitPerMinute int
	// Checks run by /readyz, keyed by name.
	Checks map[string]Pinger
	Now    func() time.Time
}

// appMetrics holds counters exposed on /metrics.
type appMetrics struct {
	uptime            time.Time
	snapshotsRecorded int64
	chartRenders      int64
	chartErrors       int64
}

type Server struct {
	http.Server
	logger     *applog.Logger
	structured *applog.StructuredLogger
	templates  *template.Template
	snapshots  *services.SnapshotService
	locale     locale.Profile
	checks     map[string]Pinger
	now        func() time.Time

	rateLimiter     *ratelimit.Limiter
	detector        *security.Detector
	traceMiddleware *trace.Middleware
	appMetrics      *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, snapshots *services.SnapshotService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	loc := opts.Locale
	if loc.Currency == "" {
		loc = locale.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger:      logger.WithComponent(applog.ComponentHTTP),
		structured:  applog.NewStructuredLogger(logger),
		snapshots:   snapshots,
		locale:      loc,
		checks:      opts.Checks,
		now:         now,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    security.NewDetector(),
		appMetrics:  &appMetrics{uptime: now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/snapshots", s.handleRecordSnapshot)
	mux.HandleFunc("/api/finance/series", s.handleSeriesAPI)
	// UI partials
	mux.HandleFunc("/ui/finance-chart", s.handleFinanceChart)
	mux.HandleFunc("/ui/finance-chart.svg", s.handleFinanceChartSVG)

	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit, http.MethodPost)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.traceMiddleware.Middleware(
		s.detector.Middleware(
			headers.Middleware(
				limited(mux))))

	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError("Muitas requisições. Tente novamente em instantes.").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
