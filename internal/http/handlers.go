package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"agencia/internal/chart"
	"agencia/internal/locale"
	applog "agencia/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().
		BodyJSON(map[string]interface{}{
			"status":    "ok",
			"timestamp": s.now().Format(time.RFC3339),
			"uptime":    s.now().Sub(s.appMetrics.uptime).Round(time.Second).String(),
		}).
		Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	stats := s.snapshots.CacheStats()
	checks["cache"] = map[string]interface{}{
		"entries": stats.Size,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	NewHTMXResponse().
		Status(httpStatus).
		BodyJSON(map[string]interface{}{
			"status":    status,
			"timestamp": s.now().Format(time.RFC3339),
			"checks":    checks,
		}).
		Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	cacheStats := s.snapshots.CacheStats()

	metric := func(name, help, kind string, value interface{}) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}

	w.WriteHeader(http.StatusOK)
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "Total number of 5xx responses", "counter", traceMetrics.ServerErrors)
	metric("snapshots_recorded_total", "Snapshots recorded through the dashboard", "counter", atomic.LoadInt64(&s.appMetrics.snapshotsRecorded))
	metric("chart_renders_total", "Finance chart renders", "counter", atomic.LoadInt64(&s.appMetrics.chartRenders))
	metric("chart_errors_total", "Finance chart renders that failed to load data", "counter", atomic.LoadInt64(&s.appMetrics.chartErrors))
	metric("cache_hits_total", "Snapshot cache hits", "counter", cacheStats.Hits)
	metric("cache_misses_total", "Snapshot cache misses", "counter", cacheStats.Misses)
	metric("cache_entries", "Current snapshot cache entries", "gauge", cacheStats.Size)
	metric("rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(s.now().Sub(s.appMetrics.uptime).Seconds()))
}

// filterOption is one button of the series filter.
type filterOption struct {
	Value  chart.Filter
	Label  string
	Active bool
}

// monthOption is one entry of the month select of the snapshot form.
type monthOption struct {
	Value    int
	Label    string
	Selected bool
}

func filterOptions(active chart.Filter, loc locale.Profile) []filterOption {
	opts := []filterOption{{Value: chart.FilterAll, Label: "Todos", Active: active == chart.FilterAll}}
	for _, s := range chart.AllSeries {
		f := chart.Filter(s.Key())
		opts = append(opts, filterOption{Value: f, Label: loc.SeriesName(s.Key()), Active: active == f})
	}
	return opts
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := s.now()
	params := ParseChartParams(r.URL.Query(), now)
	loc := s.localeFor(r)

	years, err := s.snapshots.Years(r.Context(), params.Year)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Year list error", applog.FieldError, err)
		years = []int{params.Year}
	}

	months := make([]monthOption, 12)
	for i := range months {
		months[i] = monthOption{Value: i + 1, Label: loc.MonthLabel(i + 1), Selected: i+1 == int(now.Month())}
	}

	data := struct {
		Lang   string
		Year   int
		Years  []int
		Months []monthOption
		Chart  chartPartial
	}{
		Lang:   loc.Code(),
		Year:   params.Year,
		Years:  years,
		Months: months,
		Chart:  s.buildChartPartial(r, params, loc),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard template execution failed",
			applog.FieldError, err, "template", "dashboard.html")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
