package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"agencia/internal/chart"
	"agencia/internal/core"
	"agencia/internal/locale"
	applog "agencia/internal/log"
)

// chartTimeout bounds backend reads of a chart render.
const chartTimeout = 7 * time.Second

// filterLink is a legend filter button of the chart partial.
type filterLink struct {
	filterOption
	URL   string
	Color string
}

// yearSummary is the overview shown under the chart.
type yearSummary struct {
	Months        int
	TotalIncome   string
	TotalExpenses string
	Net           string
	NetNegative   bool
	LatestAssets  string
	LatestMonth   string
}

// chartPartial is the data of the finance_chart.html template.
type chartPartial struct {
	Year    int
	Lang    string
	Filter  chart.Filter
	Width   float64
	Hover   int
	BaseURL string
	SVGURL  string
	Filters []filterLink
	SVG     template.HTML
	Points  int
	Summary *yearSummary
	Error   string
}

// chartRender is a finished chart for one request.
type chartRender struct {
	View    chart.View
	Points  []chart.DataPoint
	Hovered int
}

// renderChart loads the year and applies the request UI state: filter, the
// measured width and the hover index or pointer position.
func (s *Server) renderChart(ctx context.Context, params ChartParams, loc locale.Profile) (chartRender, error) {
	ctx, cancel := context.WithTimeout(ctx, chartTimeout)
	defer cancel()

	points, err := s.snapshots.Series(ctx, params.Year, loc)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.chartErrors, 1)
		return chartRender{}, err
	}

	c := chart.New(points, chart.WithFilter(params.Filter), chart.WithLocale(loc))
	obs := c.Mount(chart.FixedWidth(params.Width))
	defer obs.Stop()

	switch {
	case params.Hover >= 0:
		c.Enter(params.Hover)
	case params.Pointer != nil:
		c.PointerAt(params.Pointer.X, params.Pointer.Y)
	}

	hovered := -1
	if h, ok := c.Hover().(chart.Hovering); ok {
		hovered = h.Index
	}
	atomic.AddInt64(&s.appMetrics.chartRenders, 1)
	s.structured.LogChartRendered(ctx, params.Year, string(c.Filter()), c.Width(), hovered, len(points))

	return chartRender{View: c.View(), Points: points, Hovered: hovered}, nil
}

func (s *Server) buildChartPartial(r *http.Request, params ChartParams, loc locale.Profile) chartPartial {
	base := url.Values{}
	base.Set("year", strconv.Itoa(params.Year))
	base.Set("lang", loc.Code())

	p := chartPartial{
		Year:   params.Year,
		Lang:   loc.Code(),
		Filter: params.Filter,
		Width:  params.Width,
		Hover:  -1,
	}

	for _, opt := range filterOptions(params.Filter, loc) {
		q := url.Values{}
		for k, v := range base {
			q[k] = v
		}
		q.Set("filter", string(opt.Value))
		color := ""
		if opt.Value != chart.FilterAll {
			color = chart.Series(opt.Value).Color()
		}
		p.Filters = append(p.Filters, filterLink{filterOption: opt, URL: "/ui/finance-chart?" + q.Encode(), Color: color})
	}
	base.Set("filter", string(params.Filter))
	p.BaseURL = "/ui/finance-chart?" + base.Encode()

	idle := params
	idle.Hover, idle.Pointer = -1, nil
	p.SVGURL = "/ui/finance-chart.svg?" + idle.Query() + "&lang=" + url.QueryEscape(loc.Code())

	res, err := s.renderChart(r.Context(), params, loc)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Finance chart error",
			applog.FieldError, err,
			applog.FieldYear, params.Year)
		p.Error = "Erro ao carregar os dados financeiros"
		return p
	}

	p.Width = res.View.Width
	p.Hover = res.Hovered
	p.Points = len(res.Points)
	// The SVG is built by the chart package with every text node escaped.
	p.SVG = template.HTML(res.View.SVG())

	if ov, err := s.snapshots.Overview(r.Context(), params.Year); err == nil && ov.Months > 0 {
		p.Summary = &yearSummary{
			Months:        ov.Months,
			TotalIncome:   loc.FormatCents(ov.TotalIncome.Cents),
			TotalExpenses: loc.FormatCents(ov.TotalExpenses.Cents),
			Net:           loc.FormatCents(ov.Net.Cents),
			NetNegative:   ov.Net.Cents < 0,
			LatestAssets:  loc.FormatCents(ov.LatestAssets.Cents),
			LatestMonth:   loc.MonthLabel(ov.LatestMonth),
		}
	}
	return p
}

// handleFinanceChart renders the chart partial for the UI state in the query.
func (s *Server) handleFinanceChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	params := ParseChartParams(r.URL.Query(), s.now())
	data := s.buildChartPartial(r, params, s.localeFor(r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.templates.ExecuteTemplate(w, "finance_chart.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error",
			applog.FieldError, err, "template", "finance_chart.html", applog.FieldYear, params.Year)
		_, _ = w.Write([]byte(`<section id="finance-chart" class="finance-chart"><div class="placeholder">Erro ao desenhar o gráfico</div></section>`))
	}
}

// handleFinanceChartSVG returns the bare SVG, for embedding and downloads.
func (s *Server) handleFinanceChartSVG(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	params := ParseChartParams(r.URL.Query(), s.now())
	res, err := s.renderChart(r.Context(), params, s.localeFor(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Finance chart error", applog.FieldError, err, applog.FieldYear, params.Year)
		http.Error(w, "chart unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := chart.RenderSVG(w, res.View); err != nil {
		s.logger.WarnContext(r.Context(), "Writing SVG failed", applog.FieldError, err)
	}
}

// seriesResponse is the JSON shape of /api/finance/series.
type seriesResponse struct {
	Year      int               `json:"year"`
	Locale    string            `json:"locale"`
	Currency  string            `json:"currency"`
	DomainMax float64           `json:"domain_max"`
	Points    []chart.DataPoint `json:"points"`
	Overview  overviewJSON      `json:"overview"`
}

type overviewJSON struct {
	Months        int     `json:"months"`
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	Net           float64 `json:"net"`
	LatestAssets  float64 `json:"latest_assets"`
	LatestMonth   int     `json:"latest_month"`
}

// handleSeriesAPI returns the chart data points of a year as JSON.
func (s *Server) handleSeriesAPI(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	year, err := ParseYear(r.URL.Query(), s.now())
	if err != nil {
		NewHTMXResponse().
			Status(http.StatusBadRequest).
			BodyJSON(map[string]string{"error": err.Error()}).
			Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), chartTimeout)
	defer cancel()

	loc := s.localeFor(r)
	points, err := s.snapshots.Series(ctx, year, loc)
	if err == nil {
		var ov core.YearOverview
		ov, err = s.snapshots.Overview(ctx, year)
		if err == nil {
			NewHTMXResponse().
				BodyJSON(seriesResponse{
					Year:      year,
					Locale:    loc.Code(),
					Currency:  loc.Currency,
					DomainMax: chart.DomainMax(points, chart.AllSeries),
					Points:    points,
					Overview: overviewJSON{
						Months:        ov.Months,
						TotalIncome:   ov.TotalIncome.Units(),
						TotalExpenses: ov.TotalExpenses.Units(),
						Net:           ov.Net.Units(),
						LatestAssets:  ov.LatestAssets.Units(),
						LatestMonth:   ov.LatestMonth,
					},
				}).
				Write(w)
			return
		}
	}

	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	s.logger.ErrorContext(r.Context(), "Series API error", applog.FieldError, err, applog.FieldYear, year)
	NewHTMXResponse().
		Status(status).
		BodyJSON(map[string]string{"error": "failed to load series"}).
		Write(w)
}
