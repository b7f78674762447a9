// Package http provides HTTP server and handler implementations.
//
// This file holds the parsing of chart query strings and snapshot bodies.
// Bodies may be JSON or form encoded, the latter being what HTMX posts.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agencia/internal/chart"
	"agencia/internal/core"
)

// maxBodyBytes bounds snapshot request bodies.
const maxBodyBytes = 64 << 10

// ChartParams is the UI state carried by a chart partial request.
type ChartParams struct {
	Year   int
	Filter chart.Filter
	Width  float64
	// Hover is the hovered index, -1 when idle.
	Hover int
	// Pointer holds surface coordinates when the client sent px/py instead
	// of an index.
	Pointer *chart.Point
}

// ParseChartParams reads year, filter, width, hover and px/py from a query.
// Missing or malformed values fall back to the current year, all series,
// the default width and no hover.
func ParseChartParams(query url.Values, now time.Time) ChartParams {
	p := ChartParams{
		Year:   now.Year(),
		Filter: chart.ParseFilter(query.Get("filter")),
		Width:  chart.DefaultWidth,
		Hover:  -1,
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && core.ValidateYear(y) == nil {
			p.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("width")); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil && w > 0 && w < 10000 {
			p.Width = w
		}
	}
	if v := strings.TrimSpace(query.Get("hover")); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			p.Hover = i
		}
	}
	if p.Hover < 0 {
		x, errX := strconv.ParseFloat(strings.TrimSpace(query.Get("px")), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(query.Get("py")), 64)
		if errX == nil && errY == nil {
			p.Pointer = &chart.Point{X: x, Y: y}
		}
	}

	return p
}

// Query encodes the params back into a query string, for links that keep
// the current state.
func (p ChartParams) Query() string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(p.Year))
	q.Set("filter", string(p.Filter))
	q.Set("width", strconv.FormatFloat(p.Width, 'f', -1, 64))
	if p.Hover >= 0 {
		q.Set("hover", strconv.Itoa(p.Hover))
	}
	return q.Encode()
}

// ParseYear reads the year query parameter, defaulting to now.
func ParseYear(query url.Values, now time.Time) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return now.Year(), nil
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidYear, v)
	}
	if err := core.ValidateYear(y); err != nil {
		return 0, err
	}
	return y, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// SnapshotInput collects the fields of a snapshot submission as typed by the
// user, so a failed submission can be echoed back.
type SnapshotInput struct {
	Year     string
	Month    string
	Income   string
	Expenses string
	Assets   string
	Balance  string
}

// SnapshotInputFrom reads the snapshot fields from a parsed body.
func SnapshotInputFrom(p *RequestBodyParser) SnapshotInput {
	return SnapshotInput{
		Year:     p.Get("year"),
		Month:    p.Get("month"),
		Income:   p.Get("income"),
		Expenses: p.Get("expenses"),
		Assets:   p.Get("assets"),
		Balance:  p.Get("balance"),
	}
}

// Snapshot converts the input into a validated snapshot. Balance defaults to
// income minus expenses and may be negative when given explicitly.
func (in SnapshotInput) Snapshot() (core.Snapshot, error) {
	year, err := strconv.Atoi(in.Year)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("%w: %q", core.ErrInvalidYear, in.Year)
	}
	month, err := strconv.Atoi(in.Month)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("%w: %q", core.ErrInvalidMonth, in.Month)
	}

	amounts := make([]core.Money, 3)
	for i, f := range []struct{ name, value string }{
		{"income", in.Income}, {"expenses", in.Expenses}, {"assets", in.Assets},
	} {
		m, err := core.ParseMoney(f.value)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("%s: %w", f.name, err)
		}
		amounts[i] = m
	}

	snap := core.NewSnapshot(year, month, amounts[0], amounts[1], amounts[2])
	if b := strings.TrimSpace(in.Balance); b != "" {
		neg := strings.HasPrefix(b, "-")
		m, err := core.ParseMoney(strings.TrimPrefix(b, "-"))
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("balance: %w", err)
		}
		if neg {
			m.Cents = -m.Cents
		}
		snap.Balance = m
	}
	if err := snap.Validate(); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
