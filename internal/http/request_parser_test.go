package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"agencia/internal/chart"
	"agencia/internal/core"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func TestParseChartParams(t *testing.T) {
	tests := []struct {
		name        string
		query       url.Values
		wantYear    int
		wantFilter  chart.Filter
		wantWidth   float64
		wantHover   int
		wantPointer bool
	}{
		{
			name:       "empty query uses defaults",
			query:      url.Values{},
			wantYear:   2024,
			wantFilter: chart.FilterAll,
			wantWidth:  chart.DefaultWidth,
			wantHover:  -1,
		},
		{
			name:       "all values provided",
			query:      url.Values{"year": {"2023"}, "filter": {"income"}, "width": {"812.5"}, "hover": {"2"}},
			wantYear:   2023,
			wantFilter: chart.FilterIncome,
			wantWidth:  812.5,
			wantHover:  2,
		},
		{
			name:       "invalid values are ignored",
			query:      url.Values{"year": {"abc"}, "filter": {"profit"}, "width": {"-3"}, "hover": {"x"}},
			wantYear:   2024,
			wantFilter: chart.FilterAll,
			wantWidth:  chart.DefaultWidth,
			wantHover:  -1,
		},
		{
			name:       "out of range year and huge width",
			query:      url.Values{"year": {"1850"}, "width": {"20000"}},
			wantYear:   2024,
			wantFilter: chart.FilterAll,
			wantWidth:  chart.DefaultWidth,
			wantHover:  -1,
		},
		{
			name:        "pointer coordinates without hover",
			query:       url.Values{"px": {"120"}, "py": {"40"}},
			wantYear:    2024,
			wantFilter:  chart.FilterAll,
			wantWidth:   chart.DefaultWidth,
			wantHover:   -1,
			wantPointer: true,
		},
		{
			name:       "hover wins over pointer",
			query:      url.Values{"hover": {"0"}, "px": {"120"}, "py": {"40"}},
			wantYear:   2024,
			wantFilter: chart.FilterAll,
			wantWidth:  chart.DefaultWidth,
			wantHover:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseChartParams(tt.query, fixedNow)
			if p.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", p.Year, tt.wantYear)
			}
			if p.Filter != tt.wantFilter {
				t.Errorf("Filter = %q, want %q", p.Filter, tt.wantFilter)
			}
			if p.Width != tt.wantWidth {
				t.Errorf("Width = %v, want %v", p.Width, tt.wantWidth)
			}
			if p.Hover != tt.wantHover {
				t.Errorf("Hover = %d, want %d", p.Hover, tt.wantHover)
			}
			if (p.Pointer != nil) != tt.wantPointer {
				t.Errorf("Pointer = %v, want set=%v", p.Pointer, tt.wantPointer)
			}
		})
	}
}

func TestChartParamsQuery(t *testing.T) {
	p := ChartParams{Year: 2024, Filter: chart.FilterAssets, Width: 640, Hover: -1}
	got, err := url.ParseQuery(p.Query())
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if got.Get("year") != "2024" || got.Get("filter") != "assets" || got.Get("width") != "640" {
		t.Fatalf("unexpected query %v", got)
	}
	if got.Has("hover") {
		t.Fatalf("idle params should not carry hover, got %v", got)
	}

	back := ParseChartParams(got, fixedNow)
	if back.Year != p.Year || back.Filter != p.Filter || back.Width != p.Width || back.Hover != -1 {
		t.Fatalf("round trip = %+v, want %+v", back, p)
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"", 2024, false},
		{"2021", 2021, false},
		{" 2030 ", 2030, false},
		{"abc", 0, true},
		{"1999", 0, true},
		{"2101", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseYear(url.Values{"year": {tt.value}}, fixedNow)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidYear) {
					t.Fatalf("ParseYear(%q) error = %v, want ErrInvalidYear", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseYear(%q): %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ParseYear(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"DELETE allowed with multiple", http.MethodDelete, []string{http.MethodDelete, http.MethodPost}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequirePOST(t *testing.T) {
	postReq := httptest.NewRequest(http.MethodPost, "/test", nil)
	if result := RequirePOST(postReq); result != nil {
		t.Error("RequirePOST should allow POST requests")
	}

	getReq := httptest.NewRequest(http.MethodGet, "/test", nil)
	if result := RequirePOST(getReq); result == nil {
		t.Error("RequirePOST should reject GET requests")
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"year": `))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	// A second call reports the same error.
	if err := parser.Parse(); err == nil {
		t.Fatal("expected cached error")
	}
}

func TestSnapshotInput_Snapshot(t *testing.T) {
	tests := []struct {
		name        string
		in          SnapshotInput
		wantErr     error
		wantBalance int64
	}{
		{
			name:        "derived balance",
			in:          SnapshotInput{Year: "2024", Month: "3", Income: "1500,50", Expenses: "1000", Assets: "20000"},
			wantBalance: 50050,
		},
		{
			name:        "explicit negative balance",
			in:          SnapshotInput{Year: "2024", Month: "3", Income: "100", Expenses: "300", Assets: "0", Balance: "-250.10"},
			wantBalance: -25010,
		},
		{
			name:    "non numeric year",
			in:      SnapshotInput{Year: "next", Month: "3", Income: "1", Expenses: "1", Assets: "1"},
			wantErr: core.ErrInvalidYear,
		},
		{
			name:    "month out of range",
			in:      SnapshotInput{Year: "2024", Month: "13", Income: "1", Expenses: "1", Assets: "1"},
			wantErr: core.ErrInvalidMonth,
		},
		{
			name:    "negative income",
			in:      SnapshotInput{Year: "2024", Month: "1", Income: "-5", Expenses: "1", Assets: "1"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "missing assets",
			in:      SnapshotInput{Year: "2024", Month: "1", Income: "5", Expenses: "1"},
			wantErr: core.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := tt.in.Snapshot()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Snapshot(): %v", err)
			}
			if snap.Balance.Cents != tt.wantBalance {
				t.Errorf("Balance = %d, want %d", snap.Balance.Cents, tt.wantBalance)
			}
		})
	}
}

func TestSnapshotInputFrom_Form(t *testing.T) {
	body := "year=2024&month=2&income=10&expenses=4&assets=99&balance="
	req := httptest.NewRequest(http.MethodPost, "/snapshots", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	in := SnapshotInputFrom(parser)
	want := SnapshotInput{Year: "2024", Month: "2", Income: "10", Expenses: "4", Assets: "99"}
	if in != want {
		t.Fatalf("SnapshotInputFrom = %+v, want %+v", in, want)
	}
}
