package google

import (
	"strings"
	"testing"
)

func TestParseFinanceSheet(t *testing.T) {
	values := [][]interface{}{
		{"Month", "Income", "Expenses", "Assets", "Balance"},
		{1.0, 1000.0, 400.0, 2000.0, 600.0},
		{"Fev", "1500,5", 600.0, 2200.0},
		{"", "", "", ""},
		{"total", 2500.0, 1000.0, 4200.0},
		{3.0, 900.0, 1200.0, 2100.0, -300.0},
	}
	items, err := parseFinanceSheet(values, 2025)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 snapshots, got %d: %+v", len(items), items)
	}
	if items[0].Month != 1 || items[0].Income.Cents != 100000 || items[0].Balance.Cents != 60000 {
		t.Fatalf("unexpected january: %+v", items[0])
	}
	if items[1].Month != 2 || items[1].Income.Cents != 150050 || items[1].Balance.Cents != 90050 {
		t.Fatalf("unexpected february: %+v", items[1])
	}
	if items[2].Balance.Cents != -30000 || items[2].Year != 2025 {
		t.Fatalf("unexpected march: %+v", items[2])
	}
}

func TestParseFinanceSheet_HeaderMismatch(t *testing.T) {
	values := [][]interface{}{{"Mese", "Income", "Uscite", "Assets"}}
	_, err := parseFinanceSheet(values, 2025)
	if err == nil || !strings.Contains(err.Error(), "unexpected finance header: missing Month,Expenses") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseFinanceSheet_NegativeAmount(t *testing.T) {
	values := [][]interface{}{
		{"Month", "Income", "Expenses", "Assets"},
		{4.0, -1.0, 0.0, 0.0},
	}
	if _, err := parseFinanceSheet(values, 2025); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseFinanceSheet_Empty(t *testing.T) {
	items, err := parseFinanceSheet(nil, 2025)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty result, got %v %v", items, err)
	}
}

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in string
		m  int
		ok bool
	}{
		{"1", 1, true},
		{"12", 12, true},
		{"3.5", 0, false},
		{"13", 0, false},
		{"Dez", 12, true},
		{"September", 9, true},
		{"ago", 8, true},
		{"x", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		m, ok := parseMonth(tc.in)
		if m != tc.m || ok != tc.ok {
			t.Errorf("parseMonth(%q) = %d,%v want %d,%v", tc.in, m, ok, tc.m, tc.ok)
		}
	}
}

func TestFindMonthRow(t *testing.T) {
	values := [][]interface{}{
		{"Month"},
		{1.0},
		{},
		{"Mar"},
	}
	if got := findMonthRow(values, 3); got != 4 {
		t.Fatalf("findMonthRow(3) = %d, want 4", got)
	}
	if got := findMonthRow(values, 2); got != 0 {
		t.Fatalf("findMonthRow(2) = %d, want 0", got)
	}
}

func TestSheetNames(t *testing.T) {
	if got := yearPrefixedName("Finance", 2025); got != "2025 Finance" {
		t.Fatalf("yearPrefixedName = %q", got)
	}
	if got := yearPrefixedName("2024 Finance", 2025); got != "2024 Finance" {
		t.Fatalf("already prefixed name changed: %q", got)
	}
	if y, ok := yearOfSheet("2023 finance", "Finance"); !ok || y != 2023 {
		t.Fatalf("yearOfSheet = %d,%v", y, ok)
	}
	if _, ok := yearOfSheet("2023 Dashboard", "Finance"); ok {
		t.Fatal("other sheets must not match")
	}
	if got := quoteSheet("Bob's 2025"); got != "'Bob''s 2025'" {
		t.Fatalf("quoteSheet = %q", got)
	}
}
