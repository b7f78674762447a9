package locale

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"pt-BR", "BRL"},
		{"pt", "BRL"},
		{"en-US", "USD"},
		{"en", "USD"},
		{"it-IT", "EUR"},
		{"", "BRL"},
		{"not a tag!", "BRL"},
	}
	for _, tc := range cases {
		if got := Lookup(tc.code).Currency; got != tc.want {
			t.Errorf("Lookup(%q).Currency = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	fallback := Default()
	if got := Match("it-IT,it;q=0.9,en;q=0.8", fallback); got.Currency != "EUR" {
		t.Fatalf("expected italian profile, got %s", got.Code())
	}
	if got := Match("en-GB;q=0.9", fallback); got.Currency != "USD" {
		t.Fatalf("expected english profile, got %s", got.Code())
	}
	if got := Match("", fallback); got.Currency != fallback.Currency {
		t.Fatalf("empty header should return fallback")
	}
	if got := Match(";;;", fallback); got.Currency != fallback.Currency {
		t.Fatalf("malformed header should return fallback")
	}
}

func TestMonthLabel(t *testing.T) {
	p := Default()
	if p.MonthLabel(2) != "Fev" {
		t.Fatalf("pt-BR February = %q", p.MonthLabel(2))
	}
	if Lookup("en").MonthLabel(2) != "Feb" {
		t.Fatalf("en February = %q", Lookup("en").MonthLabel(2))
	}
	if p.MonthLabel(0) != "" || p.MonthLabel(13) != "" {
		t.Fatalf("out of range months should be empty")
	}
}

func TestFormatCurrency(t *testing.T) {
	got := Default().FormatCurrency(1234.56)
	if !strings.Contains(got, "R$") || !strings.Contains(got, "1.234,56") {
		t.Fatalf("pt-BR format = %q", got)
	}
	got = Lookup("en-US").FormatCurrency(1234.56)
	if !strings.Contains(got, "1,234.56") {
		t.Fatalf("en-US format = %q", got)
	}
	if got := Default().FormatCents(250); !strings.Contains(got, "2,50") {
		t.Fatalf("FormatCents(250) = %q", got)
	}
}

func TestFormatCurrencyRoundsToCents(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0.29, "0,29"},
		{1.15, "1,15"},
		{4.35, "4,35"},
		{1234.56, "1.234,56"},
		{-1.15, "1,15"},
	}
	for _, tt := range tests {
		if got := Default().FormatCurrency(tt.amount); !strings.Contains(got, tt.want) {
			t.Errorf("FormatCurrency(%v) = %q, want it to contain %q", tt.amount, got, tt.want)
		}
	}
	// Values arrive as cents/100.
	for _, cents := range []int64{29, 115, 435, 99999} {
		amount := float64(cents) / 100
		if got, want := Default().FormatCurrency(amount), Default().FormatCents(cents); got != want {
			t.Errorf("FormatCurrency(%v) = %q, FormatCents(%d) = %q", amount, got, cents, want)
		}
	}
}

func TestSeriesName(t *testing.T) {
	if Default().SeriesName("assets") != "Patrimônio" {
		t.Fatalf("unexpected assets name %q", Default().SeriesName("assets"))
	}
	if Default().SeriesName("other") != "other" {
		t.Fatalf("unknown keys should pass through")
	}
}
