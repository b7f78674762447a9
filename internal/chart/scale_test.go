package chart

import "testing"

func TestFrameMapping(t *testing.T) {
	f := Frame{Width: 600, N: 3, DomainMax: 3000}

	if got := f.InnerWidth(); got != 520 {
		t.Fatalf("InnerWidth = %v, want 520", got)
	}
	if got := f.InnerHeight(); got != 170 {
		t.Fatalf("InnerHeight = %v, want 170", got)
	}
	xs := []float64{60, 320, 580}
	for i, want := range xs {
		if got := f.X(i); got != want {
			t.Errorf("X(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestFrameSinglePointIsCentered(t *testing.T) {
	f := Frame{Width: 600, N: 1, DomainMax: 1000}
	if got := f.X(0); got != 320 {
		t.Fatalf("X(0) = %v, want 320", got)
	}
}

func TestFrameYBounds(t *testing.T) {
	widths := []float64{MinWidth, 200, 600, 1234.5}
	domains := []float64{1000, 3000, 47000}
	for _, w := range widths {
		for _, d := range domains {
			f := Frame{Width: w, N: 5, DomainMax: d}
			if got, want := f.Y(0), float64(PaddingTop)+f.InnerHeight(); got != want {
				t.Errorf("width %v domain %v: Y(0) = %v, want %v", w, d, got, want)
			}
			if got := f.Y(d); got != PaddingTop {
				t.Errorf("width %v domain %v: Y(max) = %v, want %d", w, d, got, PaddingTop)
			}
		}
	}
}

func TestTicks(t *testing.T) {
	f := Frame{Width: 600, N: 3, DomainMax: 3000}
	ticks := f.Ticks()
	if len(ticks) != TickCount {
		t.Fatalf("expected %d ticks, got %d", TickCount, len(ticks))
	}
	labels := []string{"0", "750", "1k", "2k", "3k"}
	for i, tk := range ticks {
		if tk.Label != labels[i] {
			t.Errorf("tick %d label = %q, want %q", i, tk.Label, labels[i])
		}
	}
	if ticks[0].Y != f.Baseline() || ticks[TickCount-1].Y != PaddingTop {
		t.Fatalf("ticks should span baseline to top, got %v..%v", ticks[0].Y, ticks[TickCount-1].Y)
	}
}

func TestCompactLabel(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{250, "250"},
		{999.9, "999"},
		{1000, "1k"},
		{1500, "1k"},
		{12345, "12k"},
		{100000, "100k"},
	}
	for _, tc := range cases {
		if got := CompactLabel(tc.in); got != tc.want {
			t.Errorf("CompactLabel(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDomainMax(t *testing.T) {
	small := []DataPoint{{Income: 100, Expenses: 900, Assets: 50}}
	cases := []struct {
		name   string
		data   []DataPoint
		filter Filter
		want   float64
	}{
		{"small values all", small, FilterAll, 1000},
		{"small values income", small, FilterIncome, 1000},
		{"rounds up", []DataPoint{{Income: 1450, Assets: 9000}}, FilterIncome, 2000},
		{"exact multiple", []DataPoint{{Assets: 3000}}, FilterAll, 3000},
		{"all zero", []DataPoint{{}, {}}, FilterAll, MinDomainMax},
		{"empty", nil, FilterAll, MinDomainMax},
		{"hidden series ignored", []DataPoint{{Income: 10, Expenses: 25000}}, FilterIncome, 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DomainMax(tc.data, tc.filter.Visible()); got != tc.want {
				t.Fatalf("DomainMax = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	cases := map[string]Filter{
		"":          FilterAll,
		"all":       FilterAll,
		"income":    FilterIncome,
		" Assets ":  FilterAssets,
		"EXPENSES":  FilterExpenses,
		"something": FilterAll,
	}
	for in, want := range cases {
		if got := ParseFilter(in); got != want {
			t.Errorf("ParseFilter(%q) = %q, want %q", in, got, want)
		}
	}
}
