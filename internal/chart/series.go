// Package chart builds the monthly finance line chart: income, expenses and
// assets drawn as smooth monotone curves over a shared zero-based Y axis.
//
// Everything here is recomputed from the input on each call. Nothing in this
// package performs I/O besides writing the finished SVG to an io.Writer.
package chart

import (
	"math"
	"strings"
)

// DataPoint is one time bucket of the chart, typically a month.
// Values are expected to be finite and non-negative.
type DataPoint struct {
	Label    string  `json:"label"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Assets   float64 `json:"assets"`
	Balance  float64 `json:"balance,omitempty"`
}

// Series identifies one of the three plotted lines.
type Series string

const (
	Income   Series = "income"
	Expenses Series = "expenses"
	Assets   Series = "assets"
)

// AllSeries lists the series in legend and drawing order.
var AllSeries = []Series{Income, Expenses, Assets}

var seriesColors = map[Series]string{
	Income:   "#16a34a",
	Expenses: "#dc2626",
	Assets:   "#2563eb",
}

// Color returns the fixed stroke color of the series.
func (s Series) Color() string {
	return seriesColors[s]
}

// Key returns the series identifier used in query strings and translations.
func (s Series) Key() string {
	return string(s)
}

// Value extracts the series value from a data point.
func (s Series) Value(p DataPoint) float64 {
	switch s {
	case Income:
		return p.Income
	case Expenses:
		return p.Expenses
	case Assets:
		return p.Assets
	}
	return 0
}

// Filter is the single-select legend filter.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterIncome   Filter = "income"
	FilterExpenses Filter = "expenses"
	FilterAssets   Filter = "assets"
)

// ParseFilter maps a user-supplied value to a Filter, defaulting to FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterIncome, FilterExpenses, FilterAssets:
		return f
	}
	return FilterAll
}

// Visible returns the series drawn under this filter, in legend order.
func (f Filter) Visible() []Series {
	switch f {
	case FilterIncome:
		return []Series{Income}
	case FilterExpenses:
		return []Series{Expenses}
	case FilterAssets:
		return []Series{Assets}
	}
	return AllSeries
}

// MinDomainMax is the Y ceiling used when every visible value is zero.
const MinDomainMax = 1000

// DomainMax returns the Y axis ceiling: the largest value among the visible
// series rounded up to the next multiple of 1000, or MinDomainMax when that
// maximum is zero.
func DomainMax(data []DataPoint, visible []Series) float64 {
	var peak float64
	for _, p := range data {
		for _, s := range visible {
			if v := s.Value(p); v > peak {
				peak = v
			}
		}
	}
	if peak <= 0 {
		return MinDomainMax
	}
	return math.Ceil(peak/1000) * 1000
}
