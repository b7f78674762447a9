package chart

import (
	"math"
	"strconv"
)

// Drawing surface constants, in pixels.
const (
	PaddingLeft   = 60
	PaddingRight  = 20
	PaddingTop    = 20
	PaddingBottom = 30
	ChartHeight   = 220
	DefaultWidth  = 600
)

// TickCount is the number of horizontal grid levels, 0 and DomainMax included.
const TickCount = 5

// Frame maps data space (index, value) to pixel space for n points drawn on a
// surface of the given width.
type Frame struct {
	Width     float64
	N         int
	DomainMax float64
}

// InnerWidth is the horizontal extent of the plot area.
func (f Frame) InnerWidth() float64 {
	return f.Width - PaddingLeft - PaddingRight
}

// InnerHeight is the vertical extent of the plot area.
func (f Frame) InnerHeight() float64 {
	return ChartHeight - PaddingTop - PaddingBottom
}

// Left is the x of the plot area's left edge.
func (f Frame) Left() float64 {
	return PaddingLeft
}

// Right is the x of the plot area's right edge.
func (f Frame) Right() float64 {
	return PaddingLeft + f.InnerWidth()
}

// Baseline is the y of value 0.
func (f Frame) Baseline() float64 {
	return PaddingTop + f.InnerHeight()
}

// X places index i. A single point sits at the center of the plot area;
// otherwise the first point is on the left edge and the last on the right.
func (f Frame) X(i int) float64 {
	if f.N <= 1 {
		return PaddingLeft + f.InnerWidth()/2
	}
	return PaddingLeft + float64(i)/float64(f.N-1)*f.InnerWidth()
}

// Y places a value. 0 maps to the baseline and DomainMax to the top padding.
// Values are not clamped.
func (f Frame) Y(v float64) float64 {
	h := f.InnerHeight()
	return PaddingTop + h - (v/f.DomainMax)*h
}

// Point projects the value of index i.
func (f Frame) Point(i int, v float64) Point {
	return Point{X: f.X(i), Y: f.Y(v)}
}

// Tick is one horizontal grid level.
type Tick struct {
	Value float64
	Y     float64
	Label string
}

// Ticks returns TickCount evenly spaced levels from 0 to DomainMax.
func (f Frame) Ticks() []Tick {
	ticks := make([]Tick, TickCount)
	for i := range ticks {
		v := f.DomainMax * float64(i) / float64(TickCount-1)
		ticks[i] = Tick{Value: v, Y: f.Y(v), Label: CompactLabel(v)}
	}
	return ticks
}

// CompactLabel shortens axis values: thousands become "<n>k" with the
// fraction truncated (12345 -> "12k"); smaller values print as integers.
func CompactLabel(v float64) string {
	if v >= 1000 {
		return strconv.FormatInt(int64(math.Trunc(v/1000)), 10) + "k"
	}
	return strconv.FormatInt(int64(math.Trunc(v)), 10)
}
