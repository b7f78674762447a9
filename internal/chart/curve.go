package chart

import (
	"strconv"
	"strings"
)

// Point is a position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is one cubic Bézier piece from Start to End.
type Segment struct {
	Start, C1, C2, End Point
}

// Curve is the smooth interpolation of an ordered point list.
// With fewer than three points Segments is empty and the curve is drawn as
// Points joined by straight lines.
type Curve struct {
	Points   []Point
	Segments []Segment
}

// slopes returns dy/dx for every consecutive pair.
func slopes(pts []Point) []float64 {
	s := make([]float64, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		s[i] = (pts[i+1].Y - pts[i].Y) / (pts[i+1].X - pts[i].X)
	}
	return s
}

// Tangents returns the tangent used at every point of a monotone curve.
// Endpoints take the adjacent segment slope. An interior point whose
// neighbouring slopes change sign or touch zero gets a flat tangent; every
// other interior point averages its two neighbouring slopes.
func Tangents(pts []Point) []float64 {
	n := len(pts)
	if n < 2 {
		return make([]float64, n)
	}
	s := slopes(pts)
	t := make([]float64, n)
	t[0] = s[0]
	t[n-1] = s[n-2]
	for i := 1; i < n-1; i++ {
		if s[i-1]*s[i] <= 0 {
			t[i] = 0
			continue
		}
		t[i] = (s[i-1] + s[i]) / 2
	}
	return t
}

// BuildCurve computes the Bézier segments through pts. Control points sit a
// third of the horizontal span away from each endpoint, lifted by that
// endpoint's tangent.
func BuildCurve(pts []Point) Curve {
	c := Curve{Points: pts}
	if len(pts) < 3 {
		return c
	}
	t := Tangents(pts)
	c.Segments = make([]Segment, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		p0, p1 := pts[i], pts[i+1]
		third := (p1.X - p0.X) / 3
		c.Segments[i] = Segment{
			Start: p0,
			C1:    Point{X: p0.X + third, Y: p0.Y + t[i]*third},
			C2:    Point{X: p1.X - third, Y: p1.Y - t[i+1]*third},
			End:   p1,
		}
	}
	return c
}

// Path returns the SVG path data of the curve.
func (c Curve) Path() string {
	if len(c.Points) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, c.Points[0])
	if len(c.Segments) == 0 {
		for _, p := range c.Points[1:] {
			b.WriteString(" L")
			writePoint(&b, p)
		}
		return b.String()
	}
	for _, seg := range c.Segments {
		b.WriteString(" C")
		writePoint(&b, seg.C1)
		b.WriteByte(' ')
		writePoint(&b, seg.C2)
		b.WriteByte(' ')
		writePoint(&b, seg.End)
	}
	return b.String()
}

// At evaluates the segment at parameter u in [0, 1].
func (s Segment) At(u float64) Point {
	v := 1 - u
	a, b, c, d := v*v*v, 3*v*v*u, 3*v*u*u, u*u*u
	return Point{
		X: a*s.Start.X + b*s.C1.X + c*s.C2.X + d*s.End.X,
		Y: a*s.Start.Y + b*s.C1.Y + c*s.C2.Y + d*s.End.Y,
	}
}

// SmoothPath returns the SVG path data of the monotone curve through pts:
// empty for no points, a lone move for one, a straight line for two.
func SmoothPath(pts []Point) string {
	return BuildCurve(pts).Path()
}

// AreaPath closes the smooth path down to baseline and back to the first
// point, for the gradient fill under a series. Fewer than two points have no
// area.
func AreaPath(pts []Point, baseline float64) string {
	if len(pts) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString(SmoothPath(pts))
	b.WriteString(" L")
	writePoint(&b, Point{X: pts[len(pts)-1].X, Y: baseline})
	b.WriteString(" L")
	writePoint(&b, Point{X: pts[0].X, Y: baseline})
	b.WriteString(" Z")
	return b.String()
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(formatCoord(p.X))
	b.WriteByte(',')
	b.WriteString(formatCoord(p.Y))
}

// formatCoord prints the shortest representation that parses back to v.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
