package chart

// View is everything needed to draw the chart once. It is rebuilt from the
// Chart on every call to View and never cached.
type View struct {
	Width     float64
	Height    float64
	Empty     bool
	NoData    string
	Filter    Filter
	DomainMax float64
	Ticks     []Tick
	Labels    []AxisLabel
	Series    []SeriesView
	Legend    []LegendEntry
	Regions   []HitRegion
	Guide     *Guide
	Tooltip   *Tooltip
}

// AxisLabel is a category tick under the plot.
type AxisLabel struct {
	X    float64
	Text string
}

// SeriesView is one drawn series.
type SeriesView struct {
	Series Series
	Name   string
	Color  string
	Points []Point
	Path   string
	Area   string
	Dots   []Dot
}

// Dot is a data point marker.
type Dot struct {
	Point
	Index int
	R     float64
}

// LegendEntry pairs a visible series with its color.
type LegendEntry struct {
	Series Series
	Name   string
	Color  string
}

// Guide is the dashed vertical line under the hovered index.
type Guide struct {
	X      float64
	Y0, Y1 float64
}

// Tooltip is the floating box shown while hovering.
type Tooltip struct {
	Index  int
	Label  string
	Anchor Point
	Align  Align
	Rows   []TooltipRow
}

// TooltipRow is one visible series value at the hovered index.
type TooltipRow struct {
	Series Series
	Name   string
	Color  string
	Amount float64
	Value  string
}

// View computes the chart for the current data, filter, width and hover.
func (c *Chart) View() View {
	v := View{
		Width:  c.width,
		Height: ChartHeight,
		Filter: c.filter,
	}
	if len(c.data) == 0 {
		v.Empty = true
		v.NoData = c.locale.NoDataText()
		return v
	}

	f := c.frame()
	visible := c.filter.Visible()
	hovered := -1
	if h, ok := c.hover.(Hovering); ok {
		hovered = h.Index
	}

	v.DomainMax = f.DomainMax
	v.Ticks = f.Ticks()
	v.Regions = HitRegions(f)
	v.Labels = make([]AxisLabel, len(c.data))
	for i, p := range c.data {
		v.Labels[i] = AxisLabel{X: f.X(i), Text: p.Label}
	}

	for _, s := range visible {
		pts := make([]Point, len(c.data))
		dots := make([]Dot, len(c.data))
		for i, p := range c.data {
			pts[i] = f.Point(i, s.Value(p))
			r := DotRadius
			if i == hovered {
				r = HoverDotRadius
			}
			dots[i] = Dot{Point: pts[i], Index: i, R: r}
		}
		name := c.locale.SeriesName(s.Key())
		v.Series = append(v.Series, SeriesView{
			Series: s,
			Name:   name,
			Color:  s.Color(),
			Points: pts,
			Path:   SmoothPath(pts),
			Area:   AreaPath(pts, f.Baseline()),
			Dots:   dots,
		})
		v.Legend = append(v.Legend, LegendEntry{Series: s, Name: name, Color: s.Color()})
	}

	if h, ok := c.hover.(Hovering); ok {
		v.Guide = &Guide{X: f.X(h.Index), Y0: PaddingTop, Y1: f.Baseline()}
		tip := &Tooltip{
			Index:  h.Index,
			Label:  c.data[h.Index].Label,
			Anchor: h.Anchor,
			Align:  TooltipAlign(h.Anchor.X, c.width),
		}
		for _, s := range visible {
			amount := s.Value(c.data[h.Index])
			tip.Rows = append(tip.Rows, TooltipRow{
				Series: s,
				Name:   c.locale.SeriesName(s.Key()),
				Color:  s.Color(),
				Amount: amount,
				Value:  c.locale.FormatCurrency(amount),
			})
		}
		v.Tooltip = tip
	}
	return v
}
