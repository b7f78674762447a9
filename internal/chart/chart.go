package chart

import "agencia/internal/locale"

// MinWidth is the narrowest surface that still leaves a one pixel plot area.
const MinWidth = PaddingLeft + PaddingRight + 1

// Chart holds the input series plus the UI state that drives a render:
// filter selection, measured width and hover. A Chart has a single owner and
// is not safe for concurrent use.
type Chart struct {
	data   []DataPoint
	filter Filter
	width  float64
	hover  HoverState
	locale locale.Profile
}

// Option configures a Chart.
type Option func(*Chart)

// WithFilter sets the initial filter.
func WithFilter(f Filter) Option {
	return func(c *Chart) { c.filter = ParseFilter(string(f)) }
}

// WithWidth sets the initial surface width.
func WithWidth(w float64) Option {
	return func(c *Chart) { c.SetWidth(w) }
}

// WithLocale sets the profile used for series names and currency values.
func WithLocale(p locale.Profile) Option {
	return func(c *Chart) { c.locale = p }
}

// New returns an idle chart over data.
func New(data []DataPoint, opts ...Option) *Chart {
	c := &Chart{
		data:   data,
		filter: FilterAll,
		width:  DefaultWidth,
		hover:  Idle{},
		locale: locale.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of data points.
func (c *Chart) Len() int {
	return len(c.data)
}

// Filter returns the active filter.
func (c *Chart) Filter() Filter {
	return c.filter
}

// SetFilter changes the visible series. The Y domain is recomputed from the
// newly visible series and an active hover is re-anchored.
func (c *Chart) SetFilter(f Filter) {
	c.filter = ParseFilter(string(f))
	c.reanchor()
}

// Width returns the surface width.
func (c *Chart) Width() float64 {
	return c.width
}

// SetWidth records a new measured width. Non-positive values are ignored and
// anything narrower than MinWidth is raised to it.
func (c *Chart) SetWidth(w float64) {
	if w <= 0 {
		return
	}
	if w < MinWidth {
		w = MinWidth
	}
	c.width = w
	c.reanchor()
}

// Mount starts observing src and feeds every measurement into SetWidth.
// The caller owns the returned observer and must Stop it.
func (c *Chart) Mount(src WidthSource) *WidthObserver {
	obs := NewWidthObserver(src, c.SetWidth)
	obs.Start()
	return obs
}

// Hover returns the current hover state.
func (c *Chart) Hover() HoverState {
	return c.hover
}

// Enter moves to Hovering(i). Entering a different index replaces the
// current one; an index outside the data leaves the chart idle.
func (c *Chart) Enter(i int) {
	if i < 0 || i >= len(c.data) {
		c.hover = Idle{}
		return
	}
	f := c.frame()
	c.hover = Hovering{Index: i, Anchor: c.anchor(i, f)}
}

// Leave returns to Idle.
func (c *Chart) Leave() {
	c.hover = Idle{}
}

// PointerAt handles a pointer position in surface coordinates: inside a hit
// region it enters that index, anywhere else it leaves.
func (c *Chart) PointerAt(x, y float64) {
	f := c.frame()
	if y < PaddingTop || y > f.Baseline() {
		c.Leave()
		return
	}
	if i := RegionAt(HitRegions(f), x); i >= 0 {
		c.Enter(i)
		return
	}
	c.Leave()
}

func (c *Chart) reanchor() {
	if h, ok := c.hover.(Hovering); ok {
		c.Enter(h.Index)
	}
}

func (c *Chart) frame() Frame {
	return Frame{
		Width:     c.width,
		N:         len(c.data),
		DomainMax: DomainMax(c.data, c.filter.Visible()),
	}
}

// anchor returns the topmost visible point at index i.
func (c *Chart) anchor(i int, f Frame) Point {
	var best Point
	for n, s := range c.filter.Visible() {
		p := f.Point(i, s.Value(c.data[i]))
		if n == 0 || p.Y < best.Y {
			best = p
		}
	}
	return best
}
