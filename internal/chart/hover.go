package chart

// HoverState is either Idle or Hovering. The unexported method closes the set.
type HoverState interface {
	hoverState()
}

// Idle means no data index is under the pointer.
type Idle struct{}

// Hovering means the pointer is over the hit region of Index. Anchor is the
// highest visible point at that index, where the tooltip is attached.
type Hovering struct {
	Index  int
	Anchor Point
}

func (Idle) hoverState()     {}
func (Hovering) hoverState() {}

// Dot radii for normal and hovered data points.
const (
	DotRadius        = 3.5
	HoverDotRadius   = 5.0
	edgeAlignPortion = 0.3
)

// HitRegion is the invisible rectangle that maps pointer x to a data index.
type HitRegion struct {
	Index  int
	X0, X1 float64
	Y0, Y1 float64
}

// Width returns the horizontal extent of the region.
func (r HitRegion) Width() float64 {
	return r.X1 - r.X0
}

// Contains reports whether x falls in [X0, X1).
func (r HitRegion) Contains(x float64) bool {
	return x >= r.X0 && x < r.X1
}

// HitRegions returns one region per index. Each spans a slot of
// InnerWidth/(N-1) centered on X(i), clipped to the plot area, so the regions
// tile [Left, Right] with shared boundaries.
func HitRegions(f Frame) []HitRegion {
	if f.N == 0 {
		return nil
	}
	regions := make([]HitRegion, f.N)
	for i := range regions {
		regions[i] = HitRegion{
			Index: i,
			X0:    f.boundary(i),
			X1:    f.boundary(i + 1),
			Y0:    PaddingTop,
			Y1:    f.Baseline(),
		}
	}
	return regions
}

// boundary is the left edge of region i; boundary(N) is the plot's right edge.
func (f Frame) boundary(i int) float64 {
	if i <= 0 {
		return f.Left()
	}
	if i >= f.N {
		return f.Right()
	}
	slot := f.InnerWidth() / float64(f.N-1)
	return PaddingLeft + (float64(i)-0.5)*slot
}

// RegionAt resolves pointer x to a region index, or -1 when x is outside the
// plot area. The right edge belongs to the last region.
func RegionAt(regions []HitRegion, x float64) int {
	for _, r := range regions {
		if r.Contains(x) {
			return r.Index
		}
	}
	if n := len(regions); n > 0 && x == regions[n-1].X1 {
		return regions[n-1].Index
	}
	return -1
}

// Align is the horizontal placement of the tooltip relative to its anchor.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// TooltipAlign keeps the tooltip inside the container: anchors in the
// rightmost 30% of the width are right-aligned, the leftmost 30% left-aligned,
// anything else centered.
func TooltipAlign(anchorX, width float64) Align {
	switch {
	case anchorX > width*(1-edgeAlignPortion):
		return AlignRight
	case anchorX < width*edgeAlignPortion:
		return AlignLeft
	}
	return AlignCenter
}
