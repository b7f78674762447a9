package chart

import (
	"fmt"
	"html"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	gridColor     = "#e5e7eb"
	textColor     = "#6b7280"
	tooltipBg     = "#111827"
	tooltipText   = "#f9fafb"
	fontSize      = 11
	tooltipRowH   = 16
	tooltipPad    = 8
	tooltipGap    = 10
	charWidth     = 6.5
	legendSpacing = 16
)

// RenderSVG writes the view as a standalone SVG document fragment.
func RenderSVG(w io.Writer, v View) error {
	var sb strings.Builder
	if v.Empty {
		writeEmpty(&sb, v)
	} else {
		writeChart(&sb, v)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// SVG returns the rendered view as a string.
func (v View) SVG() string {
	var sb strings.Builder
	_ = RenderSVG(&sb, v)
	return sb.String()
}

func svgOpen(sb *strings.Builder, v View, class string) {
	fmt.Fprintf(sb, `<svg xmlns="http://www.w3.org/2000/svg" class="%s" width="%s" height="%s" viewBox="0 0 %s %s" overflow="visible" font-family="sans-serif" font-size="%d" data-filter="%s">`,
		class, formatCoord(v.Width), formatCoord(v.Height), formatCoord(v.Width), formatCoord(v.Height), fontSize, esc(string(v.Filter)))
}

func writeEmpty(sb *strings.Builder, v View) {
	svgOpen(sb, v, "finance-chart finance-chart--empty")
	fmt.Fprintf(sb, `<text class="chart-empty" x="%s" y="%s" text-anchor="middle" fill="%s">%s</text>`,
		formatCoord(v.Width/2), formatCoord(v.Height/2), textColor, esc(v.NoData))
	sb.WriteString("</svg>")
}

func writeChart(sb *strings.Builder, v View) {
	svgOpen(sb, v, "finance-chart")

	sb.WriteString("<defs>")
	for _, s := range v.Series {
		fmt.Fprintf(sb, `<linearGradient id="%s" x1="0" y1="0" x2="0" y2="1"><stop offset="0%%" stop-color="%s" stop-opacity="0.25"/><stop offset="100%%" stop-color="%s" stop-opacity="0"/></linearGradient>`,
			gradientID(s.Series), s.Color, s.Color)
	}
	sb.WriteString("</defs>")

	left, right := float64(PaddingLeft), v.Width-PaddingRight
	sb.WriteString(`<g class="chart-grid">`)
	for _, t := range v.Ticks {
		fmt.Fprintf(sb, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`,
			formatCoord(left), formatCoord(t.Y), formatCoord(right), formatCoord(t.Y), gridColor)
		fmt.Fprintf(sb, `<text class="chart-tick" x="%s" y="%s" text-anchor="end" fill="%s">%s</text>`,
			formatCoord(left-8), formatCoord(t.Y+4), textColor, esc(t.Label))
	}
	sb.WriteString("</g>")

	sb.WriteString(`<g class="chart-labels">`)
	for _, l := range v.Labels {
		fmt.Fprintf(sb, `<text x="%s" y="%d" text-anchor="middle" fill="%s">%s</text>`,
			formatCoord(l.X), ChartHeight-8, textColor, esc(l.Text))
	}
	sb.WriteString("</g>")

	writeLegend(sb, v)

	for _, s := range v.Series {
		if s.Area == "" {
			continue
		}
		fmt.Fprintf(sb, `<path class="chart-area chart-area--%s" d="%s" fill="url(#%s)" stroke="none"/>`,
			s.Series, s.Area, gradientID(s.Series))
	}
	for _, s := range v.Series {
		fmt.Fprintf(sb, `<path class="chart-line chart-line--%s" d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linecap="round"/>`,
			s.Series, s.Path, s.Color)
	}

	if v.Guide != nil {
		fmt.Fprintf(sb, `<line class="chart-guide" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-dasharray="4 4"/>`,
			formatCoord(v.Guide.X), formatCoord(v.Guide.Y0), formatCoord(v.Guide.X), formatCoord(v.Guide.Y1), textColor)
	}

	for _, s := range v.Series {
		for _, d := range s.Dots {
			fmt.Fprintf(sb, `<circle class="chart-dot" cx="%s" cy="%s" r="%s" fill="%s" stroke="#ffffff" stroke-width="1.5"/>`,
				formatCoord(d.X), formatCoord(d.Y), formatCoord(d.R), s.Color)
		}
	}

	sb.WriteString(`<g class="chart-hits">`)
	for _, r := range v.Regions {
		fmt.Fprintf(sb, `<rect class="chart-hit" data-index="%d" x="%s" y="%s" width="%s" height="%s" fill="transparent"/>`,
			r.Index, formatCoord(r.X0), formatCoord(r.Y0), formatCoord(r.Width()), formatCoord(r.Y1-r.Y0))
	}
	sb.WriteString("</g>")

	if v.Tooltip != nil {
		writeTooltip(sb, v.Tooltip)
	}
	sb.WriteString("</svg>")
}

// writeLegend draws the visible series right-aligned in the top padding.
func writeLegend(sb *strings.Builder, v View) {
	x := v.Width - PaddingRight
	sb.WriteString(`<g class="chart-legend">`)
	for i := len(v.Legend) - 1; i >= 0; i-- {
		e := v.Legend[i]
		x -= textWidth(e.Name)
		fmt.Fprintf(sb, `<text x="%s" y="12" fill="%s">%s</text>`, formatCoord(x), textColor, esc(e.Name))
		x -= 8
		fmt.Fprintf(sb, `<circle cx="%s" cy="8" r="4" fill="%s" data-series="%s"/>`, formatCoord(x), e.Color, e.Series)
		x -= legendSpacing
	}
	sb.WriteString("</g>")
}

// TooltipBox returns the tooltip rectangle in surface coordinates. The box
// sits above the anchor and extends away from the nearest container edge.
func TooltipBox(t *Tooltip) (x, y, w, h float64) {
	w = textWidth(t.Label)
	for _, r := range t.Rows {
		if rw := textWidth(r.Name+": "+r.Value) + 14; rw > w {
			w = rw
		}
	}
	w += 2 * tooltipPad
	h = float64(len(t.Rows)+1)*tooltipRowH + 2*tooltipPad

	switch t.Align {
	case AlignLeft:
		x = t.Anchor.X
	case AlignRight:
		x = t.Anchor.X - w
	default:
		x = t.Anchor.X - w/2
	}
	y = t.Anchor.Y - tooltipGap - h
	return x, y, w, h
}

func writeTooltip(sb *strings.Builder, t *Tooltip) {
	x, y, w, h := TooltipBox(t)
	fmt.Fprintf(sb, `<g class="chart-tooltip chart-tooltip--%s" data-index="%d" pointer-events="none">`, t.Align, t.Index)
	fmt.Fprintf(sb, `<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s" fill-opacity="0.92"/>`,
		formatCoord(x), formatCoord(y), formatCoord(w), formatCoord(h), tooltipBg)
	ty := y + tooltipPad + 11
	fmt.Fprintf(sb, `<text x="%s" y="%s" fill="%s" font-weight="bold">%s</text>`,
		formatCoord(x+tooltipPad), formatCoord(ty), tooltipText, esc(t.Label))
	for _, r := range t.Rows {
		ty += tooltipRowH
		fmt.Fprintf(sb, `<circle cx="%s" cy="%s" r="4" fill="%s"/>`,
			formatCoord(x+tooltipPad+4), formatCoord(ty-4), r.Color)
		fmt.Fprintf(sb, `<text class="chart-tooltip__row" data-series="%s" x="%s" y="%s" fill="%s">%s: %s</text>`,
			r.Series, formatCoord(x+tooltipPad+14), formatCoord(ty), tooltipText, esc(r.Name), esc(r.Value))
	}
	sb.WriteString("</g>")
}

func gradientID(s Series) string {
	return "fc-grad-" + string(s)
}

func textWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * charWidth
}

func esc(s string) string {
	return html.EscapeString(s)
}
