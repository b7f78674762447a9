package chart

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderSVG(t *testing.T) {
	c := New(sampleData())
	var buf bytes.Buffer
	if err := RenderSVG(&buf, c.View()); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	svg := buf.String()

	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %.60s", svg)
	}
	checks := map[string]int{
		`class="chart-hit"`:            3,
		`<path class="chart-line`:      3,
		`<path class="chart-area`:      3,
		`<linearGradient id="fc-grad-`: 3,
		`class="chart-dot"`:            9,
		`class="chart-tick"`:           TickCount,
	}
	for needle, want := range checks {
		if got := strings.Count(svg, needle); got != want {
			t.Errorf("%s: found %d, want %d", needle, got, want)
		}
	}
	for _, s := range []string{`data-index="0"`, `data-index="2"`, ">Fev<", ">3k<", "Patrimônio"} {
		if !strings.Contains(svg, s) {
			t.Errorf("svg should contain %s", s)
		}
	}
	if strings.Contains(svg, "chart-tooltip") || strings.Contains(svg, "chart-guide") {
		t.Fatal("idle chart should not draw hover decorations")
	}
}

func TestRenderSVGHover(t *testing.T) {
	c := New(sampleData())
	c.Enter(1)
	svg := c.View().SVG()
	for _, s := range []string{`class="chart-guide"`, `chart-tooltip--center`, `stroke-dasharray="4 4"`, `r="5"`} {
		if !strings.Contains(svg, s) {
			t.Errorf("hovered svg should contain %s", s)
		}
	}
	if got := strings.Count(svg, `class="chart-tooltip__row"`); got != 3 {
		t.Fatalf("tooltip rows = %d, want 3", got)
	}
}

func TestRenderSVGEscapesText(t *testing.T) {
	c := New([]DataPoint{{Label: `<b>&"`, Income: 10}})
	svg := c.View().SVG()
	if strings.Contains(svg, "<b>") {
		t.Fatal("labels must be escaped")
	}
	if !strings.Contains(svg, "&lt;b&gt;&amp;&#34;") {
		t.Fatalf("escaped label not found in %s", svg)
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	svg := New(nil).View().SVG()
	if !strings.Contains(svg, `class="chart-empty"`) || !strings.Contains(svg, "Sem dados para exibir") {
		t.Fatalf("unexpected empty render: %s", svg)
	}
	if strings.Contains(svg, "<path") {
		t.Fatal("empty chart should not draw paths")
	}
}

func TestTooltipBoxStaysOnAnchorSide(t *testing.T) {
	tip := &Tooltip{Label: "Dez", Anchor: Point{X: 580, Y: 100}, Align: AlignRight,
		Rows: []TooltipRow{{Name: "Receitas", Value: "R$1.000,00"}}}
	x, y, w, _ := TooltipBox(tip)
	if x+w != 580 {
		t.Fatalf("right aligned box should end at the anchor, got x=%v w=%v", x, w)
	}
	if y >= 100 {
		t.Fatalf("box should sit above the anchor, got y=%v", y)
	}
	tip.Align = AlignLeft
	if x, _, _, _ = TooltipBox(tip); x != 580 {
		t.Fatalf("left aligned box should start at the anchor, got %v", x)
	}
}
