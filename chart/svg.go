package chart

import (
	"fmt"
	"io"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	labelFontSize = 8.0
	// approximate advance of one label glyph at labelFontSize
	labelGlyphWidth = 5
)

// SVG renders the spec as an SVG bar chart. Bars are laid out on the same
// grid HitTest uses.
func (s Spec) SVG(w io.Writer, size Size) error {
	l := newLayout(size, len(s.Labels), len(s.Datasets))
	if l.labels == 0 || len(s.Datasets) == 0 {
		return emptySVG(w, l)
	}

	peak := s.Max()
	if peak < 1 {
		peak = 1
	}

	bars := make([]gochart.Value, 0, l.labels*l.perLabel)
	for i := range s.Labels {
		for d, ds := range s.Datasets {
			col := drawing.ColorFromHex(ds.Color)
			bars = append(bars, gochart.Value{
				Value: float64(s.value(d, i)),
				Style: gochart.Style{
					FillColor:   col,
					StrokeColor: col,
					StrokeWidth: 1,
				},
			})
		}
	}

	bc := gochart.BarChart{
		Width:      l.width,
		Height:     l.height,
		BarWidth:   l.barWidth(),
		BarSpacing: l.spacing,
		Background: gochart.Style{
			Padding: gochart.Box{Top: padTop, Left: padLeft, Right: padRight, Bottom: padBottom},
		},
		XAxis: gochart.Style{Hidden: true},
		YAxis: gochart.YAxis{
			Style: gochart.Style{Hidden: true},
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(peak)},
		},
		Bars:     bars,
		Elements: []gochart.Renderable{s.annotations(l, peak)},
	}
	if err := bc.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// annotations draws the date labels, the scale maximum and a legend. The
// library's own axes are hidden because they resize the plot box based on
// font metrics, which would break HitTest.
func (s Spec) annotations(l layout, peak int64) gochart.Renderable {
	return func(r gochart.Renderer, _ gochart.Box, defaults gochart.Style) {
		text := gochart.Style{
			FontSize:  labelFontSize,
			FontColor: drawing.ColorFromHex("555555"),
		}.InheritFrom(defaults)
		text.WriteTextOptionsToRenderer(r)

		groupWidth := l.band * l.perLabel
		step := 1
		if groupWidth > 0 {
			for step*groupWidth < 12*labelGlyphWidth {
				step++
			}
		}
		for i := 0; i < l.labels; i += step {
			x0, x1 := l.group(i)
			label := s.Labels[i]
			x := (x0+x1)/2 - len(label)*labelGlyphWidth/2
			r.Text(label, x, l.bottom+14)
		}

		r.Text(strconv.FormatInt(peak, 10), l.left, l.top-6)

		x := l.right
		for i := len(s.Datasets) - 1; i >= 0; i-- {
			ds := s.Datasets[i]
			x -= len(ds.Label)*labelGlyphWidth + 20
			r.SetFillColor(drawing.ColorFromHex(ds.Color))
			r.SetStrokeColor(drawing.ColorFromHex(ds.Color))
			r.MoveTo(x, l.top-14)
			r.LineTo(x+8, l.top-14)
			r.LineTo(x+8, l.top-6)
			r.LineTo(x, l.top-6)
			r.Close()
			r.FillStroke()
			text.WriteTextOptionsToRenderer(r)
			r.Text(ds.Label, x+12, l.top-6)
		}
	}
}

// emptySVG writes a placeholder; go-chart refuses to render zero bars.
func emptySVG(w io.Writer, l layout) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><text x="%d" y="%d" fill="#555555" font-size="12">No data yet</text></svg>`,
		l.width, l.height, l.left, l.height/2)
	return err
}
