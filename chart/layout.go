package chart

// Plot padding. These match go-chart's bar chart defaults so the plot box
// is the same whether or not the library applies its own fallbacks.
const (
	padTop    = 20
	padLeft   = 20
	padRight  = 10
	padBottom = 50

	minBand = 2
)

// layout is the bar geometry shared by rendering and hit-testing.
type layout struct {
	width, height int
	left, top     int
	right, bottom int
	band          int // pixels per bar, spacing included
	spacing       int
	perLabel      int // bars drawn for each label
	labels        int
}

func newLayout(size Size, labels, perLabel int) layout {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	if perLabel < 1 {
		perLabel = 1
	}
	bars := labels * perLabel
	l := layout{
		width:    size.Width,
		height:   size.Height,
		left:     padLeft,
		top:      padTop,
		perLabel: perLabel,
		labels:   labels,
	}
	// Too many bars for the requested width: grow the chart instead of
	// letting bars collapse to nothing.
	if need := padLeft + padRight + bars*minBand; bars > 0 && need > l.width {
		l.width = need
	}
	l.right = l.width - padRight
	l.bottom = l.height - padBottom
	if bars > 0 {
		l.band = (l.right - l.left) / bars
		l.spacing = l.band / 5
		if l.spacing < 1 {
			l.spacing = 1
		}
	}
	return l
}

func (l layout) barWidth() int {
	w := l.band - l.spacing
	if w < 1 {
		w = 1
	}
	return w
}

// group is the horizontal extent of all bars for label i.
func (l layout) group(i int) (x0, x1 int) {
	x0 = l.left + i*l.perLabel*l.band
	return x0, x0 + l.perLabel*l.band
}

// labelAt returns the label index under (x, y).
func (l layout) labelAt(x, y int) (int, bool) {
	if l.labels == 0 || l.band == 0 {
		return 0, false
	}
	if y < l.top || y > l.bottom || x < l.left {
		return 0, false
	}
	i := (x - l.left) / (l.band * l.perLabel)
	if i >= l.labels {
		return 0, false
	}
	return i, true
}

// HitTest maps a pixel position on a chart rendered at size to the label
// of the bar group under it.
func (s Spec) HitTest(size Size, x, y int) (string, bool) {
	l := newLayout(size, len(s.Labels), len(s.Datasets))
	i, ok := l.labelAt(x, y)
	if !ok {
		return "", false
	}
	return s.Labels[i], true
}

// RenderedSize is the size SVG will actually produce for size. It differs
// from size only when there are too many bars to fit.
func (s Spec) RenderedSize(size Size) Size {
	l := newLayout(size, len(s.Labels), len(s.Datasets))
	return Size{Width: l.width, Height: l.height}
}
