package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer accumulates markup and remembers the first write error so
// components can write straight-line code and check once at the end.
type writer struct {
	w   io.Writer
	err error
}

func (h *writer) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes s escaped for an element body.
func (h *writer) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (h *writer) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// url writes a URL attribute. Unsafe schemes are replaced by templ's
// placeholder URL.
func (h *writer) url(name, u string) {
	h.attr(name, string(templ.URL(u)))
}

// flag writes a boolean attribute when on is true.
func (h *writer) flag(name string, on bool) {
	if on {
		h.raw(" ", name)
	}
}

func (h *writer) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// component builds a templ.Component from a function writing through a
// writer.
func component(fn func(ctx context.Context, h *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{w: w}
		fn(ctx, h)
		return h.err
	})
}
