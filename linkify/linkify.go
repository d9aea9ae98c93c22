// Package linkify renders plain post text as HTML with bare http(s) URLs
// turned into links.
package linkify

import (
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

var reURL = regexp.MustCompile(`https?://[^\s<>"']+`)

// Characters that commonly end a sentence right after a URL.
const trailing = ".,;:!?)"

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Text escapes s and wraps every http(s) URL in an anchor. The result is
// safe to write into an HTML element body.
func Text(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range reURL.FindAllStringIndex(s, -1) {
		start, end := m[0], m[1]
		for end > start && strings.IndexByte(trailing, s[end-1]) >= 0 {
			end--
		}
		raw := s[start:end]
		if !linkable(raw) {
			continue
		}
		b.WriteString(html.EscapeString(s[last:start]))
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(raw))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(raw))
		b.WriteString(`</a>`)
		last = end
	}
	b.WriteString(html.EscapeString(s[last:]))
	return policy.Sanitize(b.String())
}

func linkable(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Component renders Text(s) as a templ component.
func Component(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Text(s))
		return err
	})
}
