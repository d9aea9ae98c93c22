package views

import (
	"context"

	"github.com/a-h/templ"
)

// SiteName is shown in the header and page titles.
const SiteName = "followdash"

// Layout wraps body in the full HTML document.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		if title != "" {
			h.text(title)
			h.raw(" · ")
		}
		h.text(SiteName)
		h.raw(`</title><link rel="stylesheet" href="/public/dashboard.css"></head><body>`)
		h.raw(`<header class="site"><a class="brand" href="/view/board">`)
		h.text(SiteName)
		h.raw(`</a><nav><a href="/view/board">Dashboard</a><a href="/view/search">Searches</a></nav></header>`)
		h.raw(`<main>`)
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

// Banner renders a notice box. Nothing is written for an empty message.
func Banner(kind, message string) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		if message == "" {
			return
		}
		h.raw(`<div`)
		h.attr("class", "banner banner-"+kind)
		h.attr("role", "status")
		h.raw(`>`)
		h.text(message)
		h.raw(`</div>`)
	})
}

// NotFound is the 404 page.
func NotFound() templ.Component {
	return Layout("Not found", component(func(ctx context.Context, h *writer) {
		h.raw(`<section class="error-page"><h1>Page not found</h1>`)
		h.raw(`<p>The page you asked for does not exist.</p><a href="/view/board">Back to the dashboard</a></section>`)
	}))
}

// ServerError is the 5xx page.
func ServerError() templ.Component {
	return Layout("Error", component(func(ctx context.Context, h *writer) {
		h.raw(`<section class="error-page"><h1>Something went wrong</h1>`)
		h.raw(`<p>Try again in a moment.</p><a href="/view/board">Back to the dashboard</a></section>`)
	}))
}
