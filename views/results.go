package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/followdash/criteria"
	"github.com/eringen/followdash/format"
	"github.com/eringen/followdash/linkify"
)

// Results lists one page of search results with links in the text made
// clickable.
func Results(r *criteria.Results) templ.Component {
	return Layout("Results", component(func(ctx context.Context, h *writer) {
		h.raw(`<section id="results" class="results"><h1>Results</h1><a class="back"`)
		h.url("href", criteria.EditPath(r.CriterionID))
		h.raw(`>Back to search</a> <a class="feed"`)
		h.url("href", criteria.FeedPath(r.CriterionID))
		h.raw(`>RSS</a>`)
		if r.Err != nil {
			h.component(ctx, Banner("error", r.Message))
			h.raw(`</section>`)
			return
		}
		h.raw(`<ol class="tweets">`)
		for _, t := range r.Items {
			h.raw(`<li class="tweet"`)
			h.attr("data-id", t.ID)
			h.raw(`><div class="tweet-head">`)
			if t.Author.Username != "" {
				h.raw(`<a class="username"`)
				h.url("href", ProfileURL(t.Author.Username))
				h.raw(` target="_blank" rel="noopener noreferrer">@`)
				h.text(t.Author.Username)
				h.raw(`</a> `)
			}
			h.raw(`<time`)
			h.attr("datetime", t.CreatedAt)
			h.raw(`>`)
			h.text(format.ToShortDate(t.CreatedAt))
			h.raw(` `)
			h.text(format.ToLongTime(t.CreatedAt))
			h.raw(`</time>`)
			if t.IsRT {
				h.raw(` <span class="rt">repost</span>`)
			}
			h.raw(`</div><p class="tweet-text">`)
			h.component(ctx, linkify.Component(t.Text))
			h.raw(`</p><div class="tweet-stats"><span>`)
			h.text(format.Thousands(t.FavoriteCount))
			h.raw(` favorites</span> <span>`)
			h.text(format.Thousands(t.RetweetCount))
			h.raw(` reposts</span> <span>`)
			h.text(format.Thousands(t.ReplyCount))
			h.raw(` replies</span></div></li>`)
		}
		h.raw(`</ol>`)
		if len(r.Items) == 0 {
			h.raw(`<p class="empty">No results yet.</p>`)
		}
		if r.NextURL != "" {
			h.raw(`<a class="next" rel="next"`)
			h.url("href", r.NextURL)
			h.raw(`>Older results</a>`)
		}
		h.raw(`</section>`)
	}))
}
