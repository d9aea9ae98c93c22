package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/chart"
	"github.com/eringen/followdash/dashboard"
)

// Dashboard is the full dashboard page.
func Dashboard(v *dashboard.View) templ.Component {
	return Layout("Dashboard", Board(v))
}

// Board is the dashboard body inside the page layout.
// All three regions are always present; only the one matching the view
// state is visible.
func Board(v *dashboard.View) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<section id="board" class="board"`)
		h.attr("data-state", v.State.String())
		h.raw(`>`)

		h.raw(`<div id="loading" class="region loading"`)
		h.flag("hidden", v.State != dashboard.Loading)
		h.raw(`>Loading your dashboard…</div>`)

		h.raw(`<div id="failed" class="region failed"`)
		h.flag("hidden", v.State != dashboard.Failed)
		h.raw(`>`)
		if v.State == dashboard.Failed {
			h.component(ctx, Banner("error", v.Message))
			h.raw(`<a class="retry" href="/view/board">Try again</a>`)
		}
		h.raw(`</div>`)

		h.raw(`<div id="loaded" class="region loaded"`)
		h.flag("hidden", v.State != dashboard.Loaded)
		h.raw(`>`)
		if v.State == dashboard.Loaded {
			loaded(ctx, h, v)
		}
		h.raw(`</div></section>`)
	})
}

func loaded(ctx context.Context, h *writer, v *dashboard.View) {
	metaBanner(h, v.Meta)
	counters(h, v.Counters)

	h.raw(`<div class="charts">`)
	chartFigure(h, dashboard.ChartFollowers, "Followers", v.CountChart, v.Options.Drilldown)
	chartFigure(h, dashboard.ChartEvents, "Followed / unfollowed", v.EventChart, v.Options.Drilldown)
	h.raw(`</div>`)

	cards := CardOptions{DedupeConsecutive: v.Options.DedupeConsecutive}
	h.raw(`<div class="user-lists">`)
	userList(ctx, h, "followers", "Recent followers", v.Followers, cards)
	userList(ctx, h, "unfollowers", "Recent unfollowers", v.Unfollowers, cards)
	h.raw(`</div>`)
}

func metaBanner(h *writer, m dashboard.Meta) {
	h.raw(`<div id="meta" class="meta-banner">`)
	if m.ProfileImage != "" {
		h.raw(`<img class="avatar"`)
		h.url("src", m.ProfileImage)
		h.attr("alt", m.Username)
		h.raw(` width="48" height="48">`)
	}
	h.raw(`<div class="meta-text"><a class="handle"`)
	h.url("href", ProfileURL(m.Username))
	h.raw(` target="_blank" rel="noopener noreferrer">@`)
	h.text(m.Username)
	h.raw(`</a>`)
	if m.Name != "" {
		h.raw(` <span class="name">`)
		h.text(m.Name)
		h.raw(`</span>`)
	}
	h.raw(`<span class="window">Last `)
	h.text(itoa(m.PeriodDays))
	h.raw(` days</span>`)
	if m.UpdatedDate != "" {
		h.raw(`<span class="updated">Updated `)
		h.text(m.UpdatedDate)
		h.raw(` `)
		h.text(m.UpdatedTime)
		h.raw(`</span>`)
	}
	h.raw(`</div><a class="logout"`)
	h.url("href", m.LogoutURL)
	h.raw(`>Log out</a></div>`)
}

func counters(h *writer, c dashboard.Counters) {
	items := []struct{ id, label, value string }{
		{"follower-count", "Followers", c.Followers},
		{"following-count", "Following", c.Following},
		{"post-count", "Posts", c.Posts},
		{"fave-count", "Favorites", c.Favorites},
		{"listed-count", "Listed", c.Listed},
		{"recent-follower-count", "New followers", c.RecentFollowers},
		{"recent-unfollower-count", "Unfollowers", c.RecentUnfollowers},
	}
	h.raw(`<ul class="counters">`)
	for _, it := range items {
		h.raw(`<li class="counter"><span class="counter-value"`)
		h.attr("id", it.id)
		h.raw(`>`)
		h.text(it.value)
		h.raw(`</span><span class="counter-label">`)
		h.text(it.label)
		h.raw(`</span></li>`)
	}
	h.raw(`</ul>`)
}

// chartFigure embeds a chart image. With drilldown the image is a
// server-side image map: the browser appends ?x,y to the link on click.
func chartFigure(h *writer, name, caption string, spec chart.Spec, drilldown bool) {
	size := chartSize(spec)
	h.raw(`<figure class="chart"`)
	h.attr("id", "chart-"+name)
	h.raw(`><figcaption>`)
	h.text(caption)
	h.raw(`</figcaption>`)
	if drilldown {
		h.raw(`<a`)
		h.url("href", ChartClickURL(name))
		h.raw(`>`)
	}
	h.raw(`<img`)
	h.url("src", ChartImageURL(name))
	h.attr("alt", caption+" chart")
	h.attr("width", itoa(size.Width))
	h.attr("height", itoa(size.Height))
	h.flag("ismap", drilldown)
	h.raw(`>`)
	if drilldown {
		h.raw(`</a>`)
	}
	h.raw(`</figure>`)
}

func userList(ctx context.Context, h *writer, id, title string, users []backend.UserRecord, opts CardOptions) {
	h.raw(`<section class="user-list"><h2>`)
	h.text(title)
	h.raw(`</h2><ul class="user-cards"`)
	h.attr("id", id)
	h.raw(`>`)
	h.component(ctx, UserCards(users, opts))
	h.raw(`</ul>`)
	if len(VisibleUsers(users, opts)) == 0 {
		h.raw(`<p class="empty">Nobody yet.</p>`)
	}
	h.raw(`</section>`)
}
