package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/followdash/dashboard"
)

// Day is the drill-down page for one date.
func Day(v *dashboard.DayView) templ.Component {
	return Layout(v.Date, component(func(ctx context.Context, h *writer) {
		h.raw(`<section id="day" class="day"`)
		h.attr("data-state", v.State.String())
		h.raw(`><h1>`)
		h.text(v.Date)
		h.raw(`</h1><a class="back" href="/view/board">Back to the dashboard</a>`)
		if v.State == dashboard.Failed {
			h.component(ctx, Banner("error", v.Message))
			h.raw(`</section>`)
			return
		}
		cards := CardOptions{DedupeConsecutive: v.Options.DedupeConsecutive}
		h.raw(`<div class="user-lists">`)
		userList(ctx, h, "followers", "Followed", v.Followers, cards)
		userList(ctx, h, "unfollowers", "Unfollowed", v.Unfollowers, cards)
		h.raw(`</div></section>`)
	}))
}
