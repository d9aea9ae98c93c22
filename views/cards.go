package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/format"
)

// CardOptions controls which records UserCards renders.
type CardOptions struct {
	// DedupeConsecutive skips a record whose username equals the previous
	// rendered record's. The backend sorts lists by username, so this
	// removes all repeats.
	DedupeConsecutive bool
}

// VisibleUsers returns the records UserCards will render, in order.
// Records without a username are never shown.
func VisibleUsers(users []backend.UserRecord, opts CardOptions) []backend.UserRecord {
	out := make([]backend.UserRecord, 0, len(users))
	prev := ""
	for _, u := range users {
		if u.Username == "" {
			continue
		}
		if opts.DedupeConsecutive && len(out) > 0 && u.Username == prev {
			continue
		}
		out = append(out, u)
		prev = u.Username
	}
	return out
}

// UserCards renders one <li class="user-card"> per visible record. It
// writes list items only; the caller owns the surrounding list element.
func UserCards(users []backend.UserRecord, opts CardOptions) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		for _, u := range VisibleUsers(users, opts) {
			userCard(h, u)
		}
	})
}

func userCard(h *writer, u backend.UserRecord) {
	h.raw(`<li class="user-card"`)
	h.attr("data-username", u.Username)
	h.raw(`>`)
	if u.ProfileImage != "" {
		h.raw(`<img class="avatar"`)
		h.url("src", u.ProfileImage)
		h.attr("alt", u.Username)
		h.raw(` width="48" height="48" loading="lazy">`)
	}
	h.raw(`<div class="user-body"><div class="user-head"><a class="username"`)
	h.url("href", ProfileURL(u.Username))
	h.raw(` target="_blank" rel="noopener noreferrer">@`)
	h.text(u.Username)
	h.raw(`</a>`)
	if u.Name != "" {
		h.raw(` <span class="name">`)
		h.text(u.Name)
		h.raw(`</span>`)
	}
	if u.Location != "" {
		h.raw(` <span class="location">`)
		h.text(u.Location)
		h.raw(`</span>`)
	}
	h.raw(`</div><div class="user-stats"><span class="ratio" title="followers/following">`)
	h.text(format.Ratio(u.FollowerCount, u.FollowingCount))
	h.raw(`</span> <span class="posts">`)
	h.text(format.Thousands(u.PostCount))
	h.raw(` posts</span>`)
	if u.EventAt != "" {
		h.raw(` <time class="event-date"`)
		h.attr("datetime", u.EventAt)
		h.raw(`>`)
		h.text(format.ToShortDate(u.EventAt))
		h.raw(`</time>`)
	}
	h.raw(`</div>`)
	if u.Description != "" {
		h.raw(`<p class="bio">`)
		h.text(u.Description)
		h.raw(`</p>`)
	}
	h.raw(`</div></li>`)
}
