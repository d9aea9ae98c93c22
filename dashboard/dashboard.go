// Package dashboard loads the follower dashboard: it fetches the view data
// once and shapes it into counters, chart specs and card lists.
package dashboard

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/chart"
	"github.com/eringen/followdash/format"
)

// Chart names used in URLs.
const (
	ChartFollowers = "followers"
	ChartEvents    = "events"
)

// State is the visual state of a dashboard region.
type State int

const (
	Loading State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Source is the slice of the backend client the dashboard needs.
type Source interface {
	ViewData(ctx context.Context, uid string) (*backend.ViewData, error)
	Day(ctx context.Context, uid, isoDate string) (*backend.DayData, error)
}

// Counters are the numeric tiles, already formatted for display.
type Counters struct {
	Followers         string
	Following         string
	Favorites         string
	Posts             string
	Listed            string
	RecentFollowers   string
	RecentUnfollowers string
}

// Meta is the banner above the dashboard.
type Meta struct {
	Username     string
	Name         string
	ProfileImage string
	PeriodDays   int
	UpdatedDate  string
	UpdatedTime  string
	LogoutURL    string
}

// View is one rendering of the dashboard. The zero value is the Loading
// state.
type View struct {
	State   State
	Err     error
	Message string
	Options RenderOptions

	Counters    Counters
	Meta        Meta
	CountChart  chart.Spec
	EventChart  chart.Spec
	Followers   []backend.UserRecord
	Unfollowers []backend.UserRecord
}

// Chart returns the spec published under name.
func (v *View) Chart(name string) (chart.Spec, bool) {
	switch name {
	case ChartFollowers:
		return v.CountChart, true
	case ChartEvents:
		return v.EventChart, true
	}
	return chart.Spec{}, false
}

// LogoutPath is where the banner's logout link points.
const LogoutPath = "/auth/logout"

// Controller builds dashboard views.
type Controller struct {
	src  Source
	opts RenderOptions
	log  *zap.Logger
}

// New returns a Controller reading from src.
func New(src Source, opts RenderOptions, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{src: src, opts: opts, log: log}
}

// Options returns the render options the controller was built with.
func (c *Controller) Options() RenderOptions {
	return c.opts
}

// Load fetches the view data for uid and returns the populated view. It
// never returns nil; failures are reported through View.State and View.Err.
func (c *Controller) Load(ctx context.Context, uid string) *View {
	v := &View{Options: c.opts}

	data, err := c.src.ViewData(ctx, uid)
	if err != nil {
		c.fail(v, err)
		return v
	}

	v.Counters = c.counters(data)
	v.Meta = meta(data)

	followed, unfollowed := backend.Align(data.FollowedEventSeries, data.UnfollowedEventSeries)
	v.CountChart = chart.CountChart(data.FollowerCountSeries.Sorted())
	v.EventChart = chart.EventChart(followed, unfollowed)

	v.Followers = data.RecentFollowers
	v.Unfollowers = data.RecentUnfollowers
	v.State = Loaded
	return v
}

func (c *Controller) fail(v *View, err error) {
	v.State = Failed
	v.Err = err
	v.Message = Message(err)
	if errors.Is(err, backend.ErrNotReady) {
		c.log.Info("view data not ready")
		return
	}
	c.log.Error("load view data", zap.Error(err))
}

// Message is the user-facing text for a backend failure.
func Message(err error) string {
	switch {
	case errors.Is(err, backend.ErrNotReady):
		return "Your data is still being loaded. Check back in a few minutes."
	case errors.Is(err, backend.ErrUnauthorized):
		return "Your session has expired. Sign in again to see your dashboard."
	case errors.Is(err, backend.ErrNotFound):
		return "Nothing was found for this request."
	case errors.Is(err, context.DeadlineExceeded):
		return "The data service took too long to respond. Try again shortly."
	default:
		return "The data service could not be reached. Try again shortly."
	}
}

func (c *Controller) counters(d *backend.ViewData) Counters {
	n := func(v int64) string { return strconv.FormatInt(v, 10) }
	if c.opts.FormatCounts {
		n = format.Thousands
	}
	var u backend.UserSummary
	if d.User != nil {
		u = *d.User
	}
	return Counters{
		Followers:         n(u.FollowerCount),
		Following:         n(u.FollowingCount),
		Favorites:         n(u.FaveCount),
		Posts:             n(u.PostCount),
		Listed:            n(u.ListedCount),
		RecentFollowers:   n(d.RecentFollowerCount),
		RecentUnfollowers: n(d.RecentUnfollowerCount),
	}
}

func meta(d *backend.ViewData) Meta {
	m := Meta{LogoutURL: LogoutPath}
	if d.User != nil {
		m.Username = d.User.Username
		m.Name = d.User.Name
		m.ProfileImage = d.User.ProfileImage
		m.UpdatedDate = format.ToShortDate(d.User.UpdatedOn)
		m.UpdatedTime = format.ToLongTime(d.User.UpdatedOn)
	}
	if d.Meta != nil {
		m.PeriodDays = d.Meta.NumDaysPeriod
	}
	return m
}
