package views

import (
	"net/url"
	"strconv"

	"github.com/eringen/followdash/chart"
)

// ProfileBaseURL is prefixed to usernames for profile links.
const ProfileBaseURL = "https://twitter.com/"

// ProfileURL links to username's public profile.
func ProfileURL(username string) string {
	return ProfileBaseURL + url.PathEscape(username)
}

// PathEscape wraps url.PathEscape for use in components.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// ChartImageURL is the SVG endpoint for chart name.
func ChartImageURL(name string) string {
	return "/view/chart/" + PathEscape(name) + ".svg"
}

// ChartClickURL is the image-map target for chart name.
func ChartClickURL(name string) string {
	return "/view/chart/" + PathEscape(name) + "/click"
}

// DayURL is the drill-down page for an ISO date.
func DayURL(isoDate string) string {
	return "/view/day/" + PathEscape(isoDate)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func chartSize(s chart.Spec) chart.Size {
	return s.RenderedSize(chart.DefaultSize)
}
