package followdash

import (
	"encoding/xml"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/criteria"
	"github.com/eringen/followdash/format"
	"github.com/eringen/followdash/linkify"
	"github.com/eringen/followdash/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

const feedTitleRunes = 80

// handleTweetsFeed serves the newest page of a saved search as RSS so it
// can be followed from a feed reader.
func (a *App) handleTweetsFeed(c echo.Context) error {
	id := c.Param("id")
	r := a.Criteria.Results(c.Request().Context(), userID(c), id, "")
	if r.Err != nil {
		if errors.Is(r.Err, backend.ErrNotFound) {
			return echo.ErrNotFound
		}
		return echo.NewHTTPError(http.StatusBadGateway, r.Message).SetInternal(r.Err)
	}
	return a.renderRSS(c, id, r.Items)
}

func (a *App) renderRSS(c echo.Context, criterionID string, tweets []backend.Tweet) error {
	base := strings.TrimSuffix(a.Config.URL, "/")
	items := make([]rssItem, 0, len(tweets))
	for _, t := range tweets {
		pubDate := ""
		if ts, err := format.ParseTimestamp(t.CreatedAt); err == nil {
			pubDate = ts.Format(time.RFC1123Z)
		}
		link := statusURL(t)
		items = append(items, rssItem{
			Title:       feedTitle(t),
			Link:        link,
			Description: linkify.Text(t.Text),
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       views.SiteName + " search results",
			Link:        base + criteria.ResultsPath(criterionID),
			Description: "Newest results for a saved search.",
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

func statusURL(t backend.Tweet) string {
	if t.Author.Username == "" {
		return views.ProfileBaseURL + "i/web/status/" + t.ID
	}
	return views.ProfileURL(t.Author.Username) + "/status/" + t.ID
}

func feedTitle(t backend.Tweet) string {
	text := strings.Join(strings.Fields(t.Text), " ")
	if utf8.RuneCountInString(text) > feedTitleRunes {
		text = string([]rune(text)[:feedTitleRunes-1]) + "…"
	}
	if t.Author.Username != "" {
		return "@" + t.Author.Username + ": " + text
	}
	return text
}
