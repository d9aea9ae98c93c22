package followdash

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/chart"
	"github.com/eringen/followdash/dashboard"
	"github.com/eringen/followdash/views"
)

const boardPath = "/view/board"

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, boardPath)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleBoard(c echo.Context) error {
	if !a.refreshLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many refreshes. Try again in a minute.")
	}
	v := a.boards.Load(c.Request().Context(), userID(c))
	return Render(c, a.Views.Dashboard(v))
}

func (a *App) handleChartSVG(c echo.Context) error {
	name, ok := strings.CutSuffix(c.Param("name"), ".svg")
	if !ok {
		return echo.ErrNotFound
	}
	v := a.boards.Get(c.Request().Context(), userID(c))
	spec, ok := v.Chart(name)
	if !ok {
		return echo.ErrNotFound
	}
	c.Response().Header().Set(echo.HeaderContentType, "image/svg+xml")
	c.Response().WriteHeader(http.StatusOK)
	return spec.SVG(c.Response(), chart.DefaultSize)
}

// handleChartClick resolves a server-side image map click. The browser
// sends the click position as a bare "?x,y" query.
func (a *App) handleChartClick(c echo.Context) error {
	if !a.Dashboard.Options().Drilldown {
		return c.Redirect(http.StatusSeeOther, boardPath)
	}
	x, y, ok := parseImageMapPoint(c.QueryString())
	if !ok {
		return c.Redirect(http.StatusSeeOther, boardPath)
	}
	v := a.boards.Get(c.Request().Context(), userID(c))
	spec, ok := v.Chart(c.Param("name"))
	if !ok {
		return echo.ErrNotFound
	}
	date, hit := spec.HitTest(chart.DefaultSize, x, y)
	if !hit {
		return c.Redirect(http.StatusSeeOther, boardPath)
	}
	return c.Redirect(http.StatusSeeOther, views.DayURL(date))
}

func (a *App) handleDay(c echo.Context) error {
	v, err := a.Dashboard.Day(c.Request().Context(), userID(c), c.Param("date"))
	if errors.Is(err, dashboard.ErrInvalidDate) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Day(v))
}

func (a *App) handleTweets(c echo.Context) error {
	r := a.Criteria.Results(c.Request().Context(), userID(c), c.Param("id"), c.QueryParam("key"))
	if errors.Is(r.Err, backend.ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.Results(r))
	}
	return Render(c, a.Views.Results(r))
}

// handleLogout forgets the forwarded user id and the local session.
func (a *App) handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     backend.UserCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	a.boards.Invalidate(userID(c))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
