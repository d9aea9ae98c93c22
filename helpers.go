package followdash

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/followdash/backend"
)

// userID returns the user id the backend knows the visitor by. It is the
// uid cookie set by the backend's sign-in flow, forwarded as is.
func userID(c echo.Context) string {
	ck, err := c.Cookie(backend.UserCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(ck.Value)
}

// redirect sends the browser to path after a form post, so a reload
// does not resubmit it.
func redirect(c echo.Context, path string) error {
	return c.Redirect(http.StatusSeeOther, path)
}

// parseImageMapPoint parses the "x,y" query an ismap image appends to its
// link. Both coordinates must be non-negative integers.
func parseImageMapPoint(raw string) (x, y int, ok bool) {
	xs, ys, found := strings.Cut(raw, ",")
	if !found {
		return 0, 0, false
	}
	x, err := strconv.Atoi(xs)
	if err != nil || x < 0 {
		return 0, 0, false
	}
	y, err = strconv.Atoi(ys)
	if err != nil || y < 0 {
		return 0, 0, false
	}
	return x, y, true
}
