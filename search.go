package followdash

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/criteria"
)

func (a *App) handleSearchList(c echo.Context) error {
	p := a.Criteria.List(c.Request().Context(), userID(c), c.QueryParam("q"))
	return a.renderCriteria(c, p)
}

func (a *App) handleSearchNew(c echo.Context) error {
	return a.renderCriteria(c, a.Criteria.Create())
}

func (a *App) handleSearchCancel(c echo.Context) error {
	return a.renderCriteria(c, a.Criteria.Cancel(c.Request().Context(), userID(c)))
}

func (a *App) handleSearchEdit(c echo.Context) error {
	p := a.Criteria.Select(c.Request().Context(), userID(c), c.Param("id"))
	return a.renderCriteria(c, p)
}

func (a *App) handleSearchSave(c echo.Context) error {
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	f := criteria.FromValues(c.Request().PostForm)
	p, _ := a.Criteria.Save(c.Request().Context(), userID(c), f)
	return a.renderCriteria(c, p)
}

func (a *App) handleSearchDelete(c echo.Context) error {
	p, _ := a.Criteria.Delete(c.Request().Context(), userID(c), c.Param("id"))
	return a.renderCriteria(c, p)
}

// renderCriteria follows a page's redirect, carrying its flash through
// the session, or renders it with a status derived from its error.
func (a *App) renderCriteria(c echo.Context, p *criteria.Page) error {
	if p.Redirect != "" {
		if err := setFlash(c, p.Flash); err != nil {
			return err
		}
		return redirect(c, p.Redirect)
	}
	if p.Flash == "" {
		p.Flash = popFlash(c)
	}
	return RenderStatus(c, criteriaStatus(p.Err), a.Views.Criteria(p, CsrfToken(c)))
}

func criteriaStatus(err error) int {
	var invalid criteria.FieldErrors
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}
