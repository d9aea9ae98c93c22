// Package fakebackend is a self-contained stand-in for the follower
// tracking backend. It serves the same /data endpoints from a SQLite
// database so the dashboard can run locally and in tests.
package fakebackend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/format"
)

const (
	defaultPeriodDays  = 7
	defaultPerDayLimit = 10
)

// Server serves the backend's JSON API.
type Server struct {
	Echo  *echo.Echo
	store *Store
	log   *zap.Logger
	now   func() time.Time

	periodDays  int
	perDayLimit int
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer builds the echo instance and registers every route.
func NewServer(store *Store, opts ...ServerOption) *Server {
	s := &Server{
		Echo:        echo.New(),
		store:       store,
		log:         zap.NewNop(),
		now:         time.Now,
		periodDays:  defaultPeriodDays,
		perDayLimit: defaultPerDayLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := s.Echo
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.HTTPErrorHandler = s.httpErrorHandler
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	g := e.Group("/data", s.requireUser)
	g.GET("/view", s.handleView)
	g.GET("/day/:date", s.handleDay)
	g.GET("/search", s.handleListCriteria)
	g.POST("/search", s.handleSaveCriterion)
	g.GET("/search/:id", s.handleGetCriterion)
	g.DELETE("/search/:id", s.handleDeleteCriterion)
	g.GET("/search/:id/results", s.handleResults)
	return s
}

// Start listens on addr until the server is shut down.
func (s *Server) Start(addr string) error {
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

const uidKey = "uid"

func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ck, err := c.Cookie(backend.UserCookieName)
		if err != nil || strings.TrimSpace(ck.Value) == "" {
			return c.JSON(http.StatusUnauthorized, errorBody{Message: "User not authenticated", Status: "Unauthorized"})
		}
		c.Set(uidKey, normalizeUID(ck.Value))
		return next(c)
	}
}

func uidOf(c echo.Context) string {
	uid, _ := c.Get(uidKey).(string)
	return uid
}

func (s *Server) handleView(c echo.Context) error {
	uid := uidOf(c)
	user, err := s.store.User(uid)
	if errors.Is(err, ErrNotFound) {
		// Collection has not produced anything for this user yet.
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	now := s.now().UTC()
	today := format.ShortDate(now)
	since := format.ShortDate(now.AddDate(0, 0, -s.periodDays))
	states, err := s.store.DailyStatesSince(uid, since)
	if err != nil {
		return fmt.Errorf("load daily states: %w", err)
	}

	data := backend.ViewData{
		User: &user,
		Meta: &backend.QueryMeta{
			RecentUserPerDayLimit: s.perDayLimit,
			NumDaysPeriod:         s.periodDays,
		},
		FollowerCountSeries:   make(backend.Series, 0, len(states)),
		FollowedEventSeries:   make(backend.Series, 0, len(states)),
		UnfollowedEventSeries: make(backend.Series, 0, len(states)),
	}
	for _, d := range states {
		data.FollowerCountSeries = append(data.FollowerCountSeries, backend.Point{Date: d.On, Count: d.Followers})
		data.FollowedEventSeries = append(data.FollowedEventSeries, backend.Point{Date: d.On, Count: d.NewFollowers})
		data.UnfollowedEventSeries = append(data.UnfollowedEventSeries, backend.Point{Date: d.On, Count: -d.Unfollowers})
	}

	followers, err := s.store.EventsOn(uid, today, backend.FollowedEventType, 0)
	if err != nil {
		return fmt.Errorf("load followers: %w", err)
	}
	unfollowers, err := s.store.EventsOn(uid, today, backend.UnfollowedEventType, 0)
	if err != nil {
		return fmt.Errorf("load unfollowers: %w", err)
	}
	data.RecentFollowerCount = int64(len(followers))
	data.RecentUnfollowerCount = int64(len(unfollowers))
	data.RecentFollowers = trim(followers, s.perDayLimit)
	data.RecentUnfollowers = trim(unfollowers, s.perDayLimit)

	return c.JSON(http.StatusOK, data)
}

func trim(list []backend.UserRecord, n int) []backend.UserRecord {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}

func (s *Server) handleDay(c echo.Context) error {
	uid := uidOf(c)
	day := c.Param("date")
	if _, err := time.Parse(format.ISODate, day); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	followers, err := s.store.EventsOn(uid, day, backend.FollowedEventType, 0)
	if err != nil {
		return fmt.Errorf("load followers: %w", err)
	}
	unfollowers, err := s.store.EventsOn(uid, day, backend.UnfollowedEventType, 0)
	if err != nil {
		return fmt.Errorf("load unfollowers: %w", err)
	}
	return c.JSON(http.StatusOK, backend.DayData{Date: day, Followers: followers, Unfollowers: unfollowers})
}

func (s *Server) handleListCriteria(c echo.Context) error {
	list, err := s.store.ListCriteria(uidOf(c))
	if err != nil {
		return fmt.Errorf("list criteria: %w", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetCriterion(c echo.Context) error {
	sc, err := s.store.GetCriterion(uidOf(c), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "criterion not found")
	}
	if err != nil {
		return fmt.Errorf("get criterion: %w", err)
	}
	return c.JSON(http.StatusOK, sc)
}

func (s *Server) handleSaveCriterion(c echo.Context) error {
	var sc backend.SearchCriterion
	if err := c.Bind(&sc); err != nil {
		return err
	}
	sc.Name = strings.TrimSpace(sc.Name)
	sc.Value = strings.TrimSpace(sc.Value)
	if sc.Name == "" || sc.Value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and value are required")
	}
	saved, err := s.store.SaveCriterion(uidOf(c), sc, s.now())
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "criterion not found")
	}
	if err != nil {
		return fmt.Errorf("save criterion: %w", err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (s *Server) handleDeleteCriterion(c echo.Context) error {
	err := s.store.DeleteCriterion(uidOf(c), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "criterion not found")
	}
	if err != nil {
		return fmt.Errorf("delete criterion: %w", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleResults(c echo.Context) error {
	uid, id := uidOf(c), c.Param("id")
	if _, err := s.store.GetCriterion(uid, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "criterion not found")
		}
		return fmt.Errorf("get criterion: %w", err)
	}
	items, next, err := s.store.Tweets(uid, id, c.QueryParam("key"), DefaultPageSize)
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}
	return c.JSON(http.StatusOK, backend.ResultPage{Items: items, NextKey: next})
}

// httpErrorHandler answers every error with the backend's JSON error shape.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= 500 {
		s.log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	_ = c.JSON(code, errorBody{Message: msg, Status: http.StatusText(code)})
}

// jsonSerializer is echo's JSON codec backed by go-json.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	var ute *json.UnmarshalTypeError
	var se *json.SyntaxError
	switch {
	case errors.As(err, &ute):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unmarshal type error: expected=%v, got=%v, field=%v", ute.Type, ute.Value, ute.Field)).SetInternal(err)
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("syntax error: offset=%v, error=%v", se.Offset, se.Error())).SetInternal(err)
	}
	return err
}
