// Package followdash is a server-rendered follower dashboard built with
// Go, Echo, and templ. It shows an account's follower counts, daily
// follow/unfollow charts with per-day drill-down, and manages the saved
// search criteria kept by the follower-tracking backend.
//
// Templates are provided through the ViewFuncs struct; DefaultViews wires
// the bundled views package. followdash handles the handler logic,
// middleware, and backend calls.
package followdash

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/criteria"
	"github.com/eringen/followdash/dashboard"
	"github.com/eringen/followdash/views"
)

// ViewFuncs holds the templ components the handlers render. Swapping one
// changes a page's markup without touching handler logic.
type ViewFuncs struct {
	Dashboard   func(v *dashboard.View) templ.Component
	Day         func(v *dashboard.DayView) templ.Component
	Criteria    func(p *criteria.Page, csrfToken string) templ.Component
	Results     func(r *criteria.Results) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// DefaultViews returns the bundled views.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Dashboard:   views.Dashboard,
		Day:         views.Day,
		Criteria:    views.Criteria,
		Results:     views.Results,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// Backend is everything the app asks of the follower backend.
// *backend.Client implements it.
type Backend interface {
	dashboard.Source
	criteria.Store
}

// App is the central followdash application. It wires together the
// backend client, controllers, handlers, and middleware.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Views     ViewFuncs
	Backend   Backend
	Dashboard *dashboard.Controller
	Criteria  *criteria.Manager
	Log       *zap.Logger

	boards         *ViewCache
	refreshLimiter *RefreshLimiter
	customRoutes   []func(*App)
	ready          bool
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		Log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup validates the config and builds the controllers, middleware, and
// routes. Start calls it; tests call it to serve a.Echo directly.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return errors.New("followdash: SessionSecret is required")
	}

	if a.Backend == nil {
		a.Backend = backend.New(a.Config.BackendURL,
			backend.WithLogger(a.Log.Named("backend")),
			backend.WithTimeout(a.Config.BackendTimeout),
		)
	}
	opts := dashboard.Variant(a.Config.RenderVariant)
	a.Dashboard = dashboard.New(a.Backend, opts, a.Log.Named("dashboard"))
	a.Criteria = criteria.NewManager(a.Backend, opts.DeleteRefresh, a.Log.Named("criteria"))
	a.boards = NewViewCache(a.Dashboard, a.Config.ViewCacheTTL)
	a.refreshLimiter = NewRefreshLimiter(a.Config.RefreshLimit, a.Config.RefreshWindow)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Log.Info("listening",
		zap.String("addr", a.Config.Addr),
		zap.String("backend", a.Config.BackendURL),
		zap.Int("variant", a.Dashboard.Options().Version),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("followdash: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.StaticFS("/public", assets())

	e.GET("/", handleRootRedirect)
	e.GET("/_health", handleHealth)
	e.GET("/auth/logout", a.handleLogout)

	v := e.Group("/view")
	v.GET("/board", a.handleBoard)
	v.GET("/chart/:name", a.handleChartSVG)
	v.GET("/chart/:name/click", a.handleChartClick)
	v.GET("/day/:date", a.handleDay)
	v.GET("/tweets/:id", a.handleTweets)
	v.GET("/tweets/:id/feed.xml", a.handleTweetsFeed)

	v.GET("/search", a.handleSearchList)
	v.POST("/search", a.handleSearchSave)
	v.GET("/search/new", a.handleSearchNew)
	v.GET("/search/cancel", a.handleSearchCancel)
	v.GET("/search/:id", a.handleSearchEdit)
	v.DELETE("/search/:id", a.handleSearchDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.refreshLimiter != nil {
		a.refreshLimiter.Close()
	}
	_ = a.Log.Sync()
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("followdash: required environment variable %s is not set", key)
	}
	return v
}
