package followdash

import (
	"time"

	"go.uber.org/zap"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/dashboard"
)

// SiteConfig holds all configuration for a followdash instance.
type SiteConfig struct {
	URL  string // Canonical URL used in feeds (default "http://localhost:3000")
	Addr string // Listen address (default ":3000")

	BackendURL     string        // Base URL of the follower backend (default "http://localhost:8080")
	BackendTimeout time.Duration // Per-call backend timeout (default 10s)

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	RenderVariant int // Dashboard behaviour preset 1-3 (default latest)

	RefreshLimit  int           // Dashboard refreshes allowed per IP per window (default 30)
	RefreshWindow time.Duration // Refresh limiter window (default 1min)

	ViewCacheTTL time.Duration // How long chart requests reuse a loaded board (default 30s)
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.BackendURL == "" {
		c.BackendURL = "http://localhost:8080"
	}
	if c.BackendTimeout == 0 {
		c.BackendTimeout = backend.DefaultTimeout
	}
	if c.RenderVariant == 0 {
		c.RenderVariant = dashboard.LatestVariant
	}
	if c.RefreshLimit == 0 {
		c.RefreshLimit = 30
	}
	if c.RefreshWindow == 0 {
		c.RefreshWindow = time.Minute
	}
	if c.ViewCacheTTL == 0 {
		c.ViewCacheTTL = 30 * time.Second
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the application logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithBackend replaces the backend client built from BackendURL.
func WithBackend(b Backend) Option {
	return func(a *App) {
		a.Backend = b
	}
}
