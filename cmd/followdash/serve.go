package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/followdash"
	"github.com/eringen/followdash/logging"
)

func runServe() error {
	log, err := logging.New(followdash.EnvOr("LOG_LEVEL", "info"))
	if err != nil {
		return err
	}

	timeout, err := time.ParseDuration(followdash.EnvOr("BACKEND_TIMEOUT", "10s"))
	if err != nil {
		return fmt.Errorf("BACKEND_TIMEOUT: %w", err)
	}
	variant, err := strconv.Atoi(followdash.EnvOr("RENDER_VARIANT", "0"))
	if err != nil {
		return fmt.Errorf("RENDER_VARIANT: %w", err)
	}

	app := followdash.New(followdash.SiteConfig{
		URL:            followdash.EnvOr("SITE_URL", "http://localhost:3000"),
		Addr:           followdash.EnvOr("ADDR", ":3000"),
		BackendURL:     followdash.EnvOr("BACKEND_URL", "http://localhost:8080"),
		BackendTimeout: timeout,
		SessionSecret:  followdash.MustEnv("SESSION_SECRET"),
		CookieSecure:   followdash.EnvOr("COOKIE_SECURE", "false") == "true",
		RenderVariant:  variant,
	}, followdash.DefaultViews(), followdash.WithLogger(log))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
		return err
	}
	return <-errc
}
