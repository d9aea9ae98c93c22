package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "fakebackend":
		err = runFakeBackend()
	case "version":
		fmt.Printf("followdash %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`followdash - A follower dashboard built with Go, Echo, and templ

Usage:
  followdash <command>

Commands:
  serve         Run the dashboard
  fakebackend   Run a local backend with seeded demo data
  version       Print the followdash version
  help          Show this help message

Environment (also read from .env):
  ADDR              dashboard listen address (default :3000)
  SITE_URL          public URL used in feed links (default http://localhost:3000)
  BACKEND_URL       follower backend base URL (default http://localhost:8080)
  BACKEND_TIMEOUT   per-call backend timeout, e.g. 5s (default 10s)
  SESSION_SECRET    required for serve
  COOKIE_SECURE     set to true behind HTTPS
  RENDER_VARIANT    dashboard preset 1-3 (default 3)
  LOG_LEVEL         debug, info, warn or error (default info)
  FAKEBACKEND_ADDR  fakebackend listen address (default :8080)
  FAKEBACKEND_DB    fakebackend SQLite path (default data/fakebackend.db)`)
}
