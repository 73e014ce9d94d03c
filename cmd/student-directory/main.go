// main is the entry point of the Student Directory application.
//
// STARTUP SEQUENCE (see setup in app.go):
//  1. Load configuration (defaults, optional YAML file, environment)
//  2. Initialise the logger (to a file; the menu owns stdout)
//  3. Open the snapshot backend (JSON file or SQLite)
//  4. Choose the password hasher
//  5. Load the directory; a corrupt snapshot is a warning, not a failure
//  6. Run the menu until the user exits or presses Ctrl+C
//
// RUNNING:
//
//	go run ./cmd/student-directory --config=config/local.yaml
//
// or with no configuration at all, which keeps students.json in the
// current directory:
//
//	go run ./cmd/student-directory
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging (staging): machine-readable JSON output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "dev":
		return slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{
				Level: slog.LevelDebug, // all levels in development
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level: slog.LevelDebug, // more verbose in staging
			}),
		)
	default: // "prod" and anything unrecognised
		return slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level: slog.LevelInfo, // INFO and above in production
			}),
		)
	}
}
