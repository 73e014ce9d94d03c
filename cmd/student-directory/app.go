package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aanand-mishra/student-directory/internal/config"
	"github.com/aanand-mishra/student-directory/internal/credential"
	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/storage/jsonfile"
	"github.com/aanand-mishra/student-directory/internal/storage/sqlite"
)

// app holds everything a command needs once startup is done.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store *directory.Store

	// warning is set when the snapshot was unreadable and the directory
	// started empty.
	warning error

	closers []io.Closer
}

// setup runs the startup sequence shared by every command.
func setup() (*app, error) {
	a := &app{}

	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg, err := config.Load(config.ConfigPath(configFile))
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	var logOut io.Writer = os.Stderr
	if !cfg.LogToStderr() {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("setup: open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		logOut = f
	}
	a.log = setupLogger(cfg.Env, logOut)
	slog.SetDefault(a.log)

	a.log.Info("starting student-directory",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The rest of the program only sees the storage.Storage interface.
	backend, err := a.openStorage()
	if err != nil {
		a.Close()
		return nil, err
	}

	// ── 4. Password Hasher ────────────────────────────────────────────────
	hasher, err := credential.New(cfg.PasswordHasher)
	if err != nil {
		a.Close()
		return nil, err
	}

	// ── 5. Load the Directory ─────────────────────────────────────────────
	store, err := directory.Open(backend,
		directory.WithHasher(hasher),
		directory.WithLogger(a.log),
	)
	switch {
	case errors.Is(err, storage.ErrCorruptData):
		a.warning = err
	case err != nil:
		a.Close()
		return nil, err
	}
	a.store = store

	a.log.Info("storage initialised",
		slog.String("driver", cfg.StorageDriver),
		slog.String("path", backend.Location()),
		slog.String("hasher", cfg.PasswordHasher))

	return a, nil
}

func (a *app) openStorage() (storage.Storage, error) {
	switch a.cfg.StorageDriver {
	case "sqlite":
		db, err := sqlite.New(a.cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		return db, nil
	default:
		return jsonfile.New(a.cfg.StoragePath), nil
	}
}

// Close releases the storage backend and the log file, in reverse order of
// opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.log != nil {
			a.log.Warn("close failed", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}
