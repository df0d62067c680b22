package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/tripbook/internal/config"
	"github.com/five82/tripbook/internal/objectstore"
	"github.com/five82/tripbook/internal/prefs"
	"github.com/five82/tripbook/internal/remote"
	"github.com/five82/tripbook/internal/state"
	"github.com/five82/tripbook/internal/ui"
)

// Options configure the tripbook application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/tripbook/prefs.toml
	Autosave   time.Duration // zero uses the configured window
}

const flushTimeout = 5 * time.Second

// Run boots the tripbook TUI until the user quits or the context is
// cancelled. Pending edits are flushed before it returns.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("prefs unreadable, using defaults", "path", prefsPath, "error", err)
	}

	persist, backend, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := persist.Close(); err != nil {
			logger.Warn("close object store failed", "error", err)
		}
	}()

	store := state.New(state.Options{Persistence: persist, Logger: logger})
	if err := store.Load(ctx); err != nil {
		return err
	}
	if userPrefs.LastBook != "" {
		store.Select(userPrefs.LastBook)
	}

	delay := cfg.Autosave
	if opts.Autosave > 0 {
		delay = opts.Autosave
	}
	autosaver := NewAutosaver(ctx, store, AutosaveOptions{Delay: delay, Logger: logger})
	autosaver.Start()
	defer autosaver.Stop()

	logger.Info("tripbook started", "backend", backend, "books", len(store.Snapshot().Books), "autosave", delay)

	runErr := ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Logger:    logger,
		LogPath:   cfg.LogPath(),
		Backend:   backend,
		PrefsPath: prefsPath,
		Prefs:     userPrefs,
	})

	// The UI context may already be cancelled; the final write gets its own.
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	if err := autosaver.Flush(flushCtx); err != nil {
		logger.Error("final save failed", "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("final save: %w", err)
		}
	}
	logger.Info("tripbook stopped")
	return runErr
}

// openLogger writes slog text records to the log file in the data
// directory. The terminal belongs to the UI.
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return logger, func() { _ = file.Close() }, nil
}

// openStore opens the configured backend and, when a remote URL is set,
// mirrors every write to it.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (objectstore.Store, string, error) {
	primary, err := objectstore.Open(ctx, objectstore.Options{
		Backend:   cfg.Backend,
		DataDir:   cfg.DataDir,
		Namespace: cfg.Namespace,
		Redis: objectstore.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	}, logger)
	if err != nil {
		return nil, "", fmt.Errorf("open object store: %w", err)
	}
	label := cfg.Backend

	if cfg.Remote.URL == "" {
		return primary, label, nil
	}
	client, err := remote.NewClient(remote.Options{
		URL:               cfg.Remote.URL,
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
	})
	if err != nil {
		_ = primary.Close()
		return nil, "", fmt.Errorf("init remote mirror: %w", err)
	}
	logger.Info("remote mirror enabled", "url", cfg.Remote.URL)
	mirrored := objectstore.Serialized(&objectstore.Mirror{Primary: primary, Secondary: client, Logger: logger})
	return mirrored, label + " + remote", nil
}
