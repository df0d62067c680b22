package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	DataDir   string
	Namespace string
	Redis     RedisOptions
}

// Open builds the configured backend wrapped in Serialized. When the sqlite
// backend cannot be opened the flat file backend is used instead; the two
// do not share size or performance characteristics.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendSQLite
	}

	switch backend {
	case BackendSQLite:
		path := filepath.Join(opts.DataDir, opts.Namespace+".db")
		db, err := OpenSQLite(ctx, path, opts.Namespace)
		if err == nil {
			logger.Info("object store opened", "backend", BackendSQLite, "path", path)
			return Serialized(db), nil
		}
		logger.Warn("sqlite unavailable, falling back to file store", "path", path, "error", err)
		return openFile(opts, logger)
	case BackendFile:
		return openFile(opts, logger)
	case BackendRedis:
		r, err := OpenRedis(ctx, opts.Redis, opts.Namespace)
		if err != nil {
			return nil, err
		}
		logger.Info("object store opened", "backend", BackendRedis, "addr", opts.Redis.Addr)
		return Serialized(r), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}

func openFile(opts Options, logger *slog.Logger) (Store, error) {
	f, err := OpenFile(opts.DataDir, opts.Namespace)
	if err != nil {
		return nil, err
	}
	logger.Info("object store opened", "backend", BackendFile, "path", f.Path())
	return Serialized(f), nil
}
