package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings tripbook reads from config.toml.
type Config struct {
	DataDir   string
	Namespace string
	Backend   string
	Autosave  time.Duration
	LogLevel  slog.Level
	Redis     RedisConfig
	Remote    RemoteConfig
}

// RedisConfig locates the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RemoteConfig locates the optional sync mirror. An empty URL disables it.
type RemoteConfig struct {
	URL               string  `toml:"url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

const (
	defaultConfigPath = "~/.config/tripbook/config.toml"
	defaultDataDir    = "~/.local/share/tripbook"
	defaultNamespace  = "travel_books"
	defaultBackend    = "sqlite"
	defaultAutosaveMS = 3000
	defaultRedisAddr  = "127.0.0.1:6379"
	defaultRemoteRPS  = 2
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DataDir:   mustExpand(defaultDataDir),
		Namespace: defaultNamespace,
		Backend:   defaultBackend,
		Autosave:  defaultAutosaveMS * time.Millisecond,
		LogLevel:  slog.LevelInfo,
		Redis:     RedisConfig{Addr: defaultRedisAddr},
		Remote:    RemoteConfig{RequestsPerSecond: defaultRemoteRPS},
	}
}

// Load locates and parses config.toml, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		DataDir    string       `toml:"data_dir"`
		Namespace  string       `toml:"namespace"`
		Backend    string       `toml:"backend"`
		AutosaveMS int          `toml:"autosave_ms"`
		LogLevel   string       `toml:"log_level"`
		Redis      RedisConfig  `toml:"redis"`
		Remote     RemoteConfig `toml:"remote"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if dir := strings.TrimSpace(raw.DataDir); dir != "" {
		cfg.DataDir = mustExpand(dir)
	}
	if ns := strings.TrimSpace(raw.Namespace); ns != "" {
		cfg.Namespace = ns
	}
	if backend := strings.ToLower(strings.TrimSpace(raw.Backend)); backend != "" {
		switch backend {
		case "sqlite", "file", "redis":
			cfg.Backend = backend
		default:
			return Config{}, fmt.Errorf("parse config: unknown backend %q", raw.Backend)
		}
	}
	if raw.AutosaveMS > 0 {
		cfg.Autosave = time.Duration(raw.AutosaveMS) * time.Millisecond
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Config{}, fmt.Errorf("parse config: log_level: %w", err)
		}
	}
	if addr := strings.TrimSpace(raw.Redis.Addr); addr != "" {
		cfg.Redis.Addr = addr
	}
	cfg.Redis.Password = raw.Redis.Password
	cfg.Redis.DB = raw.Redis.DB
	cfg.Remote.URL = strings.TrimSpace(raw.Remote.URL)
	if raw.Remote.RequestsPerSecond > 0 {
		cfg.Remote.RequestsPerSecond = raw.Remote.RequestsPerSecond
	}

	return cfg, nil
}

// LogPath returns the application log file inside the data directory.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/tripbook.log")
	}
	return filepath.Join(c.DataDir, "tripbook.log")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
