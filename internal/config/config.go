// Package config reads the pizzeria settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

type Config struct {
	Port           string
	DataDir        string
	ConfigDir      string
	Storage        string
	DBPath         string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	// TrustedProxies are addresses or CIDR prefixes whose X-Forwarded-For
	// header is believed.
	TrustedProxies []string
	SessionTTL     time.Duration
}

// SaltPath is where the hashing salt lives.
func (c Config) SaltPath() string {
	return filepath.Join(c.ConfigDir, "salt.key")
}

// Load reads an optional .env file from the working directory, then the
// process environment. Variables already set in the environment win over
// the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv with defaults applied.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:      get("PIZZERIA_PORT", "8000"),
		DataDir:   get("PIZZERIA_DATA_DIR", "data"),
		ConfigDir: get("PIZZERIA_CONFIG_DIR", "config"),
		Storage:   strings.ToLower(get("PIZZERIA_STORAGE", StorageFile)),
		LogLevel:  get("PIZZERIA_LOG_LEVEL", "info"),
		LogFormat: get("PIZZERIA_LOG_FORMAT", "text"),
	}
	cfg.DBPath = get("PIZZERIA_DB_PATH", filepath.Join(cfg.DataDir, "pizzeria.db"))

	cfg.AllowedOrigins = splitList(get("PIZZERIA_ALLOWED_ORIGINS", ""))
	cfg.TrustedProxies = splitList(get("PIZZERIA_TRUSTED_PROXIES", ""))

	ttl, err := time.ParseDuration(get("PIZZERIA_SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid PIZZERIA_SESSION_TTL %q", getenv("PIZZERIA_SESSION_TTL"))
	}
	cfg.SessionTTL = ttl

	switch cfg.Storage {
	case StorageFile, StorageSQLite:
	default:
		return Config{}, fmt.Errorf("invalid PIZZERIA_STORAGE %q: want %q or %q", cfg.Storage, StorageFile, StorageSQLite)
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
