// Package app opens the storage and credential pieces shared by the server
// and the admin tool.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dukerupert/pizzeria/internal/config"
	"github.com/dukerupert/pizzeria/internal/credential"
	"github.com/dukerupert/pizzeria/internal/database"
	"github.com/dukerupert/pizzeria/internal/store"
)

// Storage is an opened backend plus whatever must be closed with it.
type Storage struct {
	Backend store.Backend
	db      *sql.DB
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// OpenStorage opens the backend selected by cfg.Storage.
func OpenStorage(cfg config.Config, logger *slog.Logger) (*Storage, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite storage", "path", cfg.DBPath)
		return &Storage{Backend: store.NewSQLiteBackend(db), db: db}, nil
	default:
		b, err := store.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Info("using file storage", "dir", cfg.DataDir)
		return &Storage{Backend: b}, nil
	}
}

// Hasher loads or creates the salt under cfg.ConfigDir.
func Hasher(cfg config.Config) (*credential.Hasher, error) {
	salt, err := credential.LoadOrCreateSalt(cfg.SaltPath())
	if err != nil {
		return nil, err
	}
	return credential.NewHasher(salt), nil
}
