package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteBackend keeps documents as rows of the documents table.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Read(name string) ([]byte, error) {
	var body string
	err := b.db.QueryRow(`SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("get document %q: %w", name, err)
	}
	return []byte(body), nil
}

func (b *SQLiteBackend) Write(name string, data []byte) error {
	_, err := b.db.Exec(
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set document %q: %w", name, err)
	}
	return nil
}
