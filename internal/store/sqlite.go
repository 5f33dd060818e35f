package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
)

// SQLiteStore is the durable Store used by real terminals. All keys live in
// a single kv table so a collection write replaces one row atomically.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens the terminal database under dataDir with:
// - WAL mode for concurrent reads during writes
// - foreign key constraints enabled
// - a single writer connection (SQLite allows only one)
func Open(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pos.db")

	// modernc.org/sqlite is pure Go, no CGO
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrMigration, "schema migration failed", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReadKey returns the stored value or (nil, nil) when absent.
func (s *SQLiteStore) ReadKey(name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "read failed", err)
	}
	return data, nil
}

// WriteKey stores the value under the key, replacing any previous value.
func (s *SQLiteStore) WriteKey(name string, data []byte) error {
	_, err := s.db.Exec(`
	INSERT INTO kv (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, name, data)
	if err != nil {
		if isStorageFull(err) {
			return apperrors.Wrap(apperrors.ErrStorageFull, "storage exhausted", err)
		}
		return apperrors.Wrap(apperrors.ErrDatabase, "write failed", err)
	}
	return nil
}

// DeleteKey removes the key if present.
func (s *SQLiteStore) DeleteKey(name string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", name); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "delete failed", err)
	}
	return nil
}

// isStorageFull detects SQLITE_FULL and disk exhaustion conditions.
func isStorageFull(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "no space left")
}
