package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the raw SQLite connection and schema bootstrap for the catalog.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the catalog database at path. If an existing
// database has an incompatible schema, it is deleted and recreated, matching
// how a schema migration failure is handled rather than left to corrupt state.
func OpenStore(path string) (*Store, error) {
	store, err := openDB(path)
	if err != nil {
		if strings.Contains(err.Error(), "no such column") ||
			strings.Contains(err.Error(), "no such table") ||
			strings.Contains(err.Error(), "SQL logic error") {
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, fmt.Errorf("remove incompatible catalog: %w", removeErr)
			}
			os.Remove(path + "-wal")
			os.Remove(path + "-shm")
			return openDB(path)
		}
		return nil, err
	}
	return store, nil
}

func openDB(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	escaped := strings.ReplaceAll(path, " ", "%20")
	connStr := "file:" + escaped + "?_time_format=sqlite"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	// At least 4 concurrent readers; writes are serialised by SQLite itself
	// under WAL, so this bounds reader concurrency, not writer concurrency.
	db.SetMaxOpenConns(8)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection for callers that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic propagated out of fn.
func (s *Store) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Now returns the current time as Unix seconds, the catalog's one storage
// format for all timestamp columns.
func Now() int64 {
	return time.Now().UTC().Unix()
}

// DefaultDBPath returns the default scythe.db location under the OS per-user
// application-data directory.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.Getenv("HOME")
	}
	return filepath.Join(dir, "scythe", "scythe.db")
}

// DefaultThumbnailDir returns the default thumbnails/ directory alongside the
// catalog database.
func DefaultThumbnailDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.Getenv("HOME")
	}
	return filepath.Join(dir, "scythe", "thumbnails")
}
