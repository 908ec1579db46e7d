package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docweave/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a SQLite-backed document store holding corpus files and
// serialized tree snapshots.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docweave/data/documents.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docweave", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "documents.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveFiles replaces the stored files of a corpus in one transaction.
func (s *Store) SaveFiles(ctx context.Context, corpus domain.CorpusID, files []domain.CorpusFile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM files WHERE corpus = ?", corpus.String()); err != nil {
		return fmt.Errorf("clearing files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (corpus, path, name, content, source_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, f := range files {
		if _, err := stmt.ExecContext(ctx, corpus.String(), f.Path, f.Name,
			f.Content, nullString(f.SourceURL), now); err != nil {
			return fmt.Errorf("saving file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetFile retrieves one file by name, falling back to path lookup.
func (s *Store) GetFile(ctx context.Context, corpus domain.CorpusID, name string) (*domain.CorpusFile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT path, name, content, source_url
		FROM files WHERE corpus = ? AND (name = ? OR path = ?)
		ORDER BY path LIMIT 1
	`, corpus.String(), name, name)

	var f domain.CorpusFile
	var sourceURL sql.NullString
	if err := row.Scan(&f.Path, &f.Name, &f.Content, &sourceURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	f.SourceURL = sourceURL.String
	return &f, nil
}

// ListFiles returns all files of a corpus, sorted by path.
func (s *Store) ListFiles(ctx context.Context, corpus domain.CorpusID) ([]domain.CorpusFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, name, content, source_url
		FROM files WHERE corpus = ?
		ORDER BY path
	`, corpus.String())
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []domain.CorpusFile //nolint:prealloc // size unknown from query
	for rows.Next() {
		var f domain.CorpusFile
		var sourceURL sql.NullString
		if err := rows.Scan(&f.Path, &f.Name, &f.Content, &sourceURL); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		f.SourceURL = sourceURL.String
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}

	return files, nil
}

// SaveSnapshot stores or replaces the serialized tree for a file path.
func (s *Store) SaveSnapshot(ctx context.Context, corpus domain.CorpusID, path, serialized string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (corpus, path, serialized, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(corpus, path) DO UPDATE SET
			serialized = excluded.serialized,
			updated_at = excluded.updated_at
	`, corpus.String(), path, serialized, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the serialized tree for a file path.
func (s *Store) GetSnapshot(ctx context.Context, corpus domain.CorpusID, path string) (string, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT serialized FROM snapshots WHERE corpus = ? AND path = ?
	`, corpus.String(), path)

	var serialized string
	if err := row.Scan(&serialized); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("scanning snapshot: %w", err)
	}
	return serialized, nil
}

// DeleteCorpus removes all stored state for a corpus.
func (s *Store) DeleteCorpus(ctx context.Context, corpus domain.CorpusID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM files WHERE corpus = ?", corpus.String()); err != nil {
		return fmt.Errorf("deleting files: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshots WHERE corpus = ?", corpus.String()); err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// nullString converts empty strings to NULL for storage.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
