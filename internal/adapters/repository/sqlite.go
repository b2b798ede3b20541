package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/okian/eeat/internal/adapters/repository/migrations"
	"github.com/okian/eeat/internal/domain/model"
)

// SQLiteStore persists batches in a SQLite database, one JSON document per
// batch. Batches survive restarts, so unfinished work can be resumed.
type SQLiteStore struct {
	db   *sql.DB
	path string
	// mu serialises read-modify-write cycles.
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and applies
// pending migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var ups []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	for _, name := range ups {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Create inserts b.
func (s *SQLiteStore) Create(ctx context.Context, b *model.Batch) error {
	defer observe("create", time.Now())
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshalling batch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM batches WHERE id = ?", b.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking batch: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrExists, b.ID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO batches (id, host, created_at, updated_at, done, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.ID, b.Host, b.CreatedAt.UTC(), time.Now().UTC(), b.Done(), string(data))
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}
	return nil
}

// Get loads a batch by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Batch, error) {
	defer observe("get", time.Now())
	return s.load(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) load(ctx context.Context, q queryer, id string) (*model.Batch, error) {
	var data string
	err := q.QueryRowContext(ctx, "SELECT data FROM batches WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying batch: %w", err)
	}
	var b model.Batch
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, fmt.Errorf("unmarshalling batch %s: %w", id, err)
	}
	return &b, nil
}

// List returns batch summaries, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	defer observe("list", time.Now())
	rows, err := s.db.QueryContext(ctx, "SELECT data FROM batches ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		var b model.Batch
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return nil, fmt.Errorf("unmarshalling batch: %w", err)
		}
		out = append(out, Summarize(&b))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batches: %w", err)
	}
	sortSummaries(out)
	return out, nil
}

// Update loads the batch, applies fn and writes it back in one transaction.
func (s *SQLiteStore) Update(ctx context.Context, id string, fn func(*model.Batch) error) error {
	defer observe("update", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	b, err := s.load(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := fn(b); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshalling batch: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, host, created_at, updated_at, done, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			host = excluded.host,
			updated_at = excluded.updated_at,
			done = excluded.done,
			data = excluded.data
	`, b.ID, b.Host, b.CreatedAt.UTC(), time.Now().UTC(), b.Done(), string(data))
	if err != nil {
		return fmt.Errorf("saving batch: %w", err)
	}
	return tx.Commit()
}

// Unfinished returns the ids of batches with pages still pending, oldest first.
func (s *SQLiteStore) Unfinished(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM batches WHERE done = 0 ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing unfinished batches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning batch id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
