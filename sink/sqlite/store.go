package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/poiesic/lorekeeper/sink"
)

// Store implements sink.Store on SQLite.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
	now    func() time.Time
}

var _ sink.Store = (*Store)(nil)

// Open opens the database at path with WAL mode enabled, creating the
// parent directory and schema when needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; the WAL lets readers proceed
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS content (
	type TEXT NOT NULL,
	id TEXT NOT NULL,
	data BLOB NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	updated_at TEXT NOT NULL,
	PRIMARY KEY(type, id)
);

CREATE TABLE IF NOT EXISTS content_tags (
	type TEXT NOT NULL,
	id TEXT NOT NULL,
	tag TEXT NOT NULL,
	UNIQUE(type, id, tag),
	FOREIGN KEY(type, id) REFERENCES content(type, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_content_tags_tag ON content_tags(tag);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) check(ctx context.Context) error {
	if s.closed.Load() {
		return sink.ErrClosed
	}
	return ctx.Err()
}

// Save upserts a record and replaces its tags.
func (s *Store) Save(ctx context.Context, contentType, id string, data []byte, tags []string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	record := sink.Record{Type: contentType, ID: id}
	if err := record.Validate(); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("%w: %w", sink.ErrSerializationFailed, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO content (type, id, data, tags, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(type, id) DO UPDATE SET data = excluded.data, tags = excluded.tags, updated_at = excluded.updated_at`,
		contentType, id, data, string(tagsJSON), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", contentType, id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM content_tags WHERE type = ? AND id = ?`, contentType, id); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO content_tags (type, id, tag) VALUES (?, ?, ?)`, contentType, id, tag); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get retrieves a single record.
func (s *Store) Get(ctx context.Context, contentType, id string) (*sink.Record, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT type, id, data, tags, updated_at FROM content WHERE type = ? AND id = ?`, contentType, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sink.ErrNotFound
	}
	return record, err
}

// ByTag returns the records carrying tag, ordered by type and id.
func (s *Store) ByTag(ctx context.Context, tag string) ([]*sink.Record, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT c.type, c.id, c.data, c.tags, c.updated_at
FROM content c JOIN content_tags t ON t.type = c.type AND t.id = c.id
WHERE t.tag = ?
ORDER BY c.type, c.id`, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*sink.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Count returns the number of records of contentType.
func (s *Store) Count(ctx context.Context, contentType string) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content WHERE type = ?`, contentType).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*sink.Record, error) {
	var (
		record    sink.Record
		tagsJSON  string
		updatedAt string
	)
	if err := row.Scan(&record.Type, &record.ID, &record.Data, &tagsJSON, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &record.Tags); err != nil {
		return nil, fmt.Errorf("%w: tags: %w", sink.ErrSerializationFailed, err)
	}
	if len(record.Tags) == 0 {
		record.Tags = nil
	}
	t, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: updated_at: %w", sink.ErrSerializationFailed, err)
	}
	record.UpdatedAt = t
	return &record, nil
}
