package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ziadkadry99/webgl-serve/internal/db"
	"github.com/ziadkadry99/webgl-serve/internal/mime"
)

// Record is a stored file as written by an uploader. Content is the text of
// text files or a data URL for binary files.
type Record struct {
	Path        string
	Content     string
	ContentType string
	IsText      bool
	Size        int64
	UpdatedAt   time.Time
}

// RecordStore keeps uploaded files in SQLite, one row per path.
type RecordStore struct {
	db *db.DB
}

// NewRecordStore creates a record store on an opened database.
func NewRecordStore(d *db.DB) *RecordStore {
	return &RecordStore{db: d}
}

// execer is satisfied by both the database and a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Put inserts or replaces the record for rec.Path.
func (s *RecordStore) Put(ctx context.Context, rec *Record) error {
	return putRecord(ctx, s.db, rec)
}

func putRecord(ctx context.Context, ex execer, rec *Record) error {
	if rec.Path == "" {
		return errors.New("record path is required")
	}
	if rec.ContentType == "" {
		rec.ContentType = mime.Resolve(rec.Path)
	}
	rec.UpdatedAt = time.Now().UTC()

	_, err := ex.ExecContext(ctx,
		`INSERT INTO files (path, content, content_type, is_text, size, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   content = excluded.content,
		   content_type = excluded.content_type,
		   is_text = excluded.is_text,
		   size = excluded.size,
		   updated_at = excluded.updated_at`,
		rec.Path, rec.Content, rec.ContentType, rec.IsText, rec.Size, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", rec.Path, err)
	}
	return nil
}

// RecordTx groups writes so readers see either none or all of them. It is
// safe for concurrent use.
type RecordTx struct {
	mu sync.Mutex
	tx *sql.Tx
}

// Begin starts a write transaction.
func (s *RecordStore) Begin(ctx context.Context) (*RecordTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &RecordTx{tx: tx}, nil
}

// Put stores rec within the transaction.
func (t *RecordTx) Put(ctx context.Context, rec *Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return putRecord(ctx, t.tx, rec)
}

// Clear deletes every record within the transaction.
func (t *RecordTx) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clearRecords(ctx, t.tx)
}

// Commit makes the writes visible.
func (t *RecordTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback discards the writes. It is a no-op after Commit.
func (t *RecordTx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// Record returns the stored record for path.
func (s *RecordStore) Record(ctx context.Context, path string) (*Record, error) {
	rec := &Record{}
	err := s.db.QueryRowContext(ctx,
		`SELECT path, content, content_type, is_text, size, updated_at
		 FROM files WHERE path = ?`, path,
	).Scan(&rec.Path, &rec.Content, &rec.ContentType, &rec.IsText, &rec.Size, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", path, err)
	}
	return rec, nil
}

// Get implements Store.
func (s *RecordStore) Get(ctx context.Context, path string) (*File, error) {
	rec, err := s.Record(ctx, path)
	if err != nil {
		return nil, err
	}
	content := []byte(rec.Content)
	return &File{
		Path:        rec.Path,
		ContentType: rec.ContentType,
		IsText:      rec.IsText,
		Content:     content,
		Encoding:    detectEncoding(rec.IsText, content),
	}, nil
}

// List implements Lister.
func (s *RecordStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, content_type, is_text, size FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.ContentType, &e.IsText, &e.Size); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored files.
func (s *RecordStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting files: %w", err)
	}
	return n, nil
}

// Clear implements Clearer by deleting every record.
func (s *RecordStore) Clear(ctx context.Context) error {
	return clearRecords(ctx, s.db)
}

func clearRecords(ctx context.Context, ex execer) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return fmt.Errorf("clearing files: %w", err)
	}
	return nil
}
