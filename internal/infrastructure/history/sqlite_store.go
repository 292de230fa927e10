// Package history records generated release notes, in SQLite when the
// database can be opened and in a jsonl file otherwise.
package history

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// SQLiteStore persists history in a SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback *FileStore
	mu       sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path. If that fails the
// store transparently writes to a jsonl file next to it.
func NewSQLiteStore(path string, logger ports.Logger) *SQLiteStore {
	fallback := func(err error) *SQLiteStore {
		jsonl := strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl"
		logger.Warn("history database unavailable, using jsonl file", map[string]interface{}{
			"path":  path,
			"file":  jsonl,
			"error": err.Error(),
		})
		return &SQLiteStore{path: path, fallback: NewFileStore(jsonl)}
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fallback(err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fallback(err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		_ = db.Close()
		return fallback(err)
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		repo TEXT,
		start_rev TEXT,
		end_rev TEXT,
		model TEXT,
		output_path TEXT,
		bytes INTEGER,
		streamed INTEGER,
		issues TEXT,
		output TEXT
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.HistoryRecord) (domain.HistoryRecord, error) {
	if s.fallback != nil {
		return s.fallback.Save(record)
	}
	record = stamp(record)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO generations
		(id, timestamp, repo, start_rev, end_rev, model, output_path, bytes, streamed, issues, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.Format(domain.TimestampFormat),
		record.Repo,
		record.Start,
		record.End,
		record.Model,
		record.OutputPath,
		record.Bytes,
		boolToInt(record.Streamed),
		strings.Join(record.Issues, ","),
		record.Output,
	)
	if err != nil {
		return domain.HistoryRecord{}, err
	}
	return record, nil
}

const selectColumns = "SELECT id, timestamp, repo, start_rev, end_rev, model, output_path, bytes, streamed, issues, output FROM generations"

// Records returns history entries newest first. limit <= 0 returns everything.
func (s *SQLiteStore) Records(limit int) ([]domain.HistoryRecord, error) {
	if s.fallback != nil {
		return s.fallback.Records(limit)
	}
	query := selectColumns + " ORDER BY timestamp DESC, rowid DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.HistoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the record with the given ID.
func (s *SQLiteStore) Get(id string) (domain.HistoryRecord, bool, error) {
	if s.fallback != nil {
		return s.fallback.Get(id)
	}
	rec, err := scanRecord(s.db.QueryRow(selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistoryRecord{}, false, nil
	}
	if err != nil {
		return domain.HistoryRecord{}, false, err
	}
	return rec, true, nil
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	if s.fallback != nil {
		return s.fallback.Clear()
	}
	_, err := s.db.Exec("DELETE FROM generations")
	return err
}

// ExportJSON writes the generations table to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0)
	if err != nil {
		return err
	}
	return writeJSONL(dest, records)
}

// Path returns the sqlite database path, or the jsonl file in fallback mode.
func (s *SQLiteStore) Path() string {
	if s.fallback != nil {
		return s.fallback.Path()
	}
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	var ts, issues string
	var streamed int
	if err := row.Scan(&rec.ID, &ts, &rec.Repo, &rec.Start, &rec.End, &rec.Model,
		&rec.OutputPath, &rec.Bytes, &streamed, &issues, &rec.Output); err != nil {
		return domain.HistoryRecord{}, err
	}
	if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
		rec.Timestamp = t
	}
	rec.Streamed = streamed == 1
	if issues != "" {
		rec.Issues = strings.Split(issues, ",")
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
