package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// FileStore appends history records to a jsonl file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a history store backed by the jsonl file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save implements ports.HistoryRepository.
func (f *FileStore) Save(record domain.HistoryRecord) (domain.HistoryRecord, error) {
	record = stamp(record)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return domain.HistoryRecord{}, err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return domain.HistoryRecord{}, err
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return domain.HistoryRecord{}, err
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return domain.HistoryRecord{}, err
	}
	return record, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Clear removes the history file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Records loads history entries newest first (best-effort: corrupt lines are skipped).
func (f *FileStore) Records(limit int) ([]domain.HistoryRecord, error) {
	records, err := f.readAll()
	if err != nil {
		return nil, err
	}
	newestFirst(records)
	return limitRecords(records, limit), nil
}

// Get returns the record with the given ID.
func (f *FileStore) Get(id string) (domain.HistoryRecord, bool, error) {
	records, err := f.readAll()
	if err != nil {
		return domain.HistoryRecord{}, false, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, true, nil
		}
	}
	return domain.HistoryRecord{}, false, nil
}

// ExportJSON copies every record to dest as jsonl.
func (f *FileStore) ExportJSON(dest string) error {
	records, err := f.Records(0)
	if err != nil {
		return err
	}
	return writeJSONL(dest, records)
}

func (f *FileStore) readAll() ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []domain.HistoryRecord
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec domain.HistoryRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

var _ ports.HistoryRepository = (*FileStore)(nil)
