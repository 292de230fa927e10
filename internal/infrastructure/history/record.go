package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/gitscribe-go/internal/domain"
)

// stamp assigns an ID and timestamp to records that do not carry one yet.
func stamp(rec domain.HistoryRecord) domain.HistoryRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	rec.Timestamp = rec.Timestamp.UTC().Truncate(time.Second)
	return rec
}

// newestFirst orders records by timestamp descending, keeping insertion
// order between equal timestamps reversed as well.
func newestFirst(records []domain.HistoryRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}

func limitRecords(records []domain.HistoryRecord, limit int) []domain.HistoryRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

// writeJSONL writes one JSON object per line to dest.
func writeJSONL(dest string, records []domain.HistoryRecord) error {
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
