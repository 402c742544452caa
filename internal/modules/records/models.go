// Package records persists ingested weekly records and their batches.
package records

import (
	"time"

	"github.com/aristath/turnips/internal/domain"
)

// Batch is one ingestion run over a spreadsheet.
type Batch struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Layout        string    `json:"layout"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	RowsTotal     int       `json:"rows_total"`
	RowsBlank     int       `json:"rows_blank"`
	RecordsParsed int       `json:"records_parsed"`
	RowsSkipped   int       `json:"rows_skipped"`
	Weeks         int       `json:"weeks"`
}

// StoredRecord is a weekly record with its storage identity.
type StoredRecord struct {
	ID       int64  `json:"id"`
	BatchID  string `json:"batch_id"`
	Position int    `json:"position"`
	domain.WeeklyRecord
}

// SkippedRow is a row the parser rejected.
type SkippedRow struct {
	WeekIndex int      `json:"week_index"`
	Reason    string   `json:"reason"`
	Cells     []string `json:"cells"`
}

// Records strips storage identity.
func Records(stored []StoredRecord) []domain.WeeklyRecord {
	out := make([]domain.WeeklyRecord, len(stored))
	for i, s := range stored {
		out[i] = s.WeeklyRecord
	}
	return out
}
